package jpegseg

import (
	"bytes"
	"encoding/binary"
)

const (
	tagOrientation = 0x0112

	// Offsets from the APP1 marker.
	exifIDOffset = 4
	tiffOffset   = 10

	tiffMagic      = 0x002a
	ifdEntrySize   = 12
	minIFDOffset   = 8
	entryValueSkip = 8
)

var exifID = []byte("Exif")

// tiffReader is a bounds-checked view of the TIFF block inside an APP1
// segment.
type tiffReader struct {
	buf   []byte
	order binary.ByteOrder
}

func (r tiffReader) uint16(off int) (uint16, bool) {
	if off < 0 || off+2 > len(r.buf) {
		return 0, false
	}
	return r.order.Uint16(r.buf[off:]), true
}

func (r tiffReader) uint32(off int) (uint32, bool) {
	if off < 0 || off+4 > len(r.buf) {
		return 0, false
	}
	return r.order.Uint32(r.buf[off:]), true
}

type lookup int

const (
	notFound lookup = iota
	found
	truncated
)

// ResetOrientation finds the EXIF Orientation tag of the first APP1 segment,
// overwrites its value with 1 in place and returns the original value.
//
// ok is false when buf is not a JPEG or has no EXIF Orientation tag. EXIF
// that is cut short while walking the directory reports orientation 1, the
// same as an image with no rotation. The caller must hold buf exclusively for
// the duration of the call.
func ResetOrientation(buf []byte) (orientation int, ok bool) {
	off, order, state := findOrientation(buf)
	orientation, ok = readOrientation(buf, off, order, state)
	if state == found {
		order.PutUint16(buf[off:], 1)
	}
	return orientation, ok
}

// Orientation reports the EXIF orientation without modifying buf.
func Orientation(buf []byte) (orientation int, ok bool) {
	off, order, state := findOrientation(buf)
	return readOrientation(buf, off, order, state)
}

func readOrientation(buf []byte, off int, order binary.ByteOrder, state lookup) (int, bool) {
	switch state {
	case found:
		v, _ := tiffReader{buf: buf, order: order}.uint16(off)
		return int(v), true
	case truncated:
		return 1, true
	default:
		return 0, false
	}
}

// findOrientation returns the offset of the Orientation value field.
func findOrientation(buf []byte) (int, binary.ByteOrder, lookup) {
	if !IsJPEG(buf) {
		return 0, nil, notFound
	}

	app1 := -1
	for off := 2; off+1 < len(buf); off++ {
		if buf[off] == markerPrefix && buf[off+1] == markerAPP1 {
			app1 = off
			break
		}
	}
	if app1 < 0 {
		return 0, nil, notFound
	}

	idStart := app1 + exifIDOffset
	if idStart+len(exifID) > len(buf) {
		return 0, nil, truncated
	}
	if !bytes.Equal(buf[idStart:idStart+len(exifID)], exifID) {
		return 0, nil, notFound
	}

	tiff := app1 + tiffOffset
	endian, ok := tiffReader{buf: buf, order: binary.BigEndian}.uint16(tiff)
	if !ok {
		return 0, nil, truncated
	}

	var order binary.ByteOrder
	switch endian {
	case 0x4949:
		order = binary.LittleEndian
	case 0x4d4d:
		order = binary.BigEndian
	default:
		return 0, nil, notFound
	}
	r := tiffReader{buf: buf, order: order}

	magic, ok := r.uint16(tiff + 2)
	if !ok {
		return 0, nil, truncated
	}
	if magic != tiffMagic {
		return 0, nil, notFound
	}

	first, ok := r.uint32(tiff + 4)
	if !ok {
		return 0, nil, truncated
	}
	if first < minIFDOffset {
		return 0, nil, notFound
	}
	if uint64(first) > uint64(len(buf)) {
		return 0, nil, truncated
	}

	ifd := tiff + int(first)
	count, ok := r.uint16(ifd)
	if !ok {
		return 0, nil, truncated
	}

	for i := 0; i < int(count); i++ {
		entry := ifd + 2 + i*ifdEntrySize
		tag, ok := r.uint16(entry)
		if !ok {
			return 0, nil, truncated
		}
		if tag != tagOrientation {
			continue
		}
		value := entry + entryValueSkip
		if _, ok := r.uint16(value); !ok {
			return 0, nil, truncated
		}
		return value, order, found
	}

	return 0, nil, notFound
}

// Transform is the canvas transform that displays an oriented image upright.
// Flips apply before the rotation. Rotate is in degrees, positive clockwise.
type Transform struct {
	Rotate int
	ScaleX int
	ScaleY int
}

// ParseOrientation maps an EXIF orientation value to its Transform. Values
// outside 2..8 are the identity.
func ParseOrientation(orientation int) Transform {
	t := Transform{ScaleX: 1, ScaleY: 1}

	switch orientation {
	case 2:
		t.ScaleX = -1
	case 3:
		t.Rotate = -180
	case 4:
		t.ScaleY = -1
	case 5:
		t.Rotate = 90
		t.ScaleY = -1
	case 6:
		t.Rotate = 90
	case 7:
		t.Rotate = 90
		t.ScaleX = -1
	case 8:
		t.Rotate = -90
	}

	return t
}
