package jpegseg

import (
	"bytes"
	"encoding/binary"
)

func makeSegment(marker byte, payload []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{markerPrefix, marker})
	_ = binary.Write(&b, binary.BigEndian, uint16(2+len(payload)))
	b.Write(payload)
	return b.Bytes()
}

// makeJPEG wraps segments between SOI and a short scan ending in EOI.
func makeJPEG(segments ...[]byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{markerPrefix, markerSOI})
	for _, segment := range segments {
		b.Write(segment)
	}
	b.Write([]byte{markerPrefix, markerSOS, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3f, 0x00})
	// Scan data containing bytes that look like an APP1 marker.
	b.Write([]byte{0x12, 0xff, 0x00, 0xff, 0xe1, 0x00, 0x0c})
	b.Write([]byte("Nope\x00\x00\x00\x00\x00\x00"))
	b.Write([]byte{markerPrefix, markerEOI})
	return b.Bytes()
}

func app0Segment() []byte {
	return makeSegment(markerAPP0, []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00"))
}

func dqtSegment() []byte {
	payload := make([]byte, 65)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	return makeSegment(0xdb, payload)
}

// buildTIFF returns a TIFF block whose IFD0 holds a Make entry followed by
// an Orientation entry.
func buildTIFF(order binary.ByteOrder, orientation uint16) []byte {
	var tiff bytes.Buffer
	if order == binary.LittleEndian {
		tiff.Write([]byte{0x49, 0x49})
	} else {
		tiff.Write([]byte{0x4d, 0x4d})
	}
	_ = binary.Write(&tiff, order, uint16(tiffMagic))
	_ = binary.Write(&tiff, order, uint32(8))
	_ = binary.Write(&tiff, order, uint16(2))

	_ = binary.Write(&tiff, order, uint16(0x010f))
	_ = binary.Write(&tiff, order, uint16(2))
	_ = binary.Write(&tiff, order, uint32(4))
	tiff.Write([]byte("Cam\x00"))

	_ = binary.Write(&tiff, order, uint16(tagOrientation))
	_ = binary.Write(&tiff, order, uint16(3))
	_ = binary.Write(&tiff, order, uint32(1))
	_ = binary.Write(&tiff, order, orientation)
	_ = binary.Write(&tiff, order, uint16(0))

	_ = binary.Write(&tiff, order, uint32(0))
	return tiff.Bytes()
}

func exifSegment(order binary.ByteOrder, orientation uint16) []byte {
	payload := append([]byte("Exif\x00\x00"), buildTIFF(order, orientation)...)
	return makeSegment(markerAPP1, payload)
}

func xmpSegment() []byte {
	return makeSegment(markerAPP1, []byte("http://ns.adobe.com/xap/1.0/\x00<x:xmpmeta/>"))
}
