package jpegseg

import (
	"bytes"
	"encoding/binary"
	"testing"

	exif "github.com/dsoprea/go-exif/v3"
)

func TestResetOrientation(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			buf := makeJPEG(app0Segment(), exifSegment(order, 6), dqtSegment())

			got, ok := ResetOrientation(buf)
			if !ok || got != 6 {
				t.Fatalf("first reset = %d, %v; want 6, true", got, ok)
			}

			if got, ok := Orientation(buf); !ok || got != 1 {
				t.Fatalf("stored orientation = %d, %v; want 1, true", got, ok)
			}

			got, ok = ResetOrientation(buf)
			if !ok || got != 1 {
				t.Fatalf("second reset = %d, %v; want 1, true", got, ok)
			}
		})
	}
}

func TestResetOrientationOnlyTouchesValue(t *testing.T) {
	buf := makeJPEG(app0Segment(), exifSegment(binary.BigEndian, 8), dqtSegment())
	want := makeJPEG(app0Segment(), exifSegment(binary.BigEndian, 1), dqtSegment())

	if _, ok := ResetOrientation(buf); !ok {
		t.Fatal("expected orientation tag")
	}
	if !bytes.Equal(buf, want) {
		t.Fatal("reset changed bytes other than the orientation value")
	}
}

func TestOrientationReadOnly(t *testing.T) {
	buf := makeJPEG(app0Segment(), exifSegment(binary.LittleEndian, 5), dqtSegment())
	before := bytes.Clone(buf)

	if got, ok := Orientation(buf); !ok || got != 5 {
		t.Fatalf("Orientation = %d, %v; want 5, true", got, ok)
	}
	if !bytes.Equal(buf, before) {
		t.Fatal("Orientation modified the buffer")
	}
	cut := makeJPEG(exifSegment(binary.LittleEndian, 3))[:2+4+6+8+2]
	if got, ok := Orientation(cut); !ok || got != 1 {
		t.Fatalf("Orientation on truncated EXIF = %d, %v; want 1, true", got, ok)
	}
	if got, ok := Orientation([]byte("GIF89a")); ok || got != 0 {
		t.Fatalf("Orientation on non-JPEG = %d, %v; want 0, false", got, ok)
	}
}

func TestResetOrientationAbsent(t *testing.T) {
	badEndian := exifSegment(binary.LittleEndian, 6)
	badEndian[2+2+6] = 0x12

	badMagic := exifSegment(binary.BigEndian, 6)
	badMagic[2+2+6+3] = 0x2b

	lowOffset := exifSegment(binary.BigEndian, 6)
	lowOffset[2+2+6+7] = 0x04

	cases := map[string][]byte{
		"empty":          nil,
		"not jpeg":       []byte{0x89, 0x50, 0x4e, 0x47, 0xff, 0xe1},
		"no app1":        makeJPEG(app0Segment(), dqtSegment()),
		"xmp first":      makeJPEG(xmpSegment(), exifSegment(binary.BigEndian, 6)),
		"bad byte order": makeJPEG(badEndian),
		"bad magic":      makeJPEG(badMagic),
		"ifd offset < 8": makeJPEG(lowOffset),
		"no tag":         makeJPEG(makeSegment(markerAPP1, append([]byte("Exif\x00\x00"), 0x4d, 0x4d, 0x00, 0x2a, 0, 0, 0, 8, 0, 0))),
	}

	for name, buf := range cases {
		t.Run(name, func(t *testing.T) {
			before := append([]byte(nil), buf...)
			if got, ok := ResetOrientation(buf); ok {
				t.Fatalf("ResetOrientation = %d, true; want absent", got)
			}
			if !bytes.Equal(before, buf) {
				t.Fatal("buffer modified")
			}
		})
	}
}

func TestResetOrientationTruncated(t *testing.T) {
	full := makeJPEG(exifSegment(binary.LittleEndian, 3))
	// SOI, APP1 header, Exif id, TIFF header and the IFD count only.
	cut := full[:2+4+6+8+2]

	got, ok := ResetOrientation(cut)
	if !ok || got != 1 {
		t.Fatalf("truncated EXIF = %d, %v; want 1, true", got, ok)
	}

	cut = full[:2+4+2]
	got, ok = ResetOrientation(cut)
	if !ok || got != 1 {
		t.Fatalf("truncated Exif id = %d, %v; want 1, true", got, ok)
	}
}

func TestResetOrientationReadableByExifParser(t *testing.T) {
	buf := makeJPEG(app0Segment(), exifSegment(binary.LittleEndian, 6))
	if _, ok := ResetOrientation(buf); !ok {
		t.Fatal("expected orientation tag")
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(bytes.NewReader(buf), nil, true)
	if err != nil {
		t.Fatalf("parse exif: %v", err)
	}
	for _, tag := range tags {
		if tag.TagId != tagOrientation {
			continue
		}
		values, ok := tag.Value.([]uint16)
		if !ok || len(values) != 1 || values[0] != 1 {
			t.Fatalf("orientation value = %#v, want [1]", tag.Value)
		}
		return
	}
	t.Fatal("orientation tag not found by exif parser")
}

func TestParseOrientation(t *testing.T) {
	cases := map[int]Transform{
		0: {0, 1, 1},
		1: {0, 1, 1},
		2: {0, -1, 1},
		3: {-180, 1, 1},
		4: {0, 1, -1},
		5: {90, 1, -1},
		6: {90, 1, 1},
		7: {90, -1, 1},
		8: {-90, 1, 1},
		9: {0, 1, 1},
	}
	for in, want := range cases {
		if got := ParseOrientation(in); got != want {
			t.Errorf("ParseOrientation(%d) = %+v, want %+v", in, got, want)
		}
	}
}
