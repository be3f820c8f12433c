package jpegseg

// GetExif returns the raw bytes of every APP1 segment before the first SOS,
// marker and length included, concatenated in source order. The result is
// empty when there are none or buf is not a JPEG. A byte where a marker
// should be ends the scan.
func GetExif(buf []byte) []byte {
	out := []byte{}
	if !IsJPEG(buf) {
		return out
	}

	start := 2
	for start+3 < len(buf) {
		if buf[start] != markerPrefix {
			break
		}
		kind := buf[start+1]
		if kind == markerSOS {
			break
		}

		length, ok := segmentLength(buf, start)
		if !ok {
			break
		}
		if kind == markerAPP1 {
			out = append(out, buf[start:segmentEnd(buf, start, length)]...)
		}
		start = start + 2 + length
	}
	return out
}

// StripExif returns a copy of buf without its APP1 segments. Every other
// segment is kept byte for byte, and everything from SOS onwards is copied
// without being parsed.
//
// Input that is not a JPEG, or is shorter than four bytes, comes back as an
// unchanged copy. A byte where a marker should be ends the scan and the
// segments gathered so far are returned.
func StripExif(buf []byte) []byte {
	if len(buf) < 4 || !IsJPEG(buf) {
		return append([]byte(nil), buf...)
	}

	out := make([]byte, 0, len(buf))
	out = append(out, buf[:2]...)

	start := 2
	for start+3 < len(buf) {
		if buf[start] != markerPrefix {
			return out
		}
		kind := buf[start+1]

		if kind == markerSOS {
			return append(out, buf[start:]...)
		}

		length, ok := segmentLength(buf, start)
		if !ok {
			break
		}
		end := segmentEnd(buf, start, length)
		if kind != markerAPP1 {
			out = append(out, buf[start:end]...)
		}
		start = start + 2 + length
	}

	// A tail too short to hold a segment header, such as a bare EOI.
	if start < len(buf) {
		out = append(out, buf[start:]...)
	}
	return out
}

// InsertExif rebuilds buf as SOI, then exif, then everything after the APP0
// segment that must immediately follow SOI. This is the layout produced by
// re-encoding a raster, which always writes a JFIF header first. When buf
// does not have that layout it is returned unchanged.
func InsertExif(buf, exif []byte) []byte {
	if len(buf) < 6 || buf[2] != markerPrefix || buf[3] != markerAPP0 {
		return buf
	}

	app0Length, ok := segmentLength(buf, 2)
	rest := 4 + app0Length
	if !ok || rest > len(buf) {
		return buf
	}

	out := make([]byte, 0, 2+len(exif)+len(buf)-rest)
	out = append(out, markerPrefix, markerSOI)
	out = append(out, exif...)
	out = append(out, buf[rest:]...)
	return out
}
