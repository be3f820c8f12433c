// Package jpegseg reads and rewrites the segment structure of JPEG buffers.
//
// Every operation streams through the buffer once and tolerates malformed
// input: a scan that meets an unexpected byte or a truncated length stops and
// returns what it has, it never panics or returns an error. Apart from
// ResetOrientation, which patches two bytes in place, the input buffer is
// never modified.
package jpegseg

import "encoding/binary"

const (
	markerPrefix = 0xff

	markerSOI  = 0xd8
	markerEOI  = 0xd9
	markerSOS  = 0xda
	markerAPP0 = 0xe0
	markerAPP1 = 0xe1
)

// IsJPEG reports whether buf starts with the SOI marker.
func IsJPEG(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == markerPrefix && buf[1] == markerSOI
}

// segmentLength reads the big-endian length field that follows the marker at
// start. The length counts itself but not the marker.
func segmentLength(buf []byte, start int) (int, bool) {
	if start < 0 || start+4 > len(buf) {
		return 0, false
	}
	return int(binary.BigEndian.Uint16(buf[start+2:])), true
}

// segmentEnd returns the offset just past the segment at start, clamped to
// the buffer.
func segmentEnd(buf []byte, start, length int) int {
	end := start + 2 + length
	if end > len(buf) {
		return len(buf)
	}
	return end
}
