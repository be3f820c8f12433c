// Package geometry resolves output raster dimensions and source crop windows
// from an aspect ratio and a set of possibly conflicting size constraints.
package geometry

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Mode selects how a width/height box is satisfied when both sides are set.
type Mode int

const (
	// None keeps the aspect ratio and fits inside the box, like Contain.
	None Mode = iota
	// Contain fits the whole rectangle inside the box.
	Contain
	// Cover fills the whole box, overflowing one side.
	Cover
)

func (m Mode) String() string {
	switch m {
	case Contain:
		return "contain"
	case Cover:
		return "cover"
	default:
		return "none"
	}
}

// ParseMode maps "none", "contain" and "cover" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "none":
		return None, nil
	case "contain":
		return Contain, nil
	case "cover":
		return Cover, nil
	default:
		return None, fmt.Errorf("unknown resize mode %q", s)
	}
}

// inverse swaps contain and cover.
func (m Mode) inverse() Mode {
	switch m {
	case Contain:
		return Cover
	case Cover:
		return Contain
	default:
		return m
	}
}

// Size is a width/height pair in pixels, not yet rounded.
type Size struct {
	Width  float64
	Height float64
}

// IsPositive reports whether v is usable as a dimension: 0 < v < +Inf.
// NaN is never positive.
func IsPositive(v float64) bool {
	return v > 0 && v < math.Inf(1)
}

// AdjustedSizes returns the rectangle with the given aspect ratio that
// satisfies width and height under mode.
//
// When both sides are valid, None and Contain return the largest rectangle
// that fits inside the box and Cover returns the smallest one that covers it.
// When only one side is valid the other is derived from it. When neither is
// valid both are returned unchanged so the caller can substitute defaults.
func AdjustedSizes(aspectRatio, width, height float64, mode Mode) Size {
	validWidth := IsPositive(width)
	validHeight := IsPositive(height)

	switch {
	case validWidth && validHeight:
		adjustedWidth := height * aspectRatio
		if ((mode == Contain || mode == None) && adjustedWidth > width) ||
			(mode == Cover && adjustedWidth < width) {
			height = width / aspectRatio
		} else {
			width = adjustedWidth
		}
	case validWidth:
		height = width / aspectRatio
	case validHeight:
		width = height * aspectRatio
	}

	return Size{Width: width, Height: height}
}

// decimalNoise matches a shortest decimal form whose fraction carries a run
// of twelve zeros or nines, the signature of binary float error.
var decimalNoise = regexp.MustCompile(`\.\d*(?:0|9){12}\d*$`)

const decimalTimes = 1e11

// NormalizeDecimal snaps values such as 0.30000000000000004 or
// 99.99999999999999 to the decimal they were meant to be, so flooring them
// does not lose a pixel.
func NormalizeDecimal(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if !decimalNoise.MatchString(strconv.FormatFloat(v, 'f', -1, 64)) {
		return v
	}
	return math.Floor(v*decimalTimes+0.5) / decimalTimes
}
