package geometry

import (
	"errors"
	"image"
	"math"
)

// ErrEmptyImage is returned when the natural image has a zero dimension and
// no aspect ratio can be derived from it.
var ErrEmptyImage = errors.New("image has no width or height")

// Constraints are the caller's size options. Zero, negative, NaN and infinite
// values mean "unset" for every field.
type Constraints struct {
	Width     float64
	Height    float64
	MinWidth  float64
	MinHeight float64
	MaxWidth  float64
	MaxHeight float64
	Resize    Mode
}

// Rect is a source window in natural image coordinates. It may extend past
// the image bounds when the image is padded rather than cropped.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Plan is the resolved output geometry.
type Plan struct {
	Width  int
	Height int
	// Crop is set only for contain and cover with both target sides given.
	Crop *Rect
}

// Resolve computes the output raster size for an image of the given natural
// dimensions. Min bounds are applied before max bounds, so max wins when
// the two conflict.
func Resolve(naturalWidth, naturalHeight int, c Constraints) (Plan, error) {
	if naturalWidth <= 0 || naturalHeight <= 0 {
		return Plan{}, ErrEmptyImage
	}

	nw, nh := float64(naturalWidth), float64(naturalHeight)
	resizable := (c.Resize == Contain || c.Resize == Cover) &&
		IsPositive(c.Width) && IsPositive(c.Height)

	aspectRatio := nw / nh
	if resizable {
		aspectRatio = c.Width / c.Height
	}

	maxSize := AdjustedSizes(aspectRatio, orDefault(c.MaxWidth, math.Inf(1)), orDefault(c.MaxHeight, math.Inf(1)), Contain)
	minSize := AdjustedSizes(aspectRatio, orDefault(c.MinWidth, 0), orDefault(c.MinHeight, 0), Cover)

	var target Size
	if resizable {
		target = AdjustedSizes(aspectRatio, c.Width, c.Height, c.Resize)
	} else {
		target = AdjustedSizes(aspectRatio, c.Width, c.Height, None)
		if !IsPositive(target.Width) {
			target.Width = nw
		}
		if !IsPositive(target.Height) {
			target.Height = nh
		}
	}

	plan := Plan{
		Width:  finalize(target.Width, minSize.Width, maxSize.Width),
		Height: finalize(target.Height, minSize.Height, maxSize.Height),
	}

	if resizable {
		src := AdjustedSizes(aspectRatio, nw, nh, c.Resize.inverse())
		plan.Crop = &Rect{
			X:      (nw - src.Width) / 2,
			Y:      (nh - src.Height) / 2,
			Width:  src.Width,
			Height: src.Height,
		}
	}

	return plan, nil
}

// Placement returns the part of the natural image to read and the part of
// the output to write it to. Without a crop the whole image fills the output.
// A crop window reaching past bounds is clipped, and the destination shrinks
// by the same proportion, leaving the uncovered border as padding.
func (p Plan) Placement(bounds image.Rectangle) (src, dst image.Rectangle) {
	dst = image.Rect(0, 0, p.Width, p.Height)
	if p.Crop == nil || p.Crop.Width <= 0 || p.Crop.Height <= 0 {
		return bounds, dst
	}

	c := p.Crop
	x0 := math.Max(c.X, 0)
	y0 := math.Max(c.Y, 0)
	x1 := math.Min(c.X+c.Width, float64(bounds.Dx()))
	y1 := math.Min(c.Y+c.Height, float64(bounds.Dy()))
	if x1 <= x0 || y1 <= y0 {
		return image.Rectangle{}, image.Rectangle{}
	}

	sx := float64(p.Width) / c.Width
	sy := float64(p.Height) / c.Height

	src = image.Rect(
		bounds.Min.X+int(math.Round(x0)),
		bounds.Min.Y+int(math.Round(y0)),
		bounds.Min.X+int(math.Round(x1)),
		bounds.Min.Y+int(math.Round(y1)),
	)
	dst = image.Rect(
		int(math.Round((x0-c.X)*sx)),
		int(math.Round((y0-c.Y)*sy)),
		int(math.Round((x1-c.X)*sx)),
		int(math.Round((y1-c.Y)*sy)),
	)
	return src, dst
}

func orDefault(v, def float64) float64 {
	if IsPositive(v) {
		return v
	}
	return def
}

func finalize(v, lo, hi float64) int {
	v = math.Min(math.Max(v, lo), hi)
	v = math.Floor(NormalizeDecimal(v))
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
