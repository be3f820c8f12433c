package compressor

import (
	"math"
	"slices"

	"golang.org/x/image/draw"

	"shrink/pkg/geometry"
	"shrink/pkg/imgutil"
)

// MimeAuto keeps the input's type unless ConvertSize applies.
const MimeAuto = "auto"

type Options struct {
	// Strict returns the original when the result is larger and no size
	// option asked for a change.
	Strict bool
	// CheckOrientation applies the EXIF orientation to the pixels and
	// resets the tag, so the output is upright for every viewer.
	CheckOrientation bool
	// RetainExif copies the source APP1 segments into a JPEG result.
	RetainExif bool

	MaxWidth  float64
	MaxHeight float64
	MinWidth  float64
	MinHeight float64
	Width     float64
	Height    float64
	Resize    geometry.Mode

	// Quality is the JPEG quality between 0 and 1.
	Quality  float64
	MimeType string

	// Inputs of one of ConvertTypes above ConvertSize bytes are re-encoded
	// as JPEG unless MimeType names a type explicitly.
	ConvertTypes []string
	ConvertSize  int64

	// BeforeDraw runs on the filled destination before the image is drawn,
	// Drew runs after.
	BeforeDraw func(dst draw.Image)
	Drew       func(dst draw.Image)
}

func DefaultOptions() Options {
	return Options{
		Strict:           true,
		CheckOrientation: true,
		MaxWidth:         math.Inf(1),
		MaxHeight:        math.Inf(1),
		Resize:           geometry.None,
		Quality:          0.8,
		MimeType:         MimeAuto,
		ConvertTypes:     []string{"image/png"},
		ConvertSize:      5000000,
	}
}

func (o Options) constraints() geometry.Constraints {
	return geometry.Constraints{
		Width:     o.Width,
		Height:    o.Height,
		MinWidth:  o.MinWidth,
		MinHeight: o.MinHeight,
		MaxWidth:  o.MaxWidth,
		MaxHeight: o.MaxHeight,
		Resize:    o.Resize,
	}
}

// outputType picks the MIME type to encode with.
func (o Options) outputType(inputType string, inputSize int) string {
	if imgutil.IsImageType(o.MimeType) {
		return o.MimeType
	}
	if int64(inputSize) > o.ConvertSize && slices.Contains(o.ConvertTypes, inputType) {
		return "image/jpeg"
	}
	return inputType
}

// changesSize reports whether any size option forces dimensions that differ
// from the natural ones, in which case a larger result is expected.
func (o Options) changesSize(naturalWidth, naturalHeight int) bool {
	nw, nh := float64(naturalWidth), float64(naturalHeight)
	return o.Width > nw ||
		o.Height > nh ||
		o.MinWidth > nw ||
		o.MinHeight > nh ||
		o.MaxWidth < nw ||
		o.MaxHeight < nh
}

func (o Options) jpegQuality() int {
	q := o.Quality
	if math.IsNaN(q) || q < 0 || q > 1 {
		q = 0.92
	}
	v := int(math.Round(q * 100))
	if v < 1 {
		v = 1
	}
	return v
}
