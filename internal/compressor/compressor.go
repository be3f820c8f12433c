// Package compressor turns an image blob into a smaller or reformatted one:
// read, decode, draw at the resolved size, encode, then finalize the EXIF
// segments of JPEG output.
package compressor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"shrink/internal/probe"
	"shrink/pkg/geometry"
	"shrink/pkg/imgutil"
	"shrink/pkg/jpegseg"
)

var (
	ErrEmptyInput = errors.New("image data is empty")
	ErrNotImage   = errors.New("input is not an image")
	ErrDecode     = errors.New("failed to load the image")
	ErrEncode     = errors.New("failed to encode the image")
	ErrAborted    = errors.New("the compression process has been aborted")
)

const mimeJPEG = "image/jpeg"

// Input is an image blob and the MIME type it was declared with.
type Input struct {
	Name     string
	MimeType string
	Data     []byte
}

type Result struct {
	Name     string
	MimeType string
	Data     []byte

	Width         int
	Height        int
	NaturalWidth  int
	NaturalHeight int
	// Orientation is the source EXIF orientation, 0 when absent or unchecked.
	Orientation int
	// Passthrough is set when Data is the source, possibly with its EXIF
	// stripped, rather than a re-encoded raster.
	Passthrough bool
}

type Compressor struct {
	checker probe.Checker
	logger  *slog.Logger
}

// New returns a Compressor. A nil checker uses probe.Default; a nil logger
// uses slog.Default().
func New(checker probe.Checker, logger *slog.Logger) *Compressor {
	if checker == nil {
		checker = probe.Default
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Compressor{checker: checker, logger: logger}
}

// Compress runs the whole pipeline for one image. The input data is never
// modified. Cancelling ctx aborts between pipeline steps.
func (c *Compressor) Compress(ctx context.Context, in Input, opts Options) (Result, error) {
	if len(in.Data) == 0 {
		return Result{}, ErrEmptyInput
	}
	if !imgutil.IsImageType(in.MimeType) {
		return Result{}, fmt.Errorf("%w: %q", ErrNotImage, in.MimeType)
	}
	isJPEG := in.MimeType == mimeJPEG

	if !c.checker.Reliable() {
		c.logger.Warn("raster output is unreliable, compression, resizing and format conversion are unavailable",
			"name", in.Name)
		return c.passthrough(in, opts), nil
	}

	data := in.Data
	orientation := 0
	var exif []byte
	if isJPEG && (opts.CheckOrientation || opts.RetainExif) {
		data = bytes.Clone(in.Data)
		if opts.CheckOrientation {
			orientation, _ = jpegseg.ResetOrientation(data)
		}
		if opts.RetainExif {
			exif = jpegseg.GetExif(data)
		}
	}

	if err := aborted(ctx); err != nil {
		return Result{}, err
	}

	img, err := decode(data)
	if err != nil {
		return Result{}, err
	}
	if orientation > 1 {
		img = orient(img, jpegseg.ParseOrientation(orientation))
	}

	naturalWidth, naturalHeight := img.Bounds().Dx(), img.Bounds().Dy()
	plan, err := geometry.Resolve(naturalWidth, naturalHeight, opts.constraints())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	res := Result{
		Name:          in.Name,
		NaturalWidth:  naturalWidth,
		NaturalHeight: naturalHeight,
		Orientation:   orientation,
	}

	if plan.Width == 0 || plan.Height == 0 {
		c.logger.Warn("resolved size is empty, returning the original image",
			"name", in.Name, "width", plan.Width, "height", plan.Height)
		res.MimeType = in.MimeType
		res.Data = in.Data
		res.Width, res.Height = naturalWidth, naturalHeight
		res.Passthrough = true
		return res, nil
	}

	outType := opts.outputType(in.MimeType, len(in.Data))
	canvas := render(img, plan, outType == mimeJPEG, opts)

	if err := aborted(ctx); err != nil {
		return Result{}, err
	}

	out, outType, err := encode(canvas, outType, opts.jpegQuality())
	if err != nil {
		return Result{}, err
	}

	if outType == mimeJPEG {
		if opts.RetainExif && len(exif) > 0 {
			out = jpegseg.InsertExif(out, exif)
		} else if !opts.RetainExif {
			out = jpegseg.StripExif(out)
		}
	}

	if err := aborted(ctx); err != nil {
		return Result{}, err
	}

	if opts.Strict && !opts.RetainExif && len(out) > len(in.Data) &&
		outType == in.MimeType && !opts.changesSize(naturalWidth, naturalHeight) {
		c.logger.Debug("result is larger than the original, keeping the original",
			"name", in.Name, "result", len(out), "original", len(in.Data))
		res.MimeType = in.MimeType
		res.Data = in.Data
		if isJPEG {
			res.Data = jpegseg.StripExif(in.Data)
		}
		res.Width, res.Height = naturalWidth, naturalHeight
		res.Passthrough = true
		return res, nil
	}

	res.MimeType = outType
	res.Data = out
	res.Width, res.Height = plan.Width, plan.Height
	if outType != in.MimeType {
		res.Name = imgutil.ReplaceExtension(in.Name, outType)
	}
	return res, nil
}

// passthrough is the result when rasters cannot be trusted: JPEG input has
// its EXIF stripped at the byte level, anything else is returned as is.
func (c *Compressor) passthrough(in Input, opts Options) Result {
	res := Result{
		Name:        in.Name,
		MimeType:    in.MimeType,
		Data:        in.Data,
		Passthrough: true,
	}
	if in.MimeType == mimeJPEG && !opts.RetainExif {
		res.Data = jpegseg.StripExif(in.Data)
	}
	if o, ok := jpegseg.Orientation(in.Data); ok {
		res.Orientation = o
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(in.Data)); err == nil {
		res.NaturalWidth, res.NaturalHeight = cfg.Width, cfg.Height
		res.Width, res.Height = cfg.Width, cfg.Height
	}
	return res
}

func aborted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return nil
}
