package compressor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"shrink/pkg/geometry"
	"shrink/pkg/jpegseg"
)

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, nil
}

// orient applies the flips of t, then its rotation.
func orient(img image.Image, t jpegseg.Transform) image.Image {
	if t.ScaleX < 0 {
		img = imaging.FlipH(img)
	}
	if t.ScaleY < 0 {
		img = imaging.FlipV(img)
	}

	// imaging rotates counter-clockwise.
	switch t.Rotate {
	case 90:
		img = imaging.Rotate270(img)
	case -90:
		img = imaging.Rotate90(img)
	case 180, -180:
		img = imaging.Rotate180(img)
	}
	return img
}

// render draws img onto a fresh raster of the planned size. JPEG has no
// alpha, so its background is white instead of transparent black.
func render(img image.Image, plan geometry.Plan, opaque bool, opts Options) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, plan.Width, plan.Height))
	if opaque {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	}

	if opts.BeforeDraw != nil {
		opts.BeforeDraw(dst)
	}

	sr, dr := plan.Placement(img.Bounds())
	if !sr.Empty() && !dr.Empty() {
		draw.CatmullRom.Scale(dst, dr, img, sr, draw.Over, nil)
	}

	if opts.Drew != nil {
		opts.Drew(dst)
	}
	return dst
}

// encode writes img as mimeType. Types without an encoder fall back to PNG;
// the returned type is the one actually written.
func encode(img image.Image, mimeType string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	var err error

	switch mimeType {
	case "image/jpeg":
		if err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err == nil {
			return withJFIF(buf.Bytes()), mimeType, nil
		}
	case "image/gif":
		err = gif.Encode(&buf, img, nil)
	case "image/bmp":
		err = bmp.Encode(&buf, img)
	default:
		mimeType = "image/png"
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return buf.Bytes(), mimeType, nil
}

// jfifSegment is a JFIF 1.01 APP0 header with 1:1 pixel aspect and no
// thumbnail.
var jfifSegment = []byte{
	0xff, 0xe0, 0x00, 0x10,
	'J', 'F', 'I', 'F', 0x00,
	0x01, 0x01,
	0x00,
	0x00, 0x01, 0x00, 0x01,
	0x00, 0x00,
}

// withJFIF puts an APP0 header right after SOI when the encoder did not
// write one, giving the layout InsertExif expects.
func withJFIF(data []byte) []byte {
	if !jpegseg.IsJPEG(data) || (len(data) >= 4 && data[2] == 0xff && data[3] == 0xe0) {
		return data
	}
	out := make([]byte, 0, len(data)+len(jfifSegment))
	out = append(out, data[:2]...)
	out = append(out, jfifSegment...)
	out = append(out, data[2:]...)
	return out
}
