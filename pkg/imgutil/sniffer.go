package imgutil

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// Kind identifies a supported image type.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindGIF
	KindWebP
	KindBMP
	KindTIFF
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindGIF:
		return "gif"
	case KindWebP:
		return "webp"
	case KindBMP:
		return "bmp"
	case KindTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// MimeType returns the image/* type for k, or "" for KindUnknown.
func (k Kind) MimeType() string {
	if k == KindUnknown {
		return ""
	}
	return "image/" + k.String()
}

// KindFromMime is the inverse of Kind.MimeType.
func KindFromMime(mimeType string) Kind {
	switch mimeType {
	case "image/jpeg":
		return KindJPEG
	case "image/png":
		return KindPNG
	case "image/gif":
		return KindGIF
	case "image/webp":
		return KindWebP
	case "image/bmp":
		return KindBMP
	case "image/tiff":
		return KindTIFF
	default:
		return KindUnknown
	}
}

const headerSize = 12

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	gifSig    = []byte("GIF8")
	riffSig   = []byte("RIFF")
	webpSig   = []byte("WEBP")
	bmpSig    = []byte("BM")
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
)

// ErrShortHeader is returned when fewer bytes than a signature needs are
// available.
var ErrShortHeader = errors.New("header too short")

// DetectHeader inspects the first bytes of a file for known signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < 4 {
		return KindUnknown, ErrShortHeader
	}

	switch {
	case bytes.HasPrefix(header, jpegSig):
		return KindJPEG, nil
	case bytes.HasPrefix(header, pngSig):
		return KindPNG, nil
	case bytes.HasPrefix(header, gifSig):
		return KindGIF, nil
	case bytes.HasPrefix(header, riffSig) && len(header) >= headerSize && bytes.Equal(header[8:12], webpSig):
		return KindWebP, nil
	case bytes.HasPrefix(header, tiffSigLE) || bytes.HasPrefix(header, tiffSigBE):
		return KindTIFF, nil
	case bytes.HasPrefix(header, bmpSig):
		return KindBMP, nil
	}

	return KindUnknown, nil
}

// SniffFile reads the head of a file to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads up to 12 bytes from r and determines its type.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, headerSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnknown, err
	}

	return DetectHeader(header[:n])
}
