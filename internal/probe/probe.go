// Package probe checks whether raster readback in this process returns the
// pixels that were written. The compressor only resizes and re-encodes when
// it does; otherwise it falls back to byte-level EXIF stripping.
package probe

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

const size = 4

// Checker reports whether raster output can be trusted.
type Checker interface {
	Reliable() bool
}

// Prober runs its check once and caches the answer until Reset.
type Prober struct {
	mu     sync.Mutex
	done   bool
	result bool
	check  func() bool
}

// New returns a Prober using the raster round trip check. A non-nil check
// replaces it.
func New(check func() bool) *Prober {
	if check == nil {
		check = roundTrip
	}
	return &Prober{check: check}
}

// Reliable returns the cached result, running the check on first use.
func (p *Prober) Reliable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.done {
		p.result = safeCheck(p.check)
		p.done = true
	}
	return p.result
}

// Reset drops the cached result so the next Reliable call probes again.
func (p *Prober) Reset() {
	p.mu.Lock()
	p.done = false
	p.result = false
	p.mu.Unlock()
}

// Default is the process-wide prober used by the CLI.
var Default = New(nil)

// Reliable reports the Default prober's result.
func Reliable() bool { return Default.Reliable() }

// Reset clears the Default prober's cache.
func Reset() { Default.Reset() }

func safeCheck(check func() bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return check()
}

// pattern fills a 4x4 raster with R = byte index, G = 1, B = 2, A = 255.
func pattern() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = byte(i)
		img.Pix[i+1] = 1
		img.Pix[i+2] = 2
		img.Pix[i+3] = 255
	}
	return img
}

// roundTrip pushes the pattern through the same draw path the compressor
// uses and compares what comes back. The draw path is deterministic, so this
// only catches a broken raster implementation; it does not detect
// fingerprinting noise injected by a host.
func roundTrip() bool {
	src := pattern()
	dst := image.NewNRGBA(src.Bounds())
	draw.Copy(dst, image.Point{}, src, src.Bounds(), draw.Src, nil)
	return matches(dst.Pix)
}

func matches(pix []byte) bool {
	if len(pix) != size*size*4 {
		return false
	}
	for i, v := range pix {
		var want byte
		switch i % 4 {
		case 0:
			want = byte(i & 0xff)
		case 1:
			want = 1
		case 2:
			want = 2
		default:
			want = 255
		}
		if v != want {
			return false
		}
	}
	return true
}
