package processor

import (
	"log/slog"

	"shrink/internal/compressor"
)

type Mode int

const (
	ModeScan Mode = iota
	ModeStrip
	ModeCompress
)

func (m Mode) String() string {
	switch m {
	case ModeScan:
		return "scan"
	case ModeStrip:
		return "strip"
	case ModeCompress:
		return "compress"
	default:
		return "unknown"
	}
}

type Options struct {
	Mode      Mode
	InPlace   bool
	OutputDir string
	Compress  compressor.Options

	Compressor *compressor.Compressor
	Logger     *slog.Logger

	claims *destinations
}

type Job struct {
	Path    string
	RelPath string
	Display string
}

type Result struct {
	Path       string
	RelPath    string
	Display    string
	OutputPath string
	Supported  bool
	Err        error
	Stripped   int
	BytesSaved int64
	Report     []ScanDetail
	// Passthrough is set when compression kept the source bytes.
	Passthrough bool
}

type Summary struct {
	Total       int
	Processed   int
	Errors      int
	Stripped    int
	Passthrough int
	BytesSaved  int64
}

type ScanReport struct {
	Path    string
	Details []ScanDetail
}

type ScanDetail struct {
	Category string
	Values   []string
}

// ProgressUpdate carries counter deltas for one event of a run. Current is
// the display path of a file a worker just picked up.
type ProgressUpdate struct {
	Current          string
	TotalDelta       int
	ProcessedDelta   int
	ErrorDelta       int
	StrippedDelta    int
	PassthroughDelta int
	BytesSavedDelta  int64
}
