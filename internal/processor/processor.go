package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"shrink/internal/compressor"
	"shrink/pkg/imgutil"
	"shrink/pkg/jpegseg"
)

// ErrDestinationExists is returned when an output would replace a file that
// is not the one being processed.
var ErrDestinationExists = errors.New("destination already exists")

// destinations records which source owns each output path of a run.
type destinations struct {
	mu      sync.Mutex
	claimed map[string]string
}

func (d *destinations) claim(dest, src string) error {
	if d == nil {
		return nil
	}
	dest = filepath.Clean(dest)

	d.mu.Lock()
	defer d.mu.Unlock()
	if owner, ok := d.claimed[dest]; ok && owner != src {
		return fmt.Errorf("%w: %s is also written from %s", ErrDestinationExists, dest, owner)
	}
	d.claimed[dest] = src
	return nil
}

// Run walks root and handles every recognized image with the configured mode.
// Per-file failures are counted in the summary and returned together as a
// *multierror.Error; a failing walk is returned as is.
func Run(ctx context.Context, root string, opts Options, updates chan<- ProgressUpdate) (Summary, []ScanReport, error) {
	summary := Summary{}
	var reports []ScanReport
	var fileErrs *multierror.Error

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.claims = &destinations{claimed: map[string]string{}}
	if opts.Mode == ModeCompress && opts.Compressor == nil {
		opts.Compressor = compressor.New(nil, opts.Logger)
	}

	info, err := os.Stat(root)
	if err != nil {
		return summary, nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return summary, nil, err
	}

	var outputAbs string
	var outputInsideRoot bool
	if opts.Mode != ModeScan && !opts.InPlace && opts.OutputDir != "" {
		if absOut, outErr := filepath.Abs(opts.OutputDir); outErr == nil {
			outputAbs = absOut
			absRootClean := filepath.Clean(absRoot)
			outputClean := filepath.Clean(outputAbs)
			if outputClean != absRootClean && isWithin(outputClean, absRootClean) {
				outputInsideRoot = true
			}
		}
	}

	jobs := make(chan Job)
	results := make(chan Result)

	workers := runtime.NumCPU()
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(ctx, jobs, results, opts, updates)
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			var update ProgressUpdate
			if res.Supported {
				summary.Total++
				summary.Processed++
				update.ProcessedDelta = 1
			}
			if res.Err != nil {
				summary.Errors++
				update.ErrorDelta = 1
				fileErrs = multierror.Append(fileErrs, fmt.Errorf("%s: %w", res.Display, res.Err))
			}
			if res.Stripped > 0 {
				summary.Stripped += res.Stripped
				update.StrippedDelta = res.Stripped
			}
			if res.Passthrough {
				summary.Passthrough++
				update.PassthroughDelta = 1
			}
			if res.BytesSaved != 0 {
				summary.BytesSaved += res.BytesSaved
				update.BytesSavedDelta = res.BytesSaved
			}
			if opts.Mode == ModeScan && res.Supported && res.Err == nil {
				reports = append(reports, ScanReport{Path: res.Display, Details: res.Report})
			}
			if updates != nil && update != (ProgressUpdate{}) {
				updates <- update
			}
		}
	}()

	producerErr := make(chan error, 1)
	go func() {
		defer close(jobs)

		sendJob := func(job Job) error {
			select {
			case jobs <- job:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if !info.IsDir() {
			job := Job{
				Path:    absRoot,
				RelPath: filepath.Base(absRoot),
				Display: filepath.Base(absRoot),
			}
			producerErr <- sendJob(job)
			return
		}

		fsys := os.DirFS(absRoot)
		err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if outputInsideRoot {
					fullDir := filepath.Join(absRoot, path)
					if isWithin(fullDir, outputAbs) {
						return fs.SkipDir
					}
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			return sendJob(Job{
				Path:    filepath.Join(absRoot, path),
				RelPath: path,
				Display: path,
			})
		})
		producerErr <- err
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	if err := <-producerErr; err != nil {
		return summary, reports, err
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return summary, reports, err
	}

	return summary, reports, fileErrs.ErrorOrNil()
}

func worker(ctx context.Context, jobs <-chan Job, results chan<- Result, opts Options, updates chan<- ProgressUpdate) {
	for job := range jobs {
		if err := ctx.Err(); err != nil {
			return
		}

		res := Result{Path: job.Path, RelPath: job.RelPath, Display: job.Display}

		kind, err := imgutil.SniffFile(job.Path)
		if err != nil {
			if errors.Is(err, imgutil.ErrShortHeader) {
				continue
			}
			res.Err = err
			results <- res
			continue
		}
		if kind == imgutil.KindUnknown {
			continue
		}

		res.Supported = true
		if updates != nil {
			updates <- ProgressUpdate{TotalDelta: 1, Current: job.Display}
		}

		data, err := os.ReadFile(job.Path)
		if err != nil {
			res.Err = err
			results <- res
			continue
		}

		switch opts.Mode {
		case ModeScan:
			res.Report, res.Err = scanData(data, kind)
		case ModeStrip:
			res.Err = stripFile(data, job, kind, opts, &res)
		case ModeCompress:
			res.Err = compressFile(ctx, data, job, kind, opts, &res)
		default:
			res.Err = fmt.Errorf("unknown mode %d", opts.Mode)
		}

		if res.Err == nil {
			opts.Logger.Debug("processed", "mode", opts.Mode, "path", job.Display,
				"output", res.OutputPath, "saved", res.BytesSaved)
		}
		results <- res
	}
}

// stripFile drops the APP1 segments of a JPEG. Other formats are copied
// through unchanged unless the run is in place.
func stripFile(data []byte, job Job, kind imgutil.Kind, opts Options, res *Result) error {
	out := data
	if kind == imgutil.KindJPEG {
		if len(jpegseg.GetExif(data)) > 0 {
			res.Stripped = 1
		}
		out = jpegseg.StripExif(data)
	} else if opts.InPlace {
		return nil
	}

	destPath, err := writeOutput(job, job.RelPath, out, opts)
	if err != nil {
		return err
	}
	res.OutputPath = destPath
	res.BytesSaved = int64(len(data) - len(out))
	return nil
}

func compressFile(ctx context.Context, data []byte, job Job, kind imgutil.Kind, opts Options, res *Result) error {
	out, err := opts.Compressor.Compress(ctx, compressor.Input{
		Name:     filepath.Base(job.RelPath),
		MimeType: kind.MimeType(),
		Data:     data,
	}, opts.Compress)
	if err != nil {
		return err
	}

	if kind == imgutil.KindJPEG && !opts.Compress.RetainExif && len(jpegseg.GetExif(data)) > 0 {
		res.Stripped = 1
	}

	relPath := filepath.Join(filepath.Dir(job.RelPath), out.Name)
	destPath, err := writeOutput(job, relPath, out.Data, opts)
	if err != nil {
		return err
	}
	if opts.InPlace && filepath.Clean(destPath) != filepath.Clean(job.Path) {
		if err := os.Remove(job.Path); err != nil {
			return err
		}
	}

	res.OutputPath = destPath
	res.Passthrough = out.Passthrough
	res.BytesSaved = int64(len(data) - len(out.Data))
	return nil
}

// writeOutput stores data at the destination for relPath through a temp file
// in the destination directory, keeping the source file mode. In place, a
// destination other than the source itself must not exist yet.
func writeOutput(job Job, relPath string, data []byte, opts Options) (string, error) {
	srcInfo, err := os.Stat(job.Path)
	if err != nil {
		return "", err
	}

	destPath, destDir, err := resolveDestination(job, relPath, opts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	release := func() {}
	if opts.InPlace && filepath.Clean(destPath) != filepath.Clean(job.Path) {
		if release, err = reserve(destPath, srcInfo.Mode()); err != nil {
			return "", err
		}
	}
	if err := opts.claims.claim(destPath, job.Path); err != nil {
		release()
		return "", err
	}

	if err := commitOutput(destPath, destDir, data, srcInfo.Mode()); err != nil {
		release()
		return "", err
	}
	return destPath, nil
}

// reserve creates destPath exclusively so no other writer can take it. The
// returned func removes the reservation.
func reserve(destPath string, mode fs.FileMode) (func(), error) {
	f, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrDestinationExists, destPath)
		}
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(destPath)
		return nil, err
	}
	return func() { _ = os.Remove(destPath) }, nil
}

func commitOutput(destPath, destDir string, data []byte, mode fs.FileMode) error {
	tmpFile, err := os.CreateTemp(destDir, "shrink-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return replaceFile(tmpFile.Name(), destPath)
}

func resolveDestination(job Job, relPath string, opts Options) (string, string, error) {
	if opts.InPlace {
		destDir := filepath.Dir(job.Path)
		return filepath.Join(destDir, filepath.Base(relPath)), destDir, nil
	}
	if opts.OutputDir == "" {
		return "", "", fmt.Errorf("output directory required when not using --inplace")
	}

	destPath := filepath.Join(opts.OutputDir, relPath)
	if filepath.Clean(destPath) == filepath.Clean(job.Path) {
		return "", "", fmt.Errorf("output path resolves to input path; use --inplace or a different --output")
	}

	return destPath, filepath.Dir(destPath), nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if strings.HasPrefix(rel, "..") {
		return false
	}
	return true
}
