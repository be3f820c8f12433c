package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"shrink/internal/compressor"
	"shrink/internal/processor"
	"shrink/pkg/geometry"
)

var (
	compressInPlace   bool
	compressOutputDir string
	compressResize    string
	compressNoStrict  bool
	compressNoOrient  bool
	compressOpts      = compressor.DefaultOptions()
)

var compressCmd = &cobra.Command{
	Use:   "compress [flags] <path>",
	Short: "Re-encode images at a constrained size and quality",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := geometry.ParseMode(compressResize)
		if err != nil {
			return err
		}

		outputDir, err := outputDirFor(compressInPlace, compressOutputDir, "shrunk")
		if err != nil {
			return err
		}

		opts := compressOpts
		opts.Resize = mode
		opts.Strict = !compressNoStrict
		opts.CheckOrientation = !compressNoOrient

		logger := slog.Default()
		summary, _, err := runWithProgress(cmd.Context(), args[0], processor.Options{
			Mode:       processor.ModeCompress,
			InPlace:    compressInPlace,
			OutputDir:  outputDir,
			Compress:   opts,
			Compressor: compressor.New(nil, logger),
			Logger:     logger,
		})
		printSummary(summary, compressInPlace, outputDir)
		return err
	},
}

func init() {
	flags := compressCmd.Flags()
	flags.BoolVarP(&compressInPlace, "inplace", "i", false, "replace files in place")
	flags.StringVarP(&compressOutputDir, "output", "o", "", "destination folder for compressed copies")

	flags.Float64Var(&compressOpts.MaxWidth, "max-width", compressOpts.MaxWidth, "maximum output width")
	flags.Float64Var(&compressOpts.MaxHeight, "max-height", compressOpts.MaxHeight, "maximum output height")
	flags.Float64Var(&compressOpts.MinWidth, "min-width", compressOpts.MinWidth, "minimum output width")
	flags.Float64Var(&compressOpts.MinHeight, "min-height", compressOpts.MinHeight, "minimum output height")
	flags.Float64Var(&compressOpts.Width, "width", compressOpts.Width, "output width, derived from the aspect ratio when unset")
	flags.Float64Var(&compressOpts.Height, "height", compressOpts.Height, "output height, derived from the aspect ratio when unset")
	flags.StringVar(&compressResize, "resize", geometry.None.String(), "how width and height apply: none, contain or cover")

	flags.Float64VarP(&compressOpts.Quality, "quality", "q", compressOpts.Quality, "JPEG quality between 0 and 1")
	flags.StringVar(&compressOpts.MimeType, "mime-type", compressOpts.MimeType, "output MIME type, or auto to keep the input type")
	flags.StringSliceVar(&compressOpts.ConvertTypes, "convert-types", compressOpts.ConvertTypes, "input types converted to JPEG above --convert-size")
	flags.Int64Var(&compressOpts.ConvertSize, "convert-size", compressOpts.ConvertSize, "size in bytes above which --convert-types become JPEG")

	flags.BoolVar(&compressOpts.RetainExif, "retain-exif", false, "keep the EXIF segments in JPEG output")
	flags.BoolVar(&compressNoStrict, "no-strict", false, "keep results even when larger than the original")
	flags.BoolVar(&compressNoOrient, "no-orientation", false, "do not apply the EXIF orientation")

	rootCmd.AddCommand(compressCmd)
}
