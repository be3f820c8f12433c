package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"shrink/internal/processor"
)

var (
	stripInPlace   bool
	stripOutputDir string
)

var stripCmd = &cobra.Command{
	Use:   "strip [flags] <path>",
	Short: "Remove EXIF segments from JPEG files without re-encoding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, err := outputDirFor(stripInPlace, stripOutputDir, "stripped")
		if err != nil {
			return err
		}

		summary, _, err := runWithProgress(cmd.Context(), args[0], processor.Options{
			Mode:      processor.ModeStrip,
			InPlace:   stripInPlace,
			OutputDir: outputDir,
			Logger:    slog.Default(),
		})
		printSummary(summary, stripInPlace, outputDir)
		return err
	},
}

func init() {
	stripCmd.Flags().BoolVarP(&stripInPlace, "inplace", "i", false, "modify files in place")
	stripCmd.Flags().StringVarP(&stripOutputDir, "output", "o", "", "destination folder for stripped copies")

	rootCmd.AddCommand(stripCmd)
}
