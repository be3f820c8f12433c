package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"shrink/internal/processor"
	"shrink/internal/tui"
)

// runWithProgress runs the processor while a progress view follows its
// updates on stdout.
func runWithProgress(ctx context.Context, path string, opts processor.Options) (processor.Summary, []processor.ScanReport, error) {
	updates := make(chan processor.ProgressUpdate, 64)
	model := tui.NewModel(opts.Mode, updates)
	program := tea.NewProgram(model)

	uiDone := make(chan struct{})
	go func() {
		_, _ = program.Run()
		close(uiDone)
	}()

	summary, reports, err := processor.Run(ctx, path, opts, updates)

	close(updates)
	<-uiDone
	return summary, reports, err
}

// outputDirFor checks the --inplace/--output pair and creates the output
// directory, falling back to fallback when neither is set.
func outputDirFor(inPlace bool, outputDir, fallback string) (string, error) {
	if inPlace && outputDir != "" {
		return "", fmt.Errorf("--inplace cannot be used with --output")
	}
	if inPlace {
		return "", nil
	}
	if outputDir == "" {
		outputDir = fallback
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	return outputDir, nil
}

func printSummary(summary processor.Summary, inPlace bool, outputDir string) {
	rows := []tui.SummaryRow{
		{Label: "Total files processed", Value: fmt.Sprintf("%d", summary.Processed)},
		{Label: "Files with EXIF stripped", Value: fmt.Sprintf("%d", summary.Stripped)},
		{Label: "Originals kept", Value: fmt.Sprintf("%d", summary.Passthrough)},
		{Label: "Space saved", Value: tui.FormatBytes(summary.BytesSaved)},
		{Label: "Errors", Value: fmt.Sprintf("%d", summary.Errors)},
	}
	fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))
	if inPlace {
		fmt.Fprintln(os.Stdout, "In-place run complete.")
		return
	}

	outPath := outputDir
	if abs, absErr := filepath.Abs(outputDir); absErr == nil {
		outPath = abs
	}
	fmt.Fprintf(os.Stdout, "Files written to: %s\n", outPath)
	fmt.Fprintln(os.Stdout, "Note: originals are unchanged unless --inplace is used.")
}
