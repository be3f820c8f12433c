package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"shrink/internal/processor"
	"shrink/internal/tui"
)

var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "Report EXIF segments, orientation and privacy metadata without modifying files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, reports, err := runWithProgress(cmd.Context(), args[0], processor.Options{
			Mode:   processor.ModeScan,
			Logger: slog.Default(),
		})
		if err != nil && summary.Processed == 0 {
			return err
		}

		for i, report := range reports {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "%s\n", scanFileStyle.Render(report.Path))
			if len(report.Details) == 0 {
				fmt.Fprintf(os.Stdout, "  %s %s\n",
					scanBulletStyle.Render("-"),
					scanDimStyle.Render("none"),
				)
				continue
			}
			for _, detail := range report.Details {
				if len(detail.Values) == 0 {
					continue
				}
				fmt.Fprintf(os.Stdout, "  %s\n", scanCategoryStyle.Render(detail.Category+":"))
				for _, value := range detail.Values {
					fmt.Fprintf(os.Stdout, "    %s %s\n", scanBulletStyle.Render("-"), scanValueStyle.Render(value))
				}
			}
		}

		return err
	},
}

var (
	scanFileStyle     = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	scanCategoryStyle = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	scanValueStyle    = lipgloss.NewStyle().Foreground(tui.ColorInk)
	scanDimStyle      = lipgloss.NewStyle().Foreground(tui.ColorDim)
	scanBulletStyle   = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.AddCommand(scanCmd)
}
