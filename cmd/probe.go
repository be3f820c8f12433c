package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"shrink/internal/probe"
	"shrink/internal/tui"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check whether raster output can be trusted on this host",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if probe.Reliable() {
			fmt.Fprintln(os.Stdout, probeOKStyle.Render("raster output is reliable"))
			return
		}
		fmt.Fprintln(os.Stdout, probeWarnStyle.Render("raster output is unreliable; compress will pass files through"))
	},
}

var (
	probeOKStyle   = lipgloss.NewStyle().Foreground(tui.ColorSuccess)
	probeWarnStyle = lipgloss.NewStyle().Foreground(tui.ColorWarn)
)

func init() {
	rootCmd.AddCommand(probeCmd)
}
