// Package cli implements the command line interface for offline scoring.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "civic-eye",
	Short: "Trust scoring for civic issue report photos",
	Long: `civic-eye scores the authenticity of civic issue report photos.

It runs the same forensic pipeline as the server: error level analysis,
EXIF inspection, edge and shadow coherence and capture quality, then
aggregates a trust score and a dispatch priority.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
