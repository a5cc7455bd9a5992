// Package cli provides the command-line interface for pipette.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/version"
)

// EnvLogLevel overrides the log level picked from --verbose/--quiet.
const EnvLogLevel = "PIPETTE_LOG_LEVEL"

// NewRootCmd builds the pipette command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pipette",
		Short: "Sample colours from a page and build harmony palettes",
		Long: `Pipette samples a colour from a page snapshot and derives six harmony
palettes from it: complementary, split complementary, analogous, triadic,
monochromatic and tetradic.

Picking runs the same protocol an eyedropper extension does: the popup
captures the tab, hands the snapshot to the page script (injecting it if
needed), and the background keeps the picked colour for the next popup.`,
		Version:      version.Version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPaletteCmd())
	rootCmd.AddCommand(newPickCmd())
	rootCmd.AddCommand(newPageContextCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// newLogger builds the root logger from the global flags and PIPETTE_LOG_LEVEL.
func newLogger(cmd *cobra.Command) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "pipette",
		Output: cmd.ErrOrStderr(),
		Level:  logLevel(cmd),
	})
}

func logLevel(cmd *cobra.Command) hclog.Level {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		if lvl := hclog.LevelFromString(v); lvl != hclog.NoLevel {
			return lvl
		}
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	switch {
	case verbose:
		return hclog.Debug
	case quiet:
		return hclog.Error
	default:
		return hclog.Warn
	}
}

// usePreview decides whether to draw ANSI swatches on w.
func usePreview(cmd *cobra.Command, w io.Writer) bool {
	if cmd.Flags().Changed("preview") {
		preview, _ := cmd.Flags().GetBool("preview")
		return preview
	}
	return colour.SupportsANSIColours(w)
}
