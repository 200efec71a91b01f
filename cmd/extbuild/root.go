// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for extbuild.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"extbuild/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	verbose    bool
	configPath string
	projectDir string
}

// NewRootCommand builds the extbuild command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "extbuild",
		Short: "Incrementally package editor extension bundles",
		Long: TitleStyle.Render("extbuild") + SubtitleStyle.Render(" - incremental packaging for editor extensions") + `

extbuild decides whether an extension bundle (.vsix) is older than the
files it is made from, and when it is, installs the packaging tool and the
project's dependencies and packages a fresh bundle.

` + SubtitleStyle.Render("Examples:") + `
  extbuild status           Show whether the bundle is stale and why
  extbuild build            Package the extension if it is stale
  extbuild build --force    Package unconditionally
  extbuild clean            Remove bundles and generated directories
  extbuild watch            Rebuild whenever inputs change`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is ./extbuild.cue, then the user config dir)")
	rootCmd.PersistentFlags().StringVarP(&flags.projectDir, "project", "C", "", "project directory (default is the working directory)")

	rootCmd.AddCommand(
		newBuildCommand(app, flags),
		newStatusCommand(app, flags),
		newOutputsCommand(app, flags),
		newCleanCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})

	err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err == nil {
		return
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(app.stderr, svcErr, app.colorScheme)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	os.Exit(1)
}

// newLogger returns a slog.Logger backed by a prefixed charmbracelet/log
// handler writing to w.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix: AppPrefix,
		Level:  level,
	})
	return slog.New(handler)
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their own formatting; verbose mode shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
