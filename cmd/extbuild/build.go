// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"extbuild/internal/artifact"
	"extbuild/internal/issue"

	"github.com/spf13/cobra"
)

type buildFlagValues struct {
	force bool
	clean bool
}

func newBuildCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &buildFlagValues{}

	cmd := &cobra.Command{
		Use:   "build [project]",
		Short: "Package the extension if its bundle is stale",
		Long: `Package the extension if its bundle is stale.

The bundle is stale when there is none, or when a file directly inside the
project root or one of its input directories is newer than the newest
bundle. Without a project argument the project is built only when
project.include_by_default is true.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.loadWorkspace(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}

			ok, err := ws.selected(args)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(ws.stdout, "%s Skipping %s (not included by default; run 'extbuild build %s')\n",
					SubtitleStyle.Render("-"), ws.project.Name(), ws.project.Name())
				return nil
			}

			task, err := ws.newTask(artifact.BuildArgs{Force: flags.force})
			if err != nil {
				return err
			}

			if flags.clean {
				// A clean that precedes a build leaves bundles and installed
				// dependencies in place.
				if err := task.Clean(true); err != nil {
					return cleanFailure(err)
				}
			}

			return ws.buildIfNeeded(cmd.Context(), task)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "package even when the bundle is up to date")
	cmd.Flags().BoolVar(&flags.clean, "clean", false, "run the pre-build clean first")

	return cmd
}

// buildIfNeeded runs the staleness check and, when stale, the pipeline.
func (w *workspace) buildIfNeeded(ctx context.Context, task *artifact.BuildTask) error {
	needed, reason := task.NeedsBuild()
	if !needed {
		fmt.Fprintf(w.stdout, "%s %s is up to date\n", SuccessStyle.Render("✓"), w.project.Name())
		return nil
	}

	fmt.Fprintf(w.stdout, "%s %s (%s)\n", VerboseHighlightStyle.Render("→"), task, reason)

	report, err := task.BuildWithReport(ctx)
	for _, warning := range report.Warnings() {
		fmt.Fprintf(w.stderr, "%s %v\n", WarningStyle.Render("!"), warning)
		if w.verbose && errors.Is(warning, artifact.ErrStagingUnavailable) {
			renderServiceError(w.stderr, newServiceError(warning, issue.StagingUnavailableId, ""), w.cfg.UI.ColorScheme)
		}
	}
	if err != nil {
		return buildFailure(err)
	}

	fmt.Fprintf(w.stdout, "%s Packaged %s\n", SuccessStyle.Render("✓"), w.project.Name())
	for _, out := range sortedOutputs(w.project) {
		fmt.Fprintf(w.stdout, "  %s\n", CmdStyle.Render(out))
	}
	return nil
}

// buildFailure attaches the matching issue catalog entry and exit code to a
// fatal build error.
func buildFailure(err error) error {
	var (
		id   issue.Id
		code = 1

		toolErr *artifact.MissingToolError
		depErr  *artifact.DependencyInstallError
		pkgErr  *artifact.PackagingExecutionError
	)

	ec := issue.NewErrorContext().Wrap(err)
	switch {
	case errors.As(err, &toolErr):
		id = issue.PackagerMissingId
		ec.WithOperation("install packaging tool").
			WithResource(toolErr.Path).
			WithSuggestionf("Install it by hand with 'npm install %s' in toolchain.tool_dir", toolErr.Tool).
			WithSuggestion("Check toolchain.packager and toolchain.tool_dir in extbuild.cue")
	case errors.As(err, &depErr):
		id = issue.DependencyInstallFailedId
		ec.WithOperation("install dependencies").
			WithResource(depErr.Dir).
			WithSuggestion("Run the package manager install in that directory to see its full output").
			WithSuggestion("Check toolchain.package_manager in extbuild.cue")
	case errors.As(err, &pkgErr):
		id = issue.PackagingFailedId
		if status := pkgErr.ExitStatus(); status > 0 {
			code = status
		}
		ec.WithOperation("package extension").
			WithResource(pkgErr.Dir).
			WithSuggestion("A partial bundle may be left behind; 'extbuild clean' removes it").
			WithSuggestion("Rerun with --verbose to see the packaging tool's output")
	}

	wrapped := error(&ExitError{Code: code, Err: ec.Err()})
	if id == 0 {
		return wrapped
	}
	return newServiceError(wrapped, id, "")
}

func cleanFailure(err error) error {
	ec := issue.NewErrorContext().WithOperation("clean project").Wrap(err)
	var cleanupErr *artifact.CleanupError
	if errors.As(err, &cleanupErr) {
		ec.WithResource(cleanupErr.Path)
	}
	if errors.Is(err, artifact.ErrInvalidProject) {
		ec.WithSuggestion("clean.dirs and staging.dir must name directories inside the project root")
	} else {
		ec.WithSuggestion("Check that no other program holds files in the project open")
		ec.WithSuggestion("Check write permissions on the project directory")
	}
	return newServiceError(ec.Err(), issue.CleanupFailedId, "")
}
