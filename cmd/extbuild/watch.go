// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"extbuild/internal/artifact"
	"extbuild/internal/issue"
	"extbuild/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "watch [project]",
		Short: "Rebuild the bundle whenever inputs change",
		Long: `Build once if the bundle is stale, then watch the project tree and repeat
the staleness check after every burst of changes (see watch.debounce).
Files a build writes are never watched: bundles, lockfiles, clean.dirs, the
staging directory and toolchain.tool_dir.`,
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
				fmt.Fprintf(ws.stdout, "%s Skipping %s (not included by default; run 'extbuild watch %s')\n",
					SubtitleStyle.Render("-"), ws.project.Name(), ws.project.Name())
				return nil
			}
			return ws.watch(cmd, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "package on every change even when the bundle is up to date")
	return cmd
}

func (w *workspace) watch(cmd *cobra.Command, force bool) error {
	rebuild := func(ctx context.Context, changed []string) error {
		if len(changed) > 0 {
			fmt.Fprintf(w.stdout, "%s Detected %d change(s)\n", VerboseHighlightStyle.Render("→"), len(changed))
		}
		// A fresh task per round: staleness is never cached.
		task, err := w.newTask(artifact.BuildArgs{Force: force && len(changed) > 0})
		if err != nil {
			return err
		}
		if err := w.buildIfNeeded(ctx, task); err != nil {
			fmt.Fprintf(w.stderr, "%s %s\n", ErrorStyle.Render("✗"), formatErrorForDisplay(err, w.verbose))
		}
		fmt.Fprintf(w.stdout, "\n%s Watching %s for changes (Ctrl+C to stop)\n", VerboseHighlightStyle.Render("→"), w.project.RootDir())
		return nil
	}

	watcher, err := watch.New(watch.Options{
		Root:       w.project.RootDir(),
		Patterns:   w.cfg.Watch.Patterns,
		Ignore:     w.watchIgnores(),
		Debounce:   w.cfg.Watch.Debounce,
		RunOnStart: true,
		OnChange:   rebuild,
		Logger:     w.logger,
	})
	if err != nil {
		return newServiceError(issue.WrapWithContext(err, "start watcher", w.project.RootDir()), issue.WatchFailedId, "")
	}

	if err := watcher.Run(cmd.Context()); err != nil {
		return newServiceError(issue.WrapWithContext(err, "watch project", w.project.RootDir()), issue.WatchFailedId, "")
	}
	return nil
}
