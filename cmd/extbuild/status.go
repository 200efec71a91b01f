// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"extbuild/internal/artifact"

	"github.com/spf13/cobra"
)

func newStatusCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the bundle is stale and why",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := app.loadWorkspace(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			task, err := ws.newTask(artifact.BuildArgs{})
			if err != nil {
				return err
			}
			ws.printStatus(task)
			return nil
		},
	}
}

func (w *workspace) printStatus(task *artifact.BuildTask) {
	needed, reason := task.NeedsBuild()

	fmt.Fprintln(w.stdout, TitleStyle.Render(w.project.Name()))
	fmt.Fprintf(w.stdout, "%s: %s\n", CmdStyle.Render("root"), w.project.RootDir())
	fmt.Fprintf(w.stdout, "%s: %s\n", CmdStyle.Render("newest input"), task.NewestInput())
	fmt.Fprintf(w.stdout, "%s: %s\n", CmdStyle.Render("newest output"), task.NewestOutput())
	fmt.Fprintf(w.stdout, "%s: %d\n", CmdStyle.Render("outputs"), len(w.project.ListOutputs()))

	if needed {
		fmt.Fprintf(w.stdout, "%s: %s (%s)\n", CmdStyle.Render("status"), WarningStyle.Render("stale"), reason)
		return
	}
	fmt.Fprintf(w.stdout, "%s: %s\n", CmdStyle.Render("status"), SuccessStyle.Render("up to date"))
}
