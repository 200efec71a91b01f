// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"extbuild/internal/artifact"

	"github.com/spf13/cobra"
)

func newCleanCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove bundles and generated directories",
		Long: `Remove every packaged bundle under the project root, then the generated
directories listed in clean.dirs (node_modules and out by default) and the
staging directory. Paths that do not exist are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := app.loadWorkspace(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			task, err := ws.newTask(artifact.BuildArgs{})
			if err != nil {
				return err
			}
			if err := task.Clean(false); err != nil {
				return cleanFailure(err)
			}
			fmt.Fprintf(ws.stdout, "%s Cleaned %s\n", SuccessStyle.Render("✓"), ws.project.Name())
			return nil
		},
	}
}
