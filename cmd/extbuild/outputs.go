// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"slices"

	"extbuild/internal/artifact"

	"github.com/spf13/cobra"
)

func newOutputsCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var relative bool

	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "List packaged bundles, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := app.loadWorkspace(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			for _, out := range sortedOutputs(ws.project) {
				if relative {
					if rel, err := filepath.Rel(ws.project.RootDir(), out); err == nil {
						out = filepath.ToSlash(rel)
					}
				}
				fmt.Fprintln(ws.stdout, out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&relative, "relative", "r", false, "print paths relative to the project root")
	return cmd
}

func sortedOutputs(p *artifact.Project) []string {
	outs := p.ListOutputs()
	slices.Sort(outs)
	return outs
}
