// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"extbuild/internal/config"
	"extbuild/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `extbuild config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage extbuild configuration",
		Long: `Manage extbuild configuration.

Configuration is read from the first of:
  - the file given with --config
  - extbuild.cue in the project directory
  - config.cue in the user config directory
    (Linux: ~/.config/extbuild, macOS: ~/Library/Application Support/extbuild,
    Windows: %APPDATA%\extbuild)

EXTBUILD_* environment variables override file values, for example
EXTBUILD_RUNTIME=virtual or EXTBUILD_PROJECT_ROOT=ext.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := config.LoadOptions{ConfigFilePath: rootFlags.configPath, ProjectDir: rootFlags.projectDir}
			cfg, path, err := config.LoadWithPath(cmd.Context(), opts)
			if err != nil {
				return newServiceError(err, issue.ConfigLoadFailedId, "")
			}
			source := path
			if source == "" {
				source = "(defaults)"
			}
			fmt.Fprintf(app.stdout, "// source: %s\n", source)
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	var (
		force bool
		user  bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default extbuild.cue",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := initPath(rootFlags.projectDir, user)
			if err != nil {
				return err
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Wrote %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&user, "user", false, "write the per-user config file instead")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func initPath(projectDir string, user bool) (string, error) {
	if user {
		dir, err := config.ConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, config.UserFileName), nil
	}
	if projectDir == "" {
		projectDir = "."
	}
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, config.ProjectFileName), nil
}
