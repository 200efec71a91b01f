// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"sort"
	"strings"

	"extbuild/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "extbuild"
	// ProjectFileName is the config file looked up in the project directory.
	ProjectFileName = "extbuild.cue"
	// UserFileName is the config file looked up in the user config directory.
	UserFileName = "config.cue"
	// EnvPrefix prefixes environment overrides (EXTBUILD_RUNTIME, ...).
	EnvPrefix = "EXTBUILD"
)

// ErrConfigExists is returned by WriteDefault when the target file exists.
var ErrConfigExists = errors.New("config file already exists")

//go:embed schema.cue
var configSchema string

// ConfigDir returns the per-user extbuild configuration directory: %APPDATA%
// on Windows, ~/Library/Application Support on macOS and $XDG_CONFIG_HOME
// (defaulting to ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var base string

	switch goruntime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, AppName), nil
}

// loadWithOptions performs option-driven config loading. It returns the
// effective configuration and the path of the file that was merged, if any.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	projectDir, err := absDir(opts.ProjectDir)
	if err != nil {
		return nil, "", err
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, baseDir, err := locate(opts, projectDir)
	if err != nil {
		return nil, "", err
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Use 'extbuild config show' to see the effective configuration").
				Wrap(err).
				Err()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = baseDir

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check EXTBUILD_* environment variables for typos").
			WithSuggestion("Run 'extbuild config init' to generate a valid starting file").
			Wrap(err).
			Err()
	}

	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(cfg.ProjectRoot())
	}

	return &cfg, resolvedPath, nil
}

// locate picks the config file and the directory relative paths are
// resolved against. A project-level or explicit file anchors paths at its
// own directory; a user-level file anchors them at the project directory.
func locate(opts LoadOptions, projectDir string) (path, baseDir string, err error) {
	if opts.ConfigFilePath != "" {
		abs, err := filepath.Abs(opts.ConfigFilePath)
		if err != nil {
			return "", "", fmt.Errorf("failed to resolve config path: %w", err)
		}
		if !fileExists(abs) {
			return "", "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'extbuild config init' to create one").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				Err()
		}
		return abs, filepath.Dir(abs), nil
	}

	if p := filepath.Join(projectDir, ProjectFileName); fileExists(p) {
		return p, projectDir, nil
	}

	userDir := opts.UserConfigDir
	if userDir == "" {
		if userDir, err = ConfigDir(); err != nil {
			// No user directory only means no user file.
			return "", projectDir, nil
		}
	}
	if p := filepath.Join(userDir, UserFileName); fileExists(p) {
		return p, projectDir, nil
	}

	return "", projectDir, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project.name", d.Project.Name)
	v.SetDefault("project.root", d.Project.Root)
	v.SetDefault("project.input_dirs", d.Project.InputDirs)
	v.SetDefault("project.output_ext", d.Project.OutputExt)
	v.SetDefault("project.include_by_default", d.Project.IncludeByDefault)
	v.SetDefault("toolchain.package_manager", d.Toolchain.PackageManager)
	v.SetDefault("toolchain.packager", d.Toolchain.Packager)
	v.SetDefault("toolchain.packager_subcommand", d.Toolchain.PackagerSubcommand)
	v.SetDefault("toolchain.packager_args", d.Toolchain.PackagerArgs)
	v.SetDefault("toolchain.tool_dir", d.Toolchain.ToolDir)
	v.SetDefault("toolchain.env_file", d.Toolchain.EnvFile)
	v.SetDefault("staging.enabled", d.Staging.Enabled)
	v.SetDefault("staging.artifact", d.Staging.Artifact)
	v.SetDefault("staging.dir", d.Staging.Dir)
	v.SetDefault("staging.base_dir", d.Staging.BaseDir)
	v.SetDefault("staging.settle_delay", d.Staging.SettleDelay)
	v.SetDefault("staging.artifacts", d.Staging.Artifacts)
	v.SetDefault("clean.dirs", d.Clean.Dirs)
	v.SetDefault("runtime", d.Runtime)
	v.SetDefault("watch.patterns", d.Watch.Patterns)
	v.SetDefault("watch.ignore", d.Watch.Ignore)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.color_scheme", d.UI.ColorScheme)
}

func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := decodeCUE(data, path)
	if err != nil {
		return err
	}

	// Merge preserves defaults and env overrides.
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func absDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	return abs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// extbuild configuration\n\n")

	sb.WriteString("project: {\n")
	if cfg.Project.Name != "" {
		fmt.Fprintf(&sb, "\tname: %q\n", cfg.Project.Name)
	}
	fmt.Fprintf(&sb, "\troot: %q\n", cfg.Project.Root)
	fmt.Fprintf(&sb, "\tinput_dirs: %s\n", cueList(cfg.Project.InputDirs))
	fmt.Fprintf(&sb, "\toutput_ext: %q\n", cfg.Project.OutputExt)
	fmt.Fprintf(&sb, "\tinclude_by_default: %v\n", cfg.Project.IncludeByDefault)
	sb.WriteString("}\n")

	sb.WriteString("\ntoolchain: {\n")
	fmt.Fprintf(&sb, "\tpackage_manager: %q\n", cfg.Toolchain.PackageManager)
	fmt.Fprintf(&sb, "\tpackager: %q\n", cfg.Toolchain.Packager)
	fmt.Fprintf(&sb, "\tpackager_subcommand: %q\n", cfg.Toolchain.PackagerSubcommand)
	fmt.Fprintf(&sb, "\tpackager_args: %s\n", cueList(cfg.Toolchain.PackagerArgs))
	if cfg.Toolchain.ToolDir != "" {
		fmt.Fprintf(&sb, "\ttool_dir: %q\n", cfg.Toolchain.ToolDir)
	}
	if cfg.Toolchain.EnvFile != "" {
		fmt.Fprintf(&sb, "\tenv_file: %q\n", cfg.Toolchain.EnvFile)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nstaging: {\n")
	fmt.Fprintf(&sb, "\tenabled: %v\n", cfg.Staging.Enabled)
	if cfg.Staging.Artifact != "" {
		fmt.Fprintf(&sb, "\tartifact: %q\n", cfg.Staging.Artifact)
	}
	fmt.Fprintf(&sb, "\tdir: %q\n", cfg.Staging.Dir)
	if cfg.Staging.BaseDir != "" {
		fmt.Fprintf(&sb, "\tbase_dir: %q\n", cfg.Staging.BaseDir)
	}
	if cfg.Staging.SettleDelay > 0 {
		fmt.Fprintf(&sb, "\tsettle_delay: %q\n", cfg.Staging.SettleDelay.String())
	}
	if len(cfg.Staging.Artifacts) > 0 {
		sb.WriteString("\tartifacts: {\n")
		names := make([]string, 0, len(cfg.Staging.Artifacts))
		for name := range cfg.Staging.Artifacts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "\t\t%q: %q\n", name, cfg.Staging.Artifacts[name])
		}
		sb.WriteString("\t}\n")
	}
	sb.WriteString("}\n")

	sb.WriteString("\nclean: {\n")
	fmt.Fprintf(&sb, "\tdirs: %s\n", cueList(cfg.Clean.Dirs))
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nruntime: %q\n", cfg.Runtime)

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tpatterns: %s\n", cueList(cfg.Watch.Patterns))
	fmt.Fprintf(&sb, "\tignore: %s\n", cueList(cfg.Watch.Ignore))
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
