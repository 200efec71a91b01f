// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"extbuild/internal/artifact"
	"extbuild/internal/runtime"
	"extbuild/internal/staging"
	"extbuild/internal/toolchain"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidConfigError lists every problem found by Config.Validate.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the extbuild configuration.
	Config struct {
		Project   ProjectConfig   `json:"project" mapstructure:"project"`
		Toolchain ToolchainConfig `json:"toolchain" mapstructure:"toolchain"`
		Staging   StagingConfig   `json:"staging" mapstructure:"staging"`
		Clean     CleanConfig     `json:"clean" mapstructure:"clean"`
		// Runtime selects how external tools are launched.
		Runtime runtime.Mode `json:"runtime" mapstructure:"runtime"`
		Watch   WatchConfig  `json:"watch" mapstructure:"watch"`
		UI      UIConfig     `json:"ui" mapstructure:"ui"`

		// BaseDir is the directory relative paths are resolved against: the
		// directory of the loaded file, or the project directory when no
		// file was found. It is not read from the file.
		BaseDir string `json:"-" mapstructure:"-"`
	}

	// ProjectConfig describes the extension directory.
	ProjectConfig struct {
		Name string `json:"name" mapstructure:"name"`
		// Root is the extension directory, relative to BaseDir.
		Root string `json:"root" mapstructure:"root"`
		// InputDirs are scanned one level deep for staleness.
		InputDirs []string `json:"input_dirs" mapstructure:"input_dirs"`
		OutputExt string   `json:"output_ext" mapstructure:"output_ext"`
		// IncludeByDefault makes a bare 'extbuild build' build this project.
		IncludeByDefault bool `json:"include_by_default" mapstructure:"include_by_default"`
	}

	// ToolchainConfig selects the package manager and packaging executable.
	ToolchainConfig struct {
		PackageManager     string   `json:"package_manager" mapstructure:"package_manager"`
		Packager           string   `json:"packager" mapstructure:"packager"`
		PackagerSubcommand string   `json:"packager_subcommand" mapstructure:"packager_subcommand"`
		PackagerArgs       []string `json:"packager_args" mapstructure:"packager_args"`
		// ToolDir holds node_modules/.bin/<packager>. Relative to the
		// project root; empty means the project root.
		ToolDir string `json:"tool_dir" mapstructure:"tool_dir"`
		// EnvFile is a dotenv file (relative to the project root) applied to
		// every tool invocation. A trailing '?' makes it optional.
		EnvFile string `json:"env_file" mapstructure:"env_file"`
	}

	// StagingConfig controls copying of an upstream prebuilt file.
	StagingConfig struct {
		Enabled bool `json:"enabled" mapstructure:"enabled"`
		// Artifact is the symbolic name to stage.
		Artifact string `json:"artifact" mapstructure:"artifact"`
		// Dir is the staging subdirectory inside the project root.
		Dir string `json:"dir" mapstructure:"dir"`
		// BaseDir anchors the artifact globs. Relative to Config.BaseDir.
		BaseDir     string        `json:"base_dir" mapstructure:"base_dir"`
		SettleDelay time.Duration `json:"settle_delay" mapstructure:"settle_delay"`
		// Artifacts maps symbolic names to doublestar globs.
		Artifacts map[string]string `json:"artifacts" mapstructure:"artifacts"`
	}

	// CleanConfig lists generated directories removed by clean.
	CleanConfig struct {
		Dirs []string `json:"dirs" mapstructure:"dirs"`
	}

	// WatchConfig configures 'extbuild watch'.
	WatchConfig struct {
		Patterns []string      `json:"patterns" mapstructure:"patterns"`
		Ignore   []string      `json:"ignore" mapstructure:"ignore"`
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Root:             ".",
			InputDirs:        append([]string(nil), artifact.DefaultInputDirs...),
			OutputExt:        artifact.DefaultOutputExt,
			IncludeByDefault: true,
		},
		Toolchain: ToolchainConfig{
			PackageManager:     toolchain.DefaultPackageManager,
			Packager:           toolchain.DefaultPackager,
			PackagerSubcommand: toolchain.DefaultPackageSubcommand,
			PackagerArgs:       []string{},
		},
		Staging: StagingConfig{
			Enabled:   false,
			Dir:       staging.DefaultDir,
			Artifacts: map[string]string{},
		},
		Clean: CleanConfig{
			Dirs: append([]string(nil), artifact.DefaultCleanDirs...),
		},
		Runtime: runtime.ModeNative,
		Watch: WatchConfig{
			Patterns: []string{},
			Ignore:   []string{"**/*.vsix", "node_modules/**", "out/**"},
			Debounce: 500 * time.Millisecond,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Validate returns an error if the color scheme is not recognized.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColorScheme, c)
	}
}

// Validate checks constraints the schema cannot express, including values
// that arrive through environment overrides.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Runtime.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Project.Root) == "" {
		errs = append(errs, errors.New("project.root must not be empty"))
	}
	if c.Staging.Enabled {
		if c.Staging.Artifact == "" {
			errs = append(errs, errors.New("staging.artifact is required when staging is enabled"))
		} else if _, ok := c.Staging.Pattern(c.Staging.Artifact); !ok {
			errs = append(errs, fmt.Errorf("staging.artifact %q has no entry in staging.artifacts", c.Staging.Artifact))
		}
	}
	for _, d := range c.Clean.Dirs {
		if err := artifact.ValidateGeneratedDir(d); err != nil {
			errs = append(errs, fmt.Errorf("clean.dirs: %w", err))
		}
	}
	if c.Staging.Enabled {
		if err := artifact.ValidateGeneratedDir(c.Staging.Dir); err != nil {
			errs = append(errs, fmt.Errorf("staging.dir: %w", err))
		}
	}
	if c.Staging.SettleDelay < 0 {
		errs = append(errs, errors.New("staging.settle_delay must not be negative"))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Pattern returns the glob registered for an artifact name. Names are
// matched case-insensitively since viper folds map keys to lower case.
func (s StagingConfig) Pattern(name string) (string, bool) {
	if p, ok := s.Artifacts[name]; ok {
		return p, true
	}
	for k, p := range s.Artifacts {
		if strings.EqualFold(k, name) {
			return p, true
		}
	}
	return "", false
}

// ProjectRoot returns the absolute project root.
func (c *Config) ProjectRoot() string {
	return c.resolve(c.BaseDir, c.Project.Root)
}

// ToolDir returns the absolute directory that holds the packaging tool.
func (c *Config) ToolDir() string {
	return c.resolve(c.ProjectRoot(), c.Toolchain.ToolDir)
}

// StagingBaseDir returns the absolute directory artifact globs are
// evaluated against.
func (c *Config) StagingBaseDir() string {
	return c.resolve(c.BaseDir, c.Staging.BaseDir)
}

func (c *Config) resolve(base, p string) string {
	if p == "" {
		return base
	}
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
