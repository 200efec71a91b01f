// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"extbuild/internal/artifact"
	"extbuild/internal/config"
	"extbuild/internal/issue"
	"extbuild/internal/runtime"
	"extbuild/internal/staging"
	"extbuild/internal/toolchain"
)

// AppPrefix prefixes log lines written by the CLI.
const AppPrefix = "extbuild"

type (
	// App wires CLI services and shared dependencies. Cobra handlers receive
	// an App and reach configuration and output streams through it.
	App struct {
		Config      ConfigProvider
		stdout      io.Writer
		stderr      io.Writer
		colorScheme config.ColorScheme
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// workspace is the per-invocation view of one configured project.
	workspace struct {
		cfg     *config.Config
		project *artifact.Project
		logger  *slog.Logger
		verbose bool
		stdout  io.Writer
		stderr  io.Writer
	}
)

// NewApp creates an App, filling unset dependencies with defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:      deps.Config,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		colorScheme: config.ColorSchemeAuto,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// loadConfig loads configuration for the directory selected by flags.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		ProjectDir:     flags.projectDir,
	})
	if err != nil {
		return nil, newServiceError(err, issue.ConfigLoadFailedId, "")
	}
	a.colorScheme = cfg.UI.ColorScheme
	return cfg, nil
}

// loadWorkspace loads configuration and opens the configured project.
func (a *App) loadWorkspace(ctx context.Context, flags *rootFlagValues) (*workspace, error) {
	cfg, err := a.loadConfig(ctx, flags)
	if err != nil {
		return nil, err
	}

	verbose := flags.verbose || cfg.UI.Verbose
	logger := newLogger(a.stderr, verbose)

	project, err := artifact.NewProject(artifact.ProjectOptions{
		Name:      cfg.Project.Name,
		RootDir:   cfg.ProjectRoot(),
		InputDirs: cfg.Project.InputDirs,
		OutputExt: cfg.Project.OutputExt,
	})
	if err != nil {
		return nil, newServiceError(issue.NewErrorContext().
			WithOperation("open project").
			WithResource(cfg.ProjectRoot()).
			WithSuggestion("Run extbuild from the extension directory or pass --project").
			WithSuggestion("Check project.root in extbuild.cue").
			Wrap(err).
			Err(), issue.ProjectNotFoundId, "")
	}

	return &workspace{
		cfg:     cfg,
		project: project,
		logger:  logger.With("project", project.Name()),
		verbose: verbose,
		stdout:  a.stdout,
		stderr:  a.stderr,
	}, nil
}

// newTask assembles a build task with the configured toolchain, runtime and
// optional staging.
func (w *workspace) newTask(args artifact.BuildArgs) (*artifact.BuildTask, error) {
	exec, err := runtime.New(w.cfg.Runtime, runtime.IO{Stdout: w.stdout, Stderr: w.stderr})
	if err != nil {
		return nil, err
	}

	env := map[string]string{}
	if w.cfg.Toolchain.EnvFile != "" {
		if err := runtime.LoadEnvFile(env, w.cfg.Toolchain.EnvFile, w.project.RootDir()); err != nil {
			return nil, issue.WrapWithContext(err, "load tool environment", w.cfg.Toolchain.EnvFile)
		}
	}

	toolDir := w.cfg.ToolDir()
	taskCfg := artifact.TaskConfig{
		Args:           args,
		PackageManager: toolchain.NewNPM(exec, w.cfg.Toolchain.PackageManager, env),
		Packager: toolchain.NewPackager(exec, toolchain.PackagerOptions{
			Tool:       w.cfg.Toolchain.Packager,
			ToolDir:    toolDir,
			Subcommand: w.cfg.Toolchain.PackagerSubcommand,
			Args:       w.cfg.Toolchain.PackagerArgs,
			Env:        env,
		}),
		ToolDir:   toolDir,
		CleanDirs: w.cfg.Clean.Dirs,
		Logger:    w.logger,
	}

	if w.cfg.Staging.Enabled {
		stager, err := w.newStager()
		if err != nil {
			return nil, err
		}
		taskCfg.Stager = stager
	}

	return w.project.NewBuildTask(taskCfg), nil
}

func (w *workspace) newStager() (*staging.Stager, error) {
	pattern, _ := w.cfg.Staging.Pattern(w.cfg.Staging.Artifact)
	provider, err := staging.NewGlobProvider(w.cfg.StagingBaseDir(), map[string]string{
		w.cfg.Staging.Artifact: pattern,
	})
	if err != nil {
		return nil, fmt.Errorf("configure staging: %w", err)
	}
	return staging.NewStager(provider, staging.Options{
		Artifact:    w.cfg.Staging.Artifact,
		Dir:         w.cfg.Staging.Dir,
		SettleDelay: w.cfg.Staging.SettleDelay,
		Logger:      w.logger,
	}), nil
}

// selected reports whether a build invocation targets this project. A
// named project must match; an unnamed invocation honours
// project.include_by_default.
func (w *workspace) selected(args []string) (bool, error) {
	if len(args) == 0 {
		return w.cfg.Project.IncludeByDefault, nil
	}
	if args[0] == w.project.Name() {
		return true, nil
	}
	return false, issue.NewErrorContext().
		WithOperation("select project").
		WithResource(args[0]).
		WithSuggestion(fmt.Sprintf("The configured project is %q", w.project.Name())).
		WithSuggestion("Use --project to point at another extension directory").
		Wrap(fmt.Errorf("%w: %s", errUnknownProject, args[0])).
		Err()
}

// buildWrittenFiles are rewritten by package manager installs during a build.
var buildWrittenFiles = []string{"package-lock.json", "npm-shrinkwrap.json", "yarn.lock", "pnpm-lock.yaml"}

// watchIgnores extends the configured ignore globs with everything a build
// writes, so a rebuild never retriggers itself.
func (w *workspace) watchIgnores() []string {
	ignores := slices.Clone(w.cfg.Watch.Ignore)
	ignores = append(ignores, "**/*"+w.project.OutputExt())
	for _, f := range buildWrittenFiles {
		ignores = append(ignores, "**/"+f)
	}
	dirs := slices.Clone(w.cfg.Clean.Dirs)
	if w.cfg.Staging.Enabled {
		dirs = append(dirs, w.cfg.Staging.Dir)
	}
	if rel, err := filepath.Rel(w.project.RootDir(), w.cfg.ToolDir()); err == nil && artifact.ValidateGeneratedDir(rel) == nil {
		dirs = append(dirs, rel)
	}
	for _, d := range dirs {
		d = filepath.ToSlash(d)
		ignores = append(ignores, d, d+"/**")
	}
	return ignores
}

var errUnknownProject = errors.New("unknown project")
