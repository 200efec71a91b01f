// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"extbuild/internal/pipeline"
)

// DefaultCleanDirs are the generated directories removed by Clean.
var DefaultCleanDirs = []string{"node_modules", "out"}

type (
	// PackageManager installs tools and project dependencies.
	PackageManager interface {
		// InstallTool installs the named tool into dir's local tool cache.
		InstallTool(ctx context.Context, tool, dir string) error
		// InstallDependencies installs the dependencies declared in dir.
		InstallDependencies(ctx context.Context, dir string) error
	}

	// Packager produces the bundle from a project directory.
	Packager interface {
		// Tool is the package to install when Path does not exist.
		Tool() string
		// Path is the expected location of the packaging executable.
		Path() string
		// Package runs the executable with dir as working directory.
		Package(ctx context.Context, dir string) error
	}

	// Stager copies an upstream prebuilt file into the project.
	Stager interface {
		// Dir is the staging subdirectory name inside the project root.
		Dir() string
		// Stage replaces the staging directory contents and returns the
		// staged file path.
		Stage(ctx context.Context, root string) (string, error)
	}

	// BuildArgs are the recognized build options.
	BuildArgs struct {
		// Force makes NeedsBuild report true regardless of timestamps.
		Force bool
	}

	// TaskConfig configures a BuildTask.
	TaskConfig struct {
		Args           BuildArgs
		PackageManager PackageManager
		Packager       Packager
		// Stager is optional; nil skips the staging step.
		Stager Stager
		// ToolDir receives the packaging tool when it must be installed.
		// Empty means the project root.
		ToolDir string
		// CleanDirs are removed by Clean. Nil means DefaultCleanDirs.
		CleanDirs []string
		Logger    *slog.Logger
	}

	// BuildTask checks staleness, builds, and cleans one Project.
	BuildTask struct {
		subject   *Project
		args      BuildArgs
		pm        PackageManager
		packager  Packager
		stager    Stager
		toolDir   string
		cleanDirs []string
		logger    *slog.Logger
		runner    *pipeline.Runner
	}
)

func newBuildTask(p *Project, cfg TaskConfig) *BuildTask {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("project", p.Name())

	toolDir := cfg.ToolDir
	if toolDir == "" {
		toolDir = p.RootDir()
	}
	cleanDirs := cfg.CleanDirs
	if cleanDirs == nil {
		cleanDirs = DefaultCleanDirs
	}

	return &BuildTask{
		subject:   p,
		args:      cfg.Args,
		pm:        cfg.PackageManager,
		packager:  cfg.Packager,
		stager:    cfg.Stager,
		toolDir:   toolDir,
		cleanDirs: slices.Clone(cleanDirs),
		logger:    logger,
		runner:    pipeline.NewRunner(logger),
	}
}

// Subject returns the project this task builds.
func (t *BuildTask) Subject() *Project { return t.subject }

// String describes the task for logs.
func (t *BuildTask) String() string {
	return "Building " + t.subject.Name()
}

// NewestInput returns the latest modification time of the regular files
// directly inside the project root and directly inside each existing input
// subdirectory. Subdirectories of those directories are not descended into.
// It returns NoInput when no such file exists.
func (t *BuildTask) NewestInput() Timestamp {
	dirs := []string{t.subject.RootDir()}
	for _, d := range t.subject.inputDirs {
		dirs = append(dirs, filepath.Join(t.subject.RootDir(), filepath.FromSlash(d)))
	}

	var files []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			files = append(files, path)
		}
	}
	return newest(files)
}

// NewestOutput returns the latest modification time among the project's
// packaged bundles, or NoInput when there are none.
func (t *BuildTask) NewestOutput() Timestamp {
	return newest(t.subject.ListOutputs())
}

// NeedsBuild reports whether the bundle must be rebuilt, with a short
// reason. A bundle is stale when an input is strictly newer than the newest
// bundle; equal timestamps count as up to date.
func (t *BuildTask) NeedsBuild() (bool, string) {
	if t.args.Force {
		return true, "forced"
	}

	outputs := t.subject.ListOutputs()
	if len(outputs) == 0 {
		return true, "no packaged output"
	}

	newestOutput := newest(outputs)
	newestInput := t.NewestInput()
	if newestInput.IsNoInput() {
		return false, ""
	}
	if newestInput.IsNewerThan(newestOutput) {
		return true, fmt.Sprintf("input changed at %s after output built at %s", newestInput, newestOutput)
	}
	return false, ""
}
