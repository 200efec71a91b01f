// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"

	"extbuild/internal/pipeline"
)

// Pipeline step names, in execution order.
const (
	StepEnsurePackager      = "ensure-packager"
	StepStagePrebuilt       = "stage-prebuilt"
	StepInstallDependencies = "install-dependencies"
	StepPackage             = "package"
)

// ErrNotConfigured is returned by Build when a required collaborator is nil.
var ErrNotConfigured = errors.New("build task not configured")

// Steps returns the build pipeline for this task. The staging step is
// present only when a Stager is configured.
func (t *BuildTask) Steps() []pipeline.Step {
	steps := []pipeline.Step{
		{Name: StepEnsurePackager, Policy: pipeline.Fatal, Run: t.ensurePackager},
	}
	if t.stager != nil {
		steps = append(steps, pipeline.Step{Name: StepStagePrebuilt, Policy: pipeline.Tolerated, Run: t.stagePrebuilt})
	}
	return append(steps,
		pipeline.Step{Name: StepInstallDependencies, Policy: pipeline.Fatal, Run: t.installDependencies},
		pipeline.Step{Name: StepPackage, Policy: pipeline.Fatal, Run: t.pack},
	)
}

// Build runs the pipeline and returns the first fatal error. The returned
// error unwraps to MissingToolError, DependencyInstallError or
// PackagingExecutionError.
func (t *BuildTask) Build(ctx context.Context) error {
	_, err := t.BuildWithReport(ctx)
	return err
}

// BuildWithReport is Build that also returns the per-step outcomes, so
// callers can surface tolerated failures such as StagingUnavailableWarning.
func (t *BuildTask) BuildWithReport(ctx context.Context) (*pipeline.Report, error) {
	if t.pm == nil || t.packager == nil {
		return nil, fmt.Errorf("%w: package manager and packager are required", ErrNotConfigured)
	}

	t.logger.Info(t.String())
	report, err := t.runner.Run(ctx, t.Steps())
	if err != nil {
		return report, err
	}
	t.logger.Info("build finished", "steps", len(report.Outcomes), "warnings", len(report.Warnings()))
	return report, nil
}

func (t *BuildTask) ensurePackager(ctx context.Context) error {
	path := t.packager.Path()
	if fileExists(path) {
		return nil
	}

	tool := t.packager.Tool()
	t.logger.Info("installing packaging tool", "tool", tool, "dir", t.toolDir)
	if err := t.pm.InstallTool(ctx, tool, t.toolDir); err != nil {
		return &MissingToolError{Tool: tool, Path: path, Err: err}
	}
	if !fileExists(path) {
		return &MissingToolError{Tool: tool, Path: path, Err: errors.New("not present after install")}
	}
	return nil
}

func (t *BuildTask) stagePrebuilt(ctx context.Context) error {
	if _, err := t.stager.Stage(ctx, t.subject.RootDir()); err != nil {
		return &StagingUnavailableWarning{Err: err}
	}
	return nil
}

func (t *BuildTask) installDependencies(ctx context.Context) error {
	dir := t.subject.RootDir()
	if err := t.pm.InstallDependencies(ctx, dir); err != nil {
		return &DependencyInstallError{Dir: dir, Err: err}
	}
	return nil
}

func (t *BuildTask) pack(ctx context.Context) error {
	dir := t.subject.RootDir()
	if err := t.packager.Package(ctx, dir); err != nil {
		return &PackagingExecutionError{Dir: dir, Err: err}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
