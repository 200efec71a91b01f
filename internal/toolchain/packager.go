// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"path/filepath"

	"extbuild/internal/runtime"
)

const (
	// DefaultPackager is the npm package providing the packaging executable.
	DefaultPackager = "vsce"
	// DefaultPackageSubcommand is passed to the packaging executable.
	DefaultPackageSubcommand = "package"
)

type (
	// Packager invokes a packaging executable installed under a tool
	// directory's node_modules/.bin.
	Packager struct {
		tool       string
		toolDir    string
		subcommand string
		args       []string
		env        map[string]string
		exec       runtime.Executor
	}

	// PackagerOptions configures a Packager.
	PackagerOptions struct {
		// Tool is both the npm package name and the executable name.
		Tool string
		// ToolDir is the directory whose node_modules holds the tool.
		ToolDir string
		// Subcommand defaults to DefaultPackageSubcommand.
		Subcommand string
		// Args are appended after the subcommand.
		Args []string
		Env  map[string]string
	}

	// PackagingExitError reports a non-zero exit of the packaging executable.
	PackagingExitError struct {
		Code runtime.ExitCode
	}
)

func (e *PackagingExitError) Error() string {
	return "packaging executable exited with status " + e.Code.String()
}

// ExitStatus returns the exit code as an int.
func (e *PackagingExitError) ExitStatus() int { return int(e.Code) }

// NewPackager creates a Packager.
func NewPackager(exec runtime.Executor, opts PackagerOptions) *Packager {
	if opts.Tool == "" {
		opts.Tool = DefaultPackager
	}
	if opts.Subcommand == "" {
		opts.Subcommand = DefaultPackageSubcommand
	}
	return &Packager{
		tool:       opts.Tool,
		toolDir:    opts.ToolDir,
		subcommand: opts.Subcommand,
		args:       opts.Args,
		env:        opts.Env,
		exec:       exec,
	}
}

// Tool returns the package name to install when the executable is missing.
func (p *Packager) Tool() string { return p.tool }

// Path returns the expected location of the executable.
func (p *Packager) Path() string {
	return filepath.Join(p.toolDir, "node_modules", ".bin", p.tool)
}

// Package runs the packaging executable with dir as working directory.
func (p *Packager) Package(ctx context.Context, dir string) error {
	args := append([]string{p.subcommand}, p.args...)
	res := p.exec.Run(ctx, runtime.Command{Name: p.Path(), Args: args, Dir: dir, Env: p.env})
	if res.Error != nil {
		return res.Error
	}
	if !res.ExitCode.IsSuccess() {
		return &PackagingExitError{Code: res.ExitCode}
	}
	return nil
}
