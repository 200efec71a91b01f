// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProject is returned by NewProject for unusable options.
	ErrInvalidProject = errors.New("invalid project")
	// ErrMissingTool is the sentinel wrapped by MissingToolError.
	ErrMissingTool = errors.New("packaging tool missing")
	// ErrDependencyInstall is the sentinel wrapped by DependencyInstallError.
	ErrDependencyInstall = errors.New("dependency installation failed")
	// ErrPackagingExecution is the sentinel wrapped by PackagingExecutionError.
	ErrPackagingExecution = errors.New("packaging failed")
	// ErrStagingUnavailable is the sentinel wrapped by StagingUnavailableWarning.
	ErrStagingUnavailable = errors.New("prebuilt artifact not staged")
	// ErrCleanup is the sentinel wrapped by CleanupError.
	ErrCleanup = errors.New("cleanup failed")
)

type (
	// MissingToolError means the packaging executable is absent and could
	// not be installed.
	MissingToolError struct {
		Tool string
		Path string
		Err  error
	}

	// DependencyInstallError means installing the project's runtime
	// dependencies failed.
	DependencyInstallError struct {
		Dir string
		Err error
	}

	// PackagingExecutionError means the packaging executable failed. Any
	// partial output is left in place.
	PackagingExecutionError struct {
		Dir string
		Err error
	}

	// StagingUnavailableWarning means the optional prebuilt artifact was not
	// staged. It never fails a build.
	StagingUnavailableWarning struct {
		Err error
	}

	// CleanupError means a generated path could not be removed.
	CleanupError struct {
		Path string
		Err  error
	}

	// exitStatuser is implemented by errors that carry a process exit status.
	exitStatuser interface {
		ExitStatus() int
	}
)

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("packaging tool %s not available at %s: %v", e.Tool, e.Path, e.Err)
}

func (e *MissingToolError) Unwrap() []error { return []error{ErrMissingTool, e.Err} }

func (e *DependencyInstallError) Error() string {
	return fmt.Sprintf("installing dependencies in %s: %v", e.Dir, e.Err)
}

func (e *DependencyInstallError) Unwrap() []error { return []error{ErrDependencyInstall, e.Err} }

func (e *PackagingExecutionError) Error() string {
	return fmt.Sprintf("packaging %s: %v", e.Dir, e.Err)
}

func (e *PackagingExecutionError) Unwrap() []error { return []error{ErrPackagingExecution, e.Err} }

// ExitStatus returns the packaging executable's exit status, or -1 if the
// process did not run to completion.
func (e *PackagingExecutionError) ExitStatus() int {
	var coded exitStatuser
	if errors.As(e.Err, &coded) {
		return coded.ExitStatus()
	}
	return -1
}

func (e *StagingUnavailableWarning) Error() string {
	return fmt.Sprintf("staging skipped: %v", e.Err)
}

func (e *StagingUnavailableWarning) Unwrap() []error { return []error{ErrStagingUnavailable, e.Err} }

func (e *CleanupError) Error() string {
	return fmt.Sprintf("removing %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() []error { return []error{ErrCleanup, e.Err} }
