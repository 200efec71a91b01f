// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// NativeExecutor runs programs with os/exec.
type NativeExecutor struct {
	io IO
}

// NewNativeExecutor creates a NativeExecutor. Nil streams default to the
// process stdout and stderr.
func NewNativeExecutor(streams IO) *NativeExecutor {
	return &NativeExecutor{io: streams.withDefaults()}
}

// Run starts the program and waits for it to exit.
func (e *NativeExecutor) Run(ctx context.Context, c Command) *Result {
	if c.Name == "" {
		return NewErrorResult(1, errors.New("no program given"))
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.environ()
	cmd.Stdout = e.io.Stdout
	cmd.Stderr = e.io.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return NewExitCodeResult(ExitCode(exitErr.ExitCode()))
		}
		return NewErrorResult(1, fmt.Errorf("failed to run %s: %w", c.Name, err))
	}

	return NewExitCodeResult(0)
}
