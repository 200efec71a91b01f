// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualExecutor runs programs through the mvdan/sh interpreter. The
// command line is quoted and parsed as a single simple command, so
// arguments are never re-split or expanded.
type VirtualExecutor struct {
	io IO
}

// NewVirtualExecutor creates a VirtualExecutor. Nil streams default to the
// process stdout and stderr.
func NewVirtualExecutor(streams IO) *VirtualExecutor {
	return &VirtualExecutor{io: streams.withDefaults()}
}

// Run interprets the command and waits for it to finish.
func (e *VirtualExecutor) Run(ctx context.Context, c Command) *Result {
	if c.Name == "" {
		return NewErrorResult(1, errors.New("no program given"))
	}

	line, err := quoteCommandLine(c)
	if err != nil {
		return NewErrorResult(1, err)
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(line), c.Name)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to parse command line: %w", err))
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(c.environ()...)),
		interp.StdIO(nil, e.io.Stdout, e.io.Stderr),
	}
	if c.Dir != "" {
		opts = append(opts, interp.Dir(c.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) && ctx.Err() == nil {
			return NewExitCodeResult(ExitCode(exitStatus))
		}
		return NewErrorResult(1, fmt.Errorf("failed to run %s: %w", c.Name, err))
	}

	return NewExitCodeResult(0)
}

func quoteCommandLine(c Command) (string, error) {
	words := make([]string, 0, len(c.Args)+1)
	for _, w := range append([]string{c.Name}, c.Args...) {
		q, err := syntax.Quote(w, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("cannot quote %q: %w", w, err)
		}
		words = append(words, q)
	}
	return strings.Join(words, " "), nil
}
