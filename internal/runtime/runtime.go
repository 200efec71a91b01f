// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
)

const (
	// ModeNative runs programs directly with os/exec.
	ModeNative Mode = "native"
	// ModeVirtual runs programs through the embedded mvdan/sh interpreter.
	ModeVirtual Mode = "virtual"
)

// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
var ErrInvalidMode = errors.New("invalid runtime mode")

type (
	// Mode selects an Executor implementation.
	Mode string

	// InvalidModeError is returned for an unknown Mode.
	InvalidModeError struct {
		Value Mode
	}

	// Command describes one external program invocation.
	Command struct {
		// Name is the program name or path.
		Name string
		// Args are passed to the program verbatim.
		Args []string
		// Dir is the working directory. Empty means the current directory.
		Dir string
		// Env holds variables layered on top of the inherited environment.
		Env map[string]string
	}

	// Executor runs external programs and blocks until they exit.
	Executor interface {
		Run(ctx context.Context, cmd Command) *Result
	}

	// IO holds the output streams given to launched programs.
	IO struct {
		Stdout io.Writer
		Stderr io.Writer
	}
)

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: %s, %s)", e.Value, ModeNative, ModeVirtual)
}

func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// Validate returns an error if the mode is not recognized.
func (m Mode) Validate() error {
	switch m {
	case ModeNative, ModeVirtual:
		return nil
	default:
		return &InvalidModeError{Value: m}
	}
}

// New returns the Executor for the given mode.
func New(mode Mode, streams IO) (Executor, error) {
	switch mode {
	case ModeNative, "":
		return NewNativeExecutor(streams), nil
	case ModeVirtual:
		return NewVirtualExecutor(streams), nil
	default:
		return nil, &InvalidModeError{Value: mode}
	}
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	return strings.Join(parts, " ")
}

// environ merges the process environment with the command overrides.
// Overrides are appended in key order so the result is deterministic.
func (c Command) environ() []string {
	env := os.Environ()
	for _, k := range slices.Sorted(maps.Keys(c.Env)) {
		env = append(env, k+"="+c.Env[k])
	}
	return env
}

func (s IO) withDefaults() IO {
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
	return s
}
