// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
)

const (
	// Fatal aborts the pipeline when the step fails.
	Fatal Policy = iota
	// Tolerated logs the failure and continues with the next step.
	Tolerated
)

// ErrInvalidStep is returned when a step has no name or no Run function.
var ErrInvalidStep = errors.New("invalid pipeline step")

type (
	// Policy declares how a step failure is handled.
	Policy int

	// Step is one unit of work in a pipeline.
	Step struct {
		Name   string
		Policy Policy
		Run    func(ctx context.Context) error
	}

	// StepError reports which fatal step stopped the pipeline.
	StepError struct {
		Step string
		Err  error
	}
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Fatal:
		return "fatal"
	case Tolerated:
		return "tolerated"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Validate checks that the step can be executed.
func (s Step) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidStep)
	}
	if s.Run == nil {
		return fmt.Errorf("%w: %q has no Run function", ErrInvalidStep, s.Name)
	}
	if s.Policy != Fatal && s.Policy != Tolerated {
		return fmt.Errorf("%w: %q has unknown policy %s", ErrInvalidStep, s.Name, s.Policy)
	}
	return nil
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

// Unwrap returns the step's own error so typed causes stay reachable.
func (e *StepError) Unwrap() error { return e.Err }
