// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type (
	// Runner executes steps strictly in order, one at a time.
	Runner struct {
		logger *slog.Logger
		now    func() time.Time
	}

	// Outcome is the result of a single executed step.
	Outcome struct {
		Step     string
		Policy   Policy
		Err      error
		Duration time.Duration
	}

	// Report lists the executed steps in order. Steps after a fatal failure
	// are absent.
	Report struct {
		Outcomes []Outcome
	}
)

// NewRunner creates a Runner. A nil logger falls back to slog.Default().
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger, now: time.Now}
}

// Run executes steps in order. The first failing Fatal step ends the run
// with a *StepError; failures of Tolerated steps are logged as warnings.
// A context cancelled between steps stops the run before the next step.
func (r *Runner) Run(ctx context.Context, steps []Step) (*Report, error) {
	for _, s := range steps {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	report := &Report{}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return report, &StepError{Step: s.Name, Err: fmt.Errorf("canceled before start: %w", err)}
		}

		r.logger.Debug("running step", "step", s.Name, "policy", s.Policy.String())
		start := r.now()
		err := s.Run(ctx)
		outcome := Outcome{Step: s.Name, Policy: s.Policy, Err: err, Duration: r.now().Sub(start)}
		report.Outcomes = append(report.Outcomes, outcome)

		if err == nil {
			r.logger.Debug("step finished", "step", s.Name, "duration", outcome.Duration)
			continue
		}
		if s.Policy == Tolerated {
			r.logger.Warn("step failed, continuing", "step", s.Name, "error", err)
			continue
		}
		return report, &StepError{Step: s.Name, Err: err}
	}
	return report, nil
}

// Warnings returns the errors of tolerated steps that failed.
func (r *Report) Warnings() []error {
	if r == nil {
		return nil
	}
	var out []error
	for _, o := range r.Outcomes {
		if o.Err != nil && o.Policy == Tolerated {
			out = append(out, o.Err)
		}
	}
	return out
}

// Executed returns the names of the steps that ran, in order.
func (r *Report) Executed() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		names = append(names, o.Step)
	}
	return names
}
