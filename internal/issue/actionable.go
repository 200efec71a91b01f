// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a failure worth showing to a user: what extbuild
	// was doing, which path it was working on, and what the user can try.
	//
	// Build one with the ErrorContext builder:
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("install dependencies").
	//		WithResource(projectDir).
	//		WithSuggestionf("Run '%s install' in %s to see the full output", pm, projectDir).
	//		Wrap(cause).
	//		Err()
	ActionableError struct {
		// Operation is a verb phrase, e.g. "package extension".
		Operation string
		// Resource is the file or directory involved. Optional.
		Resource string
		// Suggestions are shown one per line below the message.
		Suggestions []string
		// Cause is the underlying error. Optional.
		Cause error
	}

	// ErrorContext accumulates the fields of an ActionableError.
	ErrorContext struct {
		ae ActionableError
	}
)

// NewErrorContext starts an empty ErrorContext.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WrapWithContext is shorthand for an ActionableError without suggestions.
// It returns nil when err is nil.
func WrapWithContext(err error, operation, resource string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Resource: resource, Cause: err}
}

func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the cause.
func (e *ActionableError) Unwrap() error { return e.Cause }

// Format renders the message and its suggestions. Verbose output also lists
// every error in the cause chain, outermost first.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, s := range e.Suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			depth++
		}
	}
	return msg.String()
}

// WithOperation sets the verb phrase describing the failed operation.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.ae.Operation = op
	return c
}

// WithResource sets the file or directory involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.ae.Resource = res
	return c
}

// WithSuggestion appends a suggestion.
func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	c.ae.Suggestions = append(c.ae.Suggestions, s)
	return c
}

// WithSuggestionf appends a formatted suggestion.
func (c *ErrorContext) WithSuggestionf(format string, args ...any) *ErrorContext {
	return c.WithSuggestion(fmt.Sprintf(format, args...))
}

// Wrap sets the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.ae.Cause = err
	return c
}

// Err returns the accumulated ActionableError. Without an operation there
// is nothing to report: the cause is returned unchanged, which is nil when
// no cause was set either.
func (c *ErrorContext) Err() error {
	if c.ae.Operation == "" {
		return c.ae.Cause
	}
	ae := c.ae
	ae.Suggestions = append([]string(nil), c.ae.Suggestions...)
	return &ae
}
