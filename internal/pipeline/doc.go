// SPDX-License-Identifier: MPL-2.0

// Package pipeline runs an ordered list of steps, each annotated with how
// its failure is treated. A Fatal step that fails stops the run and its
// error is returned; a Tolerated step that fails is logged and recorded in
// the Report, and the run continues with the next step.
package pipeline
