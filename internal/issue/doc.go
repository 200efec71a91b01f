// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// Errors raised while loading a project, checking staleness, or running the
// packaging pipeline are wrapped in ActionableError so the CLI can print what
// was attempted, which path was involved, and how to recover. Each failure
// class also has a Markdown catalog entry rendered with glamour.
package issue
