// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the usual Must* wrappers (MustSetenv, MustMkdirAll),
// it offers file helpers that pin modification times, which staleness tests
// rely on: MustWriteFileAt and MustTouch.
package testutil
