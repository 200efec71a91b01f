// SPDX-License-Identifier: MPL-2.0

// Package toolchain wraps the external package manager and packaging
// executable used to produce an extension bundle.
package toolchain
