// SPDX-License-Identifier: MPL-2.0

// Package artifact implements incremental builds of a packaged extension.
//
// A Project is a directory whose contents are bundled into a single file
// with a fixed suffix (".vsix" by default) placed inside the same directory.
// A BuildTask bound to a Project decides whether the bundle is stale,
// rebuilds it through an ordered pipeline of external tools, and removes
// generated files on clean.
//
// Staleness is decided from modification times only. Inputs are the regular
// files directly inside the project root and directly inside each configured
// input subdirectory; deeper files are not considered. Nothing is cached
// between calls: every NeedsBuild re-reads the filesystem.
//
// A BuildTask assumes exclusive access to its project directory while Build
// or Clean run. Callers must not run them concurrently for the same project.
package artifact
