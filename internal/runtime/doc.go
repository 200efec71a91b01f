// SPDX-License-Identifier: MPL-2.0

// Package runtime launches the external tools used by the packaging
// pipeline. Two executors are provided: NativeExecutor runs the program
// directly with os/exec, and VirtualExecutor runs it through the embedded
// mvdan/sh interpreter, which resolves the program against the interpreter's
// own environment and working directory.
package runtime
