// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the hot paths of an extbuild run,
// used to produce PGO profiles:
//   - the shallow input scan and recursive output walk behind NeedsBuild
//   - CUE config decoding and validation
//   - process launches through the native and virtual runtimes
//
// To generate a profile:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark
