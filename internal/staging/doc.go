// SPDX-License-Identifier: MPL-2.0

// Package staging copies prebuilt files produced by an upstream build into a
// project's staging directory before packaging.
//
// Upstream artifacts are looked up by symbolic name. GlobProvider maps each
// name to a doublestar pattern relative to a base directory; when several
// files match, the most recently modified one wins.
package staging
