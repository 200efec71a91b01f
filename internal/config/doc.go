// SPDX-License-Identifier: MPL-2.0

// Package config handles extbuild configuration using Viper with CUE as the
// file format.
//
// Configuration is read from, in order of precedence: the file passed with
// --config, extbuild.cue in the project directory, and config.cue in the
// user configuration directory ($XDG_CONFIG_HOME/extbuild on Linux). Files
// are validated against the embedded CUE schema (schema.cue) before being
// merged over the defaults. Environment variables prefixed with EXTBUILD_
// override file values; nested keys use underscores (EXTBUILD_RUNTIME,
// EXTBUILD_PROJECT_ROOT).
package config
