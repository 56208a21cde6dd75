// SPDX-License-Identifier: MPL-2.0

// Package config loads the ccbuild build description.
//
// The user file (<config dir>/ccbuild/config.cue) and the project file
// (ccbuild.cue) are validated against an embedded CUE schema and merged over
// viper defaults, the project file winning. A file passed explicitly replaces
// both.
package config
