// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Every CUE input goes through the same steps: compile the schema, compile
// the user document and unify it with the schema root, then validate and
// decode into a Go struct. Errors carry the file name and the JSON-style
// path of the offending field.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	res, err := cueutil.DecodeFile[Config](schema, "ccbuild.cue", "#Config",
//	    cueutil.WithConcrete(false))
package cueutil
