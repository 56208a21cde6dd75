// SPDX-License-Identifier: MPL-2.0

// Package logging constructs the structured loggers shared by ccbuild
// components.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New creates a logger writing to w with the given component prefix.
// Debug records are emitted only when verbose is set.
func New(w io.Writer, prefix string, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: prefix,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Discard returns a logger that drops every record. Components fall back to
// it when no logger is injected.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns logger, or a discarding logger when logger is nil.
func OrDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
