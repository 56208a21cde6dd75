// SPDX-License-Identifier: MPL-2.0

// Package issue carries user-facing failure context.
//
// ActionableError wraps a cause with the operation, resource and fix-it
// suggestions. The catalog in issue.go holds longer Markdown guides rendered
// with glamour, linked from an ActionableError through its Issue field.
package issue
