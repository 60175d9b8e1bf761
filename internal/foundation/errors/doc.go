// Package errors provides the classified error primitives used by tagbuilder.
//
// A ClassifiedError carries a category (what kind of failure), a severity and
// a retry hint, plus structured context. The CLI adapter maps categories to
// process exit codes so that build scripts can tell a stale tag directory
// apart from a broken configuration or an unreadable posts directory.
//
// Example usage:
//
//	err := errors.FileSystemError("posts directory not found").
//		WithContext("path", dir).
//		WithCause(statErr).
//		Build()
package errors
