// Package errors provides the classified error primitives used across WebForge.
//
// Every failure that crosses a package boundary is a ClassifiedError carrying a
// category (validation, storage, encryption, ...), a severity, a retry hint and
// a small context map. Adapters turn them into CLI exit codes or HTTP responses.
//
// Example usage:
//
//	err := errors.StorageError("failed to create client workspace").
//		WithCause(osErr).
//		WithContext("path", dir).
//		Build()
package errors
