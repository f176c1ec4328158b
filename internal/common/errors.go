// Package common defines shared constants, sentinel errors and random helpers
// used across the tnyr server and client tooling. Callers should use errors.Is
// to match the sentinel values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrorConflict reports a lost race on a unique lookup key. The whole
	// operation can be retried with a fresh identifier.
	ErrorConflict = errors.New("lookup key conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors, usually wrapped with the offending field.
	ErrorValidation = errors.New("validation error")

	// ErrorExhausted is returned when the identifier allocator runs out of
	// attempts. It is transient.
	ErrorExhausted = errors.New("failed to generate unique id")

	// ErrorDeletionDisabled is returned by takedown when no deletion token
	// has been configured.
	ErrorDeletionDisabled = errors.New("deletion disabled")
)
