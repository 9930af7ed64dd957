// Package errors provides coded domain errors shared across modules.
//
// Services return these so transport layers can translate them into HTTP
// responses without inspecting error strings. Infrastructure layers should
// return pkg/platform/sentinel errors instead and let services translate.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain error. Codes are stable API: they appear
// verbatim in JSON error responses and in job step results.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal_error"

	// Lifecycle engine taxonomy.

	// CodeTransientStore marks a retriable store failure (network, timeout,
	// rate limit). Surfaced only after retries exhaust.
	CodeTransientStore Code = "transient_store"

	// CodePolicyViolation marks a catalog or policy configuration bug.
	// Never retried; the owning job transitions to FAILED.
	CodePolicyViolation Code = "policy_violation"

	// CodePartialCascade marks a cascade halted mid-way after a step
	// exhausted its retries. The job is resumable.
	CodePartialCascade Code = "partial_cascade"

	// CodeAuthRevocation marks the security-sensitive case where all data
	// steps succeeded but the identity provider refused the revocation.
	CodeAuthRevocation Code = "auth_revocation"

	// CodeJobAlreadyRunning is returned to concurrent erasure requests for
	// a subject whose job is in flight.
	CodeJobAlreadyRunning Code = "job_already_running"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates a cause with a code and message. Returns nil when err is nil
// so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost coded error, or CodeInternal when
// the chain carries none.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}
