package domain

import (
	"context"
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// CodeOK labels successful invocations in metrics; it never appears
	// on an Error.
	CodeOK ErrorCode = "OK"

	CodeUnknownTool      ErrorCode = "UNKNOWN_TOOL"
	CodePolicyViolation  ErrorCode = "POLICY_VIOLATION"
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeRateLimited      ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeUnavailable      ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeDeadlineExceeded ErrorCode = "TIMEOUT"
	CodePermanent        ErrorCode = "PERMANENT_FAILURE"
	CodeInternal         ErrorCode = "INTERNAL"
)

var (
	ErrToolNotFound   = errors.New("tool not found")
	ErrSecretNotFound = errors.New("secret not found")
	ErrRateLimited    = errors.New("rate limit exceeded")
)

// Error is the typed failure surfaced by the pipeline. Identifier carries
// the rejected secret name or domain for policy denials.
type Error struct {
	Code       ErrorCode
	Op         string
	Message    string
	Cause      error
	Retryable  bool
	Identifier string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

// Transient marks an error as retryable. Used by handlers to classify
// upstream failures (timeouts, 5xx, connection reset).
func Transient(op, msg string, cause error) *Error {
	err := E(CodeUnavailable, op, msg, cause)
	err.Retryable = true
	return err
}

// Permanent marks a handler failure that retrying cannot change.
func Permanent(op, msg string, cause error) *Error {
	return E(CodePermanent, op, msg, cause)
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:       existing.Code,
			Op:         op,
			Message:    existing.Message,
			Cause:      existing.Cause,
			Retryable:  existing.Retryable,
			Identifier: existing.Identifier,
		}
	}
	return E(code, op, "", err)
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrToolNotFound):
		return CodeUnknownTool, true
	case errors.Is(err, ErrSecretNotFound):
		return CodePermanent, true
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited, true
	case errors.Is(err, context.DeadlineExceeded):
		return CodeDeadlineExceeded, true
	default:
		return "", false
	}
}

// IsTransient reports whether an error may succeed on retry. Context
// cancellation and deadline expiry are never transient: the caller asked
// to stop.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Retryable
	}
	return false
}
