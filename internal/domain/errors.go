package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure so the transport layer can pick a status once.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindValidation          Kind = "validation_error"
	KindDuplicate           Kind = "duplicate"
	KindUnauthenticated     Kind = "unauthenticated"
	KindForbidden           Kind = "forbidden"
	KindAlreadyApplied      Kind = "already_applied"
	KindExpired             Kind = "expired"
	KindMissingFile         Kind = "missing_file"
	KindUnsupportedFileType Kind = "unsupported_file_type"
	KindFileTooLarge        Kind = "file_too_large"
	KindStorage             Kind = "storage_error"
	KindGeocodeNotFound     Kind = "geocode_not_found"
	KindTimeout             Kind = "timeout"
	KindRateLimited         Kind = "rate_limited"
	KindInternal            Kind = "internal"
)

// Error is the single error type returned by services.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Messages returns the per-field details when present, otherwise the message.
func (e *Error) Messages() []string {
	if len(e.Details) > 0 {
		return e.Details
	}
	return []string{e.Message}
}

func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return NewError(KindNotFound, message, nil)
}

func Forbidden(message string) *Error {
	return NewError(KindForbidden, message, nil)
}

func Invalid(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// KindOf reports the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return KindValidation
	}
	if isTimeout(err) {
		return KindTimeout
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// AsError normalizes any error into *Error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve.AsError()
	}
	if isTimeout(err) {
		return NewError(KindTimeout, "operation timed out", err)
	}
	return NewError(KindInternal, "internal server error", err)
}

// WrapTimeout turns a context deadline into a Timeout error and leaves
// everything else wrapped as the given kind.
func WrapTimeout(kind Kind, message string, err error) error {
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return NewError(KindTimeout, message+": timed out", err)
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return NewError(kind, message, err)
}

// ValidationError is a single field-level violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors is the full list of violations for one document.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

func (v ValidationErrors) AsError() *Error {
	details := make([]string, 0, len(v))
	for _, fe := range v {
		details = append(details, fe.Message)
	}
	return &Error{Kind: KindValidation, Message: "validation failed", Details: details, Err: v}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
