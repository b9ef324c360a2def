package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation ErrKind = "validation" // 400
	KindAuth       ErrKind = "auth"       // 401
	KindForbidden  ErrKind = "forbidden"  // 403
	KindNotFound   ErrKind = "not_found"  // 404
	KindConflict   ErrKind = "conflict"   // 409
	KindUpstream   ErrKind = "upstream"   // 502
	KindInternal   ErrKind = "internal"   // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code
// - Message: safe summary for clients
// - Meta: optional details (field, reason, etc.)
// - Cause: wrapped internal error for logging
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

// Is reports whether err (or anything it wraps) is a domain error with the given code.
func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// KindOf returns the kind of the first domain error in err's chain, or KindInternal.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

func ErrUnsupportedImage(cause error) *Error {
	return Wrap(KindValidation, "unsupported_image", "image could not be read", cause)
}

func ErrImageTooLarge(limit int64) *Error {
	return WithMeta(New(KindValidation, "image_too_large", "image exceeds upload limit"), map[string]string{
		"limit_bytes": fmt.Sprintf("%d", limit),
	})
}

// ----------------------
// Auth errors (401)
// ----------------------

// ErrInvalidCredentials is returned for every login failure so callers cannot enumerate emails.
func ErrInvalidCredentials() *Error {
	return New(KindAuth, "invalid_credentials", "invalid email or password")
}

func ErrSignInFailed(msg string, cause error) *Error {
	if msg == "" {
		msg = "sign in failed"
	}
	return Wrap(KindAuth, "sign_in_failed", msg, cause)
}

func ErrTokenInvalid() *Error {
	return New(KindAuth, "token_invalid", "invalid token")
}

func ErrTokenExpired() *Error {
	return New(KindAuth, "token_expired", "token is expired")
}

// ----------------------
// Forbidden / not found / conflict
// ----------------------

func ErrAdminRequired() *Error {
	return New(KindForbidden, "admin_required", "admin role required")
}

func ErrUpdateForbidden() *Error {
	return New(KindForbidden, "update_forbidden", "not allowed to update this event")
}

func ErrNotFound(what string) *Error {
	return WithMeta(New(KindNotFound, "not_found", what+" not found"), map[string]string{
		"resource": what,
	})
}

func ErrInvalidState(msg string) *Error {
	return New(KindConflict, "invalid_state", msg)
}

func ErrSaveInFlight() *Error {
	return New(KindConflict, "save_in_flight", "a save is already in progress")
}

// ----------------------
// Collaborator failures
// ----------------------

// ErrRoleLookup is logged only; callers degrade to a non-admin session.
func ErrRoleLookup(cause error) *Error {
	return Wrap(KindUpstream, "role_lookup_failed", "role lookup failed", cause)
}

func ErrFetchEvents(cause error) *Error {
	return Wrap(KindUpstream, "events_fetch_failed", "events could not be loaded", cause)
}

func ErrUpload(cause error) *Error {
	return Wrap(KindUpstream, "upload_failed", "image upload failed", cause)
}

func ErrUpdate(cause error) *Error {
	return Wrap(KindUpstream, "update_failed", "event update failed", cause)
}

func ErrUpstream(code, msg string, cause error) *Error {
	return Wrap(KindUpstream, code, msg, cause)
}
