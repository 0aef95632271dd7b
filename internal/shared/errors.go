package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicate indicates a uniqueness violation in the store.
	ErrDuplicate = errors.New("duplicate entry")
)

// Kind classifies an Error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// FieldError describes a single failing request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the typed failure shared by the auth pipeline and request handlers.
// Reason is a stable machine-readable tag; Message is safe to show to callers.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s(%s): %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s(%s): %s", e.Kind, e.Reason, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthenticated reports that no identity could be established.
func Unauthenticated(reason, message string) *Error {
	return &Error{Kind: KindUnauthenticated, Reason: reason, Message: message}
}

// Forbidden reports an established identity that may not perform the action.
func Forbidden(reason, message string) *Error {
	return &Error{Kind: KindForbidden, Reason: reason, Message: message}
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Reason: "not found", Message: message, Err: ErrNotFound}
}

// Conflict reports a request that clashes with existing state.
func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Reason: "conflict", Message: message, Err: err}
}

// ValidationFailed carries every failing field of a request payload.
func ValidationFailed(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Reason: "validation", Message: "Validation failed", Fields: fields}
}

// Internal wraps an unexpected failure; message is the generic text shown to callers.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Reason: "internal", Message: message, Err: err}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf classifies err; anything that is not an *Error is internal.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindInternal
}

// WithMessage returns a copy of err with the caller-facing message replaced.
// Errors that are not *Error are returned unchanged.
func WithMessage(err error, message string) error {
	e, ok := AsError(err)
	if !ok {
		return err
	}
	cp := *e
	cp.Message = message
	return &cp
}
