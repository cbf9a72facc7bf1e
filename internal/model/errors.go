package model

import "errors"

// Store-level sentinels. Services translate them into classified errors.
var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email is already taken")
)

// ErrorKind classifies a failure for callers of the service layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to show to a client for
// validation and conflict kinds; the other kinds are rendered generically.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports malformed or rule-breaking input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewUnauthorizedError reports a failed credential or token check.
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewNotFoundError reports a missing entity, or one the caller does not own.
func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewConflictError reports a uniqueness violation.
func NewConflictError(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

// NewInternalError wraps an unexpected store or dependency failure.
func NewInternalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified errors are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
