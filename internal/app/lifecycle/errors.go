// internal/app/lifecycle/errors.go
package lifecycle

import (
	"errors"
	"fmt"
)

// Kind classifies a lifecycle failure so callers can pick a response
// without inspecting message text.
type Kind int

const (
	// KindValidation marks empty or malformed input. The message is safe
	// to show verbatim.
	KindValidation Kind = iota + 1

	// KindNotFound marks an unmatched invite code or service id. Callers
	// surface a generic not-found message.
	KindNotFound

	// KindAuthorization marks the wrong actor for an action. Callers
	// surface a generic permission-denied message.
	KindAuthorization

	// KindConflict marks an action against the wrong state: duplicate
	// participant, self-join, or an ineligible status. The message names
	// the specific reason since it is actionable and non-sensitive.
	KindConflict

	// KindStorage marks a backend failure. The cause is logged; callers
	// surface a generic retry-later message.
	KindStorage
)

// String returns a short label for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by every lifecycle operation for
// expected domain conditions. Operations never panic for these; only a
// broken backend surfaces as KindStorage with the cause attached.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Validationf builds a KindValidation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a KindNotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Authorizationf builds a KindAuthorization error.
func Authorizationf(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a KindConflict error.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a backend failure.
func Storage(msg string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: msg, cause: cause}
}

// KindOf returns the kind of a lifecycle error, or 0 when err is not one.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}

// IsKind reports whether err is a lifecycle error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
