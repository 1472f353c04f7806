package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was refused.
type Kind string

const (
	// KindInput covers malformed or unknown identifiers, out-of-range
	// values and business-rule violations such as "already pinned".
	KindInput Kind = "INPUT_ERROR"
	// KindAccess covers bad session tokens and missing permissions.
	KindAccess Kind = "ACCESS_ERROR"
	// KindInternal is a directory fault that is not the caller's doing.
	KindInternal Kind = "INTERNAL_ERROR"
)

type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind and message, so sentinel values
// can be compared with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Constructors
func Input(msg string) error {
	return &Error{Kind: KindInput, Message: msg}
}

func Access(msg string) error {
	return &Error{Kind: KindAccess, Message: msg}
}

func Internal(msg string, cause error) error {
	return &Error{Kind: KindInternal, Message: msg, Cause: cause}
}

// KindOf reports the kind of err, or KindInternal for errors that did not
// originate here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsInput(err error) bool  { return err != nil && KindOf(err) == KindInput }
func IsAccess(err error) bool { return err != nil && KindOf(err) == KindAccess }
