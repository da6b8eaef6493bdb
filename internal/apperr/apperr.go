// Package apperr defines the four failure kinds the ledger core may surface.
//
// Stores return their own sentinels or wrapped driver errors; the services
// classify each of them into exactly one Kind before returning, so callers
// only ever switch on Kind (or match the sentinels below with errors.Is).
package apperr

import (
	"errors"
	"fmt"
)

// Kind tags an Error.
type Kind int

const (
	KindStorage Kind = iota
	KindNotFound
	KindValidation
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	}

	return "storage"
}

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrStorage      = errors.New("storage failure")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a classified failure. Op names the operation that failed
// (e.g. "task.update") and Msg is safe to show to clients.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match an Error against the package sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrStorage:
		return e.Kind == KindStorage
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	}

	return false
}

func NotFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(op, format string, args ...any) error {
	return &Error{Kind: KindUnauthorized, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Storage wraps an unexpected store failure. The cause is kept for logs but
// never rendered to clients.
func Storage(op string, err error) error {
	return &Error{Kind: KindStorage, Op: op, Msg: "storage failure", Err: err}
}

// KindOf reports the kind of err. Anything that is not an *Error counts as
// a storage failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindStorage
}

// Message returns the client-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}

	return "storage failure"
}
