// Package errs classifies the failures every generator can report so the
// command line can map them to a distinct exit status.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a coarse failure class.
type Kind int

const (
	KindIO Kind = iota + 1
	KindUsage
	KindNotFound
	KindValidation
	KindAlreadyExists
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindUsage:
		return "usage"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindAlreadyExists:
		return "already exists"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit status for k.
func (k Kind) ExitCode() int {
	switch k {
	case KindUsage:
		return 2
	case KindNotFound:
		return 3
	case KindValidation:
		return 4
	case KindAlreadyExists:
		return 5
	default:
		return 1
	}
}

// Kinded is implemented by errors that carry their own failure class.
type Kinded interface {
	error
	Kind() Kind
}

// Error is the general-purpose classified error.
type Error struct {
	Class Kind
	Op    string
	Path  string
	Hint  string
	Err   error
}

func (e *Error) Kind() Kind { return e.Class }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		if msg != "" {
			msg += " "
		}
		msg += e.Path
	}
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Validation reports malformed input.
func Validation(format string, args ...any) error {
	return &Error{Class: KindValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound reports a missing document, anchor or identifier. hint usually
// lists the searched candidates or the valid alternatives.
func NotFound(what, path, hint string) error {
	return &Error{Class: KindNotFound, Op: what + " not found:", Path: path, Hint: hint}
}

// AlreadyExists reports a destination that must not be overwritten.
func AlreadyExists(path string) error {
	return &Error{Class: KindAlreadyExists, Op: "already exists:", Path: path}
}

// IO wraps a file system failure with the offending path.
func IO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Class: KindIO, Op: op, Path: path, Err: err}
}

// Usage reports a command line misuse.
func Usage(format string, args ...any) error {
	return &Error{Class: KindUsage, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the class of the first classified error in err's chain, or
// KindIO when nothing in the chain is classified.
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindIO
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
