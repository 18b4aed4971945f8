package brightness

import (
	"errors"
	"fmt"
)

// Kind classifies why an invocation failed.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindEnvironment
	KindNotFound
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindEnvironment:
		return "environment error"
	case KindNotFound:
		return "device not found"
	case KindIO:
		return "i/o error"
	default:
		return "unknown error"
	}
}

var (
	// ErrInvalidInput indicates a percentage outside [0,100] or a non-numeric argument.
	ErrInvalidInput = &Error{Kind: KindInvalidInput}

	// ErrEnvironment indicates the class root directory could not be read.
	ErrEnvironment = &Error{Kind: KindEnvironment}

	// ErrNotFound indicates the root was read but held no usable device.
	ErrNotFound = &Error{Kind: KindNotFound}

	// ErrIO indicates a control file of the selected device could not be read, parsed or written.
	ErrIO = &Error{Kind: KindIO}

	errZeroMax = errors.New("maximum level must be at least 1")
)

// Error is returned by every operation of this package.
type Error struct {
	Kind  Kind
	Class Class
	Path  string
	Value string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	switch e.Kind {
	case KindInvalidInput:
		msg = fmt.Sprintf("invalid percentage %q: must be a whole number from 0 to 100", e.Value)
	case KindEnvironment:
		msg = fmt.Sprintf("cannot open %s directory %s", e.Class, e.Path)
	case KindNotFound:
		msg = fmt.Sprintf("no %s device found in %s", e.Class, e.Path)
	case KindIO:
		msg = e.Path
		if e.Value != "" {
			msg = fmt.Sprintf("%s (value %q)", e.Path, e.Value)
		}
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Path == "" && t.Err == nil
}

// KindOf returns the kind of err, or 0 if err did not come from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
