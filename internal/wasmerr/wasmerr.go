// Package wasmerr enumerates the error conditions this engine can report,
// both for malformed/invalid modules and for trapping GC operations. Errors
// carry a fixed Kind plus a free-form message so callers can switch on Kind
// without string matching. Errors propagate as values through every package
// and are only turned into a fatal exit at the CLI boundary (cmd/wasmgc).
package wasmerr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error without reference to its message text.
type Kind uint8

const (
	// Validation/decoding failures (spec.md §7).
	MalformedMagic Kind = iota
	MalformedVersion
	MalformedSort
	MalformedSection
	MalformedValType

	// Trapping runtime conditions (spec.md §4.5, §7).
	CastNullToNonNull
	LengthOutOfBounds

	// Terminated reports input this core does not parse: a component-model
	// binary (component preamble) rather than a core module.
	Terminated
)

func (k Kind) String() string {
	switch k {
	case MalformedMagic:
		return "malformed magic"
	case MalformedVersion:
		return "malformed version"
	case MalformedSort:
		return "malformed sort"
	case MalformedSection:
		return "malformed section"
	case MalformedValType:
		return "malformed value type"
	case CastNullToNonNull:
		return "cast null to non-null"
	case LengthOutOfBounds:
		return "length out of bounds"
	case Terminated:
		return "terminated"
	default:
		return "unknown error"
	}
}

// Error is the engine's uniform error type. Kind is comparable so callers
// can test for a specific condition with errors.As and a switch on Kind.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New constructs an Error of the given kind with a formatted message.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a *Error of kind k, unwrapping as needed.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
