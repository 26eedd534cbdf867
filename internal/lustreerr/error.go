// Package lustreerr is the analyzer's internal-invariant error type,
// grounded on the teacher's internal/errors package (SentraError with
// Type/Message/Location), trimmed to what a single-threaded, in-memory
// analyzer needs: no call stack, since the core never crosses a goroutine
// boundary (spec §5). Layered on github.com/pkg/errors for wrap/cause
// chains the way the rest of the pack reaches for it.
package lustreerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an internal failure. These are all "should never happen
// on a well-formed, type-checked AST" bugs (spec §7), not user-facing
// diagnostics — those are diag.Diagnostic values instead.
type Kind string

const (
	// UnknownCallee fires if the compiler inlines a call whose callee was
	// not found, which type checking is supposed to rule out.
	UnknownCallee Kind = "unknown_callee"
	// MissingOutput fires if the step interpreter finds no value at an
	// output slot after a full pass (spec §4.5 step 3: "fatal interpreter bug").
	MissingOutput Kind = "missing_output"
	// BadIndex fires on a malformed compile or step request: an output or
	// variable with no equation, an unhandled expression shape, or an input
	// slot beyond the inputs given to Step.
	BadIndex Kind = "bad_index"
)

// Error is an internal invariant violation.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause with a stack trace via pkg/errors, for a failure
// that originated elsewhere but is being reported as an analyzer bug.
func Wrap(cause error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }
