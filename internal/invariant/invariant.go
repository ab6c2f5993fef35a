// Package invariant provides contract assertions for the engine's internal
// bookkeeping.
//
// These checks catch programmer errors, not user-input or runtime-format
// errors: a malformed FTL resource, a missing variable, or a failing custom
// function must never reach this package. Those are collected into
// diagnostics and error tuples elsewhere. Use Precondition/Postcondition to
// express function contracts and Invariant for internal consistency checks
// during parsing, validation, and resolution.
package invariant

import (
	"fmt"
	"runtime"
)

// Precondition panics with a PRECONDITION VIOLATION if condition is false.
func Precondition(condition bool, format string, args ...any) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition panics with a POSTCONDITION VIOLATION if condition is false.
func Postcondition(condition bool, format string, args ...any) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant panics with an INVARIANT VIOLATION if condition is false.
//
// Use this for loop progress checks, recursion-budget bookkeeping, and
// internal state consistency (e.g. exactly one default variant survived
// validation).
func Invariant(condition bool, format string, args ...any) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// Positive panics if value <= 0. Typically used on counters that must never
// go negative or stay at zero after an increment.
func Positive(value int, name string) {
	if value <= 0 {
		fail("POSTCONDITION", "%s must be positive, got %d", name, value)
	}
}

// NonNegative panics if value < 0.
func NonNegative(value int, name string) {
	if value < 0 {
		fail("INVARIANT", "%s must not be negative, got %d", name, value)
	}
}

// fail panics with a formatted message including the caller's file:line.
func fail(kind, format string, args ...any) {
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]any{kind}, args...)...)
	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}
	panic(msg)
}
