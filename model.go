package xcheck

import (
	"xcheck/stubborn"
	"xcheck/vecstate"
)

// Model is the required contract spec.md §6 lists for the concrete system
// under check. Declare runs once, before exploration starts, and must only
// call l.Declare; NrTransitions both finishes the model's own setup and
// writes the initial state into init (its return value fixes the initial
// state, matching the source's "defines initial state on return").
type Model interface {
	Declare(l *vecstate.Layout)
	NrTransitions(init Cursor) (int, error)
	Fire(c Cursor, tr int) (fired bool, err error)
	Print(c Cursor) string
}

// StateChecker is an optional model capability enabled by WithSafety. A
// non-empty message reports a safety violation for the state c borrows.
type StateChecker interface {
	CheckState(c Cursor) (msg string, ok bool)
}

// DeadlockChecker is an optional model capability enabled by
// WithDeadlockCheck, consulted only at terminal states.
type DeadlockChecker interface {
	CheckDeadlock(c Cursor) (msg string, ok bool)
}

// MayProgressModel is an optional model capability enabled by
// WithMayProgress.
type MayProgressModel interface {
	IsMayProgress(c Cursor) bool
}

// MustProgressModel is an optional model capability enabled by
// WithMustProgress.
type MustProgressModel interface {
	IsMustProgress(c Cursor) bool
}

// Symmetric is an optional model capability enabled by WithSymmetry: it
// canonicalises the state c borrows in place, mapping it to its
// equivalence-class representative.
type Symmetric interface {
	Canonicalize(c Cursor)
}

// StubbornModel is the optional model capability enabled by
// WithStubbornSets: the obligation graph driving the stubborn-set builder
// (spec.md §4.6).
type StubbornModel interface {
	NextStubborn(c Cursor, tr int, e *stubborn.Emitter)
}
