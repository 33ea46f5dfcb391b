package xcheck

import "xcheck/vecstate"

// Cursor is the explicit replacement for the source's process-wide current
// state index (spec.md §9 DESIGN NOTES): a short-lived borrow of one state
// vector that a model's NrTransitions/Fire/Print methods read and write through
// variable Handles obtained at declaration time.
type Cursor struct {
	v    vecstate.Vector
	sane bool
}

// Get reads h's value out of the state this cursor currently borrows.
func (c Cursor) Get(h vecstate.Handle) uint32 { return h.Read(c.v) }

// Set writes value into h's field of the state this cursor currently
// borrows. It returns an error if the value does not fit h's declared bit
// width and sanity checking is enabled.
func (c Cursor) Set(h vecstate.Handle, value uint32) error {
	return h.Write(c.v, value, c.sane)
}
