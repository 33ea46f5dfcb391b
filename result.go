package xcheck

// Result summarises a completed run: the size of the built graph, any
// verification failure encountered, its rendered counterexample (if any),
// and configuration warnings (spec.md §7 Configuration warning).
type Result struct {
	States    int
	Edges     int
	SizeParam int // the value passed to WithSizeParameter, 0 if unset
	Err       error
	Trace     string
	Warnings  []string
}

// OK reports whether no property violation was found.
func (r Result) OK() bool { return r.Err == nil }
