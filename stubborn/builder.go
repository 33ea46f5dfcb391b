// Package stubborn computes, for one source state at a time, a reduced set
// of transitions sufficient to preserve the properties being checked. It
// runs an iterative Tarjan strongly-connected-component search over the
// obligation graph the model exposes through Emitter, and fires every
// enabled transition in the first closed SCC it finds.
package stubborn

import (
	"fmt"

	"slices"
)

// Emitter receives one transition's obligation neighbours. The model must
// call exactly one of Some or All while answering NextStubborn for a given
// transition. The Builder reports a transition answered with neither call;
// a repeated call is not detected: a later Some replaces the earlier list,
// and All after Some takes precedence.
type Emitter struct {
	called bool
	all    bool
	nrTr   int
	some   []int
}

// Some records the (up to four) transitions that must also be in the
// stubborn set if tr is.
func (e *Emitter) Some(trs ...int) {
	e.called = true
	e.some = trs
}

// All records that every transition must be considered an obligation of tr.
func (e *Emitter) All() {
	e.called = true
	e.all = true
}

// Model is the obligation-graph contract the stubborn-set builder consumes.
type Model interface {
	// NextStubborn reports tr's obligation neighbours via exactly one
	// call to e.Some or e.All.
	NextStubborn(tr int, e *Emitter)
	// TryTransition attempts to fire tr from the current source state.
	// It returns whether tr was enabled (and therefore fired).
	TryTransition(tr int) (fired bool, err error)
}

// ErrNoEmit is returned when NextStubborn answers a transition without
// calling Some or All at all.
type ErrNoEmit struct{ Transition int }

func (e ErrNoEmit) Error() string {
	return fmt.Sprintf("stubborn: transition %d's obligations were not reported exactly once", e.Transition)
}

// ErrDuplicateNeighbor is returned when a transition's obligation list
// names the same neighbour twice.
type ErrDuplicateNeighbor struct {
	Transition int
	Neighbor   int
}

func (e ErrDuplicateNeighbor) Error() string {
	return fmt.Sprintf("stubborn: transition %d reported neighbour %d more than once", e.Transition, e.Neighbor)
}

const none = -1

// Builder holds the per-source-state working arrays of the iterative
// Tarjan search, reused across every source state explored (stub_found's
// pass-number trick avoids per-source reinitialisation).
type Builder struct {
	nrTrans int
	order   []int // transition trial order, e.g. descending by index

	found  []int // pass number a transition was last entered in
	passNr int

	obligations [][]int // cached NextStubborn answer for this pass, or nil
	obligAll    []bool
	next        []int // read cursor into obligations[tr], or into 0..nrTrans for All

	dfsStack []int
	sccStack []int
	min      []int // lowlink: index into sccStack, or none once finalised
}

// NewBuilder creates a Builder for a model with nrTrans transitions, tried
// in the given order (a permutation of 0..nrTrans-1). order is cloned so
// the caller is free to reuse or mutate its own copy afterwards.
func NewBuilder(nrTrans int, order []int) *Builder {
	return &Builder{
		nrTrans:     nrTrans,
		order:       slices.Clone(order),
		found:       make([]int, nrTrans),
		obligations: make([][]int, nrTrans),
		obligAll:    make([]bool, nrTrans),
		next:        make([]int, nrTrans),
		min:         make([]int, nrTrans),
	}
}

func (b *Builder) newPass() {
	b.passNr++
	if b.passNr == 0 { // wrapped around
		for i := range b.found {
			b.found[i] = 0
		}
		b.passNr = 1
	}
	for i := 0; i < b.nrTrans; i++ {
		b.obligations[i] = nil
		b.obligAll[i] = false
		b.next[i] = 0
	}
	b.dfsStack = b.dfsStack[:0]
	b.sccStack = b.sccStack[:0]
}

// neighbor returns tr's next unreported obligation neighbour this pass, or
// (-1, false) once they are exhausted.
func (b *Builder) neighbor(tr int, m Model) (int, error) {
	if b.obligations[tr] == nil && !b.obligAll[tr] {
		e := Emitter{nrTr: b.nrTrans}
		m.NextStubborn(tr, &e)
		if !e.called {
			return none, ErrNoEmit{Transition: tr}
		}
		if e.all {
			b.obligAll[tr] = true
		} else {
			for i, n := range e.some {
				if slices.Contains(e.some[:i], n) {
					return none, ErrDuplicateNeighbor{Transition: tr, Neighbor: n}
				}
			}
			b.obligations[tr] = e.some
			if b.obligations[tr] == nil {
				b.obligations[tr] = []int{}
			}
		}
	}
	if b.obligAll[tr] {
		if b.next[tr] >= b.nrTrans {
			return none, nil
		}
		n := b.next[tr]
		b.next[tr]++
		return n, nil
	}
	list := b.obligations[tr]
	if b.next[tr] >= len(list) {
		return none, nil
	}
	n := list[b.next[tr]]
	b.next[tr]++
	return n, nil
}

// Run tries transitions, in the builder's configured order, as stubborn-set
// DFS roots until some closed SCC yields at least one enabled (and
// therefore fired) transition, or every starting point has been exhausted
// (a natural deadlock). someFired tells the caller whether anything was
// fired; when false, the source state is terminal.
func (b *Builder) Run(m Model) (someFired bool, err error) {
	b.newPass()
	for _, tr := range b.order {
		if b.found[tr] == b.passNr {
			continue
		}
		fired, err := b.dfs(tr, m)
		if err != nil {
			return false, err
		}
		if fired {
			return true, nil
		}
	}
	return false, nil
}

func (b *Builder) dfs(root int, m Model) (bool, error) {
	b.found[root] = b.passNr
	b.sccStack = append(b.sccStack, root)
	b.min[root] = len(b.sccStack) - 1
	b.dfsStack = append(b.dfsStack, root)

	for len(b.dfsStack) > 0 {
		t1 := b.dfsStack[len(b.dfsStack)-1]
		t2, err := b.neighbor(t1, m)
		if err != nil {
			return false, err
		}

		if t2 == none {
			b.dfsStack = b.dfsStack[:len(b.dfsStack)-1]
			if b.sccStack[b.min[t1]] == t1 {
				// t1 roots a completed SCC: fire every member.
				start := b.min[t1]
				members := append([]int(nil), b.sccStack[start:]...)
				for _, elem := range members {
					b.min[elem] = none
				}
				b.sccStack = b.sccStack[:start]

				fired := false
				for _, elem := range members {
					ok, err := m.TryTransition(elem)
					if err != nil {
						return false, err
					}
					if ok {
						fired = true
					}
				}
				if fired {
					return true, nil
				}
				continue
			}
			if len(b.dfsStack) > 0 {
				parent := b.dfsStack[len(b.dfsStack)-1]
				if b.min[t1] < b.min[parent] {
					b.min[parent] = b.min[t1]
				}
			}
			continue
		}

		if b.found[t2] != b.passNr {
			b.found[t2] = b.passNr
			b.sccStack = append(b.sccStack, t2)
			b.min[t2] = len(b.sccStack) - 1
			b.dfsStack = append(b.dfsStack, t2)
			continue
		}
		if b.min[t2] != none {
			if b.min[t2] < b.min[t1] {
				b.min[t1] = b.min[t2]
			}
		}
	}
	return false, nil
}
