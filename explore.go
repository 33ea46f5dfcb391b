package xcheck

import (
	"fmt"
	"io"

	"xcheck/statestore"
	"xcheck/stubborn"
	"xcheck/vecstate"
)

// mode selects what try_transition does with a successful firing, per
// spec.md §4.5 steps 6-7.
type mode int

const (
	modeForward mode = iota
	modeBackEdge
)

// engine is the BFS explorer (C4) plus trial engine (C5): it owns the
// reusable scratch vector and, when stubborn sets are enabled, the
// Tarjan builder that is reused across every source state in a single
// exploration pass.
type engine struct {
	model Model
	store *statestore.Store
	cfg   config

	scratch vecstate.Vector
	source  int
	mode    mode

	nrTrans int
	order   []int
	builder *stubborn.Builder
}

func newEngine(model Model, store *statestore.Store, cfg config, nrTrans int) *engine {
	order := make([]int, nrTrans)
	if cfg.forwardOrder {
		for i := range order {
			order[i] = i
		}
	} else {
		for i := range order {
			order[i] = nrTrans - 1 - i
		}
	}
	return &engine{
		model:   model,
		store:   store,
		cfg:     cfg,
		scratch: store.NewScratch(),
		nrTrans: nrTrans,
		order:   order,
	}
}

func (e *engine) cursorSane() bool { return !e.cfg.noSanityCheck }

// tryTransition is the trial engine (C5): it attempts to fire tr from the
// current source state, in whichever mode the engine is currently set to.
func (e *engine) tryTransition(tr int) (bool, error) {
	copy(e.scratch, e.store.Vector(e.source))
	c := Cursor{v: e.scratch, sane: e.cursorSane()}

	fired, err := e.model.Fire(c, tr)
	if err != nil {
		return false, FiringError{Transition: tr, Message: err.Error()}
	}
	if !fired {
		return false, nil
	}

	if e.cfg.symmetry {
		if sym, ok := e.model.(Symmetric); ok {
			sym.Canonicalize(c)
		}
	}

	switch e.mode {
	case modeForward:
		idx, isNew, err := e.store.LookupOrInsert(e.scratch, false)
		if err != nil {
			if capErr, ok := err.(statestore.ErrCapacity); ok {
				return false, ErrCapacityExceeded{StopCount: capErr.StopCount}
			}
			return false, err
		}
		e.store.RecordEdge(e.source, idx)
		if isNew {
			e.store.SetPrev(idx, e.source)
			if e.cfg.checkSafety {
				if sc, ok := e.model.(StateChecker); ok {
					sv := Cursor{v: e.store.Vector(idx), sane: e.cursorSane()}
					if msg, good := sc.CheckState(sv); !good {
						return true, VerificationError{Kind: KindSafety, Node: idx, Message: msg}
					}
				}
			}
		}
	case modeBackEdge:
		idx, _, err := e.store.LookupOrInsert(e.scratch, true)
		if err != nil {
			return false, err
		}
		e.store.RecordIncoming(e.source, idx)
	}
	return true, nil
}

// stubbornAdapter satisfies stubborn.Model by delegating to the engine's
// current source state.
type stubbornAdapter struct{ e *engine }

func (a *stubbornAdapter) NextStubborn(tr int, em *stubborn.Emitter) {
	sm := a.e.model.(StubbornModel)
	c := Cursor{v: a.e.store.Vector(a.e.source), sane: a.e.cursorSane()}
	sm.NextStubborn(c, tr, em)
}

func (a *stubbornAdapter) TryTransition(tr int) (bool, error) {
	return a.e.tryTransition(tr)
}

// fireAll tries every transition, in the engine's configured order, either
// directly (full enumeration) or through the stubborn-set builder. It
// returns the first error raised by a firing attempt, which may be a
// VerificationError carrying a safety violation.
func (e *engine) fireAll() error {
	if e.cfg.stubborn {
		if e.builder == nil {
			e.builder = stubborn.NewBuilder(e.nrTrans, e.order)
		}
		_, err := e.builder.Run(&stubbornAdapter{e: e})
		if err != nil {
			if _, ok := err.(VerificationError); ok {
				return err
			}
			if _, ok := err.(stubborn.ErrNoEmit); ok {
				return ErrStubbornSet{Cause: err}
			}
			if _, ok := err.(stubborn.ErrDuplicateNeighbor); ok {
				return ErrStubbornSet{Cause: err}
			}
			return err
		}
		return nil
	}
	for _, tr := range e.order {
		if _, err := e.tryTransition(tr); err != nil {
			return err
		}
	}
	return nil
}

// runForwardBFS is the BFS explorer (C4): it drains the discovered-state
// queue in strict index order, invoking fireAll at each source, and
// checking for deadlock once a source yields no new edges.
func runForwardBFS(e *engine, tickEvery int, out io.Writer) error {
	for qFirst := 1; qFirst <= e.store.Len(); qFirst++ {
		if tickEvery > 0 && qFirst%tickEvery == 0 {
			fmt.Fprintf(out, "... %d states explored, %d edges\n", qFirst, e.store.NrEdges())
		}

		e.source = qFirst
		oldEdges := e.store.NrEdges()

		if err := e.fireAll(); err != nil {
			return err
		}

		if e.store.NrEdges() == oldEdges && e.cfg.checkDeadlock {
			if dc, ok := e.model.(DeadlockChecker); ok {
				c := Cursor{v: e.store.Vector(qFirst), sane: e.cursorSane()}
				if msg, good := dc.CheckDeadlock(c); !good {
					return VerificationError{Kind: KindDeadlock, Node: qFirst, Message: msg}
				}
			}
		}
	}
	return nil
}

// successors probes every transition's target from node i without touching
// any store bookkeeping (no edge counts, no back-edge slots). It is used
// only by the counterexample reporter while searching for a lasso's
// repeating cycle; successors outside the already-discovered set (possible
// when a reduction pruned the edge that would have found them) are simply
// skipped, per spec.md §4.9.
func (e *engine) successors(i int) []int {
	var out []int
	for _, tr := range e.order {
		copy(e.scratch, e.store.Vector(i))
		c := Cursor{v: e.scratch, sane: e.cursorSane()}
		fired, err := e.model.Fire(c, tr)
		if err != nil || !fired {
			continue
		}
		if e.cfg.symmetry {
			if sym, ok := e.model.(Symmetric); ok {
				sym.Canonicalize(c)
			}
		}
		idx, _, err := e.store.LookupOrInsert(e.scratch, true)
		if err != nil || idx == 0 {
			continue
		}
		out = append(out, idx)
	}
	return out
}

// runBackEdgePass replays the exact same reduced exploration in
// back-edge-recording mode (C7), once forward BFS has completed cleanly.
func runBackEdgePass(e *engine) error {
	e.store.BuildBackEdges()
	e.mode = modeBackEdge
	e.builder = nil // fresh pass numbers for the replay
	for q := 1; q <= e.store.Len(); q++ {
		e.source = q
		if err := e.fireAll(); err != nil {
			return err
		}
	}
	return nil
}
