// Package progress implements the backward graph-labelling verifier used to
// check may-progress, must-progress, and (under stubborn sets) may-terminate
// properties, per spec.md §4.8.
package progress

// Round selects which of the three labelling passes to run.
type Round int

const (
	// RoundMay checks that, from every node, some progress node is
	// reachable (existential obligation: one satisfied successor
	// suffices).
	RoundMay Round = iota
	// RoundMust checks that every forward path eventually reaches a
	// progress node (universal obligation: every successor must be
	// satisfied).
	RoundMust
	// RoundMayTerminate checks, under stubborn-set reduction, that every
	// node can still reach a terminal state.
	RoundMayTerminate
)

// Graph is the read-only view of the discovered state graph the verifier
// needs. It is satisfied by *statestore.Store.
type Graph interface {
	Len() int
	OutDegree(i int) int
	IsTerminal(i int) bool
	IEdges(i int) []int
}

// Run labels every node with an independent obligation counter (kept in a
// working array private to this call, per the split-fields adaptation
// noted in spec.md §9) and propagates "satisfied" backward from every node
// that starts at zero. isProgress reports whether node i's stored state
// itself satisfies the progress predicate. excludeTerminals implements
// dl_not_may / dl_not_must: when true, terminal nodes do not trivially
// satisfy the property.
//
// It returns the first (by index) node left with a nonzero obligation
// count after the wave, or ok=true if every node was labelled satisfied.
func Run(g Graph, round Round, isProgress func(i int) bool, excludeTerminals bool) (violator int, ok bool) {
	n := g.Len()
	ecnt := make([]int, n+1)

	for i := 1; i <= n; i++ {
		switch round {
		case RoundMay:
			if g.OutDegree(i) > 0 {
				ecnt[i] = 1
			}
			if g.IsTerminal(i) && excludeTerminals {
				ecnt[i] = 1
			}
		case RoundMust:
			ecnt[i] = g.OutDegree(i)
			if g.IsTerminal(i) && excludeTerminals {
				ecnt[i] = 1
			}
		case RoundMayTerminate:
			if !g.IsTerminal(i) {
				ecnt[i] = 1
			}
		}
		if round != RoundMayTerminate && isProgress(i) {
			ecnt[i] = 0
		}
	}

	worklist := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		if ecnt[i] == 0 {
			worklist = append(worklist, i)
		}
	}
	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, src := range g.IEdges(cur) {
			ecnt[src]--
			if ecnt[src] == 0 {
				worklist = append(worklist, src)
			}
		}
	}

	for i := 1; i <= n; i++ {
		if ecnt[i] > 0 {
			return i, false
		}
	}
	return 0, true
}
