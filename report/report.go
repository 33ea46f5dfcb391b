// Package report turns a raw verification failure (a bad node index) into a
// human-readable counterexample: either a finite History from the initial
// state, or, for a progress violation, a lasso-shaped TypicalSequence (a
// History prefix plus the repeating cycle that never makes progress).
package report

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"slices"
)

// Host is the state-space view the reporter needs. It is satisfied by a
// thin adapter over *statestore.Store plus the model under check.
type Host interface {
	// Prev returns i's finding-predecessor, or 0 for the initial state.
	Prev(i int) int
	// Format renders node i's state vector for display.
	Format(i int) string
	// Successors returns the nodes reachable from i in one transition.
	// Used only while searching for a lasso's repeating cycle.
	Successors(i int) []int
}

// Trace is a fully reconstructed counterexample: a finite prefix, optionally
// followed by a repeating cycle (Cycle is nil for a plain finite trace).
type Trace struct {
	Prefix []int
	Cycle  []int
}

// History walks i's finding-predecessor chain back to the initial state
// (node 1) and returns the path from root to i, inclusive.
func History(h Host, i int) []int {
	var path []int
	for n := i; n != 0; n = h.Prev(n) {
		path = append(path, n)
	}
	slices.Reverse(path)
	return path
}

// TypicalSequence builds a lasso exhibiting a persistent progress failure:
// History(h, violator) followed by the stem walked from violator to the
// loop-entry node as the prefix, then a cycle of bad nodes reachable from
// violator without ever leaving the bad set. isBad reports whether a node
// still fails the obligation being reported (the same predicate the
// verifier used to mark it unsatisfied). It returns ok=false if no such
// cycle is reachable, for instance when every path from violator ends in a
// terminal state.
func TypicalSequence(h Host, violator int, isBad func(i int) bool) (Trace, bool) {
	prefix := History(h, violator)

	onStack := map[int]int{} // node -> position in dfsPath
	var dfsPath []int
	// walk returns the loop-entry node's position in dfsPath, alongside the
	// cycle itself, so the caller can splice dfsPath[1:pos] (the stem
	// between violator and the loop entry) into the rendered prefix.
	var walk func(n int) ([]int, int, bool)
	walk = func(n int) ([]int, int, bool) {
		onStack[n] = len(dfsPath)
		dfsPath = append(dfsPath, n)
		for _, s := range h.Successors(n) {
			if !isBad(s) {
				continue
			}
			if pos, seen := onStack[s]; seen {
				cycle := append([]int(nil), dfsPath[pos:]...)
				return cycle, pos, true
			}
			if cycle, pos, ok := walk(s); ok {
				return cycle, pos, true
			}
		}
		dfsPath = dfsPath[:len(dfsPath)-1]
		delete(onStack, n)
		return nil, 0, false
	}

	cycle, pos, ok := walk(violator)
	if !ok {
		return Trace{}, false
	}
	// dfsPath[0] is violator, already the last element of prefix; any nodes
	// walked before reaching the loop-entry node (dfsPath[1:pos]) are a
	// required part of the history and must not be dropped. pos == 0 means
	// the loop entry is violator itself, so there is no stem to add.
	if pos > 0 {
		prefix = append(prefix, dfsPath[1:pos]...)
	}
	return Trace{Prefix: prefix, Cycle: cycle}, true
}

// Reporter renders a Trace into the fixed-column text format used
// throughout the checker's output, and guards against being asked to
// render the same result twice.
type Reporter struct {
	reported bool
}

// Render formats trace as a sequence of "-> state" lines, each rendered by
// h.Format. A non-nil Cycle is rendered in a repeating "(cycle)" block.
// Render may be called at most once per Reporter; a second call returns an
// error rather than silently re-emitting the same counterexample.
func (r *Reporter) Render(h Host, heading string, trace Trace) (string, error) {
	if r.reported {
		return "", fmt.Errorf("report: counterexample already rendered")
	}
	r.reported = true

	var buf bytes.Buffer
	wrt := tabwriter.NewWriter(&buf, 4, 4, 0, ' ', 0)
	fmt.Fprintf(wrt, "%s\n", heading)
	for _, n := range trace.Prefix {
		fmt.Fprintf(wrt, "->\t%s\n", h.Format(n))
	}
	if len(trace.Cycle) > 0 {
		fmt.Fprintf(wrt, "(cycle)\n")
		for _, n := range trace.Cycle {
			fmt.Fprintf(wrt, "->\t%s\n", h.Format(n))
		}
	}
	wrt.Flush()
	return buf.String(), nil
}
