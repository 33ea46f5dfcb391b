package report

import (
	"strings"
	"testing"

	"slices"
)

// fakeHost is a tiny fixed graph: 1 -> 2 -> 3 -> 2 (a cycle on 2,3), used to
// exercise both History and TypicalSequence.
type fakeHost struct{}

func (fakeHost) Prev(i int) int {
	switch i {
	case 2:
		return 1
	case 3:
		return 2
	default:
		return 0
	}
}

func (fakeHost) Format(i int) string { return "s" + string(rune('0'+i)) }

func (fakeHost) Successors(i int) []int {
	switch i {
	case 1:
		return []int{2}
	case 2:
		return []int{3}
	case 3:
		return []int{2}
	default:
		return nil
	}
}

func TestHistoryWalksBackToRoot(t *testing.T) {
	got := History(fakeHost{}, 3)
	want := []int{1, 2, 3}
	if !slices.Equal(got, want) {
		t.Fatalf("History = %v, want %v", got, want)
	}
}

func TestTypicalSequenceFindsCycle(t *testing.T) {
	trace, ok := TypicalSequence(fakeHost{}, 2, func(int) bool { return true })
	if !ok {
		t.Fatalf("expected a cycle to be found")
	}
	if !slices.Equal(trace.Prefix, []int{1, 2}) {
		t.Fatalf("Prefix = %v, want [1 2]", trace.Prefix)
	}
	if len(trace.Cycle) == 0 {
		t.Fatalf("expected a non-empty cycle")
	}
}

// stemHost is a lasso with a stem between the violator and the loop-entry
// node: 1 -> 2 -> 3 -> 4 -> (back to 3). Node 2 is required history that is
// neither the violator nor part of the repeating cycle.
type stemHost struct{}

func (stemHost) Prev(i int) int {
	if i == 1 {
		return 0
	}
	return 0 // only History(h, 1) is exercised; Prev beyond the violator is unused
}

func (stemHost) Format(i int) string { return "s" + string(rune('0'+i)) }

func (stemHost) Successors(i int) []int {
	switch i {
	case 1:
		return []int{2}
	case 2:
		return []int{3}
	case 3:
		return []int{4}
	case 4:
		return []int{3}
	default:
		return nil
	}
}

func TestTypicalSequenceKeepsStemBetweenViolatorAndLoopEntry(t *testing.T) {
	trace, ok := TypicalSequence(stemHost{}, 1, func(int) bool { return true })
	if !ok {
		t.Fatalf("expected a cycle to be found")
	}
	if !slices.Equal(trace.Prefix, []int{1, 2}) {
		t.Fatalf("Prefix = %v, want [1 2] (node 2 is the stem between the violator and the loop entry)", trace.Prefix)
	}
	if !slices.Equal(trace.Cycle, []int{3, 4}) {
		t.Fatalf("Cycle = %v, want [3 4]", trace.Cycle)
	}
}

func TestTypicalSequenceNoCycleOutsideBadSet(t *testing.T) {
	_, ok := TypicalSequence(fakeHost{}, 2, func(i int) bool { return i == 99 })
	if ok {
		t.Fatalf("expected no cycle when nothing qualifies as bad")
	}
}

func TestReporterRendersOnce(t *testing.T) {
	var r Reporter
	trace := Trace{Prefix: []int{1, 2}, Cycle: []int{2, 3}}
	out, err := r.Render(fakeHost{}, "progress violated", trace)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "progress violated") || !strings.Contains(out, "(cycle)") {
		t.Fatalf("unexpected render: %q", out)
	}
	if _, err := r.Render(fakeHost{}, "again", trace); err == nil {
		t.Fatalf("expected second Render to be rejected")
	}
}
