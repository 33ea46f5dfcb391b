package progress

import "testing"

// fakeGraph models 1 -> 2, 1 -> 3, 3 -> 4, with 2 and 4 terminal (no
// outgoing edges). Back edges mirror the forward edges above.
type fakeGraph struct{}

func (fakeGraph) Len() int { return 4 }

func (fakeGraph) OutDegree(i int) int {
	switch i {
	case 1:
		return 2
	case 3:
		return 1
	default:
		return 0
	}
}

func (fakeGraph) IsTerminal(i int) bool { return i == 2 || i == 4 }

func (fakeGraph) IEdges(i int) []int {
	switch i {
	case 2, 3:
		return []int{1}
	case 4:
		return []int{3}
	default:
		return nil
	}
}

func progressOnlyNode4(i int) bool { return i == 4 }

func TestMayProgressVacuousTerminalsSatisfy(t *testing.T) {
	_, ok := Run(fakeGraph{}, RoundMay, progressOnlyNode4, false)
	if !ok {
		t.Fatalf("expected may-progress to hold when terminals vacuously satisfy it")
	}
}

func TestMayProgressExcludingTerminalsFails(t *testing.T) {
	violator, ok := Run(fakeGraph{}, RoundMay, progressOnlyNode4, true)
	if ok {
		t.Fatalf("expected may-progress to fail once deadlocks are excluded")
	}
	if violator != 2 {
		t.Fatalf("violator = %d, want 2 (the progress-less deadlock)", violator)
	}
}

func TestMustProgressVacuousTerminalsSatisfy(t *testing.T) {
	_, ok := Run(fakeGraph{}, RoundMust, progressOnlyNode4, false)
	if !ok {
		t.Fatalf("expected must-progress to hold when terminals vacuously satisfy it")
	}
}

func TestMustProgressExcludingTerminalsFails(t *testing.T) {
	violator, ok := Run(fakeGraph{}, RoundMust, progressOnlyNode4, true)
	if ok {
		t.Fatalf("expected must-progress to fail once deadlocks are excluded")
	}
	if violator != 1 {
		t.Fatalf("violator = %d, want 1 (cannot guarantee progress through deadlock 2)", violator)
	}
}

func TestMayTerminateReachesDeadlocks(t *testing.T) {
	_, ok := Run(fakeGraph{}, RoundMayTerminate, func(int) bool { return false }, false)
	if !ok {
		t.Fatalf("expected every node to be able to reach a terminal state")
	}
}
