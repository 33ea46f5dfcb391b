package statestore

import (
	"testing"

	"xcheck/vecstate"
)

func newTestStore(t *testing.T, hashBits int) (*Store, vecstate.Handle) {
	t.Helper()
	l := vecstate.NewLayout()
	h, err := l.Declare(4)
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
	l.Start()
	return New(l, hashBits, 0), h
}

func TestLookupOrInsertDeduplicates(t *testing.T) {
	s, h := newTestStore(t, 4)

	scratch := s.NewScratch()
	h.Write(scratch, 5, true)
	i1, isNew, err := s.LookupOrInsert(scratch, false)
	if err != nil || !isNew || i1 != 2 {
		t.Fatalf("first insert = (%d, %v, %v), want (2, true, nil)", i1, isNew, err)
	}

	scratch2 := s.NewScratch()
	h.Write(scratch2, 5, true)
	i2, isNew2, err := s.LookupOrInsert(scratch2, false)
	if err != nil || isNew2 || i2 != i1 {
		t.Fatalf("duplicate insert = (%d, %v, %v), want (%d, false, nil)", i2, isNew2, err, i1)
	}

	scratch3 := s.NewScratch()
	h.Write(scratch3, 6, true)
	i3, isNew3, err := s.LookupOrInsert(scratch3, true)
	if err != nil || isNew3 || i3 != 0 {
		t.Fatalf("no-insert miss = (%d, %v, %v), want (0, false, nil)", i3, isNew3, err)
	}
	if s.Len() != 2 {
		t.Fatalf("no-insert must not grow the store, Len() = %d", s.Len())
	}
}

func TestCapacityError(t *testing.T) {
	l := vecstate.NewLayout()
	h, _ := l.Declare(8)
	l.Start()
	s := New(l, 4, 2) // the initial state already counts as one node

	scratch := s.NewScratch()
	h.Write(scratch, 200, true)
	_, _, err := s.LookupOrInsert(scratch, false)
	if err != nil {
		t.Fatalf("first insert under stop count: %v", err)
	}
	scratch2 := s.NewScratch()
	h.Write(scratch2, 201, true)
	if _, _, err := s.LookupOrInsert(scratch2, false); err == nil {
		t.Fatalf("expected ErrCapacity exceeding stop count of 2")
	}
}

func TestBuildBackEdges(t *testing.T) {
	s, _ := newTestStore(t, 4)
	// Fabricate a tiny graph: node 1 -> node 2 (twice), node 1 -> node 3.
	s.nodes = append(s.nodes, node{}, node{})
	s.words = append(s.words, make([]uint32, 2*s.nrWords)...)
	s.RecordEdge(1, 2)
	s.RecordEdge(1, 2)
	s.RecordEdge(1, 3)

	s.BuildBackEdges()
	s.RecordIncoming(1, 2)
	s.RecordIncoming(1, 2)
	s.RecordIncoming(1, 3)

	if got := s.IEdges(2); len(got) != 2 || got[0] != 1 || got[1] != 1 {
		t.Fatalf("node 2 incoming = %v, want [1 1]", got)
	}
	if got := s.IEdges(3); len(got) != 1 || got[0] != 1 {
		t.Fatalf("node 3 incoming = %v, want [1]", got)
	}
	if got := s.IEdges(1); len(got) != 0 {
		t.Fatalf("node 1 incoming = %v, want []", got)
	}
}
