// Package statestore holds every state discovered during exploration in a
// flat word array, deduplicated through a chained-bucket hash table, with
// one node-table entry per state. It also builds the inverse (back-edge)
// adjacency array used by the progress verifier.
package statestore

import (
	"slices"

	"xcheck/vecstate"
)

const (
	hashMul = 1234567
	hashAdd = 5555555
)

// node is the per-state metadata described in spec.md §3. e_cnt is reused
// across phases in the original design; here it stays scoped to whichever
// phase last wrote it (forward BFS in-degree, or scratch for callers that
// need a place to stash a count) and callers that need per-phase counters
// of their own (progress, report) keep separate arrays instead.
type node struct {
	hNext  int
	prev   int
	eCnt   int
	outCnt int
	ieEnd  int
}

// Store owns the discovered state vectors, the node table, the hash
// buckets, and (once built) the back-edge array.
type Store struct {
	layout  *vecstate.Layout
	nrWords int

	words []uint32 // nodes[i] occupies words[i*nrWords : (i+1)*nrWords]
	nodes []node   // index 0 unused, 1 = initial state

	buckets  []int // hash bucket heads, length 2^hashBits
	hashBits int

	nrEdges int
	iedges  []int

	stopCount int
}

// ErrCapacity is returned when the number of discovered states would exceed
// the configured stop count.
type ErrCapacity struct{ StopCount int }

func (e ErrCapacity) Error() string {
	return "statestore: node count exceeded configured stop count"
}

// New creates a Store over the given layout with 2^hashBits buckets and a
// node-count ceiling of stopCount (0 means unbounded). The initial state
// (index 1) is allocated, zeroed, ready for the model to populate before
// exploration starts.
func New(layout *vecstate.Layout, hashBits int, stopCount int) *Store {
	nrWords := layout.NrWords()
	s := &Store{
		layout:    layout,
		nrWords:   nrWords,
		buckets:   make([]int, 1<<uint(hashBits)),
		hashBits:  hashBits,
		stopCount: stopCount,
	}
	// index 0: sentinel. index 1: initial state.
	s.nodes = make([]node, 2)
	s.words = make([]uint32, 2*nrWords)
	return s
}

// Len returns the number of discovered states (excludes the sentinel).
func (s *Store) Len() int { return len(s.nodes) - 1 }

// NrEdges returns the number of transition firings recorded so far.
func (s *Store) NrEdges() int { return s.nrEdges }

// Vector returns a live view over state i's words (1 <= i <= Len()).
func (s *Store) Vector(i int) vecstate.Vector {
	return vecstate.Vector(s.words[i*s.nrWords : (i+1)*s.nrWords])
}

// NewScratch allocates a fresh scratch vector, sized to the layout, for the
// caller to use as the "current state" while trying transitions.
func (s *Store) NewScratch() vecstate.Vector { return s.layout.NewVector() }

// Prev returns the finding-predecessor of node i.
func (s *Store) Prev(i int) int { return s.nodes[i].prev }

// SetPrev overwrites node i's finding-predecessor. Forward exploration
// calls it once, when node i is discovered.
func (s *Store) SetPrev(i, prev int) { s.nodes[i].prev = prev }

// ECnt returns node i's edge counter (in-degree once BFS has completed).
func (s *Store) ECnt(i int) int { return s.nodes[i].eCnt }

// OutDegree returns the number of transitions found enabled from node i
// during forward exploration.
func (s *Store) OutDegree(i int) int { return s.nodes[i].outCnt }

// IsTerminal reports whether node i has no outgoing transitions, i.e. it is
// a deadlock state under full (unreduced) exploration.
func (s *Store) IsTerminal(i int) bool { return s.nodes[i].outCnt == 0 }

// IEdges returns node i's incoming-edge slice, valid after BuildBackEdges.
func (s *Store) IEdges(i int) []int {
	lo := 0
	if i > 1 {
		lo = s.nodes[i-1].ieEnd
	}
	return s.iedges[lo:s.nodes[i].ieEnd]
}

func hashWords(v vecstate.Vector, bits int) int {
	idx := uint32(0)
	for _, w := range v {
		idx ^= w
		idx ^= idx >> uint(bits)
		idx = idx*hashMul + hashAdd
		idx ^= idx >> uint(bits)
		idx = idx*hashMul + hashAdd
	}
	mask := uint32(1)<<uint(bits) - 1
	return int(idx & mask)
}

func (s *Store) equal(i int, v vecstate.Vector) bool {
	return slices.Equal(s.Vector(i), v)
}

// LookupOrInsert looks for scratch among the discovered states. If found,
// it returns the existing index and false. If not found and noInsert is
// true, it returns (0, false, nil). Otherwise scratch is promoted to a new
// state: the node table and word array grow by one entry, the new node is
// linked at its bucket head, and (newIndex, true, nil) is returned.
//
// An ErrCapacity is returned, without mutating the store further, if the
// node count would exceed the configured stop count.
func (s *Store) LookupOrInsert(scratch vecstate.Vector, noInsert bool) (index int, isNew bool, err error) {
	h := hashWords(scratch, s.hashBits)
	for i := s.buckets[h]; i != 0; i = s.nodes[i].hNext {
		if s.equal(i, scratch) {
			return i, false, nil
		}
	}
	if noInsert {
		return 0, false, nil
	}
	if s.stopCount > 0 && s.Len()+1 > s.stopCount {
		return 0, false, ErrCapacity{StopCount: s.stopCount}
	}

	newIndex := len(s.nodes)
	s.nodes = append(s.nodes, node{hNext: s.buckets[h]})
	s.words = append(s.words, scratch...)
	s.buckets[h] = newIndex
	return newIndex, true, nil
}

// SeedInitial links the already-populated initial state (index 1) into its
// hash bucket. Must be called once, after the model has written the
// initial state's values and before any LookupOrInsert call, so that a
// transition leading back to the initial state is correctly deduplicated.
func (s *Store) SeedInitial() {
	h := hashWords(s.Vector(1), s.hashBits)
	s.nodes[1].hNext = s.buckets[h]
	s.buckets[h] = 1
}

// RecordEdge increments the global edge counter, the target's in-degree
// counter, and the source's out-degree counter. Called once per transition
// fired during forward exploration.
func (s *Store) RecordEdge(source, target int) {
	s.nrEdges++
	s.nodes[target].eCnt++
	s.nodes[source].outCnt++
}

// BuildBackEdges allocates the inverse adjacency array once forward BFS has
// completed and every node's e_cnt equals its in-degree. It reserves each
// node's slice of the array as a running sum of preceding in-degrees
// (nodes[1].ie_end = 0; nodes[i].ie_end = nodes[i-1].ie_end + nodes[i-1].e_cnt
// for i >= 2). The array itself is filled in by a second exploration pass
// (runBackEdgePass in package xcheck), which calls RecordIncoming for each replayed
// edge; that pass advances ie_end from "start of my slice" to "end of my
// slice", which by construction lands exactly on the next node's reserved
// start (spec.md §4.7).
func (s *Store) BuildBackEdges() {
	s.iedges = make([]int, s.nrEdges)
	if s.Len() < 1 {
		return
	}
	s.nodes[1].ieEnd = 0
	for i := 2; i <= s.Len(); i++ {
		s.nodes[i].ieEnd = s.nodes[i-1].ieEnd + s.nodes[i-1].eCnt
	}
}

// RecordIncoming appends source to target's (still being built) incoming
// edge slice and advances target's cursor into iedges. Used by the
// back-edge materialization pass only.
func (s *Store) RecordIncoming(source, target int) {
	cursor := s.nodes[target].ieEnd
	s.iedges[cursor] = source
	s.nodes[target].ieEnd++
}
