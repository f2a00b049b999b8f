package engine

import (
	"github.com/daystram/dammen/board"
)

type Bound uint8

const (
	BoundUnknown Bound = iota
	BoundExact
	BoundLowerBound
	BoundUpperBound
)

// DefaultHashTableSize is the number of table entries.
const DefaultHashTableSize = 1 << 18

func (b Bound) String() string {
	switch b {
	case BoundExact:
		return "Exact"
	case BoundLowerBound:
		return "LowerBound"
	case BoundUpperBound:
		return "UpperBound"
	default:
		return ""
	}
}

// Entry is the search result cached for a position.
type Entry struct {
	Move  board.Move
	Score int32
	Depth uint8
	Bound Bound
}

type entry struct {
	Entry
	hash uint64
	lock uint64
	gen  uint8
	used bool
}

// TranspositionTable is a fixed-size, always-indexed cache of search results.
// A hit needs both the hash and the independent lock to match. It is owned by
// a single search and is not safe for concurrent use.
type TranspositionTable struct {
	table    []entry
	maskHash uint64
	gen      uint8

	// stats
	hits       int
	misses     int
	collisions int
	writes     int
}

// NewTranspositionTable allocates size entries, rounded down to a power of two.
func NewTranspositionTable(size uint64) *TranspositionTable {
	if size == 0 {
		size = DefaultHashTableSize
	}
	capacity := uint64(1)
	for capacity<<1 <= size {
		capacity <<= 1
	}
	return &TranspositionTable{
		table:    make([]entry, capacity),
		maskHash: capacity - 1,
	}
}

func (t *TranspositionTable) Size() int {
	return len(t.table)
}

// NewSearch ages every stored entry by one generation.
func (t *TranspositionTable) NewSearch() {
	t.gen++
}

// Store writes an entry when the slot is empty or holds one searched no deeper
// than depth. A deeper entry from an older generation is replaced too, unless
// it is Exact and the incoming entry is not.
func (t *TranspositionTable) Store(hash, lock uint64, bound Bound, mv board.Move, score int32, depth uint8) {
	e := &t.table[hash&t.maskHash]
	if e.used && e.Depth > depth && (e.gen == t.gen || (e.Bound == BoundExact && bound != BoundExact)) {
		return
	}
	t.writes++
	*e = entry{
		Entry: Entry{
			Move:  mv,
			Score: score,
			Depth: depth,
			Bound: bound,
		},
		hash: hash,
		lock: lock,
		gen:  t.gen,
		used: true,
	}
}

// Probe looks up a position. An entry whose lock differs is an aliasing
// collision and reported as a miss.
func (t *TranspositionTable) Probe(hash, lock uint64) (Entry, bool) {
	e := &t.table[hash&t.maskHash]
	if !e.used || e.hash != hash {
		t.misses++
		return Entry{}, false
	}
	if e.lock != lock {
		t.collisions++
		return Entry{}, false
	}
	t.hits++
	return e.Entry, true
}

func (t *TranspositionTable) Clear() {
	for i := range t.table {
		t.table[i] = entry{}
	}
	t.gen = 0
	t.ResetStats()
}

func (t *TranspositionTable) ResetStats() {
	t.hits = 0
	t.misses = 0
	t.collisions = 0
	t.writes = 0
}

func (t *TranspositionTable) Stats() (hits, misses, collisions, writes int) {
	return t.hits, t.misses, t.collisions, t.writes
}
