package engine

import (
	"testing"

	"github.com/daystram/dammen/board"
)

func TestTranspositionTableSize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		size uint64
		want int
	}{
		{1, 1},
		{1000, 512},
		{1 << 10, 1 << 10},
		{0, DefaultHashTableSize},
	}
	for _, tt := range tests {
		if got := NewTranspositionTable(tt.size).Size(); got != tt.want {
			t.Errorf("unexpected size for %d: got=%d want=%d", tt.size, got, tt.want)
		}
	}
}

func TestTranspositionTableProbe(t *testing.T) {
	t.Parallel()
	mv := board.NewQuietMove(32, 28)
	tt := NewTranspositionTable(1 << 4)

	if _, ok := tt.Probe(0x15, 0xaa); ok {
		t.Fatalf("unexpected hit on empty table")
	}
	tt.Store(0x15, 0xaa, BoundLowerBound, mv, 42, 3)
	got, ok := tt.Probe(0x15, 0xaa)
	if !ok {
		t.Fatalf("expected hit")
	}
	want := Entry{Move: mv, Score: 42, Depth: 3, Bound: BoundLowerBound}
	if got != want {
		t.Errorf("unexpected entry: got=%+v want=%+v", got, want)
	}

	// same hash, different lock
	if _, ok := tt.Probe(0x15, 0xab); ok {
		t.Errorf("unexpected hit on lock mismatch")
	}
	// same slot, different hash
	if _, ok := tt.Probe(0x25, 0xaa); ok {
		t.Errorf("unexpected hit on slot alias")
	}
	hits, misses, collisions, writes := tt.Stats()
	if hits != 1 || misses != 2 || collisions != 1 || writes != 1 {
		t.Errorf("unexpected stats: got=%d/%d/%d/%d want=1/2/1/1", hits, misses, collisions, writes)
	}
}

func TestTranspositionTableReplacement(t *testing.T) {
	t.Parallel()
	deep := board.NewQuietMove(32, 28)
	shallow := board.NewQuietMove(33, 29)
	tests := []struct {
		name      string
		stored    Bound
		newSearch bool
		bound     Bound
		depth     uint8
		want      board.Move
	}{
		{name: "shallower keeps exact entry", stored: BoundExact, bound: BoundUpperBound, depth: 2, want: deep},
		{name: "shallower keeps bound entry", stored: BoundLowerBound, bound: BoundExact, depth: 2, want: deep},
		{name: "equal depth replaces", stored: BoundExact, bound: BoundUpperBound, depth: 5, want: shallow},
		{name: "deeper replaces", stored: BoundExact, bound: BoundUpperBound, depth: 7, want: shallow},
		{name: "stale exact kept over shallower bound", stored: BoundExact, newSearch: true, bound: BoundUpperBound, depth: 1, want: deep},
		{name: "stale exact replaced by shallower exact", stored: BoundExact, newSearch: true, bound: BoundExact, depth: 1, want: shallow},
		{name: "stale bound replaced", stored: BoundLowerBound, newSearch: true, bound: BoundUpperBound, depth: 1, want: shallow},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tt := NewTranspositionTable(1 << 4)
			tt.Store(0x3, 0x1, tc.stored, deep, 10, 5)
			if tc.newSearch {
				tt.NewSearch()
			}
			tt.Store(0x13, 0x2, tc.bound, shallow, -10, tc.depth)

			var got board.Move
			if e, ok := tt.Probe(0x3, 0x1); ok {
				got = e.Move
			} else if e, ok := tt.Probe(0x13, 0x2); ok {
				got = e.Move
			}
			if got != tc.want {
				t.Errorf("unexpected entry: got=%s want=%s", got, tc.want)
			}
		})
	}
}

// Every stored field must survive a round through a slot, including the
// depth that guards replacement.
func TestTranspositionTableDepthGuard(t *testing.T) {
	t.Parallel()
	mv := board.NewQuietMove(31, 26)
	tt := NewTranspositionTable(1 << 2)
	for depth := uint8(1); depth <= 6; depth++ {
		tt.Store(0x7, 0x9, BoundLowerBound, mv, int32(depth), depth)
	}
	tt.Store(0x7, 0x9, BoundExact, board.NewQuietMove(32, 28), 0, 3)
	got, ok := tt.Probe(0x7, 0x9)
	if !ok {
		t.Fatalf("expected hit")
	}
	want := Entry{Move: mv, Score: 6, Depth: 6, Bound: BoundLowerBound}
	if got != want {
		t.Errorf("unexpected entry: got=%+v want=%+v", got, want)
	}
}
