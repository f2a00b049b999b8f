package square

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		notation string
		want     Square
		wantErr  error
	}{
		{name: "ok 1", notation: "1", want: Square(1)},
		{name: "ok 2", notation: "50", want: Square(50)},
		{name: "ok 3", notation: "28", want: Square(28)},
		{name: "bad 1", notation: "", wantErr: ErrInvalidNotation},
		{name: "bad 2", notation: "0", wantErr: ErrInvalidNotation},
		{name: "bad 3", notation: "51", wantErr: ErrInvalidNotation},
		{name: "bad 4", notation: "-3", wantErr: ErrInvalidNotation},
		{name: "bad 5", notation: "e4", wantErr: ErrInvalidNotation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.notation)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("unexpected error: got=%v want=%v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("unexpected result: got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestCoordinates(t *testing.T) {
	t.Parallel()
	tests := []struct {
		sq       Square
		row, col int
	}{
		{sq: 1, row: 9, col: 1},
		{sq: 5, row: 9, col: 9},
		{sq: 6, row: 8, col: 0},
		{sq: 28, row: 4, col: 4},
		{sq: 46, row: 0, col: 0},
		{sq: 50, row: 0, col: 8},
	}

	for _, tt := range tests {
		tt := tt
		if got := tt.sq.Row(); got != tt.row {
			t.Errorf("unexpected row for %s: got=%d want=%d", tt.sq, got, tt.row)
		}
		if got := tt.sq.Col(); got != tt.col {
			t.Errorf("unexpected col for %s: got=%d want=%d", tt.sq, got, tt.col)
		}
		if got := FromCoord(tt.row, tt.col); got != tt.sq {
			t.Errorf("unexpected square for (%d,%d): got=%s want=%s", tt.row, tt.col, got, tt.sq)
		}
	}
	if got := FromCoord(0, 1); got != None {
		t.Errorf("light cell must map to None: got=%s", got)
	}
}

func TestNeighbor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		sq   Square
		d    Direction
		want Square
	}{
		{sq: 1, d: SouthWest, want: 6},
		{sq: 1, d: SouthEast, want: 7},
		{sq: 1, d: NorthEast, want: None},
		{sq: 5, d: SouthEast, want: None},
		{sq: 28, d: NorthWest, want: 22},
		{sq: 28, d: NorthEast, want: 23},
		{sq: 28, d: SouthWest, want: 32},
		{sq: 28, d: SouthEast, want: 33},
		{sq: 46, d: NorthEast, want: 41},
		{sq: 46, d: NorthWest, want: None},
	}

	for _, tt := range tests {
		tt := tt
		if got := tt.sq.Neighbor(tt.d); got != tt.want {
			t.Errorf("unexpected neighbor of %s %s: got=%s want=%s", tt.sq, tt.d, got, tt.want)
		}
	}
}

func TestRay(t *testing.T) {
	t.Parallel()
	want := []Square{41, 37, 32, 28, 23, 19, 14, 10, 5}
	got := Square(46).Ray(NorthEast)
	if len(got) != len(want) {
		t.Fatalf("unexpected ray length: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unexpected ray[%d]: got=%s want=%s", i, got[i], want[i])
		}
	}

	d, n, ok := Square(46).DirectionTo(5)
	if !ok || d != NorthEast || n != 9 {
		t.Errorf("unexpected direction: got=(%s,%d,%v) want=(NE,9,true)", d, n, ok)
	}
	if _, _, ok := Square(46).DirectionTo(47); ok {
		t.Error("squares on one row must not share a diagonal")
	}
}

func TestCentreDistance(t *testing.T) {
	t.Parallel()
	for _, sq := range []Square{23, 28} {
		if got := sq.CentreDistance(); got != 0 {
			t.Errorf("unexpected distance for %s: got=%d want=0", sq, got)
		}
	}
	for _, sq := range []Square{1, 5, 6, 46, 45} {
		if got := sq.CentreDistance(); got != 4 {
			t.Errorf("unexpected distance for %s: got=%d want=4", sq, got)
		}
	}
}
