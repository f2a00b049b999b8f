package board

import (
	"errors"
	"testing"
)

func TestFEN(t *testing.T) {
	t.Parallel()
	tests := []struct {
		fen     string
		wantErr bool
	}{
		{fen: DefaultStartingPositionFEN, wantErr: false},
		{fen: "B:W31-50:B1-20", wantErr: false},
		{fen: "W:W28,33,K46:B12,17-19,K3", wantErr: false},
		{fen: "B:WK46:BK5", wantErr: false},
		{fen: "W:W32,45:B27", wantErr: false},
		{fen: "W:W:B1", wantErr: false},
		{fen: "", wantErr: true},
		{fen: "invalid fen", wantErr: true},
		{fen: "X:W31-50:B1-20", wantErr: true},
		{fen: "W:W31-50", wantErr: true},
		{fen: "W:W31-50:B1-20:B21", wantErr: true},
		{fen: "W:W31-50:W1-20", wantErr: true},
		{fen: "W:W31-51:B1-20", wantErr: true},
		{fen: "W:W40-31:B1-20", wantErr: true},
		{fen: "W:W31,31:B1", wantErr: true},
		{fen: "W:W20-40:B1-20", wantErr: true},
		{fen: "W:W3:B20", wantErr: true},
		{fen: "W:W30:B47", wantErr: true},
		{fen: "W:W1-25:B30-50", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.fen, func(t *testing.T) {
			t.Parallel()

			b, err := NewBoard(WithFEN(tt.fen))
			if tt.wantErr {
				if err == nil {
					t.Error("error expected: got=nil")
				}
				return
			}
			if err != nil {
				t.Fatal("unexpected error:", err)
			}

			if gotFEN := b.FEN(); gotFEN != tt.fen {
				t.Errorf("unexpected FEN: got=%s want=%s", gotFEN, tt.fen)
			}
		})
	}
}

func TestFENAliases(t *testing.T) {
	t.Parallel()
	b, err := NewBoard(WithFEN("W:W31,32,33,34,35,36-50:B1-20."))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if got := b.FEN(); got != DefaultStartingPositionFEN {
		t.Errorf("unexpected FEN: got=%s want=%s", got, DefaultStartingPositionFEN)
	}
}

func TestWithCells(t *testing.T) {
	t.Parallel()
	start, err := NewBoard()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	cells := start.Cells()
	if len(cells) != EncodedLength {
		t.Fatalf("unexpected length: got=%d want=%d", len(cells), EncodedLength)
	}
	for i := 1; i <= 20; i++ {
		if cells[i] != int(PieceBlackMan) {
			t.Errorf("unexpected cell %d: got=%d want=%d", i, cells[i], PieceBlackMan)
		}
	}
	for i := 31; i <= 50; i++ {
		if cells[i] != int(PieceWhiteMan) {
			t.Errorf("unexpected cell %d: got=%d want=%d", i, cells[i], PieceWhiteMan)
		}
	}

	b, err := NewBoard(WithCells(cells, SideWhite))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if b.Hash() != start.Hash() || b.Lock() != start.Lock() {
		t.Error("same placement must hash identically")
	}
	if b.Count(SideWhite) != 20 || b.Count(SideBlack) != 20 || b.CountKind(SideWhite, KindKing) != 0 {
		t.Errorf("unexpected counts: white=%d black=%d", b.Count(SideWhite), b.Count(SideBlack))
	}

	bad := []struct {
		name  string
		cells []int
		turn  Side
	}{
		{name: "short", cells: make([]int, 50), turn: SideWhite},
		{name: "index zero", cells: append([]int{1}, make([]int, 50)...), turn: SideWhite},
		{name: "bad code", cells: func() []int { c := make([]int, 51); c[10] = 5; return c }(), turn: SideWhite},
		{name: "wrapping code", cells: func() []int { c := make([]int, 51); c[10] = 256; return c }(), turn: SideWhite},
		{name: "bad side", cells: make([]int, 51), turn: SideUnknown},
	}
	for _, tt := range bad {
		if _, err := NewBoard(WithCells(tt.cells, tt.turn)); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("%s: unexpected error: got=%v want=%v", tt.name, err, ErrInvalidPosition)
		}
	}
}
