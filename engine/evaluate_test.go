package engine

import (
	"testing"

	"github.com/daystram/dammen/board"
	"github.com/daystram/dammen/square"
)

// mirror rotates b by 180 degrees and swaps the colours.
func mirror(t *testing.T, b *board.Board) *board.Board {
	t.Helper()
	cells := b.Cells()
	mirrored := make([]int, len(cells))
	for sq := square.Min; sq <= square.Max; sq++ {
		p := board.Piece(cells[sq])
		if p == board.PieceNone {
			continue
		}
		mirrored[square.Max+1-sq] = int(board.NewPiece(p.Side().Opposite(), p.Kind()))
	}
	mb, err := board.NewBoard(board.WithCells(mirrored, b.Turn().Opposite()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return mb
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	ev := NewEvaluator(DefaultWeights())
	w := ev.Weights()

	if got := ev.Evaluate(mustBoard(t, board.DefaultStartingPositionFEN)); got != w.Tempo {
		t.Errorf("unexpected start score: got=%d want=%d", got, w.Tempo)
	}

	tests := []struct {
		name   string
		fen    string
		better bool // side to move is better
	}{
		{name: "extra man", fen: "W:W31-50:B1-19", better: true},
		{name: "missing man", fen: "B:W31-50:B1-19", better: false},
		{name: "king against men", fen: "W:WK28,45:B1,2,3", better: true},
		{name: "advanced king", fen: "B:WK23:B6,7", better: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := mustBoard(t, tt.fen)
			got := ev.Evaluate(b)
			if (got > 0) != tt.better {
				t.Errorf("unexpected score: got=%d better=%v", got, tt.better)
			}
			if m := ev.Evaluate(mirror(t, b)); m != got {
				t.Errorf("unexpected mirrored score: got=%d want=%d", m, got)
			}
		})
	}
}

func TestEvaluateTerms(t *testing.T) {
	t.Parallel()
	only := func(w Weights) *Evaluator { return NewEvaluator(w) }
	tests := []struct {
		name string
		ev   *Evaluator
		fen  string
		want int32
	}{
		// two white men and one black man on their home rows
		{name: "back row", ev: only(Weights{BackRow: 10}), fen: "W:W46,47:B5", want: 10},
		// 28 is central, 46 is not
		{name: "centre", ev: only(Weights{Centre: 3}), fen: "W:W28:BK46", want: 3},
		{name: "king centre", ev: only(Weights{KingCentre: 1}), fen: "W:WK28:BK46", want: 4},
		{name: "advancement", ev: only(Weights{Advancement: 1}), fen: "W:W16:B5", want: 6},
		{name: "mobility", ev: only(Weights{Mobility: 1}), fen: "W:W46,47:B1", want: 3 - 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.ev.Evaluate(mustBoard(t, tt.fen)); got != tt.want {
				t.Errorf("unexpected score: got=%d want=%d", got, tt.want)
			}
		})
	}
}
