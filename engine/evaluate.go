package engine

import (
	"github.com/daystram/dammen/board"
	"github.com/daystram/dammen/square"
)

// Weights are the multipliers of each evaluation term, in hundredths of a man.
type Weights struct {
	Man  int32 `mapstructure:"man"`
	King int32 `mapstructure:"king"`

	// Centre is added per piece on the two central rings.
	Centre int32 `mapstructure:"centre"`
	// Mobility is added per empty square a side can move to.
	Mobility int32 `mapstructure:"mobility"`
	// KingCentre is added per ring a king stands away from the board edge.
	KingCentre int32 `mapstructure:"king_centre"`
	// BackRow is added per man still guarding its home row.
	BackRow int32 `mapstructure:"back_row"`
	// Advancement is added per row a man has advanced.
	Advancement int32 `mapstructure:"advancement"`
	// Tempo is granted to the side to move.
	Tempo int32 `mapstructure:"tempo"`
}

func DefaultWeights() Weights {
	return Weights{
		Man:         100,
		King:        320,
		Centre:      4,
		Mobility:    2,
		KingCentre:  3,
		BackRow:     6,
		Advancement: 2,
		Tempo:       5,
	}
}

// Evaluator scores positions with a fixed set of weights. It holds no mutable
// state and can be shared by concurrent searches.
type Evaluator struct {
	w Weights
}

func NewEvaluator(w Weights) *Evaluator {
	return &Evaluator{w: w}
}

func (ev *Evaluator) Weights() Weights {
	return ev.w
}

// Evaluate returns the score of b relative to the side to move.
func (ev *Evaluator) Evaluate(b *board.Board) int32 {
	var score [board.SideBlack + 1]int32
	for sq := square.Min; sq <= square.Max; sq++ {
		p := b.PieceAt(sq)
		if p == board.PieceNone {
			continue
		}
		s := p.Side()
		ring := int32(sq.CentreDistance())
		if ring <= 1 {
			score[s] += ev.w.Centre
		}
		if p.IsKing() {
			score[s] += ev.w.King + ev.w.KingCentre*(4-ring)
			continue
		}
		score[s] += ev.w.Man
		// rows advanced from the own home row
		advanced := int32(sq.Row())
		if s == board.SideBlack {
			advanced = square.BoardSize - 1 - advanced
		}
		if advanced == 0 {
			score[s] += ev.w.BackRow
		}
		score[s] += ev.w.Advancement * advanced
	}
	if ev.w.Mobility != 0 {
		score[board.SideWhite] += ev.w.Mobility * int32(b.Mobility(board.SideWhite))
		score[board.SideBlack] += ev.w.Mobility * int32(b.Mobility(board.SideBlack))
	}

	us := b.Turn()
	return score[us] - score[us.Opposite()] + ev.w.Tempo
}

const (
	scoreTTMove  int32 = 1 << 30
	scoreCapture int32 = 1 << 24
	scoreKiller  int32 = 1 << 20

	scoreCapturedPiece int32 = 64
	scoreCapturedKing  int32 = 16
)

// scoreMoves ranks mvs: TT move, captures by pieces taken (kings first),
// killers, then quiet moves by history.
func (e *Engine) scoreMoves(b *board.Board, ttMove board.Move, mvs []board.Move, dist uint8) []int32 {
	scores := make([]int32, len(mvs))
	side := b.Turn()
	for i, mv := range mvs {
		switch {
		case !ttMove.IsNull() && mv == ttMove:
			scores[i] = scoreTTMove
		case mv.IsCapture():
			score := scoreCapture + int32(mv.CaptureCount())*scoreCapturedPiece
			for _, sq := range mv.Captured() {
				if b.PieceAt(sq).IsKing() {
					score += scoreCapturedKing
				}
			}
			scores[i] = score
		case mv == e.killers[dist][0]:
			scores[i] = scoreKiller
		case mv == e.killers[dist][1]:
			scores[i] = scoreKiller - 1
		default:
			scores[i] = e.history[side][mv.From][mv.To]
		}
	}
	return scores
}

// sortMoves moves the best-scored move from index onwards to index.
func sortMoves(mvs []board.Move, scores []int32, index int) {
	bestIndex, bestScore := index, scores[index]
	for i := index + 1; i < len(mvs); i++ {
		if scores[i] > bestScore {
			bestIndex = i
			bestScore = scores[i]
		}
	}
	mvs[index], mvs[bestIndex] = mvs[bestIndex], mvs[index]
	scores[index], scores[bestIndex] = scores[bestIndex], scores[index]
}
