package game

import (
	"errors"
	"fmt"

	"github.com/daystram/dammen/board"
)

var ErrInvalidRules = errors.New("invalid rules")

// Rules holds the draw thresholds. Counters are in plies.
type Rules struct {
	// Repetitions is the number of occurrences of a position that draws.
	Repetitions int `mapstructure:"repetitions"`
	// KingMovePlies draws after this many consecutive plies of non-capturing king moves.
	KingMovePlies int `mapstructure:"king_move_plies"`
	// EndgamePlies draws three pieces, at least one a king, against a lone king.
	EndgamePlies int `mapstructure:"endgame_plies"`
	// ShortEndgamePlies draws up to two pieces, at least one a king, against a lone king.
	ShortEndgamePlies int `mapstructure:"short_endgame_plies"`
}

func DefaultRules() Rules {
	return Rules{
		Repetitions:       3,
		KingMovePlies:     50,
		EndgamePlies:      32,
		ShortEndgamePlies: 10,
	}
}

func (r Rules) Validate() error {
	if r.Repetitions < 2 {
		return fmt.Errorf("%w: repetitions must be at least 2", ErrInvalidRules)
	}
	if r.KingMovePlies < 1 || r.EndgamePlies < 1 || r.ShortEndgamePlies < 1 {
		return fmt.Errorf("%w: ply limits must be positive", ErrInvalidRules)
	}
	return nil
}

type endgameClass uint8

const (
	endgameNone endgameClass = iota
	endgameLong
	endgameShort
)

// endgameState counts plies played since the current lone-king configuration
// arose. Any change of material restarts the count.
type endgameState struct {
	class    endgameClass
	material [4]int
	plies    int
}

func (e *endgameState) update(b *board.Board) {
	class := classifyEndgame(b)
	material := [4]int{
		b.CountKind(board.SideWhite, board.KindMan),
		b.CountKind(board.SideWhite, board.KindKing),
		b.CountKind(board.SideBlack, board.KindMan),
		b.CountKind(board.SideBlack, board.KindKing),
	}
	switch {
	case class == endgameNone:
		*e = endgameState{}
	case class == e.class && material == e.material:
		e.plies++
	default:
		*e = endgameState{class: class, material: material}
	}
}

func (e *endgameState) limit(r Rules) int {
	switch e.class {
	case endgameLong:
		return r.EndgamePlies
	case endgameShort:
		return r.ShortEndgamePlies
	default:
		return 0
	}
}

func classifyEndgame(b *board.Board) endgameClass {
	class := endgameNone
	for _, s := range []board.Side{board.SideWhite, board.SideBlack} {
		o := s.Opposite()
		if b.Count(o) != 1 || b.CountKind(o, board.KindKing) != 1 || b.CountKind(s, board.KindKing) == 0 {
			continue
		}
		switch n := b.Count(s); {
		case n <= 2:
			return endgameShort
		case n == 3:
			class = endgameLong
		}
	}
	return class
}

// canWin reports whether s keeps enough material to win against the other
// side. A lone piece cannot win against a king.
func canWin(b *board.Board, s board.Side) bool {
	if b.Count(s) == 0 {
		return false
	}
	return !(b.Count(s) == 1 && b.CountKind(s.Opposite(), board.KindKing) > 0)
}
