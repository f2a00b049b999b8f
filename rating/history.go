package rating

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/daystram/dammen/board"
	"github.com/daystram/dammen/game"
)

var ErrUnknownGameResult = errors.New("unknown game result")

type GameResult string

const (
	GameResultWin  GameResult = "Win"
	GameResultLoss GameResult = "Loss"
	GameResultDraw GameResult = "Draw"
)

// ParseGameResult accepts "Win", "Loss" and "Draw" in any case.
func ParseGameResult(s string) (GameResult, error) {
	for _, r := range []GameResult{GameResultWin, GameResultLoss, GameResultDraw} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGameResult, s)
}

func (r GameResult) Score() float64 {
	switch r {
	case GameResultWin:
		return 1
	case GameResultDraw:
		return 0.5
	default:
		return 0
	}
}

// HistoryEntry is the snapshot recorded after a rated game.
type HistoryEntry struct {
	Date            time.Time  `json:"date"`
	Rating          float64    `json:"rating"`
	RatingDeviation float64    `json:"ratingDeviation"`
	GameResult      GameResult `json:"gameResult"`
	Opponent        string     `json:"opponent"`
}

// GameResultFromOutcome reports how a finished game ended for side s.
func GameResultFromOutcome(o game.Outcome, s board.Side) GameResult {
	switch score := o.ScoreFor(s); {
	case score == 1:
		return GameResultWin
	case score == 0.5:
		return GameResultDraw
	default:
		return GameResultLoss
	}
}

func ResultFromOutcome(o game.Outcome, s board.Side, opponent Rating) Result {
	return Result{Opponent: opponent, Score: o.ScoreFor(s)}
}

// UpdateGame rates both players of a single finished game as one period each.
func UpdateGame(white, black Rating, o game.Outcome, cfg Config) (Rating, Rating) {
	newWhite := Update(white, []Result{ResultFromOutcome(o, board.SideWhite, black)}, cfg)
	newBlack := Update(black, []Result{ResultFromOutcome(o, board.SideBlack, white)}, cfg)
	return newWhite, newBlack
}

// NewHistoryEntry records r after a game against opponent.
func NewHistoryEntry(date time.Time, r Rating, result GameResult, opponent string) HistoryEntry {
	return HistoryEntry{
		Date:            date,
		Rating:          r.Rating,
		RatingDeviation: r.Deviation,
		GameResult:      result,
		Opponent:        opponent,
	}
}
