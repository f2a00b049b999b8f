package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/daystram/dammen/rating"
)

var ErrInvalidRating = errors.New("invalid rating")

type ratedGame struct {
	Opponent rating.Rating `json:"opponent"`
	Result   string        `json:"result"`
}

type glicko2Request struct {
	Player *rating.Rating `json:"player,omitempty"`
	Games  []ratedGame    `json:"games"`
}

type glicko2Response struct {
	Before rating.Rating `json:"before"`
	After  rating.Rating `json:"after"`
}

// handleGlicko2 rates one period of games for a player. A missing player
// starts from the default rating.
func (s *Server) handleGlicko2(w http.ResponseWriter, r *http.Request) {
	var req glicko2Request
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	player := rating.Default()
	if req.Player != nil {
		player = *req.Player
	}
	if err := validateRating(player); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("player: %w", err))
		return
	}

	results := make([]rating.Result, 0, len(req.Games))
	for i, g := range req.Games {
		opponent := g.Opponent
		if opponent.Volatility == 0 {
			opponent.Volatility = rating.DefaultVolatility
		}
		if err := validateRating(opponent); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("game %d: %w", i+1, err))
			return
		}
		result, err := rating.ParseGameResult(g.Result)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("game %d: %w", i+1, err))
			return
		}
		results = append(results, rating.Result{Opponent: opponent, Score: result.Score()})
	}

	writeJSON(w, http.StatusOK, glicko2Response{
		Before: player,
		After:  rating.Update(player, results, s.cfg.Rating),
	})
}

func validateRating(r rating.Rating) error {
	if r.Deviation <= 0 || r.Volatility <= 0 {
		return fmt.Errorf("%w: deviation and volatility must be positive", ErrInvalidRating)
	}
	return nil
}
