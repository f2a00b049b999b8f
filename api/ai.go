package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/daystram/dammen/board"
	"github.com/daystram/dammen/engine"
)

var (
	ErrInvalidTimeLimit = errors.New("invalid time limit")
	ErrMissingBoard     = errors.New("missing board")
)

type aiMoveRequest struct {
	Board         []int  `json:"board"`
	CurrentPlayer string `json:"currentPlayer"`
	Difficulty    string `json:"difficulty"`
	TimeLimitMs   *int64 `json:"timeLimitMs,omitempty"`
}

type aiMoveResponse struct {
	Notation        string   `json:"notation"`
	From            int      `json:"from"`
	To              int      `json:"to"`
	CapturedSquares []int    `json:"capturedSquares"`
	Score           int32    `json:"score"`
	DepthReached    uint8    `json:"depthReached"`
	TimeConsumedMs  int64    `json:"timeConsumedMs"`
	PV              []string `json:"pv,omitempty"`
}

func newAIMoveResponse(res engine.SearchResult) aiMoveResponse {
	captured := make([]int, 0, res.Move.CaptureCount())
	for _, sq := range res.Move.Captured() {
		captured = append(captured, int(sq))
	}
	pv := make([]string, len(res.PV))
	for i, mv := range res.PV {
		pv[i] = mv.Notation()
	}
	return aiMoveResponse{
		Notation:        res.Move.Notation(),
		From:            int(res.Move.From),
		To:              int(res.Move.To),
		CapturedSquares: captured,
		Score:           res.Score,
		DepthReached:    res.Depth,
		TimeConsumedMs:  res.Elapsed.Milliseconds(),
		PV:              pv,
	}
}

func (s *Server) handleAIMove(w http.ResponseWriter, r *http.Request) {
	var req aiMoveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	if req.Board == nil {
		writeJSONError(w, http.StatusBadRequest, ErrMissingBoard)
		return
	}
	side, err := board.ParseSide(req.CurrentPlayer)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	b, err := board.NewBoard(board.WithCells(req.Board, side))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	difficulty, timeLimit, err := s.searchLimits(req.Difficulty, req.TimeLimitMs)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.search(r.Context(), b, difficulty, timeLimit, nil)
	if err != nil {
		if errors.Is(err, engine.ErrNoLegalMoves) {
			writeJSONError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.logger.Errorw("search failed", "fen", b.FEN(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, newAIMoveResponse(res))
}

// searchLimits resolves the difficulty, falling back to the configured
// default, and caps the requested time limit.
func (s *Server) searchLimits(name string, timeLimitMs *int64) (engine.Difficulty, time.Duration, error) {
	if name == "" {
		name = s.cfg.Engine.DefaultDifficulty
	}
	difficulty, err := engine.ParseDifficulty(name)
	if err != nil {
		return 0, 0, err
	}

	timeLimit := s.cfg.Server.MaxTimeLimit
	if timeLimitMs != nil {
		if *timeLimitMs <= 0 {
			return 0, 0, fmt.Errorf("%w: %dms", ErrInvalidTimeLimit, *timeLimitMs)
		}
		if d := time.Duration(*timeLimitMs) * time.Millisecond; d < timeLimit {
			timeLimit = d
		}
	}
	return difficulty, timeLimit, nil
}

func (s *Server) search(ctx context.Context, b *board.Board, difficulty engine.Difficulty, timeLimit time.Duration, history []uint64) (engine.SearchResult, error) {
	e := engine.NewEngine(&engine.EngineConfig{
		HashTableSize: s.cfg.Engine.HashTableSize,
		Evaluator:     s.evaluator,
		Logger:        s.logger,
	})
	res, err := e.Search(ctx, b, &engine.SearchConfig{
		ClockConfig: difficulty.ClockConfig(timeLimit),
		History:     history,
		Debug:       s.cfg.Engine.Debug,
	})
	if err != nil {
		return engine.SearchResult{}, err
	}
	s.logger.Debugw("ai move",
		"fen", b.FEN(),
		"difficulty", difficulty.String(),
		"move", res.Move.Notation(),
		"score", engine.FormatScore(res.Score),
		"depth", res.Depth,
		"nodes", res.Nodes,
	)
	return res, nil
}
