package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/daystram/dammen/board"
	"github.com/daystram/dammen/engine"
	"github.com/daystram/dammen/game"
)

const (
	ModePVP = "pvp"
	ModeAI  = "ai"
)

var (
	ErrUnknownMode      = errors.New("unknown mode")
	ErrConflictingBoard = errors.New("fen and board are mutually exclusive")
	ErrNotAITurn        = errors.New("not the engine's turn")
)

// clockRequest asks for a timed game. Omitted fields take the configured
// time control.
type clockRequest struct {
	InitialMs                  *int64 `json:"initialMs,omitempty"`
	IncrementMs                *int64 `json:"incrementMs,omitempty"`
	DrawOnInsufficientMaterial *bool  `json:"drawOnInsufficientMaterial,omitempty"`
}

func (c *clockRequest) config(base game.ClockConfig) game.ClockConfig {
	if c.InitialMs != nil {
		base.Initial = time.Duration(*c.InitialMs) * time.Millisecond
	}
	if c.IncrementMs != nil {
		base.Increment = time.Duration(*c.IncrementMs) * time.Millisecond
	}
	if c.DrawOnInsufficientMaterial != nil {
		base.DrawOnInsufficientMaterial = *c.DrawOnInsufficientMaterial
	}
	return base
}

type createGameRequest struct {
	FEN           string        `json:"fen,omitempty"`
	Board         []int         `json:"board,omitempty"`
	CurrentPlayer string        `json:"currentPlayer,omitempty"`
	Mode          string        `json:"mode,omitempty"`
	Difficulty    string        `json:"difficulty,omitempty"`
	AISide        string        `json:"aiSide,omitempty"`
	Clock         *clockRequest `json:"clock,omitempty"`
}

type moveRequest struct {
	Notation string `json:"notation"`
}

type aiRequest struct {
	TimeLimitMs *int64 `json:"timeLimitMs,omitempty"`
}

type resignRequest struct {
	Side string `json:"side"`
}

type clockResponse struct {
	WhiteMs int64  `json:"whiteMs"`
	BlackMs int64  `json:"blackMs"`
	Active  string `json:"active"`
	Running bool   `json:"running"`
}

type gameResponse struct {
	ID         string          `json:"id"`
	FEN        string          `json:"fen"`
	Board      []int           `json:"board"`
	Turn       string          `json:"turn"`
	Phase      string          `json:"phase"`
	Result     string          `json:"result,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	LegalMoves []string        `json:"legalMoves"`
	Moves      []string        `json:"moves"`
	Clock      *clockResponse  `json:"clock,omitempty"`
	Summary    *game.Summary   `json:"summary,omitempty"`
	AIMove     *aiMoveResponse `json:"aiMove,omitempty"`
}

func newGameResponse(s *session) gameResponse {
	g := s.game
	b := g.Board()
	resp := gameResponse{
		ID:         s.id.String(),
		FEN:        b.FEN(),
		Board:      b.Cells(),
		Turn:       b.Turn().String(),
		Phase:      g.Phase().String(),
		Result:     g.Outcome().Result.String(),
		Reason:     g.Outcome().Reason.String(),
		LegalMoves: notations(g.LegalMoves()),
		Moves:      notations(g.Moves()),
	}
	if c := g.Clock(); c != nil {
		resp.Clock = &clockResponse{
			WhiteMs: c.Remaining(board.SideWhite).Milliseconds(),
			BlackMs: c.Remaining(board.SideBlack).Milliseconds(),
			Active:  c.Active().String(),
			Running: c.Running(),
		}
	}
	if g.Phase() == game.PhaseFinished {
		summary := g.Summary()
		resp.Summary = &summary
	}
	return resp
}

func notations(mvs []board.Move) []string {
	ns := make([]string, len(mvs))
	for i, mv := range mvs {
		ns[i] = mv.Notation()
	}
	return ns
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	g, difficulty, aiSide, err := s.newGame(req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	if err := g.Start(); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}

	sess := s.sessions.add(g, difficulty, aiSide)
	s.logger.Infow("game created", "id", sess.id.String(), "fen", g.Board().FEN())
	writeJSON(w, http.StatusCreated, newGameResponse(sess))
}

func (s *Server) newGame(req createGameRequest) (*game.Game, engine.Difficulty, board.Side, error) {
	var b *board.Board
	var err error
	switch {
	case req.FEN != "" && req.Board != nil:
		return nil, 0, 0, ErrConflictingBoard
	case req.FEN != "":
		b, err = board.NewBoard(board.WithFEN(req.FEN))
	case req.Board != nil:
		var side board.Side
		if side, err = board.ParseSide(req.CurrentPlayer); err == nil {
			b, err = board.NewBoard(board.WithCells(req.Board, side))
		}
	default:
		b, err = board.NewBoard()
	}
	if err != nil {
		return nil, 0, 0, err
	}

	mode := req.Mode
	if mode == "" {
		mode = ModePVP
	}
	var difficulty engine.Difficulty
	aiSide := board.SideUnknown
	switch mode {
	case ModePVP:
	case ModeAI:
		if difficulty, _, err = s.searchLimits(req.Difficulty, nil); err != nil {
			return nil, 0, 0, err
		}
		aiSide = board.SideBlack
		if req.AISide != "" {
			if aiSide, err = board.ParseSide(req.AISide); err != nil {
				return nil, 0, 0, err
			}
		}
	default:
		return nil, 0, 0, fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}

	opts := []game.Option{
		game.WithBoard(b),
		game.WithRules(s.cfg.Rules),
		game.WithMode(mode, difficulty.String()),
		game.WithLogger(s.logger),
	}
	if req.Clock != nil {
		clock, err := game.NewClock(req.Clock.config(s.cfg.Clock), game.WithTimeSource(s.now))
		if err != nil {
			return nil, 0, 0, err
		}
		opts = append(opts, game.WithClock(clock))
	}
	g, err := game.New(opts...)
	if err != nil {
		return nil, 0, 0, err
	}
	return g, difficulty, aiSide, nil
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.lock(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err)
		return
	}
	defer sess.mu.Unlock()

	sess.game.CheckClock()
	writeJSON(w, http.StatusOK, newGameResponse(sess))
}

func (s *Server) handleGameMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	sess, err := s.sessions.lock(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err)
		return
	}
	defer sess.mu.Unlock()

	if sess.game.CheckClock() {
		writeJSON(w, http.StatusConflict, newGameResponse(sess))
		return
	}
	if _, err := sess.game.ApplyNotation(req.Notation); err != nil {
		writeMoveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameResponse(sess))
}

func (s *Server) handleGameAI(w http.ResponseWriter, r *http.Request) {
	var req aiRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	sess, err := s.sessions.lock(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err)
		return
	}
	defer sess.mu.Unlock()

	g := sess.game
	if g.CheckClock() || g.Phase() != game.PhaseInProgress {
		writeJSONError(w, http.StatusConflict, fmt.Errorf("%w: %s", game.ErrNotInProgress, g.Phase()))
		return
	}
	if sess.aiSide != board.SideUnknown && sess.aiSide != g.Turn() {
		writeJSONError(w, http.StatusConflict, ErrNotAITurn)
		return
	}

	difficulty := sess.difficulty
	if difficulty == 0 {
		if difficulty, _, err = s.searchLimits("", nil); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}
	}
	_, timeLimit, err := s.searchLimits(difficulty.String(), req.TimeLimitMs)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	if c := g.Clock(); c != nil {
		// never think longer than the clock allows
		if rem := c.Remaining(g.Turn()); rem < timeLimit {
			timeLimit = rem
		}
	}

	res, err := s.search(r.Context(), g.Board(), difficulty, timeLimit, g.PlayedHashes())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	if err := g.Apply(res.Move); err != nil && !errors.Is(err, game.ErrFlagFallen) {
		s.logger.Errorw("engine move rejected", "move", res.Move.Notation(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	resp := newGameResponse(sess)
	aiMove := newAIMoveResponse(res)
	resp.AIMove = &aiMove
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGameResign(w http.ResponseWriter, r *http.Request) {
	var req resignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	sess, err := s.sessions.lock(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err)
		return
	}
	defer sess.mu.Unlock()

	side := sess.game.Turn()
	if req.Side != "" {
		if side, err = board.ParseSide(req.Side); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
	}
	if err := sess.game.Resign(side); err != nil {
		writeMoveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameResponse(sess))
}

func writeMoveError(w http.ResponseWriter, err error) {
	var ambiguous *board.AmbiguousMoveError
	switch {
	case errors.As(err, &ambiguous):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:      err.Error(),
			Candidates: notations(ambiguous.Candidates),
		})
	case errors.Is(err, game.ErrIllegalMove):
		writeJSONError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, game.ErrNotInProgress), errors.Is(err, game.ErrFlagFallen):
		writeJSONError(w, http.StatusConflict, err)
	default:
		writeJSONError(w, http.StatusBadRequest, err)
	}
}
