package game

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/daystram/dammen/board"
)

var (
	// ErrIllegalMove is board.ErrIllegalMove; *IllegalMoveError unwraps to it.
	ErrIllegalMove    = board.ErrIllegalMove
	ErrNotInProgress  = errors.New("game not in progress")
	ErrAlreadyStarted = errors.New("game already started")
)

// IllegalMoveError rejects a move that is not in the legal set of the current
// position. The game is left untouched.
type IllegalMoveError struct {
	Move     board.Move
	Notation string
	Side     board.Side
}

func (e *IllegalMoveError) Error() string {
	n := e.Notation
	if n == "" {
		n = e.Move.Notation()
	}
	return fmt.Sprintf("%s: %s is not playable by %s", ErrIllegalMove, n, e.Side)
}

func (e *IllegalMoveError) Unwrap() error {
	return ErrIllegalMove
}

type Phase uint8

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseInProgress:
		return "InProgress"
	case PhaseFinished:
		return "Finished"
	default:
		return ""
	}
}

type Result uint8

const (
	ResultNone Result = iota
	ResultWhiteWin
	ResultBlackWin
	ResultDraw
)

func (r Result) String() string {
	switch r {
	case ResultWhiteWin:
		return "WhiteWin"
	case ResultBlackWin:
		return "BlackWin"
	case ResultDraw:
		return "Draw"
	default:
		return ""
	}
}

type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonNoLegalMoves
	ReasonRepetition
	ReasonKingMoves
	ReasonEndgame
	ReasonResignation
	ReasonTimeout
	ReasonTimeoutInsufficientMaterial
)

func (r Reason) String() string {
	switch r {
	case ReasonNoLegalMoves:
		return "NoLegalMoves"
	case ReasonRepetition:
		return "ThreefoldRepetition"
	case ReasonKingMoves:
		return "KingMovesOnly"
	case ReasonEndgame:
		return "Endgame"
	case ReasonResignation:
		return "Resignation"
	case ReasonTimeout:
		return "Timeout"
	case ReasonTimeoutInsufficientMaterial:
		return "TimeoutInsufficientMaterial"
	default:
		return ""
	}
}

type Outcome struct {
	Result Result
	Reason Reason
}

func (o Outcome) String() string {
	if o.Result == ResultNone {
		return ""
	}
	return o.Result.String() + " (" + o.Reason.String() + ")"
}

func (o Outcome) Winner() board.Side {
	switch o.Result {
	case ResultWhiteWin:
		return board.SideWhite
	case ResultBlackWin:
		return board.SideBlack
	default:
		return board.SideUnknown
	}
}

// ScoreFor returns 1 for a win, 0.5 for a draw and 0 for a loss of side s.
func (o Outcome) ScoreFor(s board.Side) float64 {
	switch w := o.Winner(); {
	case o.Result == ResultDraw:
		return 0.5
	case w == s:
		return 1
	default:
		return 0
	}
}

func winFor(s board.Side) Result {
	if s == board.SideWhite {
		return ResultWhiteWin
	}
	return ResultBlackWin
}

// Record is one played move.
type Record struct {
	Move     board.Move
	Side     board.Side
	Promoted bool
	Hash     uint64
	Lock     uint64
}

// Summary is the game-history entry handed to persistence collaborators.
type Summary struct {
	Result     string `json:"result"`
	Reason     string `json:"reason,omitempty"`
	MoveCount  int    `json:"moveCount"`
	Mode       string `json:"mode,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type positionKey struct {
	hash, lock uint64
}

// Game owns one session's position and history. It is not safe for concurrent
// use; callers serialise Apply per game.
type Game struct {
	rules      Rules
	mode       string
	difficulty string
	clock      *Clock
	logger     *zap.SugaredLogger

	start   *board.Board
	board   *board.Board
	legal   []board.Move
	phase   Phase
	outcome Outcome
	history []Record

	positions     map[positionKey]int
	kingMovePlies int
	endgame       endgameState
}

type gameConfig struct {
	board      *board.Board
	rules      Rules
	mode       string
	difficulty string
	clock      *Clock
	logger     *zap.SugaredLogger
}

type Option func(*gameConfig)

// WithBoard starts the game from a custom position instead of the standard one.
func WithBoard(b *board.Board) Option {
	return func(cfg *gameConfig) {
		cfg.board = b
	}
}

func WithRules(r Rules) Option {
	return func(cfg *gameConfig) {
		cfg.rules = r
	}
}

func WithClock(c *Clock) Option {
	return func(cfg *gameConfig) {
		cfg.clock = c
	}
}

// WithMode tags the game for its summary, e.g. "pvp" or "ai".
func WithMode(mode, difficulty string) Option {
	return func(cfg *gameConfig) {
		cfg.mode = mode
		cfg.difficulty = difficulty
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(cfg *gameConfig) {
		cfg.logger = l
	}
}

func New(opts ...Option) (*Game, error) {
	cfg := &gameConfig{
		rules:  DefaultRules(),
		logger: zap.NewNop().Sugar(),
	}
	for _, f := range opts {
		f(cfg)
	}
	if err := cfg.rules.Validate(); err != nil {
		return nil, err
	}
	start := cfg.board
	if start == nil {
		var err error
		if start, err = board.NewBoard(); err != nil {
			return nil, err
		}
	}
	return &Game{
		rules:      cfg.rules,
		mode:       cfg.mode,
		difficulty: cfg.difficulty,
		clock:      cfg.clock,
		logger:     cfg.logger,
		start:      start.Clone(),
		phase:      PhaseNotStarted,
	}, nil
}

// Start moves the game to InProgress from its starting position. A starting
// position without legal moves finishes the game immediately.
func (g *Game) Start() error {
	if g.phase != PhaseNotStarted {
		return ErrAlreadyStarted
	}
	g.board = g.start.Clone()
	g.positions = map[positionKey]int{{g.board.Hash(), g.board.Lock()}: 1}
	g.history = nil
	g.kingMovePlies = 0
	g.endgame = endgameState{}
	g.endgame.update(g.board)
	g.phase = PhaseInProgress
	if g.clock != nil {
		g.clock.Start(g.board.Turn())
	}
	g.legal = g.board.GenerateMoves()
	if len(g.legal) == 0 {
		g.finish(Outcome{Result: winFor(g.board.Turn().Opposite()), Reason: ReasonNoLegalMoves})
	}
	return nil
}

func (g *Game) Phase() Phase {
	return g.phase
}

func (g *Game) Outcome() Outcome {
	return g.outcome
}

func (g *Game) Turn() board.Side {
	if g.board == nil {
		return g.start.Turn()
	}
	return g.board.Turn()
}

// Board returns a copy of the current position.
func (g *Game) Board() *board.Board {
	if g.board == nil {
		return g.start.Clone()
	}
	return g.board.Clone()
}

// LegalMoves returns the moves playable in the current position.
func (g *Game) LegalMoves() []board.Move {
	if g.phase != PhaseInProgress {
		return nil
	}
	return append([]board.Move(nil), g.legal...)
}

func (g *Game) History() []Record {
	return append([]Record(nil), g.history...)
}

// Moves returns the played moves in order.
func (g *Game) Moves() []board.Move {
	mvs := make([]board.Move, len(g.history))
	for i, r := range g.history {
		mvs[i] = r.Move
	}
	return mvs
}

// PlayedHashes returns the hashes of the positions before the current one,
// oldest first, as repetition history for a search.
func (g *Game) PlayedHashes() []uint64 {
	if len(g.history) == 0 {
		return nil
	}
	hashes := make([]uint64, 0, len(g.history))
	hashes = append(hashes, g.start.Hash())
	for _, r := range g.history[:len(g.history)-1] {
		hashes = append(hashes, r.Hash)
	}
	return hashes
}

func (g *Game) Clock() *Clock {
	return g.clock
}

// Apply plays mv for the side to move, then checks in order: no legal moves,
// repetition, king-only moves and small-material endgames.
func (g *Game) Apply(mv board.Move) error {
	if g.phase != PhaseInProgress {
		return fmt.Errorf("%w: %s", ErrNotInProgress, g.phase)
	}
	side := g.board.Turn()
	if !g.isLegal(mv) {
		return &IllegalMoveError{Move: mv, Side: side}
	}
	if g.clock != nil {
		if err := g.clock.Press(side); err != nil {
			if errors.Is(err, ErrFlagFallen) {
				g.Timeout(side)
			}
			return err
		}
	}

	piece := g.board.PieceAt(mv.From)
	promoted := g.board.IsPromotingMove(mv)
	g.board.Apply(mv)
	g.history = append(g.history, Record{
		Move:     mv,
		Side:     side,
		Promoted: promoted,
		Hash:     g.board.Hash(),
		Lock:     g.board.Lock(),
	})
	if piece.IsKing() && !mv.IsCapture() {
		g.kingMovePlies++
	} else {
		g.kingMovePlies = 0
	}
	g.endgame.update(g.board)
	key := positionKey{g.board.Hash(), g.board.Lock()}
	g.positions[key]++

	g.legal = g.board.GenerateMoves()
	switch {
	case len(g.legal) == 0:
		g.finish(Outcome{Result: winFor(side), Reason: ReasonNoLegalMoves})
	case g.positions[key] >= g.rules.Repetitions:
		g.finish(Outcome{Result: ResultDraw, Reason: ReasonRepetition})
	case g.kingMovePlies >= g.rules.KingMovePlies:
		g.finish(Outcome{Result: ResultDraw, Reason: ReasonKingMoves})
	case g.endgame.limit(g.rules) > 0 && g.endgame.plies >= g.endgame.limit(g.rules):
		g.finish(Outcome{Result: ResultDraw, Reason: ReasonEndgame})
	}
	return nil
}

// ApplyNotation resolves n against the legal moves and plays it.
func (g *Game) ApplyNotation(n string) (board.Move, error) {
	if g.phase != PhaseInProgress {
		return board.Move{}, fmt.Errorf("%w: %s", ErrNotInProgress, g.phase)
	}
	mv, err := g.board.ResolveMove(n)
	if err != nil {
		if errors.Is(err, board.ErrIllegalMove) {
			return board.Move{}, &IllegalMoveError{Notation: n, Side: g.board.Turn()}
		}
		return board.Move{}, err
	}
	return mv, g.Apply(mv)
}

// Resign ends the game in favour of the opponent of s.
func (g *Game) Resign(s board.Side) error {
	if g.phase != PhaseInProgress {
		return fmt.Errorf("%w: %s", ErrNotInProgress, g.phase)
	}
	g.finish(Outcome{Result: winFor(s.Opposite()), Reason: ReasonResignation})
	return nil
}

// Timeout ends the game after s ran out of time. With DrawOnInsufficientMaterial
// set on the clock, the game is drawn when the opponent cannot win.
func (g *Game) Timeout(s board.Side) {
	if g.phase != PhaseInProgress {
		return
	}
	if g.clock != nil && g.clock.cfg.DrawOnInsufficientMaterial && !canWin(g.board, s.Opposite()) {
		g.finish(Outcome{Result: ResultDraw, Reason: ReasonTimeoutInsufficientMaterial})
		return
	}
	g.finish(Outcome{Result: winFor(s.Opposite()), Reason: ReasonTimeout})
}

// CheckClock finishes the game on time if the side to move has flagged.
func (g *Game) CheckClock() bool {
	if g.phase != PhaseInProgress || g.clock == nil {
		return false
	}
	if s := g.board.Turn(); g.clock.Expired(s) {
		g.Timeout(s)
		return true
	}
	return false
}

func (g *Game) Summary() Summary {
	return Summary{
		Result:     g.outcome.Result.String(),
		Reason:     g.outcome.Reason.String(),
		MoveCount:  len(g.history),
		Mode:       g.mode,
		Difficulty: g.difficulty,
	}
}

func (g *Game) isLegal(mv board.Move) bool {
	for _, l := range g.legal {
		if l == mv {
			return true
		}
	}
	return false
}

func (g *Game) finish(o Outcome) {
	g.phase = PhaseFinished
	g.outcome = o
	g.legal = nil
	if g.clock != nil {
		g.clock.Pause()
	}
	g.logger.Infow("game finished",
		"result", o.Result.String(),
		"reason", o.Reason.String(),
		"plies", len(g.history),
	)
}
