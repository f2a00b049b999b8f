package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/daystram/dammen/board"
)

const (
	ScoreInfinite int32 = 1 << 30
	ScoreWin            = ScoreInfinite - 1

	// MaxPly bounds the distance from the root, quiescence included.
	MaxPly = 128

	scoreWinThreshold = ScoreWin - MaxPly

	aspirationWindow     int32 = 40
	aspirationMaxWindow  int32 = 640
	lateMoveFullMoves          = 3
	lateMoveDepthLimit         = 3
	lateMoveDeepReduceAt       = 8
	historyMax           int32 = scoreKiller - 1

	earlyStopRatio = 0.5
)

var ErrNoLegalMoves = errors.New("no legal moves")

type PVLine struct {
	mvs []board.Move
}

func (pvl *PVLine) GetPV() board.Move {
	if len(pvl.mvs) == 0 {
		return board.Move{}
	}
	return pvl.mvs[0]
}

func (pvl *PVLine) Set(mv board.Move, nextPVL PVLine) {
	if pvl == nil {
		return
	}
	pvl.mvs = append(append(pvl.mvs[:0], mv), nextPVL.mvs...)
}

func (pvl *PVLine) Clear() {
	pvl.mvs = pvl.mvs[:0]
}

func (pvl *PVLine) Len() int {
	return len(pvl.mvs)
}

func (pvl *PVLine) Moves() []board.Move {
	return append([]board.Move(nil), pvl.mvs...)
}

func (pvl *PVLine) String() string {
	return FormatLine(pvl.mvs)
}

// FormatLine joins move notations with spaces.
func FormatLine(mvs []board.Move) string {
	builder := strings.Builder{}
	for i, mv := range mvs {
		_, _ = builder.WriteString(mv.Notation())
		if i < len(mvs)-1 {
			_, _ = builder.WriteRune(' ')
		}
	}
	return builder.String()
}

type EngineConfig struct {
	HashTableSize uint64
	Evaluator     *Evaluator
	Logger        *zap.SugaredLogger
}

type SearchConfig struct {
	ClockConfig ClockConfig

	// History holds the hashes of the positions played before the root, oldest
	// first. A position repeated from it is scored as a draw.
	History []uint64

	// Info is called after every completed iteration.
	Info  func(SearchResult)
	Debug bool
}

type SearchResult struct {
	Move    board.Move
	Score   int32
	Depth   uint8
	Nodes   uint64
	Elapsed time.Duration
	PV      []board.Move
}

// Engine runs one search at a time. Concurrent searches need their own Engine;
// the Evaluator may be shared.
type Engine struct {
	tt      *TranspositionTable
	eval    *Evaluator
	clock   *Clock
	killers [MaxPly + 1][2]board.Move
	history [board.SideBlack + 1][51][51]int32
	path    [MaxPly + 1]uint64
	played  []uint64

	nodes  uint64
	logger *zap.SugaredLogger
}

func NewEngine(cfg *EngineConfig) *Engine {
	if cfg == nil {
		cfg = &EngineConfig{}
	}
	if cfg.Evaluator == nil {
		cfg.Evaluator = NewEvaluator(DefaultWeights())
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	return &Engine{
		tt:     NewTranspositionTable(cfg.HashTableSize),
		eval:   cfg.Evaluator,
		clock:  NewClock(),
		logger: cfg.Logger,
	}
}

func (e *Engine) TranspositionTable() *TranspositionTable {
	return e.tt
}

// Search picks a move for the side to move of b within the configured budget.
// It returns the best move of the last completed iteration, or the first
// ordered legal move when not even depth 1 completed. b is not modified.
func (e *Engine) Search(ctx context.Context, b *board.Board, cfg *SearchConfig) (SearchResult, error) {
	if cfg == nil {
		cfg = &SearchConfig{}
	}
	root := b.Clone()
	mvs := root.GenerateMoves()
	if len(mvs) == 0 {
		return SearchResult{}, ErrNoLegalMoves
	}

	res, err := e.search(ctx, root, mvs, cfg)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return SearchResult{}, err
	}
	if res.Move.IsNull() {
		panic(fmt.Sprintf("engine: no move selected from %d legal moves in %s", len(mvs), root.FEN()))
	}
	return res, nil
}

func (e *Engine) search(ctx context.Context, b *board.Board, rootMoves []board.Move, cfg *SearchConfig) (SearchResult, error) {
	e.reset(cfg)
	e.tt.NewSearch()
	e.clock.Start(ctx, &cfg.ClockConfig)
	defer e.clock.Stop()
	start := time.Now()

	scores := e.scoreMoves(b, board.Move{}, rootMoves, 0)
	sortMoves(rootMoves, scores, 0)
	res := SearchResult{Move: rootMoves[0]}
	if len(rootMoves) == 1 {
		// forced move, nothing to search
		res.Score = e.eval.Evaluate(b)
		res.PV = []board.Move{rootMoves[0]}
		res.Elapsed = time.Since(start)
		return res, nil
	}

	var pvl PVLine
	var prevScore int32
	for d := uint8(1); !e.clock.DoneByDepth(d); d++ {
		score, ok := e.searchRoot(b, &pvl, d, prevScore)
		if !ok {
			break
		}
		res.Move = pvl.GetPV()
		res.Score = score
		res.Depth = d
		res.PV = pvl.Moves()
		res.Nodes = e.nodes
		res.Elapsed = time.Since(start)
		e.report(cfg, res)

		if abs(score) >= scoreWinThreshold {
			break
		}
		if e.clock.Mode() == ClockModeGametime &&
			res.Elapsed.Seconds() > e.clock.AllocatedMovetime().Seconds()*earlyStopRatio {
			// the next iteration would not finish in time
			break
		}
		prevScore = score
	}

	res.Nodes = e.nodes
	res.Elapsed = time.Since(start)
	return res, ctx.Err()
}

// searchRoot runs one iteration with an aspiration window around the previous
// score, widening it on fail-low or fail-high.
func (e *Engine) searchRoot(b *board.Board, pvl *PVLine, depth uint8, prevScore int32) (int32, bool) {
	alpha, beta := -ScoreInfinite, ScoreInfinite
	window := aspirationWindow
	if depth > 1 {
		alpha, beta = prevScore-window, prevScore+window
	}
	for {
		pvl.Clear()
		score := e.negamax(b, pvl, depth, 0, alpha, beta)
		if e.stopped() {
			return 0, false
		}
		switch {
		case score <= alpha:
			window *= 2
			alpha = prevScore - window
		case score >= beta:
			window *= 2
			beta = prevScore + window
		default:
			return score, pvl.Len() > 0
		}
		if window > aspirationMaxWindow {
			alpha, beta = -ScoreInfinite, ScoreInfinite
		}
	}
}

func (e *Engine) negamax(b *board.Board, pvl *PVLine, depth, dist uint8, alpha, beta int32) int32 {
	e.nodes++

	if e.stopped() {
		return 0
	}

	isRoot := dist == 0
	hash, lock := b.Hash(), b.Lock()
	e.path[dist] = hash
	if !isRoot && e.isRepeated(hash, dist) {
		return 0
	}
	if dist >= MaxPly {
		return e.eval.Evaluate(b)
	}

	mvs := b.GenerateMoves()
	if len(mvs) == 0 {
		return -ScoreWin + int32(dist)
	}
	if depth == 0 {
		return e.quiescence(b, pvl, mvs, dist, alpha, beta)
	}

	var ttMove board.Move
	if entry, ok := e.tt.Probe(hash, lock); ok {
		ttMove = entry.Move
		if !isRoot && entry.Depth >= depth {
			score := scoreFromTT(entry.Score, dist)
			switch {
			case entry.Bound == BoundExact,
				entry.Bound == BoundLowerBound && score >= beta,
				entry.Bound == BoundUpperBound && score <= alpha:
				return score
			}
		}
	}

	isPVNode := beta-alpha > 1
	isCapture := mvs[0].IsCapture()
	scores := e.scoreMoves(b, ttMove, mvs, dist)

	alphaOrig := alpha
	bestScore := -ScoreInfinite
	var bestMove board.Move
	var childPVL PVLine
	for i := range mvs {
		sortMoves(mvs, scores, i)
		mv := mvs[i]
		reducible := !isCapture && !isPVNode && i >= lateMoveFullMoves && depth >= lateMoveDepthLimit &&
			scores[i] < scoreKiller && !b.IsPromotingMove(mv)

		childPVL.Clear()
		unApply := b.Apply(mv)
		var score int32
		if i == 0 {
			score = -e.negamax(b, &childPVL, depth-1, dist+1, -beta, -alpha)
		} else {
			if reducible {
				// late move reduction
				reduction := uint8(1)
				if i >= lateMoveDeepReduceAt && depth > 3 {
					reduction = 2
				}
				score = -e.negamax(b, &childPVL, depth-1-reduction, dist+1, -(alpha + 1), -alpha)
			}
			if !reducible || score > alpha {
				score = -e.negamax(b, &childPVL, depth-1, dist+1, -(alpha + 1), -alpha)
			}
			if score > alpha && score < beta {
				// principal variation re-search
				score = -e.negamax(b, &childPVL, depth-1, dist+1, -beta, -alpha)
			}
		}
		unApply()

		if e.stopped() {
			return 0
		}
		if score > bestScore {
			bestScore = score
			bestMove = mv
		}
		if score > alpha {
			alpha = score
			pvl.Set(mv, childPVL)
		}
		if alpha >= beta {
			if !mv.IsCapture() {
				e.storeKiller(b.Turn(), mv, depth, dist)
			}
			break
		}
	}

	bound := BoundExact
	switch {
	case bestScore >= beta:
		bound = BoundLowerBound
	case bestScore <= alphaOrig:
		bound = BoundUpperBound
	}
	e.tt.Store(hash, lock, bound, bestMove, scoreToTT(bestScore, dist), depth)

	return bestScore
}

// quiescence extends capture sequences until the position is quiet. Captures
// are forced, so there is no stand-pat while one is available.
func (e *Engine) quiescence(b *board.Board, pvl *PVLine, mvs []board.Move, dist uint8, alpha, beta int32) int32 {
	if !mvs[0].IsCapture() || dist >= MaxPly {
		return e.eval.Evaluate(b)
	}

	scores := e.scoreMoves(b, board.Move{}, mvs, dist)
	bestScore := -ScoreInfinite
	var childPVL PVLine
	for i := range mvs {
		sortMoves(mvs, scores, i)
		mv := mvs[i]

		childPVL.Clear()
		unApply := b.Apply(mv)
		e.nodes++
		var score int32
		if e.stopped() {
			score = 0
		} else if next := b.GenerateMoves(); len(next) == 0 {
			score = ScoreWin - int32(dist+1)
		} else {
			score = -e.quiescence(b, &childPVL, next, dist+1, -beta, -alpha)
		}
		unApply()

		if e.stopped() {
			return 0
		}
		if score > bestScore {
			bestScore = score
		}
		if score > alpha {
			alpha = score
			pvl.Set(mv, childPVL)
		}
		if alpha >= beta {
			break
		}
	}
	return bestScore
}

func (e *Engine) reset(cfg *SearchConfig) {
	e.nodes = 0
	e.played = cfg.History
	e.killers = [MaxPly + 1][2]board.Move{}
	for s := range e.history {
		for from := range e.history[s] {
			for to := range e.history[s][from] {
				e.history[s][from][to] /= 2
			}
		}
	}
}

func (e *Engine) stopped() bool {
	return e.clock.DoneByMovetime() || e.clock.DoneByNodes(e.nodes)
}

// isRepeated reports whether hash occurred earlier on the search path or in
// the game with the same side to move.
func (e *Engine) isRepeated(hash uint64, dist uint8) bool {
	for d := int(dist) - 2; d >= 0; d -= 2 {
		if e.path[d] == hash {
			return true
		}
	}
	for _, h := range e.played {
		if h == hash {
			return true
		}
	}
	return false
}

func (e *Engine) storeKiller(s board.Side, mv board.Move, depth, dist uint8) {
	if mv != e.killers[dist][0] {
		e.killers[dist][1] = e.killers[dist][0]
		e.killers[dist][0] = mv
	}
	h := &e.history[s][mv.From][mv.To]
	*h = min(*h+int32(depth)*int32(depth), historyMax)
}

func (e *Engine) report(cfg *SearchConfig, res SearchResult) {
	if cfg.Info != nil {
		cfg.Info(res)
	}
	nps := float64(res.Nodes) / (res.Elapsed + 1).Seconds()
	if cfg.Debug {
		hits, misses, collisions, writes := e.tt.Stats()
		e.logger.Info(message.NewPrinter(language.English).
			Sprintf("depth:%d [%s] nodes:%d (%.0fn/s) t:%s tt:%d/%d/%d/%d\n    %s",
				res.Depth, FormatScore(res.Score), res.Nodes, nps, res.Elapsed,
				hits, misses, collisions, writes, FormatLine(res.PV)))
		return
	}
	e.logger.Debugw("search iteration",
		"depth", res.Depth,
		"score", FormatScore(res.Score),
		"nodes", res.Nodes,
		"nps", int64(nps),
		"pv", FormatLine(res.PV),
	)
}

// scoreToTT makes win scores relative to the node so they stay valid when the
// position is reached at another distance from the root.
func scoreToTT(score int32, dist uint8) int32 {
	switch {
	case score >= scoreWinThreshold:
		return score + int32(dist)
	case score <= -scoreWinThreshold:
		return score - int32(dist)
	default:
		return score
	}
}

func scoreFromTT(score int32, dist uint8) int32 {
	switch {
	case score >= scoreWinThreshold:
		return score - int32(dist)
	case score <= -scoreWinThreshold:
		return score + int32(dist)
	default:
		return score
	}
}

// IsWinScore reports whether s is a forced win or loss.
func IsWinScore(s int32) bool {
	return abs(s) >= scoreWinThreshold
}

// FormatScore renders scores in men ("+1.20") or as plies to a forced win ("#+7").
func FormatScore(s int32) string {
	switch {
	case s >= ScoreInfinite:
		return "+inf"
	case s <= -ScoreInfinite:
		return "-inf"
	case s >= scoreWinThreshold:
		return fmt.Sprintf("#+%d", ScoreWin-s)
	case s <= -scoreWinThreshold:
		return fmt.Sprintf("#-%d", ScoreWin+s)
	case s > 0:
		return fmt.Sprintf("+%.2f", float64(s)/100)
	case s < 0:
		return fmt.Sprintf("%.2f", float64(s)/100)
	default:
		return "0"
	}
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return x * -1
	}
	return x
}
