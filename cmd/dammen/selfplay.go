package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/daystram/dammen/board"
	"github.com/daystram/dammen/config"
	"github.com/daystram/dammen/engine"
	"github.com/daystram/dammen/game"
	"github.com/daystram/dammen/rating"
)

// selfplay pits two difficulty levels against each other from fen and rates
// the result as a single game between two fresh players. A timed game runs on
// the configured time control and budgets every search from the clock.
func selfplay(ctx context.Context, w io.Writer, cfg *config.Config, logger *zap.SugaredLogger,
	fen string, white, black engine.Difficulty, maxPlies int, timed bool,
) error {
	b, err := board.NewBoard(board.WithFEN(fen))
	if err != nil {
		return err
	}
	opts := []game.Option{
		game.WithBoard(b),
		game.WithRules(cfg.Rules),
		game.WithMode("selfplay", white.String()+"-"+black.String()),
		game.WithLogger(logger),
	}
	if timed {
		clock, err := game.NewClock(cfg.Clock)
		if err != nil {
			return err
		}
		opts = append(opts, game.WithClock(clock))
	}
	g, err := game.New(opts...)
	if err != nil {
		return err
	}
	if err := g.Start(); err != nil {
		return err
	}

	ev := engine.NewEvaluator(cfg.Engine.Weights)
	players := [board.SideBlack + 1]struct {
		engine     *engine.Engine
		difficulty engine.Difficulty
	}{
		board.SideWhite: {engine.NewEngine(&engine.EngineConfig{HashTableSize: cfg.Engine.HashTableSize, Evaluator: ev, Logger: logger}), white},
		board.SideBlack: {engine.NewEngine(&engine.EngineConfig{HashTableSize: cfg.Engine.HashTableSize, Evaluator: ev, Logger: logger}), black},
	}

	fmt.Fprintf(w, "============ selfplay: %s (White) vs %s (Black)\n", white, black)
	fmt.Fprintln(w, b.Draw())
	for ply := 0; g.Phase() == game.PhaseInProgress && ply < maxPlies; ply++ {
		side := g.Turn()
		p := players[side]
		res, err := p.engine.Search(ctx, g.Board(), &engine.SearchConfig{
			ClockConfig: searchClock(g, p.difficulty),
			History:     g.PlayedHashes(),
		})
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.Apply(res.Move); err != nil {
			if errors.Is(err, game.ErrFlagFallen) {
				break
			}
			return err
		}
		fmt.Fprintf(w, "%3d. %-5s %-18s score=%-6s depth=%-2d nodes=%d\n",
			ply/2+1, side, res.Move, engine.FormatScore(res.Score), res.Depth, res.Nodes)
	}

	final := g.Board()
	fmt.Fprintln(w, final.Draw())
	fmt.Fprintln(w, final.FEN())
	if g.Phase() != game.PhaseFinished {
		fmt.Fprintf(w, "unfinished after %d plies\n", len(g.History()))
		return nil
	}
	fmt.Fprintln(w, "result:", g.Outcome())

	summary, err := json.Marshal(g.Summary())
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "summary:", string(summary))

	whiteRating, blackRating := rating.UpdateGame(rating.Default(), rating.Default(), g.Outcome(), cfg.Rating)
	fmt.Fprintf(w, "rating: White %.1f (%.1f) Black %.1f (%.1f)\n",
		whiteRating.Rating, whiteRating.Deviation, blackRating.Rating, blackRating.Deviation)

	date := time.Now().UTC()
	for _, h := range []struct {
		side     board.Side
		rating   rating.Rating
		opponent engine.Difficulty
	}{
		{board.SideWhite, whiteRating, black},
		{board.SideBlack, blackRating, white},
	} {
		entry := rating.NewHistoryEntry(date, h.rating, rating.GameResultFromOutcome(g.Outcome(), h.side), "bot:"+h.opponent.String())
		raw, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "history %s: %s\n", h.side, raw)
	}
	return nil
}

// searchClock budgets a search by the game clock when there is one, keeping
// the preset depth of the difficulty.
func searchClock(g *game.Game, d engine.Difficulty) engine.ClockConfig {
	c := g.Clock()
	if c == nil {
		return d.ClockConfig(0)
	}
	return engine.ClockConfig{
		Remaining:   c.Remaining(g.Turn()),
		Increment:   c.Config().Increment,
		MovesPlayed: len(g.History()) / 2,
		Depth:       d.Preset().Depth,
	}
}
