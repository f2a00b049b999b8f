package engine

import (
	"context"
	"math"
	"sync/atomic"
	"time"
)

const (
	MaxMovetime       = 24 * time.Hour
	MaxDepth    uint8 = 64
	MaxNodes          = math.MaxUint64

	// DefaultMovetime is the budget of front ends given no limit at all.
	DefaultMovetime = 3 * time.Second

	minMovetime = 20 * time.Millisecond

	expectedGameMoves         = 50
	minMovesToGo              = 10
	movetimeAccumulationRatio = 0.8
	movetimeMargin            = 50 * time.Millisecond
)

type ClockMode uint8

const (
	ClockModeInfinite ClockMode = iota
	ClockModeMovetime
	ClockModeGametime
	ClockModeDepth
	ClockModeNodes
)

func (m ClockMode) String() string {
	switch m {
	case ClockModeInfinite:
		return "infinite"
	case ClockModeMovetime:
		return "movetime"
	case ClockModeGametime:
		return "gametime"
	case ClockModeDepth:
		return "depth"
	case ClockModeNodes:
		return "nodes"
	default:
		return ""
	}
}

// ClockConfig is the budget of one search. Limits combine: the search stops at
// whichever is reached first. Movetime takes precedence over the game clock.
type ClockConfig struct {
	// Remaining and Increment describe the game clock of the side to move.
	Remaining   time.Duration
	Increment   time.Duration
	MovesPlayed int

	Movetime time.Duration

	Depth uint8

	Nodes uint64
}

// Clock turns a ClockConfig into stop conditions checked by the search.
type Clock struct {
	mode              ClockMode
	allocatedMovetime time.Duration
	targetDepth       uint8
	targetNodes       uint64

	done   *atomic.Bool
	cancel context.CancelFunc
}

func NewClock() *Clock {
	done := &atomic.Bool{}
	done.Store(true)
	return &Clock{done: done}
}

func (c *Clock) Start(ctx context.Context, cfg *ClockConfig) {
	c.Stop()
	c.allocatedMovetime = 0
	c.targetDepth = MaxDepth
	c.targetNodes = MaxNodes

	switch {
	case cfg.Movetime != 0:
		c.mode = ClockModeMovetime
		c.allocatedMovetime = cfg.Movetime
	case cfg.Remaining != 0:
		c.mode = ClockModeGametime
		movesToGo := max(expectedGameMoves-cfg.MovesPlayed, minMovesToGo)
		c.allocatedMovetime = cfg.Remaining/time.Duration(movesToGo) +
			time.Duration(float64(cfg.Increment)*movetimeAccumulationRatio)
		// never plan beyond what is left on the clock
		if limit := cfg.Remaining - movetimeMargin; c.allocatedMovetime > limit {
			c.allocatedMovetime = limit
		}
	case cfg.Depth != 0:
		c.mode = ClockModeDepth
	case cfg.Nodes != 0:
		c.mode = ClockModeNodes
	default:
		c.mode = ClockModeInfinite
	}
	if c.allocatedMovetime != 0 {
		c.allocatedMovetime = min(max(c.allocatedMovetime, minMovetime), MaxMovetime)
	}
	if cfg.Depth != 0 {
		c.targetDepth = min(cfg.Depth, MaxDepth)
	}
	if cfg.Nodes != 0 {
		c.targetNodes = cfg.Nodes
	}

	var cancel context.CancelFunc
	if c.allocatedMovetime != 0 {
		budget := c.allocatedMovetime - movetimeMargin
		if budget < c.allocatedMovetime/2 {
			budget = c.allocatedMovetime / 2
		}
		ctx, cancel = context.WithTimeout(ctx, budget)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	done := &atomic.Bool{}
	if ctx.Err() != nil {
		done.Store(true)
	}
	c.done = done
	c.cancel = cancel
	go func() {
		<-ctx.Done()
		done.Store(true)
	}()
}

func (c *Clock) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Clock) Mode() ClockMode {
	return c.mode
}

func (c *Clock) AllocatedMovetime() time.Duration {
	return c.allocatedMovetime
}

func (c *Clock) DoneByMovetime() bool {
	return c.done.Load()
}

func (c *Clock) DoneByDepth(depth uint8) bool {
	return depth > c.targetDepth
}

func (c *Clock) DoneByNodes(nodes uint64) bool {
	return nodes > c.targetNodes
}
