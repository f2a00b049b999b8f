package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/daystram/dammen/board"
)

var (
	ErrFlagFallen   = errors.New("flag fallen")
	ErrNotOnMove    = errors.New("clock not running for side")
	ErrInvalidClock = errors.New("invalid clock config")
)

// ClockConfig is a Fischer time control: every side starts with Initial and
// gains Increment after each completed move.
type ClockConfig struct {
	Initial   time.Duration `mapstructure:"initial"`
	Increment time.Duration `mapstructure:"increment"`

	// DrawOnInsufficientMaterial draws a timeout when the opponent cannot win.
	DrawOnInsufficientMaterial bool `mapstructure:"draw_on_insufficient_material"`
}

func (c ClockConfig) Validate() error {
	if c.Initial <= 0 {
		return fmt.Errorf("%w: initial time must be positive", ErrInvalidClock)
	}
	if c.Increment < 0 {
		return fmt.Errorf("%w: increment must not be negative", ErrInvalidClock)
	}
	return nil
}

// Clock is a two-sided game clock. It is safe for concurrent use.
type Clock struct {
	mu sync.Mutex

	cfg       ClockConfig
	remaining [board.SideBlack + 1]time.Duration
	active    board.Side
	running   bool
	since     time.Time
	now       func() time.Time
}

type ClockOption func(*Clock)

// WithTimeSource replaces time.Now, mostly for tests.
func WithTimeSource(now func() time.Time) ClockOption {
	return func(c *Clock) {
		c.now = now
	}
}

func NewClock(cfg ClockConfig, opts ...ClockOption) (*Clock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Clock{cfg: cfg, now: time.Now}
	c.remaining[board.SideWhite] = cfg.Initial
	c.remaining[board.SideBlack] = cfg.Initial
	for _, f := range opts {
		f(c)
	}
	return c, nil
}

func (c *Clock) Config() ClockConfig {
	return c.cfg
}

// Start runs the clock of side s.
func (c *Clock) Start(s board.Side) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = s
	c.running = true
	c.since = c.now()
}

// Press ends the turn of s: the elapsed time is charged, the increment added
// and the opponent's clock started. A side already out of time gets
// ErrFlagFallen and the clock stops.
func (c *Clock) Press(s board.Side) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.active != s {
		return fmt.Errorf("%w: %s", ErrNotOnMove, s)
	}
	now := c.now()
	c.remaining[s] -= now.Sub(c.since)
	if c.remaining[s] <= 0 {
		c.remaining[s] = 0
		c.running = false
		return fmt.Errorf("%w: %s", ErrFlagFallen, s)
	}
	c.remaining[s] += c.cfg.Increment
	c.active = s.Opposite()
	c.since = now
	return nil
}

func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.remaining[c.active] -= c.now().Sub(c.since)
	if c.remaining[c.active] < 0 {
		c.remaining[c.active] = 0
	}
	c.running = false
}

func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running || c.active == board.SideUnknown {
		return
	}
	c.running = true
	c.since = c.now()
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) Active() board.Side {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Remaining returns the time left for s, including the running turn.
func (c *Clock) Remaining(s board.Side) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked(s)
}

func (c *Clock) Expired(s board.Side) bool {
	return c.Remaining(s) <= 0
}

func (c *Clock) remainingLocked(s board.Side) time.Duration {
	if s != board.SideWhite && s != board.SideBlack {
		return 0
	}
	r := c.remaining[s]
	if c.running && c.active == s {
		r -= c.now().Sub(c.since)
	}
	if r < 0 {
		return 0
	}
	return r
}
