package api

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/daystram/dammen/board"
	"github.com/daystram/dammen/engine"
	"github.com/daystram/dammen/game"
)

var ErrGameNotFound = errors.New("game not found")

// session is one game served over HTTP. Its mutex serialises every call on
// the game. Pruning reads lastUsed without taking it.
type session struct {
	mu         sync.Mutex
	id         uuid.UUID
	game       *game.Game
	difficulty engine.Difficulty
	aiSide     board.Side
	lastUsed   atomic.Int64
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	ttl      time.Duration
	now      func() time.Time
}

func newSessionRegistry(ttl time.Duration, now func() time.Time) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[uuid.UUID]*session),
		ttl:      ttl,
		now:      now,
	}
}

// add registers g under a fresh id and drops sessions idle for longer than
// the registry ttl.
func (r *sessionRegistry) add(g *game.Game, difficulty engine.Difficulty, aiSide board.Side) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.ttl > 0 {
		for id, s := range r.sessions {
			if now.Sub(time.Unix(0, s.lastUsed.Load())) > r.ttl {
				delete(r.sessions, id)
			}
		}
	}

	s := &session{
		id:         uuid.New(),
		game:       g,
		difficulty: difficulty,
		aiSide:     aiSide,
	}
	s.lastUsed.Store(now.UnixNano())
	r.sessions[s.id] = s
	return s
}

// lock returns the session with its mutex held; the caller unlocks it.
func (r *sessionRegistry) lock(rawID string) (*session, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrGameNotFound
	}
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrGameNotFound
	}
	s.lastUsed.Store(r.now().UnixNano())
	s.mu.Lock()
	return s, nil
}

func (r *sessionRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
