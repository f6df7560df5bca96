package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lucsky/cuid"
)

// Store keeps live sessions in memory, keyed by id.
type Store struct {
	deps *Deps
	ttl  time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	newID    func() string
}

func NewStore(deps *Deps, ttl time.Duration) *Store {
	return &Store{
		deps:     deps,
		ttl:      ttl,
		sessions: make(map[string]*Session),
		newID:    cuid.New,
	}
}

// Get returns a live session and marks it as used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// Create starts a new session on the order view.
func (st *Store) Create() *Session {
	s := New(st.newID(), st.deps)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// TTL is how long a session may sit idle before eviction.
func (st *Store) TTL() time.Duration { return st.ttl }

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Evict drops sessions idle for longer than the ttl and returns how many
// were removed.
func (st *Store) Evict(now time.Time) int {
	st.mu.Lock()
	var stale []*Session
	for id, s := range st.sessions {
		if now.Sub(s.idleSince()) > st.ttl {
			stale = append(stale, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := st.Evict(now); n > 0 {
				st.deps.Log.LogAttrs(ctx, slog.LevelDebug, "sessions evicted",
					slog.String("action", "session_evict"),
					slog.Int("count", n),
					slog.Int("remaining", st.Len()),
				)
			}
		}
	}
}
