package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/core"
)

// ErrNotFound is returned for an unknown or expired session.
var ErrNotFound = errors.New("session not found")

// DefaultIdleTimeout is how long an untouched session is kept.
const DefaultIdleTimeout = 2 * time.Hour

// State is what one browser session holds between requests.
type State struct {
	Result    *core.Result
	Options   core.Options
	Template  string // invitation text for this run
	Selection *Selection
	lastSeen  time.Time
}

// Store keeps session state in memory. Nothing is persisted; a restart
// drops every session.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
	idle     time.Duration
	now      func() time.Time
}

// NewStore creates a store that expires sessions idle for longer than idle.
// idle <= 0 uses DefaultIdleTimeout.
func NewStore(idle time.Duration) *Store {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Store{
		sessions: make(map[string]*State),
		idle:     idle,
		now:      time.Now,
	}
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// Save records a new result for id. An existing selection is refreshed so
// flags survive a re-run with the same customers; otherwise everything
// starts selected.
func (s *Store) Save(id string, result *core.Result, opts core.Options, template string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[id]
	if !ok || st.Selection == nil {
		st = &State{Selection: NewSelection(result.Balances)}
		s.sessions[id] = st
	} else {
		st.Selection.Refresh(result.Balances)
	}
	st.Result = result
	st.Options = opts
	st.Template = template
	st.lastSeen = s.now()
}

// Update runs fn on the state of id while holding the store lock.
// fn must not retain the state after returning.
func (s *Store) Update(id string, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.lookup(id)
	if !ok {
		return ErrNotFound
	}
	st.lastSeen = s.now()
	return fn(st)
}

// View is a read-only copy of a session.
type View struct {
	Result   *core.Result
	Options  core.Options
	Template string
	Rows     []Row
	Selected []core.Balance // selected rows in display order
}

// Snapshot returns a copy of the state of id.
func (s *Store) Snapshot(id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.lookup(id)
	if !ok {
		return View{}, ErrNotFound
	}
	st.lastSeen = s.now()
	return View{
		Result:   st.Result,
		Options:  st.Options,
		Template: st.Template,
		Rows:     st.Selection.Rows(),
		Selected: st.Selection.Selected(),
	}, nil
}

// Has reports whether id names a live session.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lookup(id)
	return ok
}

// Delete forgets id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) lookup(id string) (*State, bool) {
	st, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(st.lastSeen) > s.idle {
		delete(s.sessions, id)
		return nil, false
	}
	return st, true
}

// Expire drops every session idle for longer than the timeout and returns
// how many were removed.
func (s *Store) Expire() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, st := range s.sessions {
		if now.Sub(st.lastSeen) > s.idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor expires idle sessions every interval until ctx is done.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.idle / 4
	}
	slog.Info("session janitor started", "idle_timeout", s.idle, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			if n := s.Expire(); n > 0 {
				slog.Debug("expired idle sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}
