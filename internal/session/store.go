package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/payout-quote/internal/logging"
	"go.uber.org/zap"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

type entry struct {
	mu      sync.Mutex
	state   *State
	touched time.Time
}

// Store keeps session states in memory. Access to a single session is
// serialised; different sessions never share a lock while their callbacks
// run.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// NewStore creates a store that forgets sessions idle for longer than ttl.
// A ttl of zero keeps sessions until they are deleted.
func NewStore(logger *zap.Logger, ttl time.Duration) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// Create starts a new locked session and returns its ID.
func (s *Store) Create() string {
	now := s.now()
	id := s.newID()

	s.mu.Lock()
	s.sessions[id] = &entry{state: New(id, now), touched: now}
	s.mu.Unlock()

	s.logger.Debug("session created",
		zap.String("op", "session.Create"),
		logging.Session(id),
	)
	return id
}

// Do runs fn with exclusive access to the session's state.
func (s *Store) Do(id string, fn func(*State) error) error {
	now := s.now()

	s.mu.Lock()
	e, ok := s.sessions[id]
	if ok && s.expired(e, now) {
		delete(s.sessions, id)
		ok = false
	}
	if ok {
		e.touched = now
	}
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.LastSeen = now
	return fn(e.state)
}

// Delete forgets a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	removed := 0

	s.mu.Lock()
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Debug("expired sessions removed",
			zap.String("op", "session.Sweep"),
			zap.Int("removed", removed),
		)
	}
	return removed
}

// Run sweeps the store every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.touched) > s.ttl
}
