package service

import (
	"sync"

	"github.com/stroytech/stroybot/internal/domain"
)

// SessionStore keeps per-session conversation state in memory. Sessions are
// fully independent; a lease serializes the read-merge-write cycle of a
// single session so concurrent turns never lose fields.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu   sync.Mutex
	spec domain.OrderSpec
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*sessionEntry)}
}

// SessionLease is exclusive access to one session's state. Callers must
// Release it when the turn is done.
type SessionLease struct {
	entry *sessionEntry
	id    string
}

// Acquire locks the session with the given id, creating it on first use.
func (s *SessionStore) Acquire(id string) *SessionLease {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if !ok {
		entry = &sessionEntry{}
		s.sessions[id] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	return &SessionLease{entry: entry, id: id}
}

// Len reports how many sessions currently exist.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ID returns the session identifier the lease belongs to.
func (l *SessionLease) ID() string {
	return l.id
}

// Spec returns the accumulated specification.
func (l *SessionLease) Spec() domain.OrderSpec {
	return l.entry.spec
}

// SetSpec replaces the accumulated specification.
func (l *SessionLease) SetSpec(spec domain.OrderSpec) {
	l.entry.spec = spec
}

// Release unlocks the session. The lease must not be used afterwards.
func (l *SessionLease) Release() {
	l.entry.mu.Unlock()
	l.entry = nil
}
