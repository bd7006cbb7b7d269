package editor

import (
	"context"
	"sync"
)

// State is the editor lock state.
type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// Session keeps the unlock flag and the accepted secret together, so one is
// never set without the other.
type Session struct {
	client Client

	mu       sync.RWMutex
	unlocked bool
	secret   string
}

func NewSession(client Client) *Session {
	return &Session{client: client}
}

// Unlock asks the server to check candidate. On rejection the session stays
// locked and any previous secret is dropped.
func (s *Session) Unlock(ctx context.Context, candidate string) error {
	err := s.client.Unlock(ctx, candidate)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.unlocked = false
		s.secret = ""
		return err
	}
	s.unlocked = true
	s.secret = candidate
	return nil
}

// Exit returns to Locked and forgets the secret.
func (s *Session) Exit() {
	s.mu.Lock()
	s.unlocked = false
	s.secret = ""
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.unlocked {
		return Unlocked
	}
	return Locked
}

// Secret returns the accepted secret, or false while locked.
func (s *Session) Secret() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secret, s.unlocked
}
