// Package session holds the user who is logged in to the running process.
package session

import (
	"sync"

	"balanceup/internal/models"
)

// Session is an in-memory slot for at most one authenticated user.
// It is never persisted; a new Session starts empty.
type Session struct {
	mu   sync.RWMutex
	user *models.User
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// SetCurrent marks u as the logged-in user. A nil user clears the session.
func (s *Session) SetCurrent(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	cp := *u
	s.user = &cp
}

// ClearCurrent logs the user out.
func (s *Session) ClearCurrent() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// Current returns a copy of the logged-in user, if any.
func (s *Session) Current() (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, false
	}
	cp := *s.user
	return &cp, true
}
