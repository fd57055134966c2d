package service

import (
	"sync"

	"github.com/aussiebroadwan/healthtrack/internal/tracker/domain"
	"github.com/aussiebroadwan/healthtrack/pkg/idx"
)

// Session is the single-slot process state naming the currently
// authenticated user. The presentation layer owns one instance, fills it on
// login or registration and clears it on logout. Record operations take the
// acting user id as an argument instead of reading this slot, which keeps
// the services testable; the slot exists so the presentation layer has one
// well-defined place to ask "who is acting".
type Session struct {
	mu   sync.Mutex
	user *domain.User
	id   idx.ID
}

// Begin fills the slot, replacing any previous occupant, and mints a fresh
// session id for logging.
func (s *Session) Begin(u domain.User) idx.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = &u
	s.id = idx.New()
	return s.id
}

// Current returns the authenticated user, or ErrUnauthenticated when the
// slot is empty.
func (s *Session) Current() (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return domain.User{}, ErrUnauthenticated
	}
	return *s.user, nil
}

// Update refreshes the cached user after a profile edit. A no-op when the
// slot is empty or holds a different user.
func (s *Session) Update(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil && s.user.ID == u.ID {
		s.user = &u
	}
}

// ID returns the current session id, or idx.Zero when unauthenticated.
func (s *Session) ID() idx.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// End clears the slot.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.id = idx.Zero
}
