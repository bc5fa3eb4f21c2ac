// Package guard decides whether an asynchronous continuation may still touch
// a learning path session.
//
// A Slot is owned by the view controller. Each time a session is entered the
// controller acquires a new Token; continuations carry the token they were
// started under and check Owns before mutating anything. Acquiring also
// cancels the previous owner's context so in-flight calls stop early.
package guard

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Token identifies one session entry.
type Token struct {
	Session    uuid.UUID
	Generation uint64
}

// IsZero reports whether t was never issued.
func (t Token) IsZero() bool {
	return t.Generation == 0
}

// Slot holds the current owner. The zero value is ready to use.
type Slot struct {
	mu         sync.Mutex
	generation uint64
	current    Token
	cancel     context.CancelFunc
}

// Acquire makes a new session the owner. The returned context is canceled
// when the token stops being current.
func (s *Slot) Acquire(parent context.Context) (Token, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	s.current = Token{Session: uuid.New(), Generation: s.generation}

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	return s.current, ctx
}

// Owns reports whether t is the current owner.
func (s *Slot) Owns(t Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !t.IsZero() && t == s.current
}

// Release clears the slot if t is current. Releasing a stale token is a
// no-op so a late cleanup cannot evict a newer session.
func (s *Slot) Release(t Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.IsZero() || t != s.current {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.current = Token{}
}

// Current returns the owning token, or the zero Token.
func (s *Slot) Current() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
