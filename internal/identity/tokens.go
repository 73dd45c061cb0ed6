package identity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTokenTTL is how long a password reset token stays valid.
const DefaultTokenTTL = time.Hour

type tokenEntry struct {
	email   string
	expires time.Time
}

// TokenStore is an in-memory expiring map of single-use reset tokens.
type TokenStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	tokens map[string]tokenEntry
}

// NewTokenStore builds a store; a nil clock means time.Now.
func NewTokenStore(ttl time.Duration, now func() time.Time) *TokenStore {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenStore{ttl: ttl, now: now, tokens: make(map[string]tokenEntry)}
}

// Issue creates a fresh token for email.
func (s *TokenStore) Issue(email string) (string, time.Time) {
	token := uuid.NewString()
	expires := s.now().Add(s.ttl)
	s.mu.Lock()
	s.tokens[token] = tokenEntry{email: email, expires: expires}
	s.mu.Unlock()
	return token, expires
}

// Consume removes token and returns its email. expired is true when the
// token existed but had lapsed.
func (s *TokenStore) Consume(token string) (email string, ok bool, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, found := s.tokens[token]
	if !found {
		return "", false, false
	}
	delete(s.tokens, token)
	if s.now().After(entry.expires) {
		return "", false, true
	}
	return entry.email, true, false
}

// Sweep drops every lapsed token and returns how many were removed.
func (s *TokenStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, entry := range s.tokens {
		if now.After(entry.expires) {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of live and lapsed tokens held.
func (s *TokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
