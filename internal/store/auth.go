package store

import (
	"datasources-client/internal/components/assert"
	"datasources-client/internal/components/chrono"
	"sync"
	"time"
)

// Tokens are the session credentials issued by the auth API. The expiry
// fields are zero when the API did not tell us when a token expires.
type Tokens struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// AuthStore holds the session credentials of the signed in user.
type AuthStore struct {
	lock   sync.RWMutex
	tokens Tokens
	time   chrono.TimeAPI
}

func NewAuthStore(clock chrono.TimeAPI) *AuthStore {
	assert.NotNil(clock)
	return &AuthStore{time: clock}
}

func (s *AuthStore) Tokens() Tokens {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.tokens
}

// SetTokens replaces the stored pair, the previous pair is discarded.
func (s *AuthStore) SetTokens(tokens Tokens) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.tokens = tokens
}

func (s *AuthStore) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.tokens = Tokens{}
}

// IsAuthenticated reports whether there is an access token that has not expired.
func (s *AuthStore) IsAuthenticated() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.tokens.AccessToken == "" {
		return false
	}
	if s.tokens.AccessExpiresAt.IsZero() {
		return true
	}
	return s.time.Now().Before(s.tokens.AccessExpiresAt)
}

// AccessToken returns the access token and whether it is still usable.
func (s *AuthStore) AccessToken() (string, bool) {
	if !s.IsAuthenticated() {
		return "", false
	}
	return s.Tokens().AccessToken, true
}
