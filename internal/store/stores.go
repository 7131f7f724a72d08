package store

import (
	"context"
	"datasources-client/internal/components/assert"
	"datasources-client/internal/components/chrono"
	"datasources-client/internal/components/telemetry"
	"errors"
	"fmt"
)

const (
	report_stores_load  = "load"
	report_stores_save  = "save"
	report_stores_clear = "clear"
)

// ErrNoSession is returned by a Persister when nothing has been saved yet.
var ErrNoSession = errors.New("no saved session")

// Session is the part of the stores that outlives a process.
type Session struct {
	Tokens Tokens `json:"tokens"`
	User   User   `json:"user"`
}

// Persister saves and restores the session between invocations.
type Persister interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
}

// Stores bundles the client side state shared by the API wrappers.
type Stores struct {
	Auth   *AuthStore
	User   *UserStore
	Search *SearchStore

	persister Persister
	tel       telemetry.API
}

// NewStores creates empty stores. persister may be nil, in which case the
// session only lives in memory.
func NewStores(clock chrono.TimeAPI, persister Persister, tel telemetry.API) *Stores {
	assert.NotNil(clock)
	assert.NotNil(tel)

	return &Stores{
		Auth:      NewAuthStore(clock),
		User:      NewUserStore(),
		Search:    NewSearchStore(clock),
		persister: persister,
		tel:       telemetry.NewScopedAPI("stores", tel),
	}
}

func (s *Stores) Snapshot() Session {
	return Session{
		Tokens: s.Auth.Tokens(),
		User:   s.User.Get(),
	}
}

func (s *Stores) Restore(session Session) {
	s.Auth.SetTokens(session.Tokens)
	s.User.Reset()
	s.User.Patch(session.User)
}

// Load restores the persisted session, a missing session is not an error.
func (s *Stores) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	session, err := s.persister.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		s.tel.ReportBroken(report_stores_load, err)
		return fmt.Errorf("load session: %w", err)
	}
	s.Restore(session)
	return nil
}

// Save persists the current session.
func (s *Stores) Save(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	err := s.persister.Save(ctx, s.Snapshot())
	if err != nil {
		s.tel.ReportBroken(report_stores_save, err)
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear resets the auth and user stores and removes the persisted session.
// The search cache is left alone, its results do not depend on who is signed in.
func (s *Stores) Clear(ctx context.Context) error {
	s.Auth.Reset()
	s.User.Reset()
	if s.persister == nil {
		return nil
	}
	err := s.persister.Clear(ctx)
	if err != nil {
		s.tel.ReportBroken(report_stores_clear, err)
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
