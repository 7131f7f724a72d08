package store

import (
	"context"
	"datasources-client/internal/api"
	"datasources-client/internal/components/chrono"
	"datasources-client/internal/components/telemetry"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestAuthStore(t *testing.T) {
	clock := chrono.NewFakeTime(epoch)
	auth := NewAuthStore(clock)

	require.False(t, auth.IsAuthenticated())
	_, ok := auth.AccessToken()
	require.False(t, ok)

	auth.SetTokens(Tokens{
		AccessToken:     "access",
		AccessExpiresAt: epoch.Add(15 * time.Minute),
		RefreshToken:    "refresh",
	})
	require.True(t, auth.IsAuthenticated())
	token, ok := auth.AccessToken()
	require.True(t, ok)
	require.Equal(t, "access", token)

	clock.Advance(15 * time.Minute)
	require.False(t, auth.IsAuthenticated())
	// the refresh token is still around for a refresh
	require.Equal(t, "refresh", auth.Tokens().RefreshToken)

	auth.SetTokens(Tokens{AccessToken: "no-expiry"})
	require.True(t, auth.IsAuthenticated())

	auth.Reset()
	require.Equal(t, Tokens{}, auth.Tokens())
	require.False(t, auth.IsAuthenticated())
}

func TestUserStore(t *testing.T) {
	users := NewUserStore()
	require.False(t, users.Loaded())

	users.Patch(User{Email: "alice@example.com"})
	require.True(t, users.Loaded())
	require.Equal(t, User{Email: "alice@example.com"}, users.Get())

	users.Patch(User{ID: "7"})
	require.Equal(t, User{ID: "7", Email: "alice@example.com"}, users.Get())

	users.Reset()
	require.False(t, users.Loaded())
}

func TestSearchStore(t *testing.T) {
	clock := chrono.NewFakeTime(epoch)
	search := NewSearchStore(clock)

	_, ok := search.Fresh("a", 5*time.Minute)
	require.False(t, ok)

	res := &api.Response{StatusCode: 200, Body: []byte(`{}`)}
	search.Set("a", res)
	require.Equal(t, 1, search.Len())

	cached, ok := search.Fresh("a", 5*time.Minute)
	require.True(t, ok)
	require.Same(t, res, cached)

	clock.Advance(5*time.Minute - time.Second)
	_, ok = search.Fresh("a", 5*time.Minute)
	require.True(t, ok)

	clock.Advance(time.Second)
	_, ok = search.Fresh("a", 5*time.Minute)
	require.False(t, ok)

	// stale entries stay until replaced
	entry, ok := search.Get("a")
	require.True(t, ok)
	require.Equal(t, epoch, entry.Timestamp)

	search.Set("a", res)
	entry, _ = search.Get("a")
	require.Equal(t, epoch.Add(5*time.Minute), entry.Timestamp)
	require.Equal(t, 1, search.Len())
}

type memoryPersister struct {
	session *Session
	err     error
}

func (m *memoryPersister) Load(ctx context.Context) (Session, error) {
	if m.err != nil {
		return Session{}, m.err
	}
	if m.session == nil {
		return Session{}, ErrNoSession
	}
	return *m.session, nil
}

func (m *memoryPersister) Save(ctx context.Context, session Session) error {
	if m.err != nil {
		return m.err
	}
	m.session = &session
	return nil
}

func (m *memoryPersister) Clear(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.session = nil
	return nil
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	clock := chrono.NewFakeTime(epoch)
	persister := &memoryPersister{}
	stores := NewStores(clock, persister, telemetry.NewTestAPI())

	require.NoError(t, stores.Load(ctx))
	require.False(t, stores.User.Loaded())

	stores.Auth.SetTokens(Tokens{AccessToken: "a", RefreshToken: "r"})
	stores.User.Patch(User{ID: "1", Email: "bob@example.com"})
	stores.Search.Set("k", &api.Response{StatusCode: 200})
	require.NoError(t, stores.Save(ctx))
	require.NotNil(t, persister.session)

	other := NewStores(clock, persister, telemetry.NewTestAPI())
	require.NoError(t, other.Load(ctx))
	require.Equal(t, stores.Snapshot(), other.Snapshot())

	require.NoError(t, stores.Clear(ctx))
	require.Equal(t, Session{}, stores.Snapshot())
	require.Nil(t, persister.session)
	require.Equal(t, 1, stores.Search.Len())
}

func TestStoresWithoutPersister(t *testing.T) {
	ctx := context.Background()
	stores := NewStores(chrono.NewFakeTime(epoch), nil, telemetry.NewTestAPI())

	stores.User.Patch(User{ID: "1"})
	require.NoError(t, stores.Save(ctx))
	require.NoError(t, stores.Load(ctx))
	require.NoError(t, stores.Clear(ctx))
	require.False(t, stores.User.Loaded())
}

func TestStoresPersisterFailure(t *testing.T) {
	ctx := context.Background()
	tel := telemetry.NewTestAPI()
	failure := errors.New("disk on fire")
	stores := NewStores(chrono.NewFakeTime(epoch), &memoryPersister{err: failure}, tel)

	require.ErrorIs(t, stores.Load(ctx), failure)
	require.ErrorIs(t, stores.Save(ctx), failure)

	stores.User.Patch(User{ID: "1"})
	require.ErrorIs(t, stores.Clear(ctx), failure)
	// in-memory state is cleared even when the persister fails
	require.False(t, stores.User.Loaded())

	require.Len(t, tel.Reports("broken", report_stores_load), 1)
	require.Len(t, tel.Reports("broken", report_stores_save), 1)
	require.Len(t, tel.Reports("broken", report_stores_clear), 1)
}
