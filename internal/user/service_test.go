package user

import (
	"context"
	"datasources-client/internal/api"
	"datasources-client/internal/components/chrono"
	"datasources-client/internal/components/telemetry"
	"datasources-client/internal/store"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) (Service, *store.Stores, *[]*http.Request, *[]map[string]string) {
	var requests []*http.Request
	var bodies []map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		requests = append(requests, r)
		bodies = append(bodies, body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": "Successfully updated password"}`))
	}))
	t.Cleanup(server.Close)

	tel := telemetry.NewTestAPI()
	client, err := api.NewClient(api.Options{BaseUrl: server.URL}, tel)
	require.NoError(t, err)
	stores := store.NewStores(chrono.NewFakeTime(time.Unix(0, 0)), nil, tel)
	return NewService(client, stores), stores, &requests, &bodies
}

func TestChangePassword(t *testing.T) {
	service, stores, requests, bodies := setup(t)
	stores.Auth.SetTokens(store.Tokens{AccessToken: "access"})
	stores.User.Patch(store.User{ID: "42", Email: "alice@example.com"})

	res, err := service.ChangePassword(context.Background(), "old", "new")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	require.Equal(t, http.MethodPost, req.Method)
	require.Equal(t, "/user/42/update-password", req.URL.Path)
	require.Equal(t, "Bearer access", req.Header.Get("Authorization"))
	require.Equal(t, map[string]string{"old_password": "old", "password": "new"}, (*bodies)[0])
}

func TestChangePasswordWithoutUser(t *testing.T) {
	service, stores, requests, _ := setup(t)
	stores.Auth.SetTokens(store.Tokens{AccessToken: "access"})

	_, err := service.ChangePassword(context.Background(), "old", "new")
	require.ErrorIs(t, err, api.ErrNoUser)

	stores.User.Patch(store.User{Email: "alice@example.com"})
	_, err = service.ChangePassword(context.Background(), "old", "new")
	require.ErrorIs(t, err, api.ErrNoUser)
	require.Empty(t, *requests)
}

func TestChangePasswordSignedOut(t *testing.T) {
	service, stores, requests, _ := setup(t)
	stores.User.Patch(store.User{ID: "42"})

	_, err := service.ChangePassword(context.Background(), "old", "new")
	require.ErrorIs(t, err, api.ErrUnauthenticated)
	require.Empty(t, *requests)
}
