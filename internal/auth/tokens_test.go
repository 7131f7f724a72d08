package auth

import (
	"datasources-client/internal/api"
	"datasources-client/internal/store"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestClaimIdentity(t *testing.T) {
	table := []struct {
		name     string
		claims   jwt.MapClaims
		expected identity
	}{
		{
			name:     "nil claims",
			claims:   nil,
			expected: identity{},
		},
		{
			name:     "string subject",
			claims:   jwt.MapClaims{"sub": "17", "email": "a@example.com"},
			expected: identity{ID: "17", Email: "a@example.com"},
		},
		{
			name:     "numeric subject",
			claims:   jwt.MapClaims{"sub": float64(17)},
			expected: identity{ID: "17"},
		},
		{
			name: "object subject",
			claims: jwt.MapClaims{
				"sub": map[string]any{"id": float64(5), "user_email": "b@example.com"},
			},
			expected: identity{ID: "5", Email: "b@example.com"},
		},
		{
			name: "top level fallbacks",
			claims: jwt.MapClaims{
				"sub":        map[string]any{},
				"id":         "9",
				"user_email": "c@example.com",
			},
			expected: identity{ID: "9", Email: "c@example.com"},
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			diff := cmp.Diff(row.expected, claimIdentity(row.claims))
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func tokenBody(t testing.TB, access, refresh string) *api.Response {
	body, err := json.Marshal(tokenResponse{AccessToken: access, RefreshToken: refresh})
	require.NoError(t, err)
	return &api.Response{StatusCode: 200, Body: body}
}

func TestParseTokens(t *testing.T) {
	access := signedToken(t, jwt.MapClaims{
		"sub": "1",
		"exp": epoch.Add(5 * time.Minute).Unix(),
	})
	refresh := signedToken(t, jwt.MapClaims{
		"exp": epoch.Add(7 * 24 * time.Hour).Unix(),
	})

	tokens, id, err := parseTokens(tokenBody(t, access, refresh), epoch, store.Tokens{})
	require.NoError(t, err)
	require.Equal(t, identity{ID: "1"}, id)
	require.True(t, tokens.AccessExpiresAt.Equal(epoch.Add(5*time.Minute)))
	require.True(t, tokens.RefreshExpiresAt.Equal(epoch.Add(7*24*time.Hour)))

	previous := store.Tokens{RefreshToken: "old", RefreshExpiresAt: epoch.Add(time.Hour)}
	tokens, _, err = parseTokens(tokenBody(t, "opaque", ""), epoch, previous)
	require.NoError(t, err)
	require.Equal(t, "old", tokens.RefreshToken)
	require.Equal(t, epoch.Add(time.Hour), tokens.RefreshExpiresAt)
	require.Equal(t, epoch.Add(accessTokenLifetime), tokens.AccessExpiresAt)

	_, _, err = parseTokens(tokenBody(t, "", "refresh"), epoch, store.Tokens{})
	require.Error(t, err)

	_, _, err = parseTokens(&api.Response{StatusCode: 200, Body: []byte("not json")}, epoch, store.Tokens{})
	require.Error(t, err)
}
