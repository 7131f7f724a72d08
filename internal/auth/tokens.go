package auth

import (
	"datasources-client/internal/api"
	"datasources-client/internal/store"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessTokenLifetime is assumed when the access token does not carry an
// `exp` claim.
const accessTokenLifetime = 15 * time.Minute

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// identity is what the access token tells us about the signed in user.
type identity struct {
	ID    string
	Email string
}

// tokenClaims decodes a token without verifying its signature, the client has
// no key to verify it with and only reads it for display and bookkeeping.
func tokenClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func expiresAt(claims jwt.MapClaims) time.Time {
	if claims == nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// claimIdentity reads the user from `sub`, which is either the id itself or an
// object holding `id` and `user_email`, with top level `user_email`/`email`
// claims as fallback.
func claimIdentity(claims jwt.MapClaims) identity {
	var out identity
	if claims == nil {
		return out
	}

	switch sub := claims["sub"].(type) {
	case string:
		out.ID = sub
	case float64:
		out.ID = formatID(sub)
	case map[string]any:
		out.ID = anyString(sub["id"])
		out.Email = anyString(sub["user_email"])
		if out.Email == "" {
			out.Email = anyString(sub["email"])
		}
	}

	if out.ID == "" {
		out.ID = anyString(claims["id"])
	}
	if out.Email == "" {
		out.Email = anyString(claims["user_email"])
	}
	if out.Email == "" {
		out.Email = anyString(claims["email"])
	}
	return out
}

func anyString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatID(v)
	}
	return ""
}

func formatID(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseTokens turns a token response into the session credentials and the
// identity found in the access token. previous supplies the refresh token
// when the response omits it.
func parseTokens(res *api.Response, now time.Time, previous store.Tokens) (store.Tokens, identity, error) {
	body, err := api.Decode[tokenResponse](res)
	if err != nil {
		return store.Tokens{}, identity{}, err
	}
	if body.AccessToken == "" {
		return store.Tokens{}, identity{}, fmt.Errorf("parse tokens: response has no access_token")
	}

	tokens := store.Tokens{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = previous.RefreshToken
		tokens.RefreshExpiresAt = previous.RefreshExpiresAt
	}

	// opaque tokens are fine, they just tell us nothing
	accessClaims, _ := tokenClaims(body.AccessToken)
	tokens.AccessExpiresAt = expiresAt(accessClaims)
	if tokens.AccessExpiresAt.IsZero() {
		tokens.AccessExpiresAt = now.Add(accessTokenLifetime)
	}
	if body.RefreshToken != "" {
		refreshClaims, _ := tokenClaims(body.RefreshToken)
		tokens.RefreshExpiresAt = expiresAt(refreshClaims)
	}

	return tokens, claimIdentity(accessClaims), nil
}
