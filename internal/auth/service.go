package auth

import (
	"context"
	"datasources-client/internal/api"
	"datasources-client/internal/components/assert"
	"datasources-client/internal/components/chrono"
	"datasources-client/internal/components/telemetry"
	"datasources-client/internal/store"
	"net/http"
)

const (
	report_refresh_skipped = "refresh.skipped"
	report_refresh_failed  = "refresh.failed"
	report_session_save    = "session.save"
	report_sign_in         = "sign-in"
)

type Service struct {
	client *api.Client
	stores *store.Stores
	time   chrono.TimeAPI
	tel    telemetry.API
}

func NewService(client *api.Client, stores *store.Stores, clock chrono.TimeAPI, tel telemetry.API) Service {
	assert.NotNil(client)
	assert.NotNil(stores)
	assert.NotNil(clock)
	assert.NotNil(tel)

	return Service{
		client: client,
		stores: stores,
		time:   clock,
		tel:    telemetry.NewScopedAPI("auth", tel),
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new account. Nobody is signed in afterwards, the user
// store only remembers the email so the validation step can show it.
func (s Service) SignUp(ctx context.Context, email, password string) (*api.Response, error) {
	res, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Body:   credentials{Email: email, Password: password},
	})
	if err != nil {
		return res, err
	}
	s.stores.User.Patch(store.User{Email: email})
	s.save(ctx)
	return res, nil
}

func (s Service) SignInWithEmail(ctx context.Context, email, password string) (*api.Response, error) {
	res, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   credentials{Email: email, Password: password},
	})
	if err != nil {
		return res, err
	}
	return res, s.setSession(ctx, res, email)
}

// SignInWithGithub exchanges a GitHub access token for a session.
func (s Service) SignInWithGithub(ctx context.Context, githubAccessToken string) (*api.Response, error) {
	res, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/login-with-github",
		Body: map[string]string{
			"gh_access_token": githubAccessToken,
		},
	})
	if err != nil {
		return res, err
	}
	return res, s.setSession(ctx, res, "")
}

// LinkAccountWithGithub attaches a GitHub identity to the account of email.
func (s Service) LinkAccountWithGithub(ctx context.Context, email, githubAccessToken string) (*api.Response, error) {
	return s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/link-to-github",
		Body: map[string]string{
			"user_email":      email,
			"gh_access_token": githubAccessToken,
		},
	})
}

// RefreshTokens exchanges the refresh token for a new pair. It does nothing
// when no user is loaded and never fails, problems are only reported.
func (s Service) RefreshTokens(ctx context.Context) {
	if !s.stores.User.Loaded() {
		return
	}

	tokens := s.stores.Auth.Tokens()
	if tokens.RefreshToken == "" {
		s.tel.ReportWarning(report_refresh_skipped, "no refresh token")
		return
	}

	res, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh-session",
		Auth:   api.Bearer(tokens.AccessToken),
		Body: map[string]string{
			"refresh_token": tokens.RefreshToken,
		},
	})
	if err != nil {
		s.tel.ReportWarning(report_refresh_failed, err)
		return
	}

	refreshed, id, err := parseTokens(res, s.time.Now(), tokens)
	if err != nil {
		s.tel.ReportWarning(report_refresh_failed, err)
		return
	}
	s.stores.Auth.SetTokens(refreshed)
	s.stores.User.Patch(store.User{ID: id.ID, Email: id.Email})
	s.save(ctx)
}

// ValidateEmail confirms an email address with the one-time token sent to it,
// the API signs the user in on success.
func (s Service) ValidateEmail(ctx context.Context, token string) (*api.Response, error) {
	res, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/validate-email",
		Auth:   api.Bearer(token),
	})
	if err != nil {
		return res, err
	}
	return res, s.setSession(ctx, res, "")
}

func (s Service) RequestPasswordReset(ctx context.Context, email string) (*api.Response, error) {
	return s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/reset-reset-password",
		Body: map[string]string{
			"email": email,
		},
	})
}

// ResetPassword sets a new password using the token from the reset email.
func (s Service) ResetPassword(ctx context.Context, password, token string) (*api.Response, error) {
	return s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/reset-password",
		Auth:   api.Bearer(token),
		Body: map[string]string{
			"password": password,
		},
	})
}

// ValidateResetPasswordToken checks a reset token before asking for a new password.
func (s Service) ValidateResetPasswordToken(ctx context.Context, token string) (*api.Response, error) {
	return s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/reset-token-validation",
		Auth:   api.Bearer(token),
	})
}

// GenerateAPIKey creates a new API key for the signed in user and returns it.
func (s Service) GenerateAPIKey(ctx context.Context) (string, error) {
	token, ok := s.stores.Auth.AccessToken()
	if !ok {
		return "", api.ErrUnauthenticated
	}
	res, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/api-key",
		Auth:   api.Bearer(token),
	})
	if err != nil {
		return "", err
	}
	body, err := api.Decode[struct {
		ApiKey string `json:"api_key"`
	}](res)
	if err != nil {
		return "", err
	}
	return body.ApiKey, nil
}

// SignOut forgets the session locally, the API has no sign out endpoint.
func (s Service) SignOut(ctx context.Context) error {
	return s.stores.Clear(ctx)
}

// setSession stores the tokens of a sign in response together with the user
// they belong to. fallbackEmail is used when the token does not carry one.
func (s Service) setSession(ctx context.Context, res *api.Response, fallbackEmail string) error {
	tokens, id, err := parseTokens(res, s.time.Now(), store.Tokens{})
	if err != nil {
		s.tel.ReportBroken(report_sign_in, err)
		return err
	}
	if id.Email == "" {
		id.Email = fallbackEmail
	}

	s.stores.Auth.SetTokens(tokens)
	s.stores.User.Reset()
	s.stores.User.Patch(store.User{ID: id.ID, Email: id.Email})
	s.save(ctx)
	return nil
}

// the session is still usable in memory when it cannot be persisted
func (s Service) save(ctx context.Context) {
	err := s.stores.Save(ctx)
	if err != nil {
		s.tel.ReportWarning(report_session_save, err)
	}
}
