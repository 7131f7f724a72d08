package auth

import (
	"context"
	"datasources-client/internal/api"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

type GithubOptions struct {
	// ClientID of the GitHub OAuth app used by the Data Sources web app.
	ClientID string   `json:"client_id" yaml:"client_id"`
	Scopes   []string `json:"scopes" yaml:"scopes"`
	// Endpoint defaults to github.Endpoint.
	Endpoint oauth2.Endpoint `json:"-" yaml:"-"`
}

// DevicePrompt shows the user where to enter the device code.
type DevicePrompt func(res *oauth2.DeviceAuthResponse)

// GithubDeviceLogin obtains a GitHub access token through the device flow and
// signs in with it.
func (s Service) GithubDeviceLogin(ctx context.Context, opts GithubOptions, prompt DevicePrompt) (*api.Response, error) {
	token, err := githubDeviceToken(ctx, opts, prompt)
	if err != nil {
		return nil, err
	}
	return s.SignInWithGithub(ctx, token)
}

func githubDeviceToken(ctx context.Context, opts GithubOptions, prompt DevicePrompt) (string, error) {
	if opts.ClientID == "" {
		return "", fmt.Errorf("github: client id was not specified")
	}
	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = []string{"user:email"}
	}
	endpoint := opts.Endpoint
	if endpoint.DeviceAuthURL == "" {
		endpoint = github.Endpoint
	}

	config := &oauth2.Config{
		ClientID: opts.ClientID,
		Scopes:   scopes,
		Endpoint: endpoint,
	}

	deviceAuth, err := config.DeviceAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("github: device auth: %w", err)
	}
	if prompt != nil {
		prompt(deviceAuth)
	}

	token, err := config.DeviceAccessToken(ctx, deviceAuth)
	if err != nil {
		return "", fmt.Errorf("github: device access token: %w", err)
	}
	return token.AccessToken, nil
}
