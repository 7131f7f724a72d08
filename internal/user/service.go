package user

import (
	"context"
	"datasources-client/internal/api"
	"datasources-client/internal/components/assert"
	"datasources-client/internal/store"
	"net/http"
	"net/url"
)

type Service struct {
	client *api.Client
	stores *store.Stores
}

func NewService(client *api.Client, stores *store.Stores) Service {
	assert.NotNil(client)
	assert.NotNil(stores)
	return Service{client: client, stores: stores}
}

// ChangePassword updates the password of the loaded user.
func (s Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*api.Response, error) {
	current := s.stores.User.Get()
	if current.ID == "" {
		return nil, api.ErrNoUser
	}
	token, ok := s.stores.Auth.AccessToken()
	if !ok {
		return nil, api.ErrUnauthenticated
	}

	return s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/user/" + url.PathEscape(current.ID) + "/update-password",
		Auth:   api.Bearer(token),
		Body: map[string]string{
			"old_password": oldPassword,
			"password":     newPassword,
		},
	})
}
