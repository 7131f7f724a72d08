package check

import (
	"context"
	"datasources-client/internal/api"
	"datasources-client/internal/components/assert"
	"net/http"
	"net/url"
)

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) Service {
	assert.NotNil(client)
	return Service{client: client}
}

// FindDuplicateURL asks whether a data source with the same url was already submitted.
func (s Service) FindDuplicateURL(ctx context.Context, target string) (*api.Response, error) {
	return s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/check/unique-url",
		Auth:   s.client.AdminBasic(),
		Query:  url.Values{"url": {target}},
	})
}

type Duplicate struct {
	OriginalURL    string `json:"original_url"`
	ApprovalStatus string `json:"approval_status"`
	RejectionNote  string `json:"rejection_note"`
}

// Duplicates lists the existing submissions of a url, empty when it is unique.
func Duplicates(res *api.Response) ([]Duplicate, error) {
	body, err := api.Decode[struct {
		Duplicates []Duplicate `json:"duplicates"`
	}](res)
	if err != nil {
		return nil, err
	}
	return body.Duplicates, nil
}
