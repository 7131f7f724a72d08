package locations

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

func (s Service) get(ctx context.Context, path string) (*api.Response, error) {
	return s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   path,
		Auth:   s.client.AdminBasic(),
	})
}

// GetLocation fetches a single location by id.
func (s Service) GetLocation(ctx context.Context, id string) (*api.Response, error) {
	return s.get(ctx, "/locations/"+url.PathEscape(id))
}

// GetLocationDataRequests fetches the data requests filed for a location.
func (s Service) GetLocationDataRequests(ctx context.Context, id string) (*api.Response, error) {
	return s.get(ctx, "/locations/"+url.PathEscape(id)+"/data-requests")
}

type Location struct {
	ID           any    `json:"id"`
	Type         string `json:"type"`
	StateName    string `json:"state_name"`
	CountyName   string `json:"county_name"`
	LocalityName string `json:"locality_name"`
	DisplayName  string `json:"display_name"`
}

// Name is the most specific name the location has.
func (l Location) Name() string {
	switch {
	case l.DisplayName != "":
		return l.DisplayName
	case l.LocalityName != "":
		return l.LocalityName
	case l.CountyName != "":
		return l.CountyName
	}
	return l.StateName
}

// DecodeLocation accepts the location either at the top level or wrapped in `data`.
func DecodeLocation(res *api.Response) (Location, error) {
	wrapped, err := api.Decode[struct {
		Data *Location `json:"data"`
	}](res)
	if err == nil && wrapped.Data != nil {
		return *wrapped.Data, nil
	}
	return api.Decode[Location](res)
}

type DataRequest struct {
	ID            any    `json:"id"`
	Title         string `json:"title"`
	RequestStatus string `json:"request_status"`
	Submitted     string `json:"date_created"`
}

func DecodeDataRequests(res *api.Response) ([]DataRequest, error) {
	page, err := api.Decode[struct {
		Data []DataRequest `json:"data"`
	}](res)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}
