package search

import (
	"context"
	"datasources-client/internal/api"
	"datasources-client/internal/components/assert"
	"datasources-client/internal/components/telemetry"
	"datasources-client/internal/store"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	report_search_cache_hit  = "cache.hit"
	report_search_cache_size = "cache.size"
	report_followed_lookup   = "followed.lookup"
)

// DefaultCacheWindow is how long a search response is served from the cache.
const DefaultCacheWindow = 5 * time.Minute

type Options struct {
	CacheWindow time.Duration
}

type Service struct {
	client *api.Client
	stores *store.Stores
	window time.Duration
	group  *singleflight.Group
	tel    telemetry.API
}

func NewService(client *api.Client, stores *store.Stores, opts Options, tel telemetry.API) Service {
	assert.NotNil(client)
	assert.NotNil(stores)
	assert.NotNil(tel)

	window := opts.CacheWindow
	if window <= 0 {
		window = DefaultCacheWindow
	}

	return Service{
		client: client,
		stores: stores,
		window: window,
		group:  &singleflight.Group{},
		tel:    telemetry.NewScopedAPI("search", tel),
	}
}

// Search returns the results for a location, optionally narrowed to record
// categories. An identical search made within the cache window is answered
// from the cache, identical searches in flight share one request.
func (s Service) Search(ctx context.Context, params Params) (*api.Response, error) {
	key, err := params.cacheKey()
	if err != nil {
		return nil, err
	}

	cached, ok := s.stores.Search.Fresh(key, s.window)
	if ok {
		s.tel.ReportDebug(report_search_cache_hit, key)
		return cached, nil
	}

	// the shared request outlives any single caller, each caller gives up on
	// its own context.
	flight := s.group.DoChan(key, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), key, params)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-flight:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*api.Response), nil
	}
}

// fetch runs inside a flight. An identical flight may have filled the cache
// between the caller's cache check and this one starting.
func (s Service) fetch(ctx context.Context, key string, params Params) (*api.Response, error) {
	cached, ok := s.stores.Search.Fresh(key, s.window)
	if ok {
		s.tel.ReportDebug(report_search_cache_hit, key)
		return cached, nil
	}

	query := url.Values{}
	query.Set("location_id", params.LocationID)
	if len(params.RecordCategories) > 0 {
		query.Set("record_categories", strings.Join(params.RecordCategories, ","))
	}

	res, err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/search/search-location-and-record-type",
		Auth:   s.client.AdminBasic(),
		Query:  query,
	})
	if err != nil {
		return nil, err
	}

	s.stores.Search.Set(key, res)
	s.tel.ReportCount(report_search_cache_size, int64(s.stores.Search.Len()))
	return res, nil
}

func (s Service) bearer() (api.Authorization, error) {
	token, ok := s.stores.Auth.AccessToken()
	if !ok {
		return api.Authorization{}, api.ErrUnauthenticated
	}
	return api.Bearer(token), nil
}

func (s Service) followRequest(ctx context.Context, method, locationID string) (*api.Response, error) {
	auth, err := s.bearer()
	if err != nil {
		return nil, err
	}
	req := api.Request{
		Method: method,
		Path:   "/search/follow",
		Auth:   auth,
	}
	if locationID != "" {
		req.Query = url.Values{"location_id": {locationID}}
	}
	return s.client.Do(ctx, req)
}

// FollowSearch follows the searches of a location.
func (s Service) FollowSearch(ctx context.Context, locationID string) (*api.Response, error) {
	return s.followRequest(ctx, http.MethodPost, locationID)
}

// FollowedSearches lists every location the signed in user follows.
func (s Service) FollowedSearches(ctx context.Context) (*api.Response, error) {
	return s.followRequest(ctx, http.MethodGet, "")
}

func (s Service) DeleteFollowedSearch(ctx context.Context, locationID string) (*api.Response, error) {
	return s.followRequest(ctx, http.MethodDelete, locationID)
}

// FollowedSearch looks up whether the signed in user follows locationID. It
// never returns an error, the outcome is reported through FollowLookup.
func (s Service) FollowedSearch(ctx context.Context, locationID string) (FollowedSearch, FollowLookup) {
	if !s.stores.Auth.IsAuthenticated() {
		return FollowedSearch{}, FollowUnauthenticated
	}

	res, err := s.FollowedSearches(ctx)
	if err != nil {
		s.tel.ReportWarning(report_followed_lookup, err, locationID)
		return FollowedSearch{}, FollowLookupFailed
	}
	followed, err := DecodeFollowed(res)
	if err != nil {
		s.tel.ReportWarning(report_followed_lookup, err, locationID)
		return FollowedSearch{}, FollowLookupFailed
	}

	for _, f := range followed {
		if f.LocationID.Same(locationID) {
			return f, FollowFound
		}
	}
	return FollowedSearch{}, FollowNotFound
}
