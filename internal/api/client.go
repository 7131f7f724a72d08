// client.go contains the transport shared by every Data Sources API wrapper. It
// does not know about individual endpoints, only about base url, auth headers,
// rate limiting and turning non-2xx responses into errors.

package api

import (
	"context"
	"datasources-client/internal/components/assert"
	"datasources-client/internal/components/telemetry"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	report_client_do = "client.do"
)

// Options configures a Client.
type Options struct {
	// BaseUrl is the root of the API, ex. `https://data-sources.pdap.io/api`.
	BaseUrl string
	// ApiKey is the administrative key sent as `Authorization: Basic <key>` on
	// the endpoints that require it.
	ApiKey string
	// Timeout defaults to 30 seconds when zero.
	Timeout time.Duration
	// RequestsPerSecond disables rate limiting when zero.
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// Client is a thin wrapper around a resty client configured for the Data Sources API.
type Client struct {
	BaseUrl *url.URL

	http   *resty.Client
	apiKey string
	tel    telemetry.API
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("api", tel)

	if opts.BaseUrl == "" {
		return nil, fmt.Errorf("api: base url was not specified")
	}
	parsedBaseUrl, err := url.Parse(strings.TrimRight(opts.BaseUrl, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "datasources-client"
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(parsedBaseUrl.String())
	httpClient.SetTimeout(timeout)
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.SetHeader("Content-Type", "application/json")
	httpClient.SetHeader("Accept", "application/json")
	httpClient.SetHeader("User-Agent", userAgent)

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		// max burst >= 1 just means that no requests will be dropped
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Header.Get("X-Request-Id") == "" {
			req.SetHeader("X-Request-Id", uuid.NewString())
		}
		return nil
	})

	telemetry.InstrumentResty(httpClient, tel)

	return &Client{
		BaseUrl: parsedBaseUrl,
		http:    httpClient,
		apiKey:  opts.ApiKey,
		tel:     tel,
	}, nil
}

// Do performs a single request. Non-2xx responses are returned as a *ResponseError,
// the body is always read fully into the returned Response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	r := c.http.R().SetContext(ctx)
	if req.Auth.header != "" {
		r.SetHeader("Authorization", req.Auth.header)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	res, err := r.Execute(req.Method, req.Path)
	if err != nil {
		c.tel.ReportWarning(
			report_client_do,
			fmt.Errorf("fetch: %w", err),
			req.Method,
			req.Path,
		)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	response := &Response{
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       res.Body(),
	}
	if res.IsError() || res.StatusCode() < 200 || res.StatusCode() > 299 {
		return response, newResponseError(req.Method, req.Path, response)
	}
	return response, nil
}
