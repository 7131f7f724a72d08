package api

import (
	"context"
	"datasources-client/internal/components/telemetry"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method      string
	path        string
	query       url.Values
	auth        string
	contentType string
	requestId   string
	body        []byte
}

func setup(t testing.TB, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]capturedRequest) {
	var captured []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = append(captured, capturedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.Query(),
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
			requestId:   r.Header.Get("X-Request-Id"),
			body:        body,
		})
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Options{
		BaseUrl: server.URL + "/api/",
		ApiKey:  "admin-key",
	}, telemetry.NewTestAPI())
	if err != nil {
		t.Fatal(err)
	}
	return client, &captured
}

func TestNewClientRequiresBaseUrl(t *testing.T) {
	_, err := NewClient(Options{}, telemetry.NewTestAPI())
	require.Error(t, err)
}

func TestDoSendsHeadersAndBody(t *testing.T) {
	client, captured := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true}`))
	})

	res, err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": "alice@example.com"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	decoded, err := Decode[map[string]bool](res)
	require.NoError(t, err)
	require.True(t, decoded["ok"])

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	require.Equal(t, http.MethodPost, req.method)
	require.Equal(t, "/api/auth/login", req.path)
	require.Equal(t, "application/json", req.contentType)
	require.Empty(t, req.auth)
	require.NotEmpty(t, req.requestId)

	var body map[string]string
	require.NoError(t, json.Unmarshal(req.body, &body))
	require.Equal(t, "alice@example.com", body["email"])
}

func TestAuthorizationHeaders(t *testing.T) {
	client, captured := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	_, err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/check/unique-url", Auth: client.AdminBasic()})
	require.NoError(t, err)
	_, err = client.Do(ctx, Request{Method: http.MethodGet, Path: "/search/follow", Auth: Bearer("token-1")})
	require.NoError(t, err)

	require.Equal(t, "Basic admin-key", (*captured)[0].auth)
	require.Equal(t, "Bearer token-1", (*captured)[1].auth)
}

func TestDoQuery(t *testing.T) {
	client, captured := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := client.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/check/unique-url",
		Query:  url.Values{"url": {"https://example.com/a?b=c"}},
	})
	require.NoError(t, err)
	require.Equal(t, "https://example.com/a?b=c", (*captured)[0].query.Get("url"))
}

func TestResponseErrors(t *testing.T) {
	table := []struct {
		name        string
		status      int
		contentType string
		body        string
		message     string
	}{
		{
			name:        "json message",
			status:      http.StatusUnauthorized,
			contentType: "application/json",
			body:        `{"message": "Invalid email or password"}`,
			message:     "Invalid email or password",
		},
		{
			name:        "json error field",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"error": "bad location id"}`,
			message:     "bad location id",
		},
		{
			name:        "html title",
			status:      http.StatusBadGateway,
			contentType: "text/html; charset=utf-8",
			body:        `<html><head><title>502 Bad Gateway</title></head><body></body></html>`,
			message:     "502 Bad Gateway",
		},
		{
			name:    "status text",
			status:  http.StatusInternalServerError,
			message: "Internal Server Error",
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
				if row.contentType != "" {
					w.Header().Set("Content-Type", row.contentType)
				}
				w.WriteHeader(row.status)
				w.Write([]byte(row.body))
			})

			res, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/locations/1"})
			require.Error(t, err)
			require.NotNil(t, res)

			var resErr *ResponseError
			require.True(t, errors.As(err, &resErr))
			require.Equal(t, row.status, resErr.StatusCode)
			require.Equal(t, row.message, resErr.Message)
			require.Equal(t, row.status, StatusCode(err))
		})
	}
}

func TestTransportError(t *testing.T) {
	tel := telemetry.NewTestAPI()
	client, err := NewClient(Options{BaseUrl: "http://127.0.0.1:1"}, tel)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/locations/1"})
	require.Error(t, err)
	require.Equal(t, 0, StatusCode(err))
	require.NotEmpty(t, tel.Reports("warning", report_client_do))
}

func TestDecodeEmptyBody(t *testing.T) {
	res := &Response{StatusCode: http.StatusNoContent}
	_, err := Decode[map[string]any](res)
	require.Error(t, err)
}

func TestDoRateLimited(t *testing.T) {
	var lock sync.Mutex
	var arrivals []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		arrivals = append(arrivals, time.Now())
		lock.Unlock()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(Options{
		BaseUrl:           server.URL,
		RequestsPerSecond: 5,
		Burst:             1,
	}, telemetry.NewTestAPI())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err = client.Do(ctx, Request{Method: http.MethodGet, Path: "/ping"})
		require.NoError(t, err)
	}

	lock.Lock()
	defer lock.Unlock()
	require.Len(t, arrivals, 2)
	require.GreaterOrEqual(t, arrivals[1].Sub(arrivals[0]), 150*time.Millisecond)
}

func TestDoRateLimitRespectsContext(t *testing.T) {
	client, captured := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	limited, err := NewClient(Options{
		BaseUrl:           client.BaseUrl.String(),
		RequestsPerSecond: 0.1,
	}, telemetry.NewTestAPI())
	require.NoError(t, err)

	_, err = limited.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ping"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = limited.Do(ctx, Request{Method: http.MethodGet, Path: "/ping"})
	require.Error(t, err)
	require.Len(t, *captured, 1)
}
