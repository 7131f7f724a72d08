package telemetry

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	tel := NewTestAPI()
	scoped := NewScopedAPI("outer", NewScopedAPI("inner", tel))

	scoped.ReportBroken("broke", 1)
	scoped.ReportWarning("warn")
	scoped.ReportDebug("debug")
	scoped.ReportCount("count", 3)

	require.Equal(t, []Report{{Kind: "broken", Id: "inner: outer: broke", Params: []any{1}}}, tel.Reports("broken", ""))
	require.Len(t, tel.Reports("warning", "outer: warn"), 1)
	require.Len(t, tel.Reports("debug", "outer: debug"), 1)
	require.Equal(t, []any{int64(3)}, tel.Reports("count", "count")[0].Params)
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	tel := NewTestAPI()
	client := resty.New()
	InstrumentResty(client, tel)

	_, err := client.R().Get(server.URL)
	require.NoError(t, err)
	_, err = client.R().Get(server.URL)
	require.NoError(t, err)

	requests := tel.Reports("debug", report_resty_request)
	require.Len(t, requests, 2)
	require.Equal(t, uint64(1), requests[0].Params[0])
	require.Equal(t, uint64(2), requests[1].Params[0])
	require.Len(t, tel.Reports("debug", report_resty_response), 2)

	_, err = client.R().Get("http://127.0.0.1:1")
	require.Error(t, err)
	require.Len(t, tel.Reports("broken", report_resty_response), 1)
}

func TestFormatHeadersRedactsAuthorization(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer secret")
	require.Equal(t, "Authorization: <redacted>", formatHeaders(headers))
	require.Equal(t, "", formatHeaders(http.Header{}))
}

func TestRedactBody(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "login credentials",
			body:     `{"email":"alice@example.com","password":"hunter2"}`,
			expected: `{"email":"alice@example.com","password":"<redacted>"}`,
		},
		{
			name:     "nested tokens",
			body:     `{"data":{"access_token":"a","refresh_token":"r"},"items":[{"api_key":"k"}]}`,
			expected: `{"data":{"access_token":"<redacted>","refresh_token":"<redacted>"},"items":[{"api_key":"<redacted>"}]}`,
		},
		{
			name:     "nothing to redact",
			body:     `{"message": "ok"}`,
			expected: `{"message": "ok"}`,
		},
		{
			name:     "not json",
			body:     "<html>password</html>",
			expected: "<html>password</html>",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, redactBody([]byte(test.body)))
		})
	}
}

func TestInstrumentRestyRedactsBodies(t *testing.T) {
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(previous)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-secret","refresh_token":"refresh-secret"}`))
	}))
	defer server.Close()

	tel := NewTestAPI()
	client := resty.New()
	InstrumentResty(client, tel)

	_, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"email": "alice@example.com", "old_password": "old-secret", "password": "new-secret"}).
		Post(server.URL)
	require.NoError(t, err)

	messages := tel.Reports("debug", report_resty_message)
	require.Len(t, messages, 1)
	message, ok := messages[0].Params[1].(string)
	require.True(t, ok)
	require.Contains(t, message, "alice@example.com")
	for _, secret := range []string{"old-secret", "new-secret", "access-secret", "refresh-secret"} {
		require.False(t, strings.Contains(message, secret), secret)
	}
}
