package check

import (
	"context"
	"datasources-client/internal/api"
	"datasources-client/internal/components/telemetry"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindDuplicateURL(t *testing.T) {
	table := []struct {
		name       string
		body       string
		duplicates []Duplicate
	}{
		{
			name:       "unique",
			body:       `{"message": "Unique URL", "duplicates": []}`,
			duplicates: []Duplicate{},
		},
		{
			name: "duplicate",
			body: `{"message": "Duplicate found", "duplicates": [{"original_url": "https://example.com/records", "approval_status": "rejected", "rejection_note": "Broken link"}]}`,
			duplicates: []Duplicate{
				{
					OriginalURL:    "https://example.com/records",
					ApprovalStatus: "rejected",
					RejectionNote:  "Broken link",
				},
			},
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			var got *http.Request
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(row.body))
			}))
			defer server.Close()

			client, err := api.NewClient(api.Options{BaseUrl: server.URL, ApiKey: "admin"}, telemetry.NewTestAPI())
			require.NoError(t, err)

			res, err := NewService(client).FindDuplicateURL(context.Background(), "https://example.com/records?page=2")
			require.NoError(t, err)

			require.Equal(t, "/check/unique-url", got.URL.Path)
			require.Equal(t, "https://example.com/records?page=2", got.URL.Query().Get("url"))
			require.Equal(t, "Basic admin", got.Header.Get("Authorization"))
			require.Equal(t, "application/json", got.Header.Get("Content-Type"))

			duplicates, err := Duplicates(res)
			require.NoError(t, err)
			require.Equal(t, row.duplicates, duplicates)
		})
	}
}
