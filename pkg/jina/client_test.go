package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/resilience"
)

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	query := `site:linkedin.com/in "CTO" "Berlin"`
	want := SearchResponse{
		Code: 200,
		Data: []SearchResult{
			{Title: "Jane Doe - CTO - Acme GmbH | LinkedIn", URL: "https://de.linkedin.com/in/jane-doe", Description: "Berlin · CTO"},
			{Title: "Max Muster - CTO | LinkedIn", URL: "https://www.linkedin.com/in/max-muster"},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "/"+query, r.URL.Path)
		assert.Equal(t, "linkedin.com/in", r.URL.Query().Get("site"))
		assert.Equal(t, "no-content", r.Header.Get("X-Respond-With"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))
	got, err := client.Search(context.Background(), query, WithSiteFilter("linkedin.com/in"), WithoutContent())

	require.NoError(t, err)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "https://de.linkedin.com/in/jane-doe", got.Data[0].URL)
	assert.Equal(t, "Berlin · CTO", got.Data[0].Description)
}

func TestSearch_NoResults422(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))
	got, err := client.Search(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Empty(t, got.Data)
	assert.Equal(t, http.StatusUnprocessableEntity, got.Code)
}

func TestSearch_StatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"unauthorized", http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithSearchBaseURL(srv.URL))
			_, err := client.Search(context.Background(), "q")

			require.Error(t, err)
			assert.Equal(t, tt.transient, resilience.IsTransient(err))
			assert.Contains(t, err.Error(), "jina: unexpected status")
		})
	}
}

func TestSearch_BadJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
