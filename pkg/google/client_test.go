package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "test-key", "test-cx",
		WithBaseURL(srv.URL+"/"),
		WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestSearch_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customsearch/v1", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-cx", q.Get("cx"))
		assert.Equal(t, `site:linkedin.com/in "CTO"`, q.Get("q"))
		assert.Equal(t, "11", q.Get("start"))
		assert.Equal(t, "10", q.Get("num"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{
					"link": "https://de.linkedin.com/in/jane-doe",
					"title": "Jane Doe - CTO - Acme GmbH | LinkedIn",
					"snippet": "Berlin · CTO at Acme GmbH · 500+ connections",
					"pagemap": {
						"metatags": [
							{"profile:first_name": "Jane", "profile:last_name": "Doe", "og:description": "CTO at Acme", "og:image:width": 200}
						]
					}
				},
				{"link": "", "title": "dropped"}
			]
		}`))
	})

	page, err := c.Search(context.Background(), SearchRequest{Query: `site:linkedin.com/in "CTO"`, Start: 11, Num: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	it := page.Items[0]
	assert.Equal(t, "https://de.linkedin.com/in/jane-doe", it.Link)
	assert.Equal(t, "Jane Doe - CTO - Acme GmbH | LinkedIn", it.Title)
	assert.Equal(t, "Jane", it.Meta["profile:first_name"])
	assert.Equal(t, "CTO at Acme", it.Meta["og:description"])
	_, hasNumber := it.Meta["og:image:width"]
	assert.False(t, hasNumber)
}

func TestSearch_NoItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"searchInformation": {"totalResults": "0"}}`))
	})

	page, err := c.Search(context.Background(), SearchRequest{Query: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestSearch_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusServiceUnavailable, true},
		{"bad key", http.StatusForbidden, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope"}}`))
			})

			_, err := c.Search(context.Background(), SearchRequest{Query: "q"})
			require.Error(t, err)
			assert.Equal(t, tt.transient, resilience.IsTransient(err))
			assert.Contains(t, err.Error(), "google: unexpected status")
		})
	}
}

func TestMetatags(t *testing.T) {
	assert.Nil(t, metatags(nil))
	assert.Nil(t, metatags([]byte(`{"cse_image": [{"src": "x"}]}`)))
	assert.Nil(t, metatags([]byte(`not json`)))
	assert.Equal(t, map[string]string{"a": "b"}, metatags([]byte(`{"metatags": [{"a": "b"}, {"c": "d"}]}`)))
}
