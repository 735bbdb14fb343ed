// Package google wraps the Google Custom Search JSON API.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rotisserie/eris"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/sells-group/leads-cli/internal/resilience"
)

// MaxPageSize is the largest page the API returns.
const MaxPageSize = 10

// Client performs Custom Search queries against one search engine.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchPage, error)
}

// SearchRequest is one page of a query. Start is 1-based.
type SearchRequest struct {
	Query string
	Start int
	Num   int
}

// SearchPage is one page of results.
type SearchPage struct {
	Items []Item
}

// Item is a single search hit. Meta holds the first pagemap metatags
// object flattened to strings.
type Item struct {
	Link    string
	Title   string
	Snippet string
	Meta    map[string]string
}

// Option configures the client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL string
	http    *http.Client
}

// WithBaseURL overrides the API endpoint. It must end with a slash.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// WithHTTPClient overrides the transport. The API key is not attached when
// a custom client is used, so this is meant for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		o.http = hc
	}
}

type cseClient struct {
	svc *customsearch.Service
	cx  string
}

// NewClient creates a Custom Search client for the engine cx.
func NewClient(ctx context.Context, apiKey, cx string, opts ...Option) (Client, error) {
	var o clientOptions
	for _, fn := range opts {
		fn(&o)
	}

	copts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if o.baseURL != "" {
		copts = append(copts, option.WithEndpoint(o.baseURL))
	}
	if o.http != nil {
		copts = append(copts, option.WithHTTPClient(o.http))
	}

	svc, err := customsearch.NewService(ctx, copts...)
	if err != nil {
		return nil, eris.Wrap(err, "google: create service")
	}
	return &cseClient{svc: svc, cx: cx}, nil
}

func (c *cseClient) Search(ctx context.Context, req SearchRequest) (*SearchPage, error) {
	num := req.Num
	if num <= 0 || num > MaxPageSize {
		num = MaxPageSize
	}
	start := req.Start
	if start <= 0 {
		start = 1
	}

	res, err := c.svc.Cse.List().
		Cx(c.cx).
		Q(req.Query).
		Start(int64(start)).
		Num(int64(num)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}

	page := &SearchPage{Items: make([]Item, 0, len(res.Items))}
	for _, r := range res.Items {
		if r == nil || r.Link == "" {
			continue
		}
		page.Items = append(page.Items, Item{
			Link:    r.Link,
			Title:   r.Title,
			Snippet: r.Snippet,
			Meta:    metatags(r.Pagemap),
		})
	}
	return page, nil
}

// classify marks retryable API statuses as transient.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		wrapped := eris.Errorf("google: unexpected status %d: %s", apiErr.Code, apiErr.Message)
		if resilience.IsTransientHTTPStatus(apiErr.Code) {
			return resilience.NewTransientError(wrapped, apiErr.Code)
		}
		return wrapped
	}
	return eris.Wrap(err, "google: search")
}

func metatags(raw googleapi.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var pm struct {
		Metatags []map[string]any `json:"metatags"`
	}
	if err := json.Unmarshal(raw, &pm); err != nil || len(pm.Metatags) == 0 {
		return nil
	}
	out := make(map[string]string, len(pm.Metatags[0]))
	for k, v := range pm.Metatags[0] {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
