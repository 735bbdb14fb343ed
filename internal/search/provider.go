// Package search turns a query into an ordered list of result items using
// one of the configured search backends.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/resilience"
	"github.com/sells-group/leads-cli/pkg/google"
	"github.com/sells-group/leads-cli/pkg/jina"
)

// Provider returns ordered result items for a query. Any failure wraps
// model.ErrSearchUnavailable; partial results are never returned.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]model.SearchItem, error)
}

// Options tune paging, courtesy delay and retries.
type Options struct {
	// Delay is the minimum gap between page requests.
	Delay time.Duration
	// Retries is the number of attempts per page.
	Retries int
	// Timeout bounds a single page request. Zero means no bound.
	Timeout time.Duration
}

// OptionsFromConfig maps the search config section onto Options.
func OptionsFromConfig(cfg config.SearchConfig) Options {
	return Options{
		Delay:   time.Duration(cfg.DelayMs) * time.Millisecond,
		Retries: cfg.Retries,
		Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	}
}

func (o Options) limiter() *rate.Limiter {
	if o.Delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(o.Delay), 1)
}

func (o Options) retry(service string) resilience.RetryConfig {
	cfg := resilience.FixedRetryConfig(o.Retries, o.Delay)
	cfg.OnRetry = resilience.RetryLogger(service, "search")
	return cfg
}

// BuildQuery builds a site-restricted query with each term quoted:
// site:linkedin.com/in "CEO" "Berlin".
func BuildQuery(site string, terms []string) string {
	parts := make([]string, 0, len(terms)+1)
	if site != "" {
		parts = append(parts, "site:"+site)
	}
	for _, t := range terms {
		t = strings.Trim(strings.TrimSpace(t), `"`)
		if t != "" {
			parts = append(parts, `"`+t+`"`)
		}
	}
	return strings.Join(parts, " ")
}

// splitSite separates a leading site: operator from the rest of the query.
func splitSite(query string) (site, rest string) {
	q := strings.TrimSpace(query)
	if !strings.HasPrefix(q, "site:") {
		return "", q
	}
	first, rest, _ := strings.Cut(q, " ")
	return strings.TrimPrefix(first, "site:"), strings.TrimSpace(rest)
}

// NewProvider builds the named backend from configuration.
func NewProvider(ctx context.Context, cfg *config.Config, name string) (Provider, error) {
	opts := OptionsFromConfig(cfg.Search)
	switch name {
	case "google":
		var gopts []google.Option
		if cfg.Google.BaseURL != "" {
			gopts = append(gopts, google.WithBaseURL(cfg.Google.BaseURL))
		}
		client, err := google.NewClient(ctx, cfg.Google.Key, cfg.Google.CseID, gopts...)
		if err != nil {
			return nil, eris.Wrap(err, "search: google client")
		}
		return NewGoogleProvider(client, opts), nil
	case "jina":
		var jopts []jina.Option
		if cfg.Jina.SearchBaseURL != "" {
			jopts = append(jopts, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
		}
		return NewJinaProvider(jina.NewClient(cfg.Jina.Key, jopts...), opts), nil
	default:
		return nil, eris.Errorf("search: unknown provider %q", name)
	}
}
