package search

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/resilience"
	"github.com/sells-group/leads-cli/pkg/google"
)

// maxGoogleResults is the deepest the Custom Search API pages.
const maxGoogleResults = 100

// GoogleProvider pages through Custom Search results.
type GoogleProvider struct {
	client  google.Client
	limiter *rate.Limiter
	opts    Options
}

// NewGoogleProvider wraps a Custom Search client.
func NewGoogleProvider(client google.Client, opts Options) *GoogleProvider {
	return &GoogleProvider{client: client, limiter: opts.limiter(), opts: opts}
}

// Search requests pages of up to ten items until limit items are
// collected or a short page signals the end of the results.
func (p *GoogleProvider) Search(ctx context.Context, query string, limit int) ([]model.SearchItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	if limit > maxGoogleResults {
		zap.L().Warn("google: limit capped", zap.Int("requested", limit), zap.Int("max", maxGoogleResults))
		limit = maxGoogleResults
	}

	out := make([]model.SearchItem, 0, limit)
	for start := 1; len(out) < limit; start += google.MaxPageSize {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrapf(model.ErrSearchUnavailable, "google: wait: %v", err)
		}

		num := min(google.MaxPageSize, limit-len(out))
		page, err := resilience.DoVal(ctx, p.opts.retry("google"), func(ctx context.Context) (*google.SearchPage, error) {
			if p.opts.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
				defer cancel()
			}
			return p.client.Search(ctx, google.SearchRequest{Query: query, Start: start, Num: num})
		})
		if err != nil {
			return nil, eris.Wrapf(model.ErrSearchUnavailable, "google: page at %d: %v", start, err)
		}

		for _, it := range page.Items {
			out = append(out, model.SearchItem{
				URL:     it.Link,
				Title:   it.Title,
				Snippet: it.Snippet,
				Meta:    it.Meta,
			})
		}
		zap.L().Debug("google: page fetched",
			zap.Int("start", start),
			zap.Int("items", len(page.Items)),
			zap.Int("collected", len(out)),
		)
		if len(page.Items) < num {
			break
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
