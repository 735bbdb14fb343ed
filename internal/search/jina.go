package search

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/resilience"
	"github.com/sells-group/leads-cli/pkg/jina"
)

// JinaProvider searches through Jina. A leading site: operator in the
// query becomes Jina's site filter.
type JinaProvider struct {
	client  jina.Client
	limiter *rate.Limiter
	opts    Options
}

// NewJinaProvider wraps a Jina client.
func NewJinaProvider(client jina.Client, opts Options) *JinaProvider {
	return &JinaProvider{client: client, limiter: opts.limiter(), opts: opts}
}

func (p *JinaProvider) Search(ctx context.Context, query string, limit int) ([]model.SearchItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrapf(model.ErrSearchUnavailable, "jina: wait: %v", err)
	}

	site, rest := splitSite(query)
	sopts := []jina.SearchOption{jina.WithoutContent()}
	if site != "" {
		sopts = append(sopts, jina.WithSiteFilter(site))
	}

	resp, err := resilience.DoVal(ctx, p.opts.retry("jina"), func(ctx context.Context) (*jina.SearchResponse, error) {
		if p.opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
			defer cancel()
		}
		return p.client.Search(ctx, rest, sopts...)
	})
	if err != nil {
		return nil, eris.Wrapf(model.ErrSearchUnavailable, "jina: %v", err)
	}

	out := make([]model.SearchItem, 0, min(limit, len(resp.Data)))
	for _, r := range resp.Data {
		if r.URL == "" {
			continue
		}
		snippet := r.Description
		if snippet == "" {
			snippet = r.Content
		}
		out = append(out, model.SearchItem{URL: r.URL, Title: r.Title, Snippet: snippet})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
