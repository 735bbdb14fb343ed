// Package extract turns search result items into raw profile candidates:
// regex and title heuristics first, then an optional model pass that only
// fills what the heuristics left empty.
package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/model"
)

// Assistant returns a best-effort structured guess for one result item.
type Assistant interface {
	Refine(ctx context.Context, item model.SearchItem) (*model.Extraction, error)
}

// Extractor produces raw profiles from search results.
type Extractor struct {
	assistant Assistant
}

// New returns an Extractor. assistant may be nil.
func New(assistant Assistant) *Extractor {
	return &Extractor{assistant: assistant}
}

// Extract builds a raw profile for item. Assistant failures are logged and
// leave the heuristic result untouched.
func (e *Extractor) Extract(ctx context.Context, item model.SearchItem) model.RawProfile {
	raw := Heuristic(item)
	if e.assistant == nil || complete(raw) {
		return raw
	}

	guess, err := e.assistant.Refine(ctx, item)
	if err != nil {
		zap.L().Warn("extract: assistant failed, keeping heuristic fields",
			zap.String("url", item.URL),
			zap.Error(err),
		)
		return raw
	}
	fill(&raw, guess)
	return raw
}

// ExtractAll extracts every item in order.
func (e *Extractor) ExtractAll(ctx context.Context, items []model.SearchItem) []model.RawProfile {
	out := make([]model.RawProfile, 0, len(items))
	for _, it := range items {
		out = append(out, e.Extract(ctx, it))
	}
	return out
}

func complete(r model.RawProfile) bool {
	return r.Name != "" && r.Title != "" && r.Company != "" && r.Location != ""
}

func fill(r *model.RawProfile, g *model.Extraction) {
	if g == nil {
		return
	}
	set := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	set(&r.Name, g.Name)
	set(&r.Title, g.CurrentTitle)
	set(&r.Company, g.Company)
	set(&r.Location, g.Location)
	set(&r.Followers, g.FollowerCount)
	set(&r.Connections, g.ConnectionCount)
}
