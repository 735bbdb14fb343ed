package store

import (
	"context"
	"strings"

	"github.com/sells-group/leads-cli/internal/model"
)

// Store persists people, companies and search queries. All writes are
// idempotent by canonical key.
type Store interface {
	// Query registry
	ResolveQuery(ctx context.Context, source, entityType, text string) (string, error)

	// Upsert / link
	IngestBatch(ctx context.Context, people []model.Person, companies []model.Company, query model.QueryRef) (*model.IngestReport, error)
	MergeDuplicates(ctx context.Context) (*model.MergeReport, error)

	// Enrichment
	EnrichCompany(ctx context.Context, key string, e model.Enrichment) error
	PendingEnrichment(ctx context.Context, limit int) ([]model.Company, error)

	// Reporting
	RecentPeople(ctx context.Context, limit int) ([]model.PersonView, error)
	PersonByURL(ctx context.Context, profileURL string) (*model.PersonView, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// NormalizeQuery is the dedup key of a query text: trimmed, internal
// whitespace collapsed, lower-cased. The original text is stored verbatim.
func NormalizeQuery(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
