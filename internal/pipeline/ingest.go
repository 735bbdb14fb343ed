// Package pipeline runs the people ingestion flow: search, extract,
// validate and deduplicate, then persist with query attribution.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/dedupe"
	"github.com/sells-group/leads-cli/internal/extract"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/normalize"
	"github.com/sells-group/leads-cli/internal/search"
	"github.com/sells-group/leads-cli/internal/store"
)

// ImportSource is the provenance recorded for profiles loaded from a file.
const ImportSource = "file_import"

// ProviderFactory returns the search backend with the given name.
type ProviderFactory func(ctx context.Context, name string) (search.Provider, error)

// IngestOptions controls one ingestion run. Query wins over Terms.
type IngestOptions struct {
	Query          string
	Terms          []string
	Source         string
	Limit          int
	WriteDB        bool
	RequiredFields []string
}

// IngestResult is the outcome of one run. Report is nil when nothing was
// written.
type IngestResult struct {
	Query     string              `json:"query"`
	Source    string              `json:"source"`
	Found     int                 `json:"found"`
	Kept      []model.Person      `json:"kept"`
	Rejected  []dedupe.Rejection  `json:"rejected"`
	Companies []model.Company     `json:"companies"`
	Report    *model.IngestReport `json:"report,omitempty"`
}

// Ingestor wires search, extraction and the store together.
type Ingestor struct {
	store         store.Store
	providers     ProviderFactory
	extractor     *extract.Extractor
	defaultSource string
	maxResults    int
	normalize     normalize.Options
	now           func() time.Time
}

// Config holds the Ingestor defaults.
type Config struct {
	DefaultSource string
	MaxResults    int
	PhoneRegion   string
}

// NewIngestor creates an Ingestor. st may be nil when runs never write.
func NewIngestor(st store.Store, providers ProviderFactory, extractor *extract.Extractor, cfg Config) *Ingestor {
	if extractor == nil {
		extractor = extract.New(nil)
	}
	return &Ingestor{
		store:         st,
		providers:     providers,
		extractor:     extractor,
		defaultSource: cfg.DefaultSource,
		maxResults:    cfg.MaxResults,
		normalize:     normalize.Options{PhoneRegion: cfg.PhoneRegion},
		now:           time.Now,
	}
}

// Run searches the source for the query, extracts candidates and ingests
// them. A search failure aborts the run before anything is written.
func (i *Ingestor) Run(ctx context.Context, opts IngestOptions) (*IngestResult, error) {
	name := opts.Source
	if name == "" {
		name = i.defaultSource
	}
	src, err := search.LookupSource(name)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(opts.Query)
	if query == "" {
		terms := cleanTerms(opts.Terms)
		if len(terms) == 0 {
			return nil, eris.New("pipeline: a query or search terms are required")
		}
		query = src.Query(terms)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = i.maxResults
	}

	provider, err := i.providers(ctx, src.Provider)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("source", src.Name), zap.String("query", query))
	log.Info("pipeline: searching", zap.Int("limit", limit))

	items, err := provider.Search(ctx, query, limit)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: search %s", src.Name)
	}
	log.Info("pipeline: search done", zap.Int("items", len(items)))

	raws := i.extractor.ExtractAll(ctx, items)
	for j := range raws {
		raws[j].SourceName = src.Name
		raws[j].SourceQuery = query
	}
	return i.ingest(ctx, src.Name, src.EntityType, query, raws, opts)
}

// IngestProfiles validates and stores already extracted profiles, such as
// those read from a JSON export. Profiles without provenance get source and
// query.
func (i *Ingestor) IngestProfiles(ctx context.Context, raws []model.RawProfile, source, query string, opts IngestOptions) (*IngestResult, error) {
	if source == "" {
		source = ImportSource
	}
	for j := range raws {
		if raws[j].SourceName == "" {
			raws[j].SourceName = source
		}
		if raws[j].SourceQuery == "" {
			raws[j].SourceQuery = query
		}
	}
	return i.ingest(ctx, source, model.EntityPerson, query, raws, opts)
}

func (i *Ingestor) ingest(ctx context.Context, source, entityType, query string, raws []model.RawProfile, opts IngestOptions) (*IngestResult, error) {
	res := dedupe.ValidateAndDedupe(raws, opts.RequiredFields, i.now(), dedupe.Options{Normalize: i.normalize})
	out := &IngestResult{
		Query:     query,
		Source:    source,
		Found:     len(raws),
		Kept:      res.Kept,
		Rejected:  res.Rejected,
		Companies: distinctCompanies(res.Kept),
	}

	for _, r := range res.Rejected {
		zap.L().Debug("pipeline: candidate rejected",
			zap.String("profile_url", r.Raw.ProfileURL),
			zap.String("reason", r.Reason.String()),
		)
	}

	if !opts.WriteDB {
		return out, nil
	}
	if i.store == nil {
		return nil, eris.New("pipeline: write requested without a store")
	}

	report, err := i.store.IngestBatch(ctx, out.Kept, out.Companies, model.QueryRef{
		Source:     source,
		EntityType: entityType,
		Text:       query,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: ingest batch")
	}
	out.Report = report

	zap.L().Info("pipeline: ingested",
		zap.String("query_id", report.QueryID),
		zap.Int("found", out.Found),
		zap.Int("kept", len(out.Kept)),
		zap.Int("rejected", len(out.Rejected)),
		zap.Int("people_inserted", report.People.Inserted),
		zap.Int("people_updated", report.People.Updated),
		zap.Int("companies_inserted", report.Companies.Inserted),
	)
	return out, nil
}

// distinctCompanies collects the employer guesses of people, one per
// company key in first-seen order. Later sightings fill in what the first
// one lacked.
func distinctCompanies(people []model.Person) []model.Company {
	var out []model.Company
	index := make(map[string]int)
	for _, p := range people {
		if p.Company == nil {
			continue
		}
		key := strings.ToLower(p.Company.Key())
		if key == "" {
			continue
		}
		if j, ok := index[key]; ok {
			out[j].Absorb(*p.Company)
			continue
		}
		index[key] = len(out)
		out = append(out, *p.Company)
	}
	return out
}

func cleanTerms(terms []string) []string {
	var out []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
