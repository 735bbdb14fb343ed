package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leads-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	eng engine
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	// One writer keeps WAL transactions from tripping over each other.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS search_queries (
	id               TEXT PRIMARY KEY,
	source           TEXT NOT NULL,
	entity_type      TEXT NOT NULL CHECK (entity_type IN ('person', 'company')),
	query_text       TEXT NOT NULL,
	normalized_query TEXT NOT NULL,
	created_at       DATETIME NOT NULL,
	last_executed_at DATETIME NOT NULL,
	UNIQUE (source, entity_type, normalized_query)
);

CREATE TABLE IF NOT EXISTS companies (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	domain              TEXT UNIQUE,
	website             TEXT,
	legal_form          TEXT,
	industries_json     TEXT,
	locations_json      TEXT,
	multinational       BOOLEAN,
	size_employees      TEXT,
	business_model_json TEXT,
	products_json       TEXT,
	recent_news_json    TEXT,
	last_enriched_at    DATETIME,
	search_query_id     TEXT REFERENCES search_queries(id) ON DELETE SET NULL,
	source_name         TEXT,
	source_query        TEXT,
	created_at          DATETIME NOT NULL,
	updated_at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS people (
	id                   TEXT PRIMARY KEY,
	linkedin_profile     TEXT NOT NULL UNIQUE,
	first_name           TEXT,
	last_name            TEXT,
	title_current        TEXT,
	location_text        TEXT,
	email                TEXT,
	phone_info           TEXT,
	website_info         TEXT,
	connections_linkedin INTEGER,
	connections_floor    BOOLEAN NOT NULL DEFAULT 0,
	followers_linkedin   INTEGER,
	followers_floor      BOOLEAN NOT NULL DEFAULT 0,
	info_raw             TEXT,
	lookup_date          TEXT,
	company_id           TEXT REFERENCES companies(id) ON DELETE SET NULL,
	search_query_id      TEXT REFERENCES search_queries(id) ON DELETE SET NULL,
	source_name          TEXT,
	source_query         TEXT,
	created_at           DATETIME NOT NULL,
	updated_at           DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(lower(name));
CREATE INDEX IF NOT EXISTS idx_people_company_id ON people(company_id);
CREATE INDEX IF NOT EXISTS idx_people_last_first ON people(last_name, first_name);

CREATE VIEW IF NOT EXISTS v_people_with_company AS
SELECT
	p.id, p.linkedin_profile, p.first_name, p.last_name, p.title_current, p.location_text,
	p.email, p.phone_info, p.website_info, p.connections_linkedin, p.connections_floor,
	p.followers_linkedin, p.followers_floor, p.info_raw, p.lookup_date, p.company_id,
	p.search_query_id, p.source_name, p.source_query, p.created_at, p.updated_at,
	c.name AS company_name,
	c.domain AS company_domain,
	c.legal_form AS company_legal_form,
	c.industries_json AS company_industries_json,
	c.last_enriched_at AS company_last_enriched_at
FROM people p
LEFT JOIN companies c ON c.id = p.company_id;
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// inTx runs fn inside a transaction. Nothing from fn is kept if it fails.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(sqlQuerier{conn: tx}); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit tx")
}

func (s *SQLiteStore) ResolveQuery(ctx context.Context, source, entityType, text string) (string, error) {
	var id string
	err := s.inTx(ctx, func(q querier) error {
		var err error
		id, err = s.eng.resolveQuery(ctx, q, source, entityType, text)
		return err
	})
	return id, err
}

func (s *SQLiteStore) IngestBatch(ctx context.Context, people []model.Person, companies []model.Company, query model.QueryRef) (*model.IngestReport, error) {
	var rep *model.IngestReport
	err := s.inTx(ctx, func(q querier) error {
		var err error
		rep, err = s.eng.ingestBatch(ctx, q, people, companies, query)
		return err
	})
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: ingest batch")
	}
	return rep, nil
}

func (s *SQLiteStore) MergeDuplicates(ctx context.Context) (*model.MergeReport, error) {
	var rep *model.MergeReport
	err := s.inTx(ctx, func(q querier) error {
		var err error
		rep, err = s.eng.mergeDuplicates(ctx, q)
		return err
	})
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: merge duplicates")
	}
	return rep, nil
}

func (s *SQLiteStore) EnrichCompany(ctx context.Context, key string, e model.Enrichment) error {
	return s.inTx(ctx, func(q querier) error {
		return s.eng.enrichCompany(ctx, q, key, e)
	})
}

func (s *SQLiteStore) PendingEnrichment(ctx context.Context, limit int) ([]model.Company, error) {
	return pendingEnrichment(ctx, sqlQuerier{conn: s.db}, limit)
}

func (s *SQLiteStore) RecentPeople(ctx context.Context, limit int) ([]model.PersonView, error) {
	return recentPeople(ctx, sqlQuerier{conn: s.db}, limit)
}

func (s *SQLiteStore) PersonByURL(ctx context.Context, profileURL string) (*model.PersonView, error) {
	return personByURL(ctx, sqlQuerier{conn: s.db}, profileURL)
}

// withClock pins the store's timestamps; used by tests.
func (s *SQLiteStore) withClock(now func() time.Time) *SQLiteStore {
	s.eng.now = now
	return s
}
