package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/db"
	"github.com/sells-group/leads-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	eng     engine
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS search_queries (
	id               TEXT PRIMARY KEY,
	source           TEXT NOT NULL,
	entity_type      TEXT NOT NULL CHECK (entity_type IN ('person', 'company')),
	query_text       TEXT NOT NULL,
	normalized_query TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_executed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
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
	last_enriched_at    TIMESTAMPTZ,
	search_query_id     TEXT REFERENCES search_queries(id) ON DELETE SET NULL,
	source_name         TEXT,
	source_query        TEXT,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
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
	connections_floor    BOOLEAN NOT NULL DEFAULT false,
	followers_linkedin   INTEGER,
	followers_floor      BOOLEAN NOT NULL DEFAULT false,
	info_raw             TEXT,
	lookup_date          TEXT,
	company_id           TEXT REFERENCES companies(id) ON DELETE SET NULL,
	search_query_id      TEXT REFERENCES search_queries(id) ON DELETE SET NULL,
	source_name          TEXT,
	source_query         TEXT,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(lower(name));
CREATE INDEX IF NOT EXISTS idx_people_company_id ON people(company_id);
CREATE INDEX IF NOT EXISTS idx_people_last_first ON people(last_name, first_name);

CREATE OR REPLACE VIEW v_people_with_company AS
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(q querier) error) error {
	return db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(pgxQuerier{conn: tx})
	})
}

func (s *PostgresStore) ResolveQuery(ctx context.Context, source, entityType, text string) (string, error) {
	var id string
	err := s.inTx(ctx, func(q querier) error {
		var err error
		id, err = s.eng.resolveQuery(ctx, q, source, entityType, text)
		return err
	})
	if err != nil {
		return "", eris.Wrap(err, "postgres: resolve query")
	}
	return id, nil
}

func (s *PostgresStore) IngestBatch(ctx context.Context, people []model.Person, companies []model.Company, query model.QueryRef) (*model.IngestReport, error) {
	var rep *model.IngestReport
	err := s.inTx(ctx, func(q querier) error {
		var err error
		rep, err = s.eng.ingestBatch(ctx, q, people, companies, query)
		return err
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: ingest batch")
	}
	return rep, nil
}

func (s *PostgresStore) MergeDuplicates(ctx context.Context) (*model.MergeReport, error) {
	var rep *model.MergeReport
	err := s.inTx(ctx, func(q querier) error {
		var err error
		rep, err = s.eng.mergeDuplicates(ctx, q)
		return err
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: merge duplicates")
	}
	return rep, nil
}

func (s *PostgresStore) EnrichCompany(ctx context.Context, key string, e model.Enrichment) error {
	return s.inTx(ctx, func(q querier) error {
		return s.eng.enrichCompany(ctx, q, key, e)
	})
}

func (s *PostgresStore) PendingEnrichment(ctx context.Context, limit int) ([]model.Company, error) {
	return pendingEnrichment(ctx, pgxQuerier{conn: s.pool}, limit)
}

func (s *PostgresStore) RecentPeople(ctx context.Context, limit int) ([]model.PersonView, error) {
	return recentPeople(ctx, pgxQuerier{conn: s.pool}, limit)
}

func (s *PostgresStore) PersonByURL(ctx context.Context, profileURL string) (*model.PersonView, error) {
	return personByURL(ctx, pgxQuerier{conn: s.pool}, profileURL)
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
