package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/canon"
	"github.com/sells-group/leads-cli/internal/dedupe"
	"github.com/sells-group/leads-cli/internal/model"
)

// engine holds the backend-neutral query, upsert and merge logic. Each
// method runs against whatever querier it is handed, usually a transaction.
type engine struct {
	now func() time.Time
}

func (e engine) clock() time.Time {
	if e.now != nil {
		return e.now().UTC()
	}
	return time.Now().UTC()
}

// --- query registry ---

func (e engine) resolveQuery(ctx context.Context, q querier, source, entityType, text string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", eris.New("resolve query: source is required")
	}
	if entityType != model.EntityPerson && entityType != model.EntityCompany {
		return "", eris.Errorf("resolve query: unknown entity type %q", entityType)
	}
	norm := NormalizeQuery(text)
	if norm == "" {
		return "", eris.New("resolve query: empty query text")
	}

	now := e.clock()
	var id string
	err := q.queryRow(ctx,
		`SELECT id FROM search_queries WHERE source = ? AND entity_type = ? AND normalized_query = ?`,
		source, entityType, norm,
	).Scan(&id)
	switch {
	case err == nil:
		if _, err := q.exec(ctx, `UPDATE search_queries SET last_executed_at = ? WHERE id = ?`, now, id); err != nil {
			return "", eris.Wrapf(err, "resolve query: touch %s", id)
		}
		return id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", eris.Wrap(err, "resolve query: lookup")
	}

	id = uuid.New().String()
	_, err = q.exec(ctx,
		`INSERT INTO search_queries (id, source, entity_type, query_text, normalized_query, created_at, last_executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, source, entityType, text, norm, now, now,
	)
	if err != nil {
		return "", classifyWriteErr(err, "resolve query: insert")
	}
	return id, nil
}

// --- upsert / link ---

// ingestBatch resolves query and upserts companies then people on q. The
// caller's transaction covers the query registry too, so a failed batch
// leaves search_queries untouched.
func (e engine) ingestBatch(ctx context.Context, q querier, people []model.Person, companies []model.Company, query model.QueryRef) (*model.IngestReport, error) {
	var queryID string
	if !query.IsZero() {
		var err error
		if queryID, err = e.resolveQuery(ctx, q, query.Source, query.EntityType, query.Text); err != nil {
			return nil, err
		}
	}

	now := e.clock()
	rep := &model.IngestReport{QueryID: queryID}
	resolved := make(map[string]string) // company key -> id

	upsertCompany := func(in model.Company) (string, error) {
		key := companyKey(in)
		if key == "" {
			return "", nil
		}
		if id, ok := resolved[key]; ok {
			return id, nil
		}

		existing, err := e.findCompany(ctx, q, in)
		if err != nil {
			return "", err
		}
		if existing == nil {
			c := in
			c.ID = uuid.New().String()
			c.SearchQueryID = queryID
			c.LastEnrichedAt = nil
			c.CreatedAt, c.UpdatedAt = now, now
			if err := insertCompany(ctx, q, &c); err != nil {
				return "", err
			}
			rep.Companies.Inserted++
			resolved[key] = c.ID
			return c.ID, nil
		}

		if existing.Merge(in) {
			existing.UpdatedAt = now
			if err := updateCompany(ctx, q, existing); err != nil {
				return "", err
			}
			rep.Companies.Updated++
		} else {
			rep.Companies.Skipped++
		}
		resolved[key] = existing.ID
		return existing.ID, nil
	}

	for _, c := range companies {
		if _, err := upsertCompany(c); err != nil {
			return nil, err
		}
	}

	for _, in := range people {
		if in.ProfileURL == "" {
			rep.People.Skipped++
			continue
		}
		if in.Company != nil {
			id, err := upsertCompany(*in.Company)
			if err != nil {
				return nil, err
			}
			if id != "" {
				in.CompanyID = id
			}
		}

		existing, err := findPersonByURL(ctx, q, in.ProfileURL)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			p := in
			p.ID = uuid.New().String()
			p.SearchQueryID = queryID
			if p.LookupDate == "" {
				p.LookupDate = now.Format("2006-01-02")
			}
			p.CreatedAt, p.UpdatedAt = now, now
			if err := insertPerson(ctx, q, &p); err != nil {
				return nil, err
			}
			rep.People.Inserted++
			continue
		}

		if existing.Merge(in) {
			existing.UpdatedAt = now
			if err := updatePerson(ctx, q, existing); err != nil {
				return nil, err
			}
			rep.People.Updated++
		} else {
			rep.People.Skipped++
		}
	}

	zap.L().Debug("batch ingested",
		zap.String("query_id", queryID),
		zap.Int("people_inserted", rep.People.Inserted),
		zap.Int("people_updated", rep.People.Updated),
		zap.Int("companies_inserted", rep.Companies.Inserted),
	)
	return rep, nil
}

func companyKey(c model.Company) string {
	if c.Domain != "" {
		return "domain:" + c.Domain
	}
	if n := strings.ToLower(strings.TrimSpace(c.Name)); n != "" {
		return "name:" + n
	}
	return ""
}

// findCompany looks a discovered company up by domain, or by name among
// domain-less rows when it has no domain.
func (e engine) findCompany(ctx context.Context, q querier, c model.Company) (*model.Company, error) {
	if c.Domain != "" {
		return findCompanyByDomain(ctx, q, c.Domain)
	}
	return queryCompany(ctx, q,
		`SELECT `+companyColumns+` FROM companies WHERE domain IS NULL AND lower(name) = lower(?) ORDER BY created_at LIMIT 1`,
		strings.TrimSpace(c.Name),
	)
}

func findCompanyByDomain(ctx context.Context, q querier, domain string) (*model.Company, error) {
	return queryCompany(ctx, q, `SELECT `+companyColumns+` FROM companies WHERE domain = ?`, domain)
}

func queryCompany(ctx context.Context, q querier, query string, args ...any) (*model.Company, error) {
	c, err := scanCompany(q.queryRow(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "find company")
	}
	return c, nil
}

func findPersonByURL(ctx context.Context, q querier, profileURL string) (*model.Person, error) {
	p, err := scanPerson(q.queryRow(ctx, `SELECT `+personColumns+` FROM people WHERE linkedin_profile = ?`, profileURL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "find person %s", profileURL)
	}
	return p, nil
}

func insertPerson(ctx context.Context, q querier, p *model.Person) error {
	_, err := q.exec(ctx,
		`INSERT INTO people (`+personColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		personArgs(p)...,
	)
	return classifyWriteErr(err, "insert person "+p.ProfileURL)
}

func updatePerson(ctx context.Context, q querier, p *model.Person) error {
	_, err := q.exec(ctx,
		`UPDATE people SET linkedin_profile = ?, first_name = ?, last_name = ?, title_current = ?, location_text = ?,
			email = ?, phone_info = ?, website_info = ?, connections_linkedin = ?, connections_floor = ?,
			followers_linkedin = ?, followers_floor = ?, info_raw = ?, lookup_date = ?, company_id = ?,
			search_query_id = ?, source_name = ?, source_query = ?, updated_at = ?
		 WHERE id = ?`,
		append(personArgs(p)[1:19], p.UpdatedAt, p.ID)...,
	)
	return classifyWriteErr(err, "update person "+p.ProfileURL)
}

func insertCompany(ctx context.Context, q querier, c *model.Company) error {
	args, err := companyArgs(c)
	if err != nil {
		return err
	}
	_, err = q.exec(ctx,
		`INSERT INTO companies (`+companyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	return classifyWriteErr(err, "insert company "+c.Key())
}

func updateCompany(ctx context.Context, q querier, c *model.Company) error {
	args, err := companyArgs(c)
	if err != nil {
		return err
	}
	_, err = q.exec(ctx,
		`UPDATE companies SET name = ?, domain = ?, website = ?, legal_form = ?, industries_json = ?, locations_json = ?,
			multinational = ?, size_employees = ?, business_model_json = ?, products_json = ?, recent_news_json = ?,
			last_enriched_at = ?, search_query_id = ?, source_name = ?, source_query = ?, updated_at = ?
		 WHERE id = ?`,
		append(args[1:16], c.UpdatedAt, c.ID)...,
	)
	return classifyWriteErr(err, "update company "+c.Key())
}

// --- enrichment ---

func (e engine) enrichCompany(ctx context.Context, q querier, key string, en model.Enrichment) error {
	c, err := findCompanyByKey(ctx, q, key)
	if err != nil {
		return err
	}
	if c == nil {
		return eris.Wrapf(model.ErrCompanyNotFound, "enrich %q", key)
	}

	now := e.clock()
	en.Apply(c, now)

	if c.Domain == "" && en.Domain != "" {
		owner, err := findCompanyByDomain(ctx, q, en.Domain)
		if err != nil {
			return err
		}
		if owner == nil {
			c.Domain = en.Domain
		} else {
			zap.L().Warn("enrichment domain already owned by another company",
				zap.String("company", c.Name),
				zap.String("domain", en.Domain),
				zap.String("owner_id", owner.ID),
			)
		}
	}
	c.UpdatedAt = now
	return updateCompany(ctx, q, c)
}

// findCompanyByKey resolves an enrichment key: company id first, then
// domain, then case-insensitive name. A name key prefers rows without a
// domain, since a company that has one is addressed by it.
func findCompanyByKey(ctx context.Context, q querier, key string) (*model.Company, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	c, err := queryCompany(ctx, q, `SELECT `+companyColumns+` FROM companies WHERE id = ?`, key)
	if err != nil || c != nil {
		return c, err
	}
	if apex := canon.ExtractApexDomain(key); apex != "" {
		c, err := findCompanyByDomain(ctx, q, apex)
		if err != nil || c != nil {
			return c, err
		}
	}
	return queryCompany(ctx, q,
		`SELECT `+companyColumns+` FROM companies WHERE lower(name) = lower(?)
		 ORDER BY CASE WHEN domain IS NULL THEN 0 ELSE 1 END, created_at LIMIT 1`,
		key,
	)
}

func pendingEnrichment(ctx context.Context, q querier, limit int) ([]model.Company, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := q.query(ctx,
		`SELECT `+companyColumns+` FROM companies
		 WHERE last_enriched_at IS NULL OR industries_json IS NULL OR industries_json = '[]' OR size_employees IS NULL
		 ORDER BY name LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "pending enrichment")
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, eris.Wrap(err, "pending enrichment: scan")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "pending enrichment: iterate")
}

// --- reporting ---

func recentPeople(ctx context.Context, q querier, limit int) ([]model.PersonView, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := q.query(ctx,
		`SELECT `+viewColumns+` FROM v_people_with_company ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "recent people")
	}
	defer rows.Close()

	var out []model.PersonView
	for rows.Next() {
		v, err := scanPersonView(rows)
		if err != nil {
			return nil, eris.Wrap(err, "recent people: scan")
		}
		out = append(out, *v)
	}
	return out, eris.Wrap(rows.Err(), "recent people: iterate")
}

// personByURL returns nil when no row matches.
func personByURL(ctx context.Context, q querier, profileURL string) (*model.PersonView, error) {
	key, err := canon.NormalizeProfileURL(profileURL)
	if err != nil {
		key = strings.TrimSpace(profileURL)
	}
	v, err := scanPersonView(q.queryRow(ctx,
		`SELECT `+viewColumns+` FROM v_people_with_company WHERE linkedin_profile = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "person %s", key)
	}
	return v, nil
}

// --- duplicate merge ---

func (e engine) mergeDuplicates(ctx context.Context, q querier) (*model.MergeReport, error) {
	now := e.clock()
	rep := &model.MergeReport{}

	people, err := listPeople(ctx, q)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]model.Person)
	var order []string
	for _, p := range people {
		key, err := canon.NormalizeProfileURL(p.ProfileURL)
		if err != nil {
			zap.L().Warn("stored profile url does not canonicalize",
				zap.String("id", p.ID),
				zap.String("url", p.ProfileURL),
			)
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	for _, key := range order {
		group := groups[key]
		best := 0
		for i := 1; i < len(group); i++ {
			if dedupe.Completeness(group[i]) > dedupe.Completeness(group[best]) {
				best = i
			}
		}
		survivor := group[best]
		if len(group) == 1 && survivor.ProfileURL == key {
			continue
		}

		for i, dup := range group {
			if i == best {
				continue
			}
			survivor.Absorb(dup)
			if _, err := q.exec(ctx, `DELETE FROM people WHERE id = ?`, dup.ID); err != nil {
				return nil, eris.Wrapf(err, "merge people: delete %s", dup.ID)
			}
			rep.PeopleMerged++
		}
		survivor.ProfileURL = key
		survivor.UpdatedAt = now
		if err := updatePerson(ctx, q, &survivor); err != nil {
			return nil, err
		}
	}

	merged, err := e.mergeCompanyStubs(ctx, q, now)
	if err != nil {
		return nil, err
	}
	rep.CompaniesMerged = merged
	return rep, nil
}

// mergeCompanyStubs folds domain-less companies into a company with a
// domain and the same name, re-pointing their people.
func (e engine) mergeCompanyStubs(ctx context.Context, q querier, now time.Time) (int, error) {
	stubs, err := listCompanies(ctx, q, `SELECT `+companyColumns+` FROM companies WHERE domain IS NULL ORDER BY created_at, id`)
	if err != nil {
		return 0, err
	}

	merged := 0
	for _, stub := range stubs {
		target, err := queryCompany(ctx, q,
			`SELECT `+companyColumns+` FROM companies WHERE domain IS NOT NULL AND lower(name) = lower(?) ORDER BY created_at LIMIT 1`,
			stub.Name,
		)
		if err != nil {
			return 0, err
		}
		if target == nil {
			continue
		}

		if _, err := q.exec(ctx, `UPDATE people SET company_id = ?, updated_at = ? WHERE company_id = ?`, target.ID, now, stub.ID); err != nil {
			return 0, eris.Wrapf(err, "merge companies: repoint %s", stub.ID)
		}
		if _, err := q.exec(ctx, `DELETE FROM companies WHERE id = ?`, stub.ID); err != nil {
			return 0, eris.Wrapf(err, "merge companies: delete %s", stub.ID)
		}
		target.Absorb(stub)
		target.UpdatedAt = now
		if err := updateCompany(ctx, q, target); err != nil {
			return 0, err
		}
		merged++
	}
	return merged, nil
}

func listPeople(ctx context.Context, q querier) ([]model.Person, error) {
	rows, err := q.query(ctx, `SELECT `+personColumns+` FROM people ORDER BY created_at, id`)
	if err != nil {
		return nil, eris.Wrap(err, "list people")
	}
	defer rows.Close()

	var out []model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, eris.Wrap(err, "list people: scan")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "list people: iterate")
}

func listCompanies(ctx context.Context, q querier, query string, args ...any) ([]model.Company, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "list companies")
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, eris.Wrap(err, "list companies: scan")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "list companies: iterate")
}
