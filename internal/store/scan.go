package store

import (
	"database/sql"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

const personColumns = `id, linkedin_profile, first_name, last_name, title_current, location_text,
	email, phone_info, website_info, connections_linkedin, connections_floor,
	followers_linkedin, followers_floor, info_raw, lookup_date, company_id,
	search_query_id, source_name, source_query, created_at, updated_at`

const companyColumns = `id, name, domain, website, legal_form, industries_json, locations_json,
	multinational, size_employees, business_model_json, products_json, recent_news_json,
	last_enriched_at, search_query_id, source_name, source_query, created_at, updated_at`

const viewColumns = personColumns + `,
	company_name, company_domain, company_legal_form, company_industries_json, company_last_enriched_at`

type personRow struct {
	first, last, title, location, email, phone, website, summary sql.NullString
	lookupDate, companyID, queryID, sourceName, sourceQuery      sql.NullString
	connections, followers                                       sql.NullInt64
}

func (r *personRow) dest(p *model.Person) []any {
	return []any{
		&p.ID, &p.ProfileURL, &r.first, &r.last, &r.title, &r.location,
		&r.email, &r.phone, &r.website, &r.connections, &p.ConnectionsFloor,
		&r.followers, &p.FollowersFloor, &r.summary, &r.lookupDate, &r.companyID,
		&r.queryID, &r.sourceName, &r.sourceQuery, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (r *personRow) fill(p *model.Person) {
	p.FirstName = r.first.String
	p.LastName = r.last.String
	p.Title = r.title.String
	p.Location = r.location.String
	p.Email = r.email.String
	p.Phone = r.phone.String
	p.Website = r.website.String
	p.Summary = r.summary.String
	p.LookupDate = r.lookupDate.String
	p.CompanyID = r.companyID.String
	p.SearchQueryID = r.queryID.String
	p.SourceName = r.sourceName.String
	p.SourceQuery = r.sourceQuery.String
	p.Connections = intPtr(r.connections)
	p.Followers = intPtr(r.followers)
}

func scanPerson(row scannable) (*model.Person, error) {
	var p model.Person
	var r personRow
	if err := row.Scan(r.dest(&p)...); err != nil {
		return nil, err
	}
	r.fill(&p)
	return &p, nil
}

func scanPersonView(row scannable) (*model.PersonView, error) {
	var v model.PersonView
	var r personRow
	var name, domain, legal, industries sql.NullString
	var enriched sql.NullTime

	dest := append(r.dest(&v.Person), &name, &domain, &legal, &industries, &enriched)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	r.fill(&v.Person)
	v.CompanyName = name.String
	v.CompanyDomain = domain.String
	v.CompanyLegalForm = legal.String
	list, err := decodeList(industries)
	if err != nil {
		return nil, eris.Wrap(err, "scan person view")
	}
	v.CompanyIndustries = list
	if enriched.Valid {
		t := enriched.Time
		v.CompanyLastEnrichedAt = &t
	}
	return &v, nil
}

func scanCompany(row scannable) (*model.Company, error) {
	var c model.Company
	var domain, website, legal, size, queryID, sourceName, sourceQuery sql.NullString
	var industries, locations, business, products, news sql.NullString
	var multinational sql.NullBool
	var enriched sql.NullTime

	err := row.Scan(
		&c.ID, &c.Name, &domain, &website, &legal, &industries, &locations,
		&multinational, &size, &business, &products, &news,
		&enriched, &queryID, &sourceName, &sourceQuery, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Domain = domain.String
	c.Website = website.String
	c.LegalForm = legal.String
	c.SizeEmployees = size.String
	c.SearchQueryID = queryID.String
	c.SourceName = sourceName.String
	c.SourceQuery = sourceQuery.String
	if multinational.Valid {
		b := multinational.Bool
		c.Multinational = &b
	}
	if enriched.Valid {
		t := enriched.Time
		c.LastEnrichedAt = &t
	}
	for _, f := range []struct {
		dst *[]string
		src sql.NullString
	}{
		{&c.Industries, industries},
		{&c.Locations, locations},
		{&c.BusinessModel, business},
		{&c.Products, products},
		{&c.RecentNews, news},
	} {
		list, err := decodeList(f.src)
		if err != nil {
			return nil, eris.Wrapf(err, "scan company %s", c.ID)
		}
		*f.dst = list
	}
	return &c, nil
}

func companyArgs(c *model.Company) ([]any, error) {
	lists := make([]any, 0, 5)
	for _, l := range [][]string{c.Industries, c.Locations, c.BusinessModel, c.Products, c.RecentNews} {
		v, err := encodeList(l)
		if err != nil {
			return nil, err
		}
		lists = append(lists, v)
	}
	var enriched any
	if c.LastEnrichedAt != nil {
		enriched = c.LastEnrichedAt.UTC()
	}
	return []any{
		c.ID, c.Name, nullStr(c.Domain), nullStr(c.Website), nullStr(c.LegalForm),
		lists[0], lists[1], nullBool(c.Multinational), nullStr(c.SizeEmployees),
		lists[2], lists[3], lists[4],
		enriched, nullStr(c.SearchQueryID), nullStr(c.SourceName), nullStr(c.SourceQuery),
		c.CreatedAt, c.UpdatedAt,
	}, nil
}

func personArgs(p *model.Person) []any {
	return []any{
		p.ID, p.ProfileURL, nullStr(p.FirstName), nullStr(p.LastName), nullStr(p.Title), nullStr(p.Location),
		nullStr(p.Email), nullStr(p.Phone), nullStr(p.Website), nullInt(p.Connections), p.ConnectionsFloor,
		nullInt(p.Followers), p.FollowersFloor, nullStr(p.Summary), nullStr(p.LookupDate), nullStr(p.CompanyID),
		nullStr(p.SearchQueryID), nullStr(p.SourceName), nullStr(p.SourceQuery), p.CreatedAt, p.UpdatedAt,
	}
}
