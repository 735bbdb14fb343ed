package model

import (
	"slices"
	"time"
)

// Company is an enrichment target. Domain is the unique key when known; a
// company without one is keyed by name until a later merge finds it a domain.
type Company struct {
	ID             string     `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Domain         string     `json:"domain,omitempty" db:"domain"`
	Website        string     `json:"website,omitempty" db:"website"`
	LegalForm      string     `json:"legal_form,omitempty" db:"legal_form"`
	Industries     []string   `json:"industries,omitempty" db:"industries_json"`
	Locations      []string   `json:"locations,omitempty" db:"locations_json"`
	Multinational  *bool      `json:"multinational,omitempty" db:"multinational"`
	SizeEmployees  string     `json:"size_employees,omitempty" db:"size_employees"`
	BusinessModel  []string   `json:"business_model,omitempty" db:"business_model_json"`
	Products       []string   `json:"products,omitempty" db:"products_json"`
	RecentNews     []string   `json:"recent_news,omitempty" db:"recent_news_json"`
	LastEnrichedAt *time.Time `json:"last_enriched_at,omitempty" db:"last_enriched_at"`
	SearchQueryID  string     `json:"search_query_id,omitempty" db:"search_query_id"`
	SourceName     string     `json:"source_name,omitempty" db:"source_name"`
	SourceQuery    string     `json:"source_query,omitempty" db:"source_query"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Key returns the domain when known, otherwise the name.
func (c Company) Key() string {
	if c.Domain != "" {
		return c.Domain
	}
	return c.Name
}

// Merge applies the discovery fields of in onto c using the same
// non-null-preserving rule as Person.Merge. A domain is only adopted when c
// has none.
func (c *Company) Merge(in Company) bool {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&c.Name, in.Name)
	set(&c.Website, in.Website)
	set(&c.LegalForm, in.LegalForm)
	set(&c.SizeEmployees, in.SizeEmployees)
	if c.Domain == "" && in.Domain != "" {
		c.Domain = in.Domain
		changed = true
	}
	setList := func(dst *[]string, v []string) {
		if len(v) > 0 && !slices.Equal(*dst, v) {
			*dst = slices.Clone(v)
			changed = true
		}
	}
	setList(&c.Industries, in.Industries)
	setList(&c.Locations, in.Locations)
	setList(&c.BusinessModel, in.BusinessModel)
	setList(&c.Products, in.Products)
	setList(&c.RecentNews, in.RecentNews)
	if in.Multinational != nil && (c.Multinational == nil || *c.Multinational != *in.Multinational) {
		v := *in.Multinational
		c.Multinational = &v
		changed = true
	}
	return changed
}

// Enrichment is the normalized result of a structured-research call, ready
// to be written onto an existing company row.
type Enrichment struct {
	LegalForm     string   `json:"legal_form,omitempty"`
	Website       string   `json:"website,omitempty"`
	Domain        string   `json:"domain,omitempty"`
	SizeEmployees string   `json:"size_employees,omitempty"`
	Industries    []string `json:"industries,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	Multinational *bool    `json:"multinational,omitempty"`
	BusinessModel []string `json:"business_model,omitempty"`
	Products      []string `json:"products,omitempty"`
	RecentNews    []string `json:"recent_news,omitempty"`
}

// Apply writes e onto c. Unlike discovery merges, enrichment replaces the
// enrichment fields it carries; empty values leave the stored value alone.
// The domain is handled by the store since it may collide with another row.
func (e Enrichment) Apply(c *Company, at time.Time) {
	c.Merge(Company{
		LegalForm:     e.LegalForm,
		Website:       e.Website,
		SizeEmployees: e.SizeEmployees,
		Industries:    e.Industries,
		Locations:     e.Locations,
		Multinational: e.Multinational,
		BusinessModel: e.BusinessModel,
		Products:      e.Products,
		RecentNews:    e.RecentNews,
	})
	t := at.UTC()
	c.LastEnrichedAt = &t
}

// Absorb fills the empty fields of c from a duplicate row.
func (c *Company) Absorb(dup Company) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&c.Website, dup.Website)
	fill(&c.LegalForm, dup.LegalForm)
	fill(&c.SizeEmployees, dup.SizeEmployees)
	fill(&c.SearchQueryID, dup.SearchQueryID)
	fill(&c.SourceName, dup.SourceName)
	fill(&c.SourceQuery, dup.SourceQuery)
	fillList := func(dst *[]string, v []string) {
		if len(*dst) == 0 && len(v) > 0 {
			*dst = slices.Clone(v)
		}
	}
	fillList(&c.Industries, dup.Industries)
	fillList(&c.Locations, dup.Locations)
	fillList(&c.BusinessModel, dup.BusinessModel)
	fillList(&c.Products, dup.Products)
	fillList(&c.RecentNews, dup.RecentNews)
	if c.Multinational == nil && dup.Multinational != nil {
		v := *dup.Multinational
		c.Multinational = &v
	}
	if c.LastEnrichedAt == nil && dup.LastEnrichedAt != nil {
		t := *dup.LastEnrichedAt
		c.LastEnrichedAt = &t
	}
}
