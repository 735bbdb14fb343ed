package model

import (
	"strings"
	"time"
)

// Person is a discovered profile keyed by its canonical profile URL.
type Person struct {
	ID               string    `json:"id" db:"id"`
	ProfileURL       string    `json:"profile_url" db:"linkedin_profile"`
	FirstName        string    `json:"first_name,omitempty" db:"first_name"`
	LastName         string    `json:"last_name,omitempty" db:"last_name"`
	Title            string    `json:"title,omitempty" db:"title_current"`
	Location         string    `json:"location,omitempty" db:"location_text"`
	Email            string    `json:"email,omitempty" db:"email"`
	Phone            string    `json:"phone,omitempty" db:"phone_info"`
	Website          string    `json:"website,omitempty" db:"website_info"`
	Connections      *int      `json:"connections,omitempty" db:"connections_linkedin"`
	ConnectionsFloor bool      `json:"connections_floor,omitempty" db:"connections_floor"`
	Followers        *int      `json:"followers,omitempty" db:"followers_linkedin"`
	FollowersFloor   bool      `json:"followers_floor,omitempty" db:"followers_floor"`
	Summary          string    `json:"summary,omitempty" db:"info_raw"`
	LookupDate       string    `json:"lookup_date" db:"lookup_date"`
	CompanyID        string    `json:"company_id,omitempty" db:"company_id"`
	SearchQueryID    string    `json:"search_query_id,omitempty" db:"search_query_id"`
	SourceName       string    `json:"source_name,omitempty" db:"source_name"`
	SourceQuery      string    `json:"source_query,omitempty" db:"source_query"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`

	// Company is the employer guess carried from extraction to the link
	// step. It is not a stored column.
	Company *Company `json:"company,omitempty" db:"-"`
}

// FullName joins first and last name.
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Merge applies incoming onto p without ever clearing a populated field.
// Non-empty incoming values win. The lookup date is only filled when p has
// none, and query attribution and provenance are never touched. It reports
// whether anything changed.
func (p *Person) Merge(in Person) bool {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&p.FirstName, in.FirstName)
	set(&p.LastName, in.LastName)
	set(&p.Title, in.Title)
	set(&p.Location, in.Location)
	set(&p.Email, in.Email)
	set(&p.Phone, in.Phone)
	set(&p.Website, in.Website)
	set(&p.Summary, in.Summary)
	set(&p.CompanyID, in.CompanyID)

	if in.Connections != nil && (p.Connections == nil || *p.Connections != *in.Connections || p.ConnectionsFloor != in.ConnectionsFloor) {
		v := *in.Connections
		p.Connections = &v
		p.ConnectionsFloor = in.ConnectionsFloor
		changed = true
	}
	if in.Followers != nil && (p.Followers == nil || *p.Followers != *in.Followers || p.FollowersFloor != in.FollowersFloor) {
		v := *in.Followers
		p.Followers = &v
		p.FollowersFloor = in.FollowersFloor
		changed = true
	}

	if p.LookupDate == "" && in.LookupDate != "" {
		p.LookupDate = in.LookupDate
		changed = true
	}
	return changed
}

// PersonView is one row of the joined people-with-company view.
type PersonView struct {
	Person
	CompanyName           string     `json:"company_name,omitempty" db:"company_name"`
	CompanyDomain         string     `json:"company_domain,omitempty" db:"company_domain"`
	CompanyLegalForm      string     `json:"company_legal_form,omitempty" db:"company_legal_form"`
	CompanyIndustries     []string   `json:"company_industries,omitempty" db:"company_industries_json"`
	CompanyLastEnrichedAt *time.Time `json:"company_last_enriched_at,omitempty" db:"company_last_enriched_at"`
}

// Absorb fills the empty fields of p from a duplicate row. Populated fields
// of p win. The earlier lookup date is kept.
func (p *Person) Absorb(dup Person) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&p.FirstName, dup.FirstName)
	fill(&p.LastName, dup.LastName)
	fill(&p.Title, dup.Title)
	fill(&p.Location, dup.Location)
	fill(&p.Email, dup.Email)
	fill(&p.Phone, dup.Phone)
	fill(&p.Website, dup.Website)
	fill(&p.Summary, dup.Summary)
	fill(&p.CompanyID, dup.CompanyID)
	fill(&p.SearchQueryID, dup.SearchQueryID)
	fill(&p.SourceName, dup.SourceName)
	fill(&p.SourceQuery, dup.SourceQuery)
	if p.Connections == nil && dup.Connections != nil {
		v := *dup.Connections
		p.Connections, p.ConnectionsFloor = &v, dup.ConnectionsFloor
	}
	if p.Followers == nil && dup.Followers != nil {
		v := *dup.Followers
		p.Followers, p.FollowersFloor = &v, dup.FollowersFloor
	}
	if dup.LookupDate != "" && (p.LookupDate == "" || dup.LookupDate < p.LookupDate) {
		p.LookupDate = dup.LookupDate
	}
}
