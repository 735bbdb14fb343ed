package model

import "strings"

// Raw field names accepted in required-field lists.
const (
	FieldName        = "name"
	FieldProfileURL  = "profile_url"
	FieldTitle       = "title"
	FieldCompany     = "company"
	FieldLocation    = "location"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldWebsite     = "website"
	FieldSummary     = "summary"
	FieldConnections = "connections"
	FieldFollowers   = "followers"
)

// SearchItem is one ordered result returned by a search provider.
type SearchItem struct {
	URL     string            `json:"url"`
	Title   string            `json:"title"`
	Snippet string            `json:"snippet"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// RawProfile is an untyped-at-the-edges candidate produced by extraction.
// Every field is optional until validation; nothing past the normalizer
// reads a RawProfile.
type RawProfile struct {
	Name          string `json:"name,omitempty"`
	ProfileURL    string `json:"profile_url,omitempty"`
	Title         string `json:"title,omitempty"`
	Company       string `json:"company,omitempty"`
	CompanyDomain string `json:"company_domain,omitempty"`
	Location      string `json:"location,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Website       string `json:"website,omitempty"`
	Connections   string `json:"connections,omitempty"`
	Followers     string `json:"followers,omitempty"`
	Summary       string `json:"summary,omitempty"`
	LookupDate    string `json:"lookup_date,omitempty"`
	SourceName    string `json:"source_name,omitempty"`
	SourceQuery   string `json:"source_query,omitempty"`
}

// Field returns the trimmed value of the named raw field and whether the
// name is known.
func (r RawProfile) Field(name string) (string, bool) {
	var v string
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FieldName:
		v = r.Name
	case FieldProfileURL, "url", "linkedin_profile":
		v = r.ProfileURL
	case FieldTitle:
		v = r.Title
	case FieldCompany:
		v = r.Company
	case FieldLocation:
		v = r.Location
	case FieldEmail:
		v = r.Email
	case FieldPhone:
		v = r.Phone
	case FieldWebsite:
		v = r.Website
	case FieldSummary:
		v = r.Summary
	case FieldConnections:
		v = r.Connections
	case FieldFollowers:
		v = r.Followers
	default:
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Extraction is the best-effort structured guess returned by an extraction
// assistant. Any field may be empty.
type Extraction struct {
	Name            string `json:"name"`
	CurrentTitle    string `json:"current_position"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	FollowerCount   string `json:"follower_count"`
	ConnectionCount string `json:"connection_count"`
}
