package model

import "time"

// Entity types a search query can target.
const (
	EntityPerson  = "person"
	EntityCompany = "company"
)

// SearchQuery is the canonical record of one logical search, reused across
// runs. (Source, EntityType, NormalizedQuery) is unique.
type SearchQuery struct {
	ID              string    `json:"id" db:"id"`
	Source          string    `json:"source" db:"source"`
	EntityType      string    `json:"entity_type" db:"entity_type"`
	QueryText       string    `json:"query_text" db:"query_text"`
	NormalizedQuery string    `json:"normalized_query" db:"normalized_query"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	LastExecutedAt  time.Time `json:"last_executed_at" db:"last_executed_at"`
}

// QueryRef names the search a batch came from. It is resolved to a
// SearchQuery inside the batch's transaction; a zero QueryRef leaves the
// batch unattributed.
type QueryRef struct {
	Source     string
	EntityType string
	Text       string
}

// IsZero reports whether r names no query at all.
func (r QueryRef) IsZero() bool { return r == QueryRef{} }

// Counts tallies the outcome of an upsert pass for one entity kind.
type Counts struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// IngestReport is returned by a batch ingest.
type IngestReport struct {
	QueryID   string `json:"query_id,omitempty"`
	People    Counts `json:"people"`
	Companies Counts `json:"companies"`
}

// MergeReport is returned by a duplicate merge pass.
type MergeReport struct {
	PeopleMerged    int `json:"people_merged"`
	CompaniesMerged int `json:"companies_merged"`
}
