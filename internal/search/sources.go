package search

import (
	"maps"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

// Source is a named search recipe: what entity it finds, which site it is
// restricted to and which backend runs it. Source names are stored as
// provenance on every record.
type Source struct {
	Name       string
	EntityType string
	Site       string
	Provider   string
}

var sources = map[string]Source{
	"linkedin_people_google": {
		Name:       "linkedin_people_google",
		EntityType: model.EntityPerson,
		Site:       "linkedin.com/in",
		Provider:   "google",
	},
	"linkedin_people_jina": {
		Name:       "linkedin_people_jina",
		EntityType: model.EntityPerson,
		Site:       "linkedin.com/in",
		Provider:   "jina",
	},
}

// LookupSource returns the registered source with the given name.
func LookupSource(name string) (Source, error) {
	s, ok := sources[name]
	if !ok {
		return Source{}, eris.Errorf("search: unknown source %q (available: %v)", name, SourceNames())
	}
	return s, nil
}

// DefaultSource returns the people source backed by provider.
func DefaultSource(provider string) string {
	for _, name := range SourceNames() {
		if s := sources[name]; s.Provider == provider && s.EntityType == model.EntityPerson {
			return name
		}
	}
	return "linkedin_people_google"
}

// SourceNames lists registered source names in sorted order.
func SourceNames() []string {
	return slices.Sorted(maps.Keys(sources))
}

// Query builds the query text for terms under this source.
func (s Source) Query(terms []string) string {
	return BuildQuery(s.Site, terms)
}
