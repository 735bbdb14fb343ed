package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/dedupe"
	"github.com/sells-group/leads-cli/internal/extract"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/search"
	"github.com/sells-group/leads-cli/internal/store"
)

type fakeSearch struct {
	items []model.SearchItem
	err   error

	query string
	limit int
}

func (f *fakeSearch) Search(_ context.Context, query string, limit int) ([]model.SearchItem, error) {
	f.query, f.limit = query, limit
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func factory(p search.Provider, used *string) ProviderFactory {
	return func(_ context.Context, name string) (search.Provider, error) {
		if used != nil {
			*used = name
		}
		return p, nil
	}
}

func resultItems() []model.SearchItem {
	return []model.SearchItem{
		{
			URL:     "https://de.linkedin.com/in/Jane-Doe/?trk=public_profile",
			Title:   "Jane Doe - CTO at Acme GmbH | LinkedIn",
			Snippet: "Location: Berlin · 500+ connections",
		},
		{URL: "https://www.linkedin.com/in/jane-doe", Title: "Jane Doe | LinkedIn"},
		{URL: "https://www.linkedin.com/company/acme", Title: "Acme GmbH | LinkedIn"},
		{URL: "https://linkedin.com/in/max", Title: ""},
		{URL: "https://linkedin.com/in/john-roe", Title: "John Roe - Engineer - Acme GmbH | LinkedIn"},
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func newIngestor(st store.Store, p search.Provider, used *string) *Ingestor {
	ing := NewIngestor(st, factory(p, used), extract.New(nil), Config{
		DefaultSource: "linkedin_people_google",
		MaxResults:    10,
		PhoneRegion:   "DE",
	})
	ing.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return ing
}

func TestIngestor_Run(t *testing.T) {
	st := newTestStore(t)
	fs := &fakeSearch{items: resultItems()}
	var used string
	ing := newIngestor(st, fs, &used)

	res, err := ing.Run(context.Background(), IngestOptions{Terms: []string{"CTO", " Berlin ", ""}, WriteDB: true})
	require.NoError(t, err)

	assert.Equal(t, "google", used)
	assert.Equal(t, `site:linkedin.com/in "CTO" "Berlin"`, fs.query)
	assert.Equal(t, 10, fs.limit)
	assert.Equal(t, "linkedin_people_google", res.Source)
	assert.Equal(t, 5, res.Found)

	require.Len(t, res.Kept, 2)
	jane := res.Kept[0]
	assert.Equal(t, "https://linkedin.com/in/jane-doe", jane.ProfileURL)
	assert.Equal(t, "CTO", jane.Title)
	assert.Equal(t, "Berlin", jane.Location)
	assert.Equal(t, "linkedin_people_google", jane.SourceName)
	assert.Equal(t, fs.query, jane.SourceQuery)
	assert.Equal(t, "2026-03-14", jane.LookupDate)
	assert.Equal(t, "https://linkedin.com/in/john-roe", res.Kept[1].ProfileURL)

	kinds := map[dedupe.ReasonKind]int{}
	for _, r := range res.Rejected {
		kinds[r.Reason.Kind]++
	}
	assert.Equal(t, map[dedupe.ReasonKind]int{
		dedupe.ReasonDuplicateOf:        1,
		dedupe.ReasonNormalizationError: 1,
		dedupe.ReasonMissingField:       1,
	}, kinds)

	require.Len(t, res.Companies, 1)
	assert.Equal(t, "GmbH", res.Companies[0].LegalForm)

	require.NotNil(t, res.Report)
	assert.NotEmpty(t, res.Report.QueryID)
	assert.Equal(t, 2, res.Report.People.Inserted)
	assert.Equal(t, 1, res.Report.Companies.Inserted)

	view, err := st.PersonByURL(context.Background(), "https://www.linkedin.com/in/jane-doe/")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, res.Companies[0].Name, view.CompanyName)
}

func TestIngestor_Run_ReusesQuery(t *testing.T) {
	st := newTestStore(t)
	ing := newIngestor(st, &fakeSearch{items: resultItems()}, nil)

	first, err := ing.Run(context.Background(), IngestOptions{Query: `site:linkedin.com/in "CTO"`, WriteDB: true})
	require.NoError(t, err)
	second, err := ing.Run(context.Background(), IngestOptions{Query: `  site:linkedin.com/in   "cto" `, WriteDB: true})
	require.NoError(t, err)

	assert.Equal(t, first.Report.QueryID, second.Report.QueryID)
	assert.Equal(t, 0, second.Report.People.Inserted)
	assert.Equal(t, 2, second.Report.People.Skipped)
}

func TestIngestor_Run_DryRun(t *testing.T) {
	st := newTestStore(t)
	ing := newIngestor(st, &fakeSearch{items: resultItems()}, nil)

	res, err := ing.Run(context.Background(), IngestOptions{Query: "CTO Berlin", Limit: 3})
	require.NoError(t, err)
	assert.Nil(t, res.Report)
	assert.Len(t, res.Kept, 2)

	people, err := st.RecentPeople(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestIngestor_Run_SearchFailure(t *testing.T) {
	st := newTestStore(t)
	fs := &fakeSearch{err: eris.Wrap(model.ErrSearchUnavailable, "google: page at 1")}
	ing := newIngestor(st, fs, nil)

	_, err := ing.Run(context.Background(), IngestOptions{Terms: []string{"CTO"}, WriteDB: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrSearchUnavailable))

	people, err := st.RecentPeople(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestIngestor_Run_SourceSelectsProvider(t *testing.T) {
	var used string
	ing := newIngestor(nil, &fakeSearch{}, &used)

	res, err := ing.Run(context.Background(), IngestOptions{Terms: []string{"CTO"}, Source: "linkedin_people_jina"})
	require.NoError(t, err)
	assert.Equal(t, "jina", used)
	assert.Equal(t, 0, res.Found)
}

func TestIngestor_Run_Errors(t *testing.T) {
	ing := newIngestor(nil, &fakeSearch{items: resultItems()}, nil)

	_, err := ing.Run(context.Background(), IngestOptions{Terms: []string{" "}})
	require.Error(t, err)

	_, err = ing.Run(context.Background(), IngestOptions{Terms: []string{"CTO"}, Source: "xing_people"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")

	_, err = ing.Run(context.Background(), IngestOptions{Terms: []string{"CTO"}, WriteDB: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a store")
}

func TestIngestor_Run_RequiredFields(t *testing.T) {
	ing := newIngestor(nil, &fakeSearch{items: resultItems()}, nil)

	res, err := ing.Run(context.Background(), IngestOptions{
		Terms:          []string{"CTO"},
		RequiredFields: []string{"name", "profile_url", "location"},
	})
	require.NoError(t, err)
	require.Len(t, res.Kept, 1)
	assert.Equal(t, "https://linkedin.com/in/jane-doe", res.Kept[0].ProfileURL)
}

func TestIngestor_IngestProfiles(t *testing.T) {
	st := newTestStore(t)
	ing := newIngestor(st, nil, nil)

	raws := []model.RawProfile{
		{Name: "Erika Muster", ProfileURL: "linkedin.com/in/erika", Company: "Beta AG", CompanyDomain: "beta.de"},
		{Name: "Otto Normal", ProfileURL: "https://linkedin.com/in/otto", SourceName: "linkedin_people_google", SourceQuery: "q"},
	}
	res, err := ing.IngestProfiles(context.Background(), raws, "", "profiles.json", IngestOptions{WriteDB: true})
	require.NoError(t, err)
	require.Len(t, res.Kept, 2)
	assert.Equal(t, ImportSource, res.Kept[0].SourceName)
	assert.Equal(t, "profiles.json", res.Kept[0].SourceQuery)
	assert.Equal(t, "linkedin_people_google", res.Kept[1].SourceName)
	assert.Equal(t, 2, res.Report.People.Inserted)
	assert.Equal(t, 1, res.Report.Companies.Inserted)

	view, err := st.PersonByURL(context.Background(), "https://linkedin.com/in/erika")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "beta.de", view.CompanyDomain)
}

func TestDistinctCompanies(t *testing.T) {
	acme := &model.Company{Name: "Acme", Domain: "acme.de"}
	acmeAgain := &model.Company{Name: "Acme", Domain: "acme.de", LegalForm: "GmbH"}
	beta := &model.Company{Name: "Beta"}

	got := distinctCompanies([]model.Person{
		{Company: acme},
		{},
		{Company: beta},
		{Company: acmeAgain},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "acme.de", got[0].Domain)
	assert.Equal(t, "GmbH", got[0].LegalForm)
	assert.Equal(t, "Beta", got[1].Name)
	assert.Empty(t, acme.LegalForm)
}
