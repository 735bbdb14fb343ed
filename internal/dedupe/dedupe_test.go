package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/model"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestValidateAndDedupe_EndToEnd(t *testing.T) {
	candidates := []model.RawProfile{
		{Name: "Jane Doe", ProfileURL: "https://www.linkedin.com/in/JaneDoe/", Email: "jane@acme.de", Title: "CEO"},
		{Name: "Jane Doe", ProfileURL: "http://linkedin.com/in/janedoe", Location: "Berlin", Title: "CEO"},
		{ProfileURL: "https://linkedin.com/in/nobody"},
	}

	res := ValidateAndDedupe(candidates, []string{"name", "profile_url"}, now, Options{})

	require.Len(t, res.Kept, 1)
	assert.Equal(t, "https://linkedin.com/in/janedoe", res.Kept[0].ProfileURL)
	assert.Equal(t, "jane@acme.de", res.Kept[0].Email)

	require.Len(t, res.Rejected, 2)
	assert.Equal(t, MissingField("name"), res.Rejected[0].Reason)
	assert.Equal(t, candidates[2], res.Rejected[0].Raw)
	assert.Equal(t, DuplicateOf("https://linkedin.com/in/janedoe"), res.Rejected[1].Reason)
	assert.Equal(t, candidates[1], res.Rejected[1].Raw)
}

func TestValidateAndDedupe_KeepsMostComplete(t *testing.T) {
	candidates := []model.RawProfile{
		{Name: "Jane Doe", ProfileURL: "https://linkedin.com/in/jane"},
		{Name: "Jane Doe", ProfileURL: "https://linkedin.com/in/jane/", Email: "jane@acme.de"},
	}
	res := ValidateAndDedupe(candidates, nil, now, Options{})

	require.Len(t, res.Kept, 1)
	assert.Equal(t, "jane@acme.de", res.Kept[0].Email)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, ReasonDuplicateOf, res.Rejected[0].Reason.Kind)
	assert.Equal(t, candidates[0], res.Rejected[0].Raw)
}

func TestValidateAndDedupe_TieGoesToFirstSeen(t *testing.T) {
	candidates := []model.RawProfile{
		{Name: "First", ProfileURL: "https://linkedin.com/in/x", Email: "first@x.com"},
		{Name: "Second", ProfileURL: "https://linkedin.com/in/X", Location: "Hamburg"},
	}
	res := ValidateAndDedupe(candidates, nil, now, Options{})
	require.Len(t, res.Kept, 1)
	assert.Equal(t, "First", res.Kept[0].FirstName)
}

func TestValidateAndDedupe_Order(t *testing.T) {
	candidates := []model.RawProfile{
		{Name: "B One", ProfileURL: "https://linkedin.com/in/b"},
		{Name: "A One", ProfileURL: "https://linkedin.com/in/a"},
		{Name: "B Two", ProfileURL: "https://linkedin.com/in/b", Email: "b@b.com"},
		{Name: "C One", ProfileURL: "https://linkedin.com/in/c"},
	}
	res := ValidateAndDedupe(candidates, nil, now, Options{})

	var keys []string
	for _, p := range res.Kept {
		keys = append(keys, p.ProfileURL)
	}
	assert.Equal(t, []string{
		"https://linkedin.com/in/b",
		"https://linkedin.com/in/a",
		"https://linkedin.com/in/c",
	}, keys)
	assert.Equal(t, "B", res.Kept[0].FirstName)
	assert.Equal(t, "Two", res.Kept[0].LastName)
}

func TestValidateAndDedupe_NormalizationError(t *testing.T) {
	candidates := []model.RawProfile{
		{Name: "Acme", ProfileURL: "https://linkedin.com/company/acme"},
	}
	res := ValidateAndDedupe(candidates, nil, now, Options{})
	assert.Empty(t, res.Kept)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, ReasonNormalizationError, res.Rejected[0].Reason.Kind)
	assert.Contains(t, res.Rejected[0].Reason.String(), "NormalizationError")
}

func TestValidateAndDedupe_RequiredFields(t *testing.T) {
	candidates := []model.RawProfile{
		{Name: "Jane", ProfileURL: "https://linkedin.com/in/jane", Summary: "   "},
		{Name: "John", ProfileURL: "https://linkedin.com/in/john", Summary: "Sales lead"},
	}
	res := ValidateAndDedupe(candidates, []string{"name", "profile_url", "summary"}, now, Options{})
	require.Len(t, res.Kept, 1)
	assert.Equal(t, "John", res.Kept[0].FirstName)
	assert.Equal(t, `MissingField("summary")`, res.Rejected[0].Reason.String())

	res = ValidateAndDedupe(candidates[:1], []string{"shoe_size"}, now, Options{})
	assert.Empty(t, res.Kept)
	assert.Equal(t, MissingField("shoe_size"), res.Rejected[0].Reason)
}

func TestValidateAndDedupe_Deterministic(t *testing.T) {
	candidates := []model.RawProfile{
		{Name: "Jane Doe", ProfileURL: "https://linkedin.com/in/jane", Email: "j@x.io"},
		{Name: "Jane Doe", ProfileURL: "https://de.linkedin.com/in/jane", Location: "Köln", Title: "CFO"},
		{Name: "Max", ProfileURL: "bad"},
	}
	first := ValidateAndDedupe(candidates, nil, now, Options{})
	second := ValidateAndDedupe(candidates, nil, now, Options{})
	assert.Equal(t, first, second)
	assert.Equal(t, "CFO", first.Kept[0].Title)
}

func TestCompleteness(t *testing.T) {
	n := 3
	assert.Equal(t, 0, Completeness(model.Person{FirstName: "x"}))
	assert.Equal(t, 3, Completeness(model.Person{Email: "a@b.c", Connections: &n, Company: &model.Company{Name: "Acme"}}))
}
