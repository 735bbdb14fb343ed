package enrich

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/model"
)

const acmePayload = `{
  "Company": "Acme GmbH",
  "Legal_Form": "Aktiengesellschaft",
  "Industries": [" Robotics ", "robotics", "", "Industrial  Automation"],
  "Locations": ["Berlin", "München"],
  "Multinational": true,
  "Website": "www.acme.de/?utm_source=x",
  "Size_Employees": 250,
  "Business_Model_Key_Points": ["B2B"],
  "Products_and_Services": ["Welding robots"],
  "Recent_News": []
}`

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload([]byte(acmePayload))
	require.NoError(t, err)
	assert.Equal(t, "Acme GmbH", p.Company)
	require.NotNil(t, p.LegalForm)
	assert.Equal(t, "Aktiengesellschaft", *p.LegalForm)
	assert.Equal(t, []string{"Berlin", "München"}, p.Locations)
	require.NotNil(t, p.Multinational)
	assert.True(t, *p.Multinational)
	assert.Equal(t, "250", p.SizeEmployees)
	assert.Empty(t, p.RecentNews)
}

func TestParsePayload_Wrapped(t *testing.T) {
	raw := "Here is the research:\n```json\n{\"Company\": \"Acme\", \"Industries\": [\"AI\"]}\n```\nLet me know."
	p, err := ParsePayload([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, []string{"AI"}, p.Industries)
}

func TestParsePayload_LocationsAlias(t *testing.T) {
	p, err := ParsePayload([]byte(`{"Company": "Acme", "Locations_Germany": ["Hamburg"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hamburg"}, p.Locations)
}

func TestParsePayload_Size(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"Company": "A", "Size_Employees": 1200}`, "1200"},
		{`{"Company": "A", "Size_Employees": "51-200"}`, "51-200"},
		{`{"Company": "A", "Size_Employees": " 10 "}`, "10"},
		{`{"Company": "A", "Size_Employees": null}`, ""},
		{`{"Company": "A"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p, err := ParsePayload([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.SizeEmployees)
		})
	}
}

func TestParsePayload_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown key", `{"Company": "Acme", "CEO": "Jane"}`},
		{"list as string", `{"Company": "Acme", "Industries": "Robotics"}`},
		{"bool as string", `{"Company": "Acme", "Multinational": "yes"}`},
		{"size as bool", `{"Company": "Acme", "Size_Employees": true}`},
		{"missing company", `{"Industries": []}`},
		{"blank company", `{"Company": "  "}`},
		{"no json", `I could not find this company.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrEnrichmentSchema), err.Error())
		})
	}
}

func TestToEnrichment(t *testing.T) {
	p, err := ParsePayload([]byte(acmePayload))
	require.NoError(t, err)

	en := ToEnrichment(p, "Acme GmbH")
	assert.Equal(t, "GmbH", en.LegalForm, "legal form in the stored name wins")
	assert.Equal(t, "https://www.acme.de", en.Website)
	assert.Equal(t, "acme.de", en.Domain)
	assert.Equal(t, "250", en.SizeEmployees)
	assert.Equal(t, []string{"Robotics", "Industrial Automation"}, en.Industries)
	assert.Equal(t, []string{"Welding robots"}, en.Products)
	assert.Nil(t, en.RecentNews)
	require.NotNil(t, en.Multinational)
	assert.True(t, *en.Multinational)
}

func TestToEnrichment_LegalFormFallbacks(t *testing.T) {
	ag := "Aktiengesellschaft"
	en := ToEnrichment(&model.EnrichmentPayload{Company: "Acme", LegalForm: &ag}, "Acme")
	assert.Equal(t, "AG", en.LegalForm)

	en = ToEnrichment(&model.EnrichmentPayload{Company: "Acme SE"}, "Acme")
	assert.Equal(t, "SE", en.LegalForm)

	junk := "a company"
	en = ToEnrichment(&model.EnrichmentPayload{Company: "Acme", LegalForm: &junk}, "Acme")
	assert.Empty(t, en.LegalForm)
}

func TestToEnrichment_BadWebsite(t *testing.T) {
	site := "not a website"
	en := ToEnrichment(&model.EnrichmentPayload{Company: "Acme", Website: &site}, "Acme")
	assert.Empty(t, en.Website)
	assert.Empty(t, en.Domain)
}

func TestCleanList(t *testing.T) {
	assert.Nil(t, cleanList(nil))
	assert.Nil(t, cleanList([]string{" ", ""}))
	assert.Equal(t, []string{"AI", "Big Data"}, cleanList([]string{"AI", "ai", " Big\tData "}))
}
