// Package enrich fills in company facts from a structured-research
// provider and merges them into the store.
package enrich

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/canon"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/normalize"
	"github.com/sells-group/leads-cli/internal/prompts"
)

// wirePayload is the exact key set a provider may send. Locations_Germany
// is accepted as an older name for Locations.
type wirePayload struct {
	Company          *string   `json:"Company"`
	LegalForm        *string   `json:"Legal_Form"`
	Industries       []string  `json:"Industries"`
	Locations        []string  `json:"Locations"`
	LocationsGermany []string  `json:"Locations_Germany"`
	Multinational    *bool     `json:"Multinational"`
	Website          *string   `json:"Website"`
	SizeEmployees    sizeValue `json:"Size_Employees"`
	BusinessModel    []string  `json:"Business_Model_Key_Points"`
	ProductsServices []string  `json:"Products_and_Services"`
	RecentNews       []string  `json:"Recent_News"`
}

// sizeValue accepts an employee count as a number, a bucket string or null.
type sizeValue string

func (s *sizeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = sizeValue(strings.TrimSpace(v))
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return eris.Errorf("Size_Employees must be a number, string or null, got %s", data)
		}
		*s = sizeValue(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

// ParsePayload decodes a provider reply. The JSON object may be wrapped in
// markdown fences or prose. Unknown keys, wrong types and a missing Company
// wrap model.ErrEnrichmentSchema.
func ParsePayload(raw []byte) (*model.EnrichmentPayload, error) {
	body, ok := prompts.ExtractJSON(string(raw))
	if !ok {
		return nil, eris.Wrap(model.ErrEnrichmentSchema, "enrich: no JSON object in payload")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	var w wirePayload
	if err := dec.Decode(&w); err != nil {
		return nil, eris.Wrapf(model.ErrEnrichmentSchema, "enrich: decode payload: %v", err)
	}
	if w.Company == nil || strings.TrimSpace(*w.Company) == "" {
		return nil, eris.Wrap(model.ErrEnrichmentSchema, "enrich: payload has no Company")
	}

	locations := w.Locations
	if len(locations) == 0 {
		locations = w.LocationsGermany
	}
	return &model.EnrichmentPayload{
		Company:          strings.TrimSpace(*w.Company),
		LegalForm:        w.LegalForm,
		Industries:       w.Industries,
		Locations:        locations,
		Multinational:    w.Multinational,
		Website:          w.Website,
		SizeEmployees:    string(w.SizeEmployees),
		BusinessModel:    w.BusinessModel,
		ProductsServices: w.ProductsServices,
		RecentNews:       w.RecentNews,
	}, nil
}

// ToEnrichment normalizes a payload for the stored company named
// companyName. A legal form found in the stored name wins over the
// provider's; the website's apex becomes the candidate domain.
func ToEnrichment(p *model.EnrichmentPayload, companyName string) model.Enrichment {
	legal := normalize.DeriveLegalForm(companyName, deref(p.LegalForm))
	if legal == "" {
		legal = normalize.LegalForm(p.Company)
	}

	website := canon.WebsiteURL(deref(p.Website))
	var multinational *bool
	if p.Multinational != nil {
		v := *p.Multinational
		multinational = &v
	}

	return model.Enrichment{
		LegalForm:     legal,
		Website:       website,
		Domain:        canon.ExtractApexDomain(website),
		SizeEmployees: strings.TrimSpace(p.SizeEmployees),
		Industries:    cleanList(p.Industries),
		Locations:     cleanList(p.Locations),
		Multinational: multinational,
		BusinessModel: cleanList(p.BusinessModel),
		Products:      cleanList(p.ProductsServices),
		RecentNews:    cleanList(p.RecentNews),
	}
}

// cleanList trims entries, collapses whitespace and drops blanks and
// case-insensitive repeats, keeping first-seen order.
func cleanList(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.Join(strings.Fields(s), " ")
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
