package model

// EnrichmentPayload is the structured-research reply for one company, as
// returned by a provider before normalization. Nil pointers mean the
// provider sent null or omitted the key.
type EnrichmentPayload struct {
	Company          string   `json:"Company"`
	LegalForm        *string  `json:"Legal_Form"`
	Industries       []string `json:"Industries"`
	Locations        []string `json:"Locations"`
	Multinational    *bool    `json:"Multinational"`
	Website          *string  `json:"Website"`
	SizeEmployees    string   `json:"Size_Employees"`
	BusinessModel    []string `json:"Business_Model_Key_Points"`
	ProductsServices []string `json:"Products_and_Services"`
	RecentNews       []string `json:"Recent_News"`
}

// EnrichReport summarizes one enrichment batch.
type EnrichReport struct {
	Selected int `json:"selected"`
	Enriched int `json:"enriched"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}
