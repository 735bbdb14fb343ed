package normalize

import (
	"regexp"
	"strings"
)

type legalPattern struct {
	re    *regexp.Regexp
	canon string
}

// suffixPattern matches a legal form at the end of a company name.
func suffixPattern(expr, canon string) legalPattern {
	return legalPattern{
		re:    regexp.MustCompile(`(?i)(?:^|[\s,])` + expr + `\.?$`),
		canon: canon,
	}
}

// Compound forms are checked before their components.
var nameSuffixes = []legalPattern{
	suffixPattern(`gmbh\s*&\s*co\.?\s*kgaa`, "GmbH & Co. KGaA"),
	suffixPattern(`gmbh\s*&\s*co\.?\s*kg`, "GmbH & Co. KG"),
	suffixPattern(`ag\s*&\s*co\.?\s*kg`, "AG & Co. KG"),
	suffixPattern(`se\s*&\s*co\.?\s*kg`, "SE & Co. KG"),
	suffixPattern(`ug\s*\(haftungsbeschränkt\)\s*&\s*co\.?\s*kg`, "UG & Co. KG"),
	suffixPattern(`ug\s*&\s*co\.?\s*kg`, "UG & Co. KG"),
	suffixPattern(`kgaa`, "KGaA"),
	suffixPattern(`ggmbh`, "gGmbH"),
	suffixPattern(`gmbh`, "GmbH"),
	suffixPattern(`ug\s*\(haftungsbeschränkt\)`, "UG"),
	suffixPattern(`ug`, "UG"),
	suffixPattern(`ohg`, "OHG"),
	suffixPattern(`kg`, "KG"),
	suffixPattern(`ag`, "AG"),
	suffixPattern(`se`, "SE"),
	suffixPattern(`e\.\s?k`, "e.K."),
	suffixPattern(`e\.\s?v`, "e.V."),
	suffixPattern(`eg`, "eG"),
	suffixPattern(`plc`, "PLC"),
	suffixPattern(`llp`, "LLP"),
	suffixPattern(`llc`, "LLC"),
	suffixPattern(`ltd`, "Ltd"),
	suffixPattern(`limited`, "Ltd"),
	suffixPattern(`inc`, "Inc"),
	suffixPattern(`incorporated`, "Inc"),
	suffixPattern(`corp`, "Corp"),
	suffixPattern(`corporation`, "Corp"),
	suffixPattern(`s\.a\.r\.l`, "SARL"),
	suffixPattern(`sarl`, "SARL"),
	suffixPattern(`s\.a`, "S.A."),
	suffixPattern(`s\.l`, "S.L."),
	suffixPattern(`b\.v`, "B.V."),
	suffixPattern(`n\.v`, "N.V."),
}

// Long-form phrases a research provider may return instead of the token.
var longForms = []struct {
	phrase string
	canon  string
}{
	{"gesellschaft mit beschränkter haftung & co. kommanditgesellschaft", "GmbH & Co. KG"},
	{"gesellschaft mit beschränkter haftung", "GmbH"},
	{"gesellschaft mit beschraenkter haftung", "GmbH"},
	{"kommanditgesellschaft auf aktien", "KGaA"},
	{"aktiengesellschaft", "AG"},
	{"societas europaea", "SE"},
	{"europäische gesellschaft", "SE"},
	{"unternehmergesellschaft", "UG"},
	{"offene handelsgesellschaft", "OHG"},
	{"kommanditgesellschaft", "KG"},
	{"eingetragener kaufmann", "e.K."},
	{"eingetragener verein", "e.V."},
	{"eingetragene genossenschaft", "eG"},
	{"private limited company", "Ltd"},
	{"public limited company", "PLC"},
	{"limited liability partnership", "LLP"},
	{"limited liability company", "LLC"},
}

var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)

// stripParentheticals removes "(Germany)"-style annotations but keeps
// "(haftungsbeschränkt)", which is part of the UG form.
func stripParentheticals(s string) string {
	out := parenthetical.ReplaceAllStringFunc(s, func(m string) string {
		if strings.Contains(strings.ToLower(m), "haftungsbeschränkt") {
			return m
		}
		return ""
	})
	return strings.TrimSpace(out)
}

// LegalForm matches known legal-form suffixes against a company name. It
// returns the canonical short token, or "" when nothing matches.
func LegalForm(name string) string {
	_, form := splitLegalForm(name)
	return form
}

// StripLegalForm returns the company name without parentheticals and its
// legal-form suffix.
func StripLegalForm(name string) string {
	base, _ := splitLegalForm(name)
	return base
}

func splitLegalForm(name string) (string, string) {
	s := strings.TrimRight(stripParentheticals(name), " ,")
	for _, p := range nameSuffixes {
		if loc := p.re.FindStringIndex(s); loc != nil {
			return strings.TrimRight(s[:loc[0]], " ,"), p.canon
		}
	}
	return s, ""
}

// CanonicalLegalForm maps a provider-supplied legal form to the canonical
// token. Raw sentences, parentheticals and unknown values yield "".
func CanonicalLegalForm(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	for _, lf := range longForms {
		if strings.Contains(lower, lf.phrase) {
			return lf.canon
		}
	}
	// A bare token, or a name ending in one.
	stripped := stripParentheticals(s)
	if f := LegalForm(stripped); f != "" {
		return f
	}
	if f := LegalForm("x " + stripped); f != "" {
		return f
	}
	return ""
}

// DeriveLegalForm prefers the form found in the company name and falls back
// to the canonicalized provided value.
func DeriveLegalForm(name, provided string) string {
	if f := LegalForm(name); f != "" {
		return f
	}
	return CanonicalLegalForm(provided)
}
