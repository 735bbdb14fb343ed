// Package normalize maps raw extracted records onto the Person and Company
// schema.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/canon"
	"github.com/sells-group/leads-cli/internal/model"
)

// LookupDateLayout is the stored lookup date format.
const LookupDateLayout = "2006-01-02"

// Options tune person normalization.
type Options struct {
	// PhoneRegion is the default region for numbers without a country code.
	PhoneRegion string
}

// degreePrefix matches academic prefixes that belong in the title rather
// than the name, longest first.
var degreePrefix = regexp.MustCompile(`(?i)^((?:prof\.\s*)?(?:dr\.-ing\.|dr\.\s*rer\.\s*nat\.|dr\.\s*med\.|dr\.|dipl\.-ing\.|dipl\.-kfm\.|prof\.)(?:\s*(?:dr\.|dipl\.-ing\.))*)\s+`)

// Person normalizes a raw profile. It fails with model.ErrNormalization when
// the profile URL cannot be canonicalized.
func Person(raw model.RawProfile, now time.Time, opts Options) (model.Person, error) {
	key, err := canon.NormalizeProfileURL(raw.ProfileURL)
	if err != nil {
		return model.Person{}, eris.Wrapf(model.ErrNormalization, "profile url %q: %v", raw.ProfileURL, err)
	}

	p := model.Person{
		ProfileURL:  key,
		Title:       collapse(raw.Title),
		Location:    collapse(raw.Location),
		Email:       Email(raw.Email),
		Phone:       Phone(raw.Phone, opts.PhoneRegion),
		Website:     canon.WebsiteURL(raw.Website),
		Summary:     strings.TrimSpace(raw.Summary),
		SourceName:  strings.TrimSpace(raw.SourceName),
		SourceQuery: strings.TrimSpace(raw.SourceQuery),
	}

	name, degree := splitDegree(collapse(raw.Name))
	p.FirstName, p.LastName = SplitName(name)
	if degree != "" && p.Title == "" {
		p.Title = degree
	}

	if c, ok := ParseConnections(raw.Connections); ok {
		v := c.Value
		p.Connections, p.ConnectionsFloor = &v, c.Floor
	}
	if c, ok := ParseCount(raw.Followers); ok {
		v := c.Value
		p.Followers, p.FollowersFloor = &v, c.Floor
	}

	p.LookupDate = lookupDate(raw.LookupDate, now)

	if strings.TrimSpace(raw.Company) != "" || strings.TrimSpace(raw.CompanyDomain) != "" {
		c := Company(raw.Company, raw.CompanyDomain)
		if c.Name != "" || c.Domain != "" {
			c.SourceName, c.SourceQuery = p.SourceName, p.SourceQuery
			p.Company = &c
		}
	}
	return p, nil
}

// SplitName splits a display name at its last space. A single token leaves
// the last name empty.
func SplitName(name string) (first, last string) {
	name = collapse(name)
	i := strings.LastIndex(name, " ")
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

func splitDegree(name string) (string, string) {
	m := degreePrefix.FindStringSubmatchIndex(name)
	if m == nil {
		return name, ""
	}
	return strings.TrimSpace(name[m[1]:]), strings.TrimSpace(name[m[2]:m[3]])
}

func lookupDate(raw string, now time.Time) string {
	s := strings.TrimSpace(raw)
	if s != "" {
		for _, layout := range []string{LookupDateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format(LookupDateLayout)
			}
		}
	}
	return now.UTC().Format(LookupDateLayout)
}

// Company normalizes a raw company guess. The domain comes from
// rawDomainOrURL, or from the name when the name itself is a host; the legal
// form comes from the name's suffix and is "" when none is recognised.
func Company(rawName, rawDomainOrURL string) model.Company {
	name := collapse(stripParentheticals(rawName))
	c := model.Company{
		Name:      name,
		LegalForm: LegalForm(rawName),
	}

	src := strings.TrimSpace(rawDomainOrURL)
	if src != "" {
		c.Domain = canon.ExtractApexDomain(src)
		if strings.Contains(src, "/") || strings.Contains(src, ".") {
			c.Website = canon.WebsiteURL(src)
		}
	}
	if c.Name == "" && c.Domain != "" {
		c.Name = c.Domain
	}
	return c
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
