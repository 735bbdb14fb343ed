// Package dedupe validates a batch of raw profiles and collapses duplicates
// by canonical profile URL. It performs no I/O.
package dedupe

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/normalize"
)

// DefaultRequiredFields are checked when the caller passes none.
var DefaultRequiredFields = []string{model.FieldName, model.FieldProfileURL}

// ReasonKind classifies a rejection.
type ReasonKind string

const (
	ReasonMissingField       ReasonKind = "missing_field"
	ReasonNormalizationError ReasonKind = "normalization_error"
	ReasonDuplicateOf        ReasonKind = "duplicate_of"
)

// Reason explains why a candidate was not kept.
type Reason struct {
	Kind   ReasonKind `json:"kind"`
	Field  string     `json:"field,omitempty"`
	Key    string     `json:"key,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

func (r Reason) String() string {
	switch r.Kind {
	case ReasonMissingField:
		return fmt.Sprintf("MissingField(%q)", r.Field)
	case ReasonDuplicateOf:
		return fmt.Sprintf("DuplicateOf(%s)", r.Key)
	case ReasonNormalizationError:
		return "NormalizationError: " + r.Detail
	default:
		return string(r.Kind)
	}
}

// MissingField builds a missing-field reason.
func MissingField(field string) Reason { return Reason{Kind: ReasonMissingField, Field: field} }

// DuplicateOf builds a duplicate reason pointing at the survivor's key.
func DuplicateOf(key string) Reason { return Reason{Kind: ReasonDuplicateOf, Key: key} }

// Rejection pairs a dropped candidate with its reason.
type Rejection struct {
	Raw    model.RawProfile `json:"raw"`
	Reason Reason           `json:"reason"`
}

// Result is the outcome of ValidateAndDedupe.
type Result struct {
	Kept     []model.Person `json:"kept"`
	Rejected []Rejection    `json:"rejected"`
}

// Options tune validation.
type Options struct {
	Normalize normalize.Options
}

type entry struct {
	raw    model.RawProfile
	person model.Person
	score  int
}

// ValidateAndDedupe drops candidates missing a required field or failing
// normalization, then keeps one record per canonical profile URL: the one
// with the highest Completeness, ties going to the first seen. Kept records
// are returned in the first-seen order of their group. The same input always
// yields the same output.
func ValidateAndDedupe(candidates []model.RawProfile, required []string, now time.Time, opts Options) Result {
	if len(required) == 0 {
		required = DefaultRequiredFields
	}

	var res Result
	groups := make(map[string][]entry)
	var order []string

	for _, raw := range candidates {
		if field, ok := missingField(raw, required); !ok {
			res.Rejected = append(res.Rejected, Rejection{Raw: raw, Reason: MissingField(field)})
			continue
		}

		p, err := normalize.Person(raw, now, opts.Normalize)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{
				Raw:    raw,
				Reason: Reason{Kind: ReasonNormalizationError, Detail: err.Error()},
			})
			continue
		}

		key := p.ProfileURL
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], entry{raw: raw, person: p, score: Completeness(p)})
	}

	for _, key := range order {
		group := groups[key]
		best := 0
		for i := 1; i < len(group); i++ {
			if group[i].score > group[best].score {
				best = i
			}
		}
		res.Kept = append(res.Kept, group[best].person)
		for i, e := range group {
			if i != best {
				res.Rejected = append(res.Rejected, Rejection{Raw: e.raw, Reason: DuplicateOf(key)})
			}
		}
	}
	return res
}

// missingField returns the first required field that is absent or blank.
// Unknown field names count as missing.
func missingField(raw model.RawProfile, required []string) (string, bool) {
	for _, f := range required {
		v, known := raw.Field(f)
		if !known || v == "" {
			return strings.ToLower(strings.TrimSpace(f)), false
		}
	}
	return "", true
}

// Completeness counts the populated optional fields of a normalized person.
// Every field weighs the same, so the total order used for survivor
// selection is (Completeness desc, first seen asc).
func Completeness(p model.Person) int {
	n := 0
	for _, s := range []string{p.Title, p.Location, p.Email, p.Phone, p.Website, p.Summary} {
		if s != "" {
			n++
		}
	}
	if p.Company != nil || p.CompanyID != "" {
		n++
	}
	if p.Connections != nil {
		n++
	}
	if p.Followers != nil {
		n++
	}
	return n
}
