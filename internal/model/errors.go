package model

import "errors"

// Error kinds surfaced by the ingestion and enrichment paths. Callers match
// them with errors.Is; concrete errors wrap them with context via eris.
var (
	// ErrInvalidURL means a profile URL could not be canonicalized.
	ErrInvalidURL = errors.New("invalid profile url")

	// ErrNormalization means a raw record could not be mapped onto the
	// Person/Company schema. The record is dropped from its batch.
	ErrNormalization = errors.New("normalization error")

	// ErrMissingField means a required raw field was absent or blank.
	ErrMissingField = errors.New("missing required field")

	// ErrSearchUnavailable is fatal for the current batch.
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrEnrichmentSchema means a structured-research payload did not match
	// the enrichment schema. Only the affected company is skipped.
	ErrEnrichmentSchema = errors.New("enrichment schema error")

	// ErrCompanyNotFound means an enrichment key matched no stored company.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrStoreConstraint means a uniqueness conflict survived the upsert
	// logic. The surrounding batch is rolled back.
	ErrStoreConstraint = errors.New("store constraint violation")
)
