// Package schemas validates input documents against the JSON Schemas that
// form the contract with the ingestion collaborator. Schema violations on a
// raw batch are surfaced before normalization so malformed provider payloads
// fail with field paths instead of half-normalized records.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed raw_records.schema.json
var rawRecordsSchema []byte

//go:embed candidate_profile.schema.json
var candidateProfileSchema []byte

// FieldError is a single validation error at a specific field path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates schema violations for one document.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidateRawBatch checks a raw record batch document against the input
// contract schema.
func ValidateRawBatch(document []byte) error {
	return validate(rawRecordsSchema, document)
}

// ValidateProfile checks a candidate profile document for shape violations.
// Value constraints beyond shape (positive weights, non-empty lists) are
// enforced again by the config loader's struct validation.
func ValidateProfile(document []byte) error {
	return validate(candidateProfileSchema, document)
}

func validate(schema, document []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return fmt.Errorf("failed to run schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, desc := range result.Errors() {
		verr.Errors = append(verr.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return verr
}
