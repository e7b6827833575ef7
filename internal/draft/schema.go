package draft

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// ValidationError reports which fields of a filled draft violated the
// category schema.
type ValidationError struct {
	Category string
	Errors   []FieldError
}

// FieldError is a single schema violation at one field.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("draft does not match %s schema:\n", e.Category))
	for i, fe := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, fe.Field, fe.Message))
	}
	return sb.String()
}

// Validate checks a filled field map against the category's embedded JSON
// Schema. Used by the model-assisted strategy; the mapped strategy produces
// conforming drafts by construction.
func Validate(category string, fields map[string]any) error {
	schemaBytes, err := schemaFiles.ReadFile("schemas/" + strings.ToLower(category) + ".json")
	if err != nil {
		return fmt.Errorf("no schema for category %q: %w", category, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewGoLoader(fields),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed to run: %w", err)
	}

	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Category: category}
	for _, desc := range result.Errors() {
		verr.Errors = append(verr.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return verr
}
