// Package schemas provides JSON Schema validation for catalog files and other structured data.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed catalog.schema.json
var catalogSchema []byte

var (
	catalogSchemaOnce     sync.Once
	catalogSchemaCompiled *gojsonschema.Schema
	catalogSchemaErr      error
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateCatalog validates a JSON catalog document against the embedded catalog schema
func ValidateCatalog(document []byte) error {
	catalogSchemaOnce.Do(func() {
		catalogSchemaCompiled, catalogSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(catalogSchema))
	})
	if catalogSchemaErr != nil {
		return &SchemaLoadError{
			Path:    "(embedded catalog schema)",
			Message: "schema compilation failed",
			Cause:   catalogSchemaErr,
		}
	}

	result, err := catalogSchemaCompiled.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("failed to load catalog document: %w", err)
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
