// Package schemas validates published bundles against their JSON Schema.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed bundle.schema.json
var bundleSchema string

// BundleSchema returns the embedded bundle schema document.
func BundleSchema() string {
	return bundleSchema
}

var (
	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
)

// ValidationError represents a schema validation error with field paths.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself.
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

func bundle() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(bundleSchema))
		if compileErr != nil {
			compileErr = &SchemaLoadError{Path: "bundle.schema.json", Message: "compile", Cause: compileErr}
		}
	})
	return compiled, compileErr
}

// ValidateBundleJSON validates a serialized bundle.
func ValidateBundleJSON(data []byte) error {
	schema, err := bundle()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("load bundle document: %w", err)
	}
	return toError(result)
}

// ValidateBundle serializes v and validates it as a bundle.
func ValidateBundle(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return ValidateBundleJSON(data)
}

// ValidateJSONString validates JSON string content against schema string content.
func ValidateJSONString(schemaContent, jsonContent string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaContent),
		gojsonschema.NewStringLoader(jsonContent),
	)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return toError(result)
}

func toError(result *gojsonschema.Result) error {
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
