package model

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var resumeSchemaJSON []byte

// ErrSchemaViolation is wrapped by every *SchemaError.
var ErrSchemaViolation = errors.New("schema validation failed")

// SchemaError lists the violations found by Validate.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSchemaViolation, strings.Join(e.Violations, "; "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type hexColorChecker struct{}

func (hexColorChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return false
	}
	return hexColorPattern.MatchString(s)
}

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func init() {
	gojsonschema.FormatCheckers.Add("hex-color", hexColorChecker{})
}

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(resumeSchemaJSON))
	})
	return schema, schemaErr
}

// Validate checks a document against the embedded resume.schema.json.
func Validate(d ResumeData) error {
	return ValidateMap(Serialize(d))
}

// ValidateMap validates a generic map against the embedded resume.schema.json.
func ValidateMap(m map[string]interface{}) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("load resume schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewGoLoader(m))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	violations := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		violations = append(violations, e.String())
	}
	return &SchemaError{Violations: violations}
}

func isEmail(s string) bool {
	return gojsonschema.FormatCheckers.IsFormat("email", s)
}

func isURI(s string) bool {
	return gojsonschema.FormatCheckers.IsFormat("uri", s)
}

// IsHexColor reports whether s is a #rgb or #rrggbb color.
func IsHexColor(s string) bool {
	return gojsonschema.FormatCheckers.IsFormat("hex-color", s)
}

// IsFontFamily reports whether s belongs to the enumerated font set.
func IsFontFamily(s string) bool {
	for _, f := range FontFamilies {
		if f == s {
			return true
		}
	}
	return false
}

func validPhotoURL(s string) bool {
	return s == "" || isURI(s)
}
