package candidate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed candidates.schema.json
var batchSchema string

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists the schema violations of a candidates document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("candidates validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// LoadFile reads a JSON array of candidate records from path.
func LoadFile(path string) ([]*Data, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates file %s: %w", path, err)
	}
	return Parse(content)
}

// Parse validates a JSON array of candidate records against the batch schema and decodes it.
func Parse(content []byte) ([]*Data, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(batchSchema),
		gojsonschema.NewBytesLoader(content),
	)
	if err != nil {
		return nil, fmt.Errorf("validate candidates: %w", err)
	}

	if !result.Valid() {
		ve := &ValidationError{}
		for _, e := range result.Errors() {
			ve.Errors = append(ve.Errors, FieldError{Field: e.Field(), Message: e.Description()})
		}
		return nil, ve
	}

	var raw []map[string]any
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse candidates: %w", err)
	}

	candidates := make([]*Data, 0, len(raw))
	for i, item := range raw {
		c, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}
