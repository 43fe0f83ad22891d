// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrValidation is returned when a document does not match its schema
var ErrValidation = errors.New("schema validation failed")

// ValidateDocument validates a decoded YAML or JSON document against a JSON schema
func ValidateDocument(schema map[string]interface{}, document interface{}) error {
	// Convert the schema to JSON
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("schema validation error: failed to serialize schema: %w", err)
	}
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)

	documentBytes, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("schema validation error: failed to serialize document: %w", err)
	}
	documentLoader := gojsonschema.NewBytesLoader(documentBytes)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, fmt.Sprintf("- %s", e))
		}
		return fmt.Errorf("%w:\n%s", ErrValidation, strings.Join(problems, "\n"))
	}

	return nil
}
