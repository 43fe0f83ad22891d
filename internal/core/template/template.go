// SPDX-License-Identifier: Apache-2.0

package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// ProcessString renders a text/template string against data.
// Strings without template actions are returned unchanged.
func ProcessString(text string, data interface{}) (string, error) {
	// Nothing to render
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	// Create a new template
	tmpl, err := template.New("template").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("error parsing template: %w", err)
	}

	// Execute the template with the parameters
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template: %w", err)
	}

	return buf.String(), nil
}

// ProcessStrings renders every string of texts against data
func ProcessStrings(texts []string, data interface{}) ([]string, error) {
	processed := make([]string, 0, len(texts))
	for i, text := range texts {
		out, err := ProcessString(text, data)
		if err != nil {
			return nil, fmt.Errorf("error processing argument %d: %w", i, err)
		}
		processed = append(processed, out)
	}
	return processed, nil
}
