// SPDX-License-Identifier: Apache-2.0

package format

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an output encoding for plans and reports
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// ForPath picks the format from the file extension, defaulting to YAML
func ForPath(filePath string) Format {
	if strings.ToLower(filepath.Ext(filePath)) == ".json" {
		return JSON
	}
	return YAML
}

// ParseFile reads a YAML or JSON file into v
func ParseFile(filePath string, v interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	return ParseData(data, v)
}

// ParseData parses data, trying YAML first, then JSON
func ParseData(data []byte, v interface{}) error {
	// Try YAML first (preferred format)
	yamlErr := yaml.Unmarshal(data, v)
	if yamlErr == nil {
		return nil
	}

	// Fall back to JSON
	jsonErr := json.Unmarshal(data, v)
	if jsonErr == nil {
		return nil
	}

	return fmt.Errorf("failed to parse as YAML (%v) or JSON (%v)", yamlErr, jsonErr)
}

// Marshal encodes v in the given format
func Marshal(v interface{}, f Format) ([]byte, error) {
	var data []byte
	var err error

	switch f {
	case JSON:
		// Indented JSON for readability
		data, err = json.MarshalIndent(v, "", "  ")
	default:
		data, err = yaml.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("error marshaling %s: %w", f, err)
	}

	return data, nil
}

// WriteFile writes v to filePath in the format implied by its extension
func WriteFile(filePath string, v interface{}) error {
	data, err := Marshal(v, ForPath(filePath))
	if err != nil {
		return err
	}

	// Write the encoded data to the file
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", filePath, err)
	}
	return nil
}

// FormatData renders v as a string for terminal output
func FormatData(v interface{}, f Format) (string, error) {
	data, err := Marshal(v, f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
