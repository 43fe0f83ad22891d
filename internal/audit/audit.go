// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"fmt"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/format"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/schema"
)

// ParseAuditFile reads a raw audit document (YAML or JSON) keyed by category name
func ParseAuditFile(filePath string) (map[string]interface{}, error) {
	var document interface{}
	if err := format.ParseFile(filePath, &document); err != nil {
		return nil, fmt.Errorf("error parsing audit file: %w", err)
	}

	if err := schema.ValidateDocument(schema.AuditSchema(), document); err != nil {
		return nil, fmt.Errorf("invalid audit file %s: %w", filePath, err)
	}

	raw, ok := document.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid audit file %s: expected a mapping of categories", filePath)
	}
	return raw, nil
}
