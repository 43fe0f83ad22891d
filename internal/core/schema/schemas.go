// SPDX-License-Identifier: Apache-2.0

package schema

// ConfigSchema describes the configuration file
func ConfigSchema() map[string]interface{} {
	stringList := map[string]interface{}{
		"type":  "array",
		"items": map[string]interface{}{"type": "string", "minLength": 1},
	}

	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"modules": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":                 "object",
					"required":             []interface{}{"name"},
					"additionalProperties": false,
					"properties": map[string]interface{}{
						"name":        map[string]interface{}{"type": "string", "minLength": 1},
						"priority":    map[string]interface{}{"type": "integer"},
						"description": map[string]interface{}{"type": "string"},
						"depends_on":  stringList,
						"command":     map[string]interface{}{"type": "string"},
						"args":        stringList,
					},
				},
			},
			"failure_policy": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"max_retries":                      map[string]interface{}{"type": "integer", "minimum": 0},
					"retry_delay_seconds":              map[string]interface{}{"type": "integer", "minimum": 0},
					"abort_on_critical_failure":        map[string]interface{}{"type": "boolean"},
					"continue_on_non_critical_failure": map[string]interface{}{"type": "boolean"},
					"critical_modules":                 stringList,
				},
			},
			"normalizers": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": map[string]interface{}{"type": "string", "minLength": 1},
			},
		},
	}
}

// AuditSchema describes a raw audit document: one entry per category, any shape
func AuditSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"additionalProperties": map[string]interface{}{
			"type": []interface{}{"array", "object", "number", "integer", "null"},
		},
	}
}
