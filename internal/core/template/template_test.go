// SPDX-License-Identifier: Apache-2.0

package template_test

import (
	"testing"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessString(t *testing.T) {
	module := models.PlannedModule{Name: "BloatwareRemoval", ItemCount: 5, Priority: 1}

	tests := []struct {
		name     string
		template string
		data     interface{}
		expected string
		wantErr  bool
	}{
		{
			name:     "plain string",
			template: "-NoProfile",
			data:     module,
			expected: "-NoProfile",
		},
		{
			name:     "module fields",
			template: "modules/{{.Name}}.ps1",
			data:     module,
			expected: "modules/BloatwareRemoval.ps1",
		},
		{
			name:     "item count",
			template: "{{.ItemCount}}",
			data:     module,
			expected: "5",
		},
		{
			name:     "map data",
			template: "Hello, {{.name}}!",
			data:     map[string]interface{}{"name": "World"},
			expected: "Hello, World!",
		},
		{
			name:     "missing map key",
			template: "Hello, {{.missing}}!",
			data:     map[string]interface{}{"name": "World"},
			wantErr:  true,
		},
		{
			name:     "unknown struct field",
			template: "{{.Drivers}}",
			data:     module,
			wantErr:  true,
		},
		{
			name:     "invalid template",
			template: "{{.Name",
			data:     module,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := template.ProcessString(tt.template, tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestProcessStrings(t *testing.T) {
	module := models.PlannedModule{Name: "WindowsUpdates", ItemCount: 3}

	args, err := template.ProcessStrings([]string{"-File", "{{.Name}}.ps1", "-Count", "{{.ItemCount}}"}, module)
	require.NoError(t, err)
	assert.Equal(t, []string{"-File", "WindowsUpdates.ps1", "-Count", "3"}, args)

	_, err = template.ProcessStrings([]string{"ok", "{{.Nope}}"}, module)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument 1")

	empty, err := template.ProcessStrings(nil, module)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
