// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/config"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/graph"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateGraph(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())

	t.Run("Defaults", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, validateGraph(&out, ""))

		expected := "✓ Dependency graph is valid (7 modules)\n" +
			"Dependency order:\n" +
			"  1. BloatwareRemoval\n" +
			"  2. EssentialApps (depends on BloatwareRemoval)\n" +
			"  3. SecurityEnhancement\n" +
			"  4. SystemOptimization (depends on BloatwareRemoval)\n" +
			"  5. TelemetryDisable (depends on BloatwareRemoval)\n" +
			"  6. WindowsUpdates (depends on SecurityEnhancement)\n" +
			"  7. AppUpgrade (depends on EssentialApps, WindowsUpdates)\n"
		assert.Equal(t, expected, out.String())
	})

	t.Run("Cycle", func(t *testing.T) {
		path := writeConfig(t, `
modules:
  - name: BloatwareRemoval
    depends_on: [AppUpgrade]
`)
		err := validateGraph(&bytes.Buffer{}, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, graph.ErrInvalidGraph)
		assert.Contains(t, err.Error(), "circular dependency")
	})

	t.Run("UnknownCriticalModule", func(t *testing.T) {
		path := writeConfig(t, "failure_policy:\n  critical_modules: [DriverUpdates]\n")
		err := validateGraph(&bytes.Buffer{}, path)
		assert.ErrorIs(t, err, models.ErrInvalidPolicy)
	})

	t.Run("BrokenNormalizer", func(t *testing.T) {
		path := writeConfig(t, "normalizers:\n  Telemetry: \"size(audit\"\n")
		assert.Error(t, validateGraph(&bytes.Buffer{}, path))
	})
}

func TestShowImpact(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())

	decode := func(t *testing.T, out *bytes.Buffer) models.StrategyDecision {
		t.Helper()
		var decision models.StrategyDecision
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &decision))
		return decision
	}

	t.Run("RetryOnFirstAttempt", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, showImpact(&out, "", models.ModuleBloatwareRemoval, 1))

		decision := decode(t, &out)
		assert.Equal(t, models.StrategyRetry, decision.Strategy)
		assert.Equal(t, 2, decision.NextAttempt)
		assert.Equal(t, models.ImpactMedium, decision.Impact.ImpactLevel)
		assert.Equal(t, []string{"AppUpgrade"}, decision.Impact.TransitiveDependents)
	})

	t.Run("SkipAfterRetries", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, showImpact(&out, "", models.ModuleBloatwareRemoval, 2))

		decision := decode(t, &out)
		assert.Equal(t, models.StrategySkipDependents, decision.Strategy)
		assert.ElementsMatch(t, []string{"EssentialApps", "SystemOptimization", "TelemetryDisable", "AppUpgrade"}, decision.SkipModules)
	})

	t.Run("CriticalAbort", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, showImpact(&out, "", models.ModuleSecurityEnhancement, 2))

		decision := decode(t, &out)
		assert.Equal(t, models.StrategyAbort, decision.Strategy)
		assert.Equal(t, models.RuleCriticalModule, decision.Rule)
	})

	t.Run("UnknownModule", func(t *testing.T) {
		err := showImpact(&bytes.Buffer{}, "", "DriverUpdates", 1)
		assert.ErrorIs(t, err, failure.ErrUnknownModule)
	})

	t.Run("InvalidAttempt", func(t *testing.T) {
		assert.Error(t, showImpact(&bytes.Buffer{}, "", models.ModuleAppUpgrade, 0))
	})
}

func TestGraphCommands(t *testing.T) {
	cmd := GetGraphCmd()
	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"validate", "impact"}, names)

	impact, _, err := cmd.Find([]string{"impact"})
	require.NoError(t, err)
	attempt, err := impact.Flags().GetInt("attempt")
	require.NoError(t, err)
	assert.Equal(t, 1, attempt)
}
