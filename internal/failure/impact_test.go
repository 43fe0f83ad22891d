// SPDX-License-Identifier: Apache-2.0

package failure_test

import (
	"testing"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/graph"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogGraph mirrors the default module dependencies
func catalogGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.BuildGraph(models.ModuleCatalog(), map[string][]string{
		models.ModuleSystemOptimization: {models.ModuleBloatwareRemoval},
		models.ModuleTelemetryDisable:   {models.ModuleBloatwareRemoval},
		models.ModuleEssentialApps:      {models.ModuleBloatwareRemoval},
		models.ModuleWindowsUpdates:     {models.ModuleSecurityEnhancement},
		models.ModuleAppUpgrade:         {models.ModuleEssentialApps, models.ModuleWindowsUpdates},
	})
	require.NoError(t, err)
	return g
}

func starGraph(t *testing.T, dependents int) *graph.Graph {
	t.Helper()
	nodes := []string{"root"}
	edges := map[string][]string{}
	for i := 0; i < dependents; i++ {
		name := string(rune('a' + i))
		nodes = append(nodes, name)
		edges[name] = []string{"root"}
	}
	g, err := graph.BuildGraph(nodes, edges)
	require.NoError(t, err)
	return g
}

func TestAnalyzeImpact(t *testing.T) {
	g := catalogGraph(t)

	t.Run("BloatwareRemoval", func(t *testing.T) {
		impact, err := failure.AnalyzeImpact(g, models.ModuleBloatwareRemoval)
		require.NoError(t, err)
		assert.Equal(t, models.ModuleBloatwareRemoval, impact.FailedModule)
		assert.Equal(t, []string{"EssentialApps", "SystemOptimization", "TelemetryDisable"}, impact.DirectDependents)
		assert.Equal(t, []string{"AppUpgrade"}, impact.TransitiveDependents)
		assert.Equal(t, models.ImpactMedium, impact.ImpactLevel)
	})

	t.Run("SecurityEnhancement", func(t *testing.T) {
		impact, err := failure.AnalyzeImpact(g, models.ModuleSecurityEnhancement)
		require.NoError(t, err)
		assert.Equal(t, []string{"WindowsUpdates"}, impact.DirectDependents)
		assert.Equal(t, []string{"AppUpgrade"}, impact.TransitiveDependents)
		assert.Equal(t, models.ImpactLow, impact.ImpactLevel)
	})

	t.Run("Leaf", func(t *testing.T) {
		impact, err := failure.AnalyzeImpact(g, models.ModuleAppUpgrade)
		require.NoError(t, err)
		assert.Empty(t, impact.DirectDependents)
		assert.Empty(t, impact.TransitiveDependents)
		assert.Equal(t, models.ImpactNone, impact.ImpactLevel)
	})

	t.Run("UnknownModule", func(t *testing.T) {
		_, err := failure.AnalyzeImpact(g, "DriverUpdates")
		require.Error(t, err)
		assert.ErrorIs(t, err, failure.ErrUnknownModule)
		assert.Contains(t, err.Error(), "DriverUpdates")
	})

	t.Run("NilGraph", func(t *testing.T) {
		_, err := failure.AnalyzeImpact(nil, models.ModuleAppUpgrade)
		assert.ErrorIs(t, err, failure.ErrUnknownModule)
	})
}

func TestAnalyzeImpactDirectWinsOverTransitive(t *testing.T) {
	// B depends on A and on C, C depends on A: B is both direct and reachable through C
	g, err := graph.BuildGraph([]string{"A", "B", "C"}, map[string][]string{
		"B": {"A", "C"},
		"C": {"A"},
	})
	require.NoError(t, err)

	impact, err := failure.AnalyzeImpact(g, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, impact.DirectDependents)
	assert.Empty(t, impact.TransitiveDependents)
	assert.Equal(t, models.ImpactLow, impact.ImpactLevel)
}

func TestAnalyzeImpactSetsAreDisjoint(t *testing.T) {
	g := catalogGraph(t)
	for _, module := range g.Nodes() {
		impact, err := failure.AnalyzeImpact(g, module)
		require.NoError(t, err)

		direct := make(map[string]bool)
		for _, name := range impact.DirectDependents {
			direct[name] = true
		}
		for _, name := range impact.TransitiveDependents {
			assert.False(t, direct[name], "%s is both direct and transitive for %s", name, module)
		}
		assert.NotContains(t, impact.AllDependents(), module)
	}
}

func TestAnalyzeImpactHigh(t *testing.T) {
	impact, err := failure.AnalyzeImpact(starGraph(t, 5), "root")
	require.NoError(t, err)
	assert.Len(t, impact.DirectDependents, 5)
	assert.Equal(t, models.ImpactHigh, impact.ImpactLevel)
}

func TestClassifyImpact(t *testing.T) {
	tests := []struct {
		affected int
		expected models.ImpactLevel
	}{
		{0, models.ImpactNone},
		{1, models.ImpactLow},
		{2, models.ImpactLow},
		{3, models.ImpactMedium},
		{4, models.ImpactMedium},
		{5, models.ImpactHigh},
		{12, models.ImpactHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, failure.ClassifyImpact(tt.affected), "affected=%d", tt.affected)
	}
}
