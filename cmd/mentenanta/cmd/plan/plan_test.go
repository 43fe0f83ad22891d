// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/config"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/format"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleAudit = `{
  "Bloatware": ["CandyCrush", "Xbox Game Bar", "Clipchamp"],
  "EssentialApps": {"DetectedItems": ["7-Zip"]},
  "SystemOptimization": [],
  "Telemetry": {"DetectedItems": []},
  "Security": {"SecurityScore": 90},
  "WindowsUpdates": {"PendingAudit": {"PendingCount": 2}},
  "AppUpgrade": []
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildPlan(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())
	auditFile := writeFile(t, "audit.json", sampleAudit)

	var out, warnings bytes.Buffer
	pc, err := buildPlan("", auditFile, true, &out, &warnings)
	require.NoError(t, err)

	assert.Equal(t, []string{"BloatwareRemoval", "EssentialApps", "WindowsUpdates"}, pc.plan.ModuleNames())
	assert.Equal(t, 6, pc.plan.TotalItemsDetected)
	assert.Empty(t, warnings.String())
	assert.Contains(t, out.String(), "Planned 3 module(s), skipped 4")
}

func TestBuildPlanWarnsAboutMissingCategories(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())
	auditFile := writeFile(t, "audit.yaml", "Bloatware: [a]\nDrivers: [b]\n")

	var warnings bytes.Buffer
	pc, err := buildPlan("", auditFile, false, &bytes.Buffer{}, &warnings)
	require.NoError(t, err)

	assert.Equal(t, []string{"BloatwareRemoval"}, pc.plan.ModuleNames())
	assert.Contains(t, warnings.String(), "Warning: ignoring audit data for unknown category 'Drivers'")
	assert.Contains(t, warnings.String(), "Warning: Telemetry: no audit data")
}

func TestBuildPlanUsesConfiguredPriorities(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())
	auditFile := writeFile(t, "audit.json", sampleAudit)
	configFile := writeFile(t, "config.yaml", "modules:\n  - name: WindowsUpdates\n    priority: 0\n")

	pc, err := buildPlan(configFile, auditFile, false, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"WindowsUpdates", "BloatwareRemoval", "EssentialApps"}, pc.plan.ModuleNames())
}

func TestBuildPlanRejectsPriorityAheadOfPrerequisite(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())
	auditFile := writeFile(t, "audit.json", `{"EssentialApps": ["7-Zip", "Firefox"], "AppUpgrade": ["Git", "Node"]}`)
	configFile := writeFile(t, "config.yaml", "modules:\n  - name: AppUpgrade\n    priority: 0\n")

	_, err := buildPlan(configFile, auditFile, false, &bytes.Buffer{}, &bytes.Buffer{})
	require.ErrorIs(t, err, planner.ErrPlanInvariant)
	assert.Contains(t, err.Error(), "module 'AppUpgrade' runs before its prerequisite 'EssentialApps'")
}

func TestGeneratePlan(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())
	auditFile := writeFile(t, "audit.json", sampleAudit)

	t.Run("Stdout", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, generatePlan(&out, "", auditFile, "", false))

		var plan models.ExecutionPlan
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &plan))
		assert.Equal(t, []string{"BloatwareRemoval", "EssentialApps", "WindowsUpdates"}, plan.ModuleNames())
		assert.Len(t, plan.SkippedModules, 4)
	})

	t.Run("File", func(t *testing.T) {
		outputFile := filepath.Join(t.TempDir(), "plan.json")
		var out bytes.Buffer
		require.NoError(t, generatePlan(&out, "", auditFile, outputFile, false))
		assert.Contains(t, out.String(), "Execution plan saved to "+outputFile)

		var plan models.ExecutionPlan
		require.NoError(t, format.ParseFile(outputFile, &plan))
		assert.Equal(t, 100, plan.TotalEstimatedSeconds)
	})

	t.Run("MissingAudit", func(t *testing.T) {
		err := generatePlan(&bytes.Buffer{}, "", filepath.Join(t.TempDir(), "missing.json"), "", false)
		assert.Error(t, err)
	})
}

func TestExecutePlan(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())
	auditFile := writeFile(t, "audit.json", sampleAudit)

	t.Run("DryRun", func(t *testing.T) {
		reportFile := filepath.Join(t.TempDir(), "report.yaml")
		opts := executeOptions{auditFile: auditFile, reportFile: reportFile}
		opts.DryRun = true

		var out bytes.Buffer
		report, err := executePlan(context.Background(), &out, opts)
		require.NoError(t, err)

		assert.Equal(t, []string{"BloatwareRemoval", "EssentialApps", "WindowsUpdates"}, report.SucceededModules)
		assert.False(t, report.Aborted)
		assert.Contains(t, out.String(), "[dry-run] BloatwareRemoval")

		var saved models.FailureReport
		require.NoError(t, format.ParseFile(reportFile, &saved))
		assert.Equal(t, report.RunID, saved.RunID)
	})

	t.Run("SimulatedRetry", func(t *testing.T) {
		configFile := writeFile(t, "config.yaml", "failure_policy:\n  retry_delay_seconds: 0\n")
		opts := executeOptions{
			configPath:       configFile,
			auditFile:        auditFile,
			simulateFailures: []string{"EssentialApps=1"},
		}
		opts.DryRun = true

		report, err := executePlan(context.Background(), &bytes.Buffer{}, opts)
		require.NoError(t, err)
		assert.Equal(t, 1, report.TotalFailures)
		assert.Equal(t, 1, report.TotalRetries)
		assert.Contains(t, report.SucceededModules, models.ModuleEssentialApps)
	})

	t.Run("SimulatedSkip", func(t *testing.T) {
		configFile := writeFile(t, "config.yaml", "failure_policy:\n  max_retries: 0\n")
		opts := executeOptions{
			configPath:       configFile,
			auditFile:        auditFile,
			simulateFailures: []string{"BloatwareRemoval=5"},
		}
		opts.DryRun = true

		report, err := executePlan(context.Background(), &bytes.Buffer{}, opts)
		require.NoError(t, err)
		assert.Equal(t, []string{models.ModuleBloatwareRemoval}, report.FailedModules)
		assert.Equal(t, []string{models.ModuleWindowsUpdates}, report.SucceededModules)
		assert.Contains(t, report.SkippedModules, models.ModuleEssentialApps)
		assert.False(t, report.Aborted)
	})

	t.Run("SimulatedAbort", func(t *testing.T) {
		configFile := writeFile(t, "config.yaml", "failure_policy:\n  max_retries: 0\n  critical_modules: [BloatwareRemoval]\n")
		opts := executeOptions{
			configPath:       configFile,
			auditFile:        auditFile,
			simulateFailures: []string{"BloatwareRemoval=1"},
		}
		opts.DryRun = true

		report, err := executePlan(context.Background(), &bytes.Buffer{}, opts)
		require.NoError(t, err)
		assert.True(t, report.Aborted)
		assert.Empty(t, report.SucceededModules)
	})

	t.Run("UnknownSimulatedModule", func(t *testing.T) {
		opts := executeOptions{auditFile: auditFile, simulateFailures: []string{"DriverUpdates=1"}}
		_, err := executePlan(context.Background(), &bytes.Buffer{}, opts)
		assert.Error(t, err)
	})
}

func TestParseSimulatedFailures(t *testing.T) {
	parsed, err := parseSimulatedFailures([]string{"WindowsUpdates=2", "AppUpgrade=1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"WindowsUpdates": 2, "AppUpgrade": 1}, parsed)

	for _, value := range []string{"WindowsUpdates", "=2", "WindowsUpdates=x", "WindowsUpdates=0"} {
		_, err := parseSimulatedFailures([]string{value})
		assert.Error(t, err, value)
	}
}

func TestPlanCommands(t *testing.T) {
	cmd := GetPlanCmd()
	execute, _, err := cmd.Find([]string{"execute"})
	require.NoError(t, err)
	for _, flag := range []string{"dry-run", "simulate-failure", "report", "verbose"} {
		assert.NotNil(t, execute.Flags().Lookup(flag), flag)
	}

	generate, _, err := cmd.Find([]string{"generate"})
	require.NoError(t, err)
	assert.NotNil(t, generate.Flags().ShorthandLookup("o"))
}
