// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"io"
	"os"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/audit"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/config"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/graph"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/planner"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage execution plans",
	Long:  `Commands for generating and executing maintenance execution plans.`,
}

func GetPlanCmd() *cobra.Command {
	return planCmd
}

func init() {
	planCmd.AddCommand(getGenerateCmd())
	planCmd.AddCommand(getExecuteCmd())
}

// planContext is everything a plan command needs after reading config and audit
type planContext struct {
	cfg   *config.Config
	graph *graph.Graph
	plan  models.ExecutionPlan
}

// buildPlan loads the configuration, normalizes the audit file and builds a validated plan.
// Normalizer warnings go to warnOut.
func buildPlan(configPath, auditFile string, verbose bool, out, warnOut io.Writer) (*planContext, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	g, err := cfg.Graph()
	if err != nil {
		return nil, err
	}

	normalizer, err := cfg.Normalizer()
	if err != nil {
		return nil, err
	}

	if verbose {
		fmt.Fprintf(out, "Parsing audit file: %s\n", auditFile)
	}
	raw, err := audit.ParseAuditFile(auditFile)
	if err != nil {
		return nil, fmt.Errorf("error parsing audit: %w", err)
	}

	result := normalizer.Normalize(raw)
	for _, warning := range result.Warnings {
		fmt.Fprintf(warnOut, "Warning: %s\n", warning)
	}

	plan := planner.BuildPlan(result.Findings, cfg.Priorities())
	if err := planner.ValidatePlan(plan, g); err != nil {
		return nil, err
	}

	if verbose {
		fmt.Fprintf(out, "Planned %d module(s), skipped %d, %d item(s) detected, ~%ds estimated\n",
			len(plan.RequiredModules), len(plan.SkippedModules), plan.TotalItemsDetected, plan.TotalEstimatedSeconds)
	}

	return &planContext{cfg: cfg, graph: g, plan: plan}, nil
}

func exitOnError(message string, err error) {
	if err != nil {
		fmt.Printf("Error %s: %v\n", message, err)
		os.Exit(1)
	}
}
