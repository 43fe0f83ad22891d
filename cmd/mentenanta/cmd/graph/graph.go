// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/config"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/format"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/failure"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect the module dependency graph",
	Long:  `Commands for validating the module dependency graph and analyzing failure impact.`,
}

func GetGraphCmd() *cobra.Command {
	return graphCmd
}

func init() {
	graphCmd.AddCommand(getValidateCmd())
	graphCmd.AddCommand(getImpactCmd())
}

func getValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configured modules, dependencies and failure policy",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			configPath, _ := cmd.Flags().GetString("config")
			if err := validateGraph(os.Stdout, configPath); err != nil {
				fmt.Printf("Error validating configuration: %v\n", err)
				os.Exit(1)
			}
		},
	}
}

func getImpactCmd() *cobra.Command {
	impactCmd := &cobra.Command{
		Use:   "impact [module]",
		Short: "Show the impact of a module failure and the decision the policy would take",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			configPath, _ := cmd.Flags().GetString("config")
			attempt, _ := cmd.Flags().GetInt("attempt")
			if err := showImpact(os.Stdout, configPath, args[0], attempt); err != nil {
				fmt.Printf("Error analyzing impact: %v\n", err)
				os.Exit(1)
			}
		},
	}

	impactCmd.Flags().Int("attempt", 1, "Attempt number that failed")

	return impactCmd
}

func validateGraph(out io.Writer, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	g, err := cfg.Graph()
	if err != nil {
		return err
	}
	if _, err := cfg.Policy(); err != nil {
		return err
	}
	if _, err := cfg.Normalizer(); err != nil {
		return err
	}

	order := g.TopologicalOrder()
	fmt.Fprintf(out, "✓ Dependency graph is valid (%d modules)\n", len(order))
	fmt.Fprintln(out, "Dependency order:")
	for i, name := range order {
		line := fmt.Sprintf("  %d. %s", i+1, name)
		if deps := g.DependsOn(name); len(deps) > 0 {
			line += fmt.Sprintf(" (depends on %s)", strings.Join(deps, ", "))
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func showImpact(out io.Writer, configPath, module string, attempt int) error {
	if attempt < 1 {
		return fmt.Errorf("attempt must be at least 1, got %d", attempt)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	g, err := cfg.Graph()
	if err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	impact, err := failure.AnalyzeImpact(g, module)
	if err != nil {
		return err
	}
	decision := failure.ResolveStrategy(impact, policy, attempt)

	output, err := format.FormatData(decision, format.YAML)
	if err != nil {
		return fmt.Errorf("error formatting decision: %w", err)
	}
	fmt.Fprint(out, output)
	return nil
}
