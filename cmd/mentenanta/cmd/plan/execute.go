// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/format"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/runner"
	"github.com/spf13/cobra"
)

// executeOptions holds the flags of the execute command
type executeOptions struct {
	configPath       string
	auditFile        string
	reportFile       string
	simulateFailures []string
	models.ExecutionOptions
}

func getExecuteCmd() *cobra.Command {
	executeCmd := &cobra.Command{
		Use:   "execute [audit-file]",
		Short: "Plan and run maintenance modules from an audit",
		Long: `Builds the execution plan for the audit and runs every planned module in order.
Failed modules are retried, their dependents skipped or the run aborted according to
the failure policy. Exits with status 1 when the run was aborted.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts := executeOptions{auditFile: args[0]}
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.reportFile, _ = cmd.Flags().GetString("report")
			opts.simulateFailures, _ = cmd.Flags().GetStringArray("simulate-failure")
			opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
			opts.VerboseLogging, _ = cmd.Flags().GetBool("verbose")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			report, err := executePlan(ctx, os.Stdout, opts)
			if err != nil {
				stop()
				exitOnError("executing plan", err)
			}
			if report.Aborted {
				stop()
				fmt.Println("Run aborted by the failure policy")
				os.Exit(1)
			}
		},
	}

	executeCmd.Flags().Bool("dry-run", false, "Print what each module would do without running it")
	executeCmd.Flags().StringArray("simulate-failure", nil, "Make a module fail its first N attempts (Module=N), may be repeated")
	executeCmd.Flags().String("report", "", "Write the failure report to this file (YAML or JSON by extension)")
	executeCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")

	return executeCmd
}

func executePlan(ctx context.Context, out io.Writer, opts executeOptions) (models.FailureReport, error) {
	simulated, err := parseSimulatedFailures(opts.simulateFailures)
	if err != nil {
		return models.FailureReport{}, err
	}

	pc, err := buildPlan(opts.configPath, opts.auditFile, opts.VerboseLogging, out, os.Stderr)
	if err != nil {
		return models.FailureReport{}, err
	}

	policy, err := pc.cfg.Policy()
	if err != nil {
		return models.FailureReport{}, err
	}

	remediations, err := runner.FromConfig(pc.cfg, opts.ExecutionOptions, out)
	if err != nil {
		return models.FailureReport{}, err
	}
	for name, failures := range simulated {
		if !pc.graph.Has(name) {
			return models.FailureReport{}, fmt.Errorf("cannot simulate failure of unknown module '%s'", name)
		}
		next, ok := remediations[name]
		if !ok {
			next = runner.NewDryRunRemediation(name, out)
		}
		remediations[name] = runner.NewFlakyRemediation(next, failures)
	}

	if opts.DryRun {
		fmt.Fprintln(out, "Dry run: no changes will be made")
	}

	r := runner.NewRunner(pc.graph, policy, remediations, runner.Options{
		Out:            out,
		VerboseLogging: opts.VerboseLogging,
	})
	report, runErr := r.Run(ctx, pc.plan)
	if report.RunID == "" {
		return report, runErr
	}

	reportOutput, err := format.FormatData(report, format.YAML)
	if err != nil {
		return report, fmt.Errorf("error formatting report: %w", err)
	}
	fmt.Fprint(out, reportOutput)

	if opts.reportFile != "" {
		if err := format.WriteFile(opts.reportFile, report); err != nil {
			return report, fmt.Errorf("error writing report file: %w", err)
		}
		fmt.Fprintf(out, "Failure report saved to %s\n", opts.reportFile)
	}

	return report, runErr
}

// parseSimulatedFailures parses Module=N pairs
func parseSimulatedFailures(values []string) (map[string]int, error) {
	simulated := make(map[string]int, len(values))
	for _, value := range values {
		name, count, found := strings.Cut(value, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid --simulate-failure value '%s', expected Module=N", value)
		}
		n, err := strconv.Atoi(count)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid failure count in '%s', expected a positive number", value)
		}
		simulated[name] = n
	}
	return simulated, nil
}
