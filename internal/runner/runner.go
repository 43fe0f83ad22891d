// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/graph"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/failure"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/planner"
)

// ErrMissingRemediation is returned when a planned module has no remediation to run
var ErrMissingRemediation = errors.New("missing remediation")

// Options contains options for running a plan
type Options struct {
	Out            io.Writer
	VerboseLogging bool
}

// Runner executes a plan module by module and applies the failure policy
type Runner struct {
	graph        *graph.Graph
	policy       models.FailurePolicy
	remediations map[string]Remediation
	out          io.Writer
	verbose      bool
}

// NewRunner creates a runner
func NewRunner(g *graph.Graph, policy models.FailurePolicy, remediations map[string]Remediation, opts Options) *Runner {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		graph:        g,
		policy:       policy,
		remediations: remediations,
		out:          out,
		verbose:      opts.VerboseLogging,
	}
}

// Run executes the required modules of plan in order and returns the failure report.
// Modules whose dependencies failed are skipped, failures are retried after the policy
// delay, and the run stops when the policy aborts or ctx is done. The report is valid
// whenever the run started, even if an error is returned.
func (r *Runner) Run(ctx context.Context, plan models.ExecutionPlan) (models.FailureReport, error) {
	if err := r.checkPlan(plan); err != nil {
		return models.FailureReport{}, err
	}

	machine, err := failure.NewStateMachine(r.graph, r.policy)
	if err != nil {
		return models.FailureReport{}, fmt.Errorf("error starting run: %w", err)
	}

	if r.verbose {
		fmt.Fprintf(r.out, "Run %s: %d module(s) planned\n", machine.RunID(), len(plan.RequiredModules))
	}

	var runErr error
	for _, module := range plan.RequiredModules {
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		if machine.IsSkipped(module.Name) {
			fmt.Fprintf(r.out, "Skipping %s: a module it depends on failed\n", module.Name)
			continue
		}

		runErr = r.runModule(ctx, machine, module)
		if runErr != nil || machine.ShouldAbort() {
			break
		}
	}

	report := machine.Complete()
	if runErr != nil {
		return report, fmt.Errorf("run %s stopped: %w", report.RunID, runErr)
	}
	return report, nil
}

// runModule runs one module until it succeeds or the policy stops retrying it
func (r *Runner) runModule(ctx context.Context, machine *failure.StateMachine, module models.PlannedModule) error {
	remediation := r.remediations[module.Name]

	for {
		attempt := machine.Attempt(module.Name)
		fmt.Fprintf(r.out, "Running %s (attempt %d): %s\n", module.Name, attempt, remediation.Description())

		err := remediation.Remediate(ctx, module)
		if err == nil {
			machine.RecordSuccess(module.Name)
			fmt.Fprintf(r.out, "✓ %s completed\n", module.Name)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		fmt.Fprintf(r.out, "✗ %s failed: %v\n", module.Name, err)

		decision, err := machine.RecordFailure(module.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "  %s: %s\n", decision.Strategy, decision.Reason)
		if r.verbose && len(decision.SkipModules) > 0 {
			fmt.Fprintf(r.out, "  Skipping dependents: %s\n", strings.Join(decision.SkipModules, ", "))
		}

		if decision.Strategy != models.StrategyRetry {
			return nil
		}
		if err := wait(ctx, time.Duration(r.policy.RetryDelaySeconds)*time.Second); err != nil {
			return err
		}
	}
}

// checkPlan verifies every planned module is a graph node with a remediation
// and runs after the modules it depends on
func (r *Runner) checkPlan(plan models.ExecutionPlan) error {
	if r.graph == nil {
		return fmt.Errorf("runner has no dependency graph")
	}

	var unknown, missing []string
	for _, module := range plan.RequiredModules {
		if !r.graph.Has(module.Name) {
			unknown = append(unknown, module.Name)
		}
		if r.remediations[module.Name] == nil {
			missing = append(missing, module.Name)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", failure.ErrUnknownModule, strings.Join(unknown, ", "))
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w for module(s): %s", ErrMissingRemediation, strings.Join(missing, ", "))
	}
	return planner.CheckOrder(plan.RequiredModules, r.graph)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
