// SPDX-License-Identifier: Apache-2.0

package failure

import (
	"fmt"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
)

// ResolveStrategy decides what the run does after a module failed on currentAttempt.
// Rules are checked in order and the first match wins:
//  1. retries left: retry the module
//  2. critical module and abort-on-critical: abort
//  3. high impact and abort-on-critical: abort
//  4. continue-on-non-critical: skip every dependent of the module
//  5. otherwise: abort
func ResolveStrategy(impact models.FailureImpact, policy models.FailurePolicy, currentAttempt int) models.StrategyDecision {
	module := impact.FailedModule
	decision := models.StrategyDecision{
		Module:  module,
		Attempt: currentAttempt,
		Impact:  impact,
	}

	switch {
	case currentAttempt <= policy.MaxRetries:
		decision.Strategy = models.StrategyRetry
		decision.Rule = models.RuleRetryAvailable
		decision.RetryModule = module
		decision.NextAttempt = currentAttempt + 1
		decision.Reason = fmt.Sprintf("Attempt %d of %s failed, retrying (max retries: %d)",
			currentAttempt, module, policy.MaxRetries)

	case policy.IsCritical(module) && policy.AbortOnCriticalFailure:
		decision.Strategy = models.StrategyAbort
		decision.Rule = models.RuleCriticalModule
		decision.Abort = true
		decision.Reason = fmt.Sprintf("Critical module %s failed after %d attempt(s), aborting run",
			module, currentAttempt)

	case impact.ImpactLevel == models.ImpactHigh && policy.AbortOnCriticalFailure:
		decision.Strategy = models.StrategyAbort
		decision.Rule = models.RuleHighImpact
		decision.Abort = true
		decision.Reason = fmt.Sprintf("Failure of %s has high impact (%d dependent module(s)), aborting run",
			module, impact.AffectedCount())

	case policy.ContinueOnNonCriticalFailure:
		decision.Strategy = models.StrategySkipDependents
		decision.Rule = models.RuleContinuePolicy
		decision.SkipModules = impact.AllDependents()
		decision.Reason = fmt.Sprintf("Module %s failed, skipping %d dependent module(s) and continuing",
			module, len(decision.SkipModules))

	default:
		decision.Strategy = models.StrategyAbort
		decision.Rule = models.RuleStopOnAnyFailure
		decision.Abort = true
		decision.Reason = fmt.Sprintf("Module %s failed and policy does not allow continuing, aborting run", module)
	}

	return decision
}
