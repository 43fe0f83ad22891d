// SPDX-License-Identifier: Apache-2.0

package models

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy is returned when a failure policy carries out-of-range values
var ErrInvalidPolicy = errors.New("invalid failure policy")

// ImpactLevel is the coarse severity of a module failure
type ImpactLevel string

const (
	ImpactNone   ImpactLevel = "None"
	ImpactLow    ImpactLevel = "Low"
	ImpactMedium ImpactLevel = "Medium"
	ImpactHigh   ImpactLevel = "High"
)

// Strategy is the decision taken after a module failure
type Strategy string

const (
	StrategyRetry          Strategy = "Retry"
	StrategySkipDependents Strategy = "SkipDependents"
	StrategyAbort          Strategy = "Abort"
	StrategyContinue       Strategy = "Continue"
)

// FailureRule names the rule of the strategy resolver that produced a decision
type FailureRule string

const (
	RuleRetryAvailable   FailureRule = "retry-available"
	RuleCriticalModule   FailureRule = "critical-module"
	RuleHighImpact       FailureRule = "high-impact"
	RuleContinuePolicy   FailureRule = "continue-on-non-critical"
	RuleStopOnAnyFailure FailureRule = "stop-on-any-failure"
)

// FailurePolicy controls how the run reacts to module failures
type FailurePolicy struct {
	MaxRetries                   int      `json:"max_retries" yaml:"max_retries"`
	RetryDelaySeconds            int      `json:"retry_delay_seconds" yaml:"retry_delay_seconds"`
	AbortOnCriticalFailure       bool     `json:"abort_on_critical_failure" yaml:"abort_on_critical_failure"`
	ContinueOnNonCriticalFailure bool     `json:"continue_on_non_critical_failure" yaml:"continue_on_non_critical_failure"`
	CriticalModules              []string `json:"critical_modules,omitempty" yaml:"critical_modules,omitempty"`
}

// NewFailurePolicy creates a validated failure policy
func NewFailurePolicy(maxRetries, retryDelaySeconds int, abortOnCritical, continueOnNonCritical bool, criticalModules []string) (FailurePolicy, error) {
	policy := FailurePolicy{
		MaxRetries:                   maxRetries,
		RetryDelaySeconds:            retryDelaySeconds,
		AbortOnCriticalFailure:       abortOnCritical,
		ContinueOnNonCriticalFailure: continueOnNonCritical,
		CriticalModules:              append([]string(nil), criticalModules...),
	}
	if err := policy.Validate(); err != nil {
		return FailurePolicy{}, err
	}
	return policy, nil
}

// Validate checks that the policy values are usable
func (p FailurePolicy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must be >= 0, got %d", ErrInvalidPolicy, p.MaxRetries)
	}
	if p.RetryDelaySeconds < 0 {
		return fmt.Errorf("%w: retry_delay_seconds must be >= 0, got %d", ErrInvalidPolicy, p.RetryDelaySeconds)
	}
	for _, name := range p.CriticalModules {
		if name == "" {
			return fmt.Errorf("%w: critical module name is empty", ErrInvalidPolicy)
		}
	}
	return nil
}

// IsCritical reports whether the module is listed as critical
func (p FailurePolicy) IsCritical(module string) bool {
	for _, name := range p.CriticalModules {
		if name == module {
			return true
		}
	}
	return false
}

// FailureImpact describes which modules are affected by a failed module
type FailureImpact struct {
	FailedModule         string      `json:"failed_module" yaml:"failed_module"`
	DirectDependents     []string    `json:"direct_dependents" yaml:"direct_dependents"`
	TransitiveDependents []string    `json:"transitive_dependents" yaml:"transitive_dependents"`
	ImpactLevel          ImpactLevel `json:"impact_level" yaml:"impact_level"`
}

// AffectedCount is the number of modules affected by the failure
func (i FailureImpact) AffectedCount() int {
	return len(i.DirectDependents) + len(i.TransitiveDependents)
}

// AllDependents returns direct dependents followed by transitive ones
func (i FailureImpact) AllDependents() []string {
	all := make([]string, 0, i.AffectedCount())
	all = append(all, i.DirectDependents...)
	return append(all, i.TransitiveDependents...)
}

// StrategyDecision is the outcome of resolving a failure against the policy
type StrategyDecision struct {
	Module      string        `json:"module" yaml:"module"`
	Attempt     int           `json:"attempt" yaml:"attempt"`
	Strategy    Strategy      `json:"strategy" yaml:"strategy"`
	Rule        FailureRule   `json:"rule" yaml:"rule"`
	Reason      string        `json:"reason" yaml:"reason"`
	SkipModules []string      `json:"skip_modules,omitempty" yaml:"skip_modules,omitempty"`
	RetryModule string        `json:"retry_module,omitempty" yaml:"retry_module,omitempty"`
	Abort       bool          `json:"abort" yaml:"abort"`
	NextAttempt int           `json:"next_attempt,omitempty" yaml:"next_attempt,omitempty"`
	Impact      FailureImpact `json:"impact" yaml:"impact"`
}

// ExecutionState is the run-scoped record of failures, skips and retry counters
type ExecutionState struct {
	FailedModules       []string       `json:"failed_modules" yaml:"failed_modules"`
	SkippedModules      []string       `json:"skipped_modules" yaml:"skipped_modules"`
	RetryAttempts       map[string]int `json:"retry_attempts" yaml:"retry_attempts"`
	ShouldAbort         bool           `json:"should_abort" yaml:"should_abort"`
	LastFailureImpact   *FailureImpact `json:"last_failure_impact,omitempty" yaml:"last_failure_impact,omitempty"`
	LastFailureStrategy Strategy       `json:"last_failure_strategy,omitempty" yaml:"last_failure_strategy,omitempty"`
}

// FailureReport summarizes failure handling for a completed run
type FailureReport struct {
	RunID            string             `json:"run_id" yaml:"run_id"`
	TotalFailures    int                `json:"total_failures" yaml:"total_failures"`
	TotalSkipped     int                `json:"total_skipped" yaml:"total_skipped"`
	TotalRetries     int                `json:"total_retries" yaml:"total_retries"`
	FailedModules    []string           `json:"failed_modules" yaml:"failed_modules"`
	SkippedModules   []string           `json:"skipped_modules" yaml:"skipped_modules"`
	SucceededModules []string           `json:"succeeded_modules" yaml:"succeeded_modules"`
	Aborted          bool               `json:"aborted" yaml:"aborted"`
	LastImpactLevel  ImpactLevel        `json:"last_impact_level" yaml:"last_impact_level"`
	Decisions        []StrategyDecision `json:"decisions,omitempty" yaml:"decisions,omitempty"`
}

// UniqueSkipped returns the skipped modules without repeats, keeping first-seen order.
// SkippedModules itself keeps every entry so overlapping skip sets stay visible.
func (r FailureReport) UniqueSkipped() []string {
	seen := make(map[string]bool, len(r.SkippedModules))
	unique := make([]string, 0, len(r.SkippedModules))
	for _, name := range r.SkippedModules {
		if seen[name] {
			continue
		}
		seen[name] = true
		unique = append(unique, name)
	}
	return unique
}
