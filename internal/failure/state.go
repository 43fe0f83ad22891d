// SPDX-License-Identifier: Apache-2.0

package failure

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/graph"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
)

// ErrRunNotActive is returned when a failure is recorded after the run stopped
var ErrRunNotActive = errors.New("run is not active")

// RunState is the lifecycle state of a run
type RunState string

const (
	StateRunning   RunState = "Running"
	StateAborted   RunState = "Aborted"
	StateCompleted RunState = "Completed"
)

// StateMachine tracks failures of one run and applies the policy decision after each of them.
// It is not safe for concurrent use.
type StateMachine struct {
	graph     *graph.Graph
	policy    models.FailurePolicy
	runID     string
	state     RunState
	exec      models.ExecutionState
	skipped   map[string]bool
	succeeded []string
	decisions []models.StrategyDecision
	report    *models.FailureReport
}

// NewStateMachine creates a state machine in the Running state
func NewStateMachine(g *graph.Graph, policy models.FailurePolicy) (*StateMachine, error) {
	if g == nil {
		return nil, fmt.Errorf("dependency graph is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return &StateMachine{
		graph:  g,
		policy: policy,
		runID:  uuid.NewString(),
		state:  StateRunning,
		exec: models.ExecutionState{
			FailedModules:  []string{},
			SkippedModules: []string{},
			RetryAttempts:  make(map[string]int),
		},
		skipped: make(map[string]bool),
	}, nil
}

// RunID identifies this run in reports
func (m *StateMachine) RunID() string {
	return m.runID
}

// Policy returns the failure policy the machine was built with
func (m *StateMachine) Policy() models.FailurePolicy {
	return m.policy
}

// State returns the current lifecycle state
func (m *StateMachine) State() RunState {
	return m.state
}

// ShouldAbort reports whether a decision required the run to stop
func (m *StateMachine) ShouldAbort() bool {
	return m.exec.ShouldAbort
}

// Attempt returns the attempt number the next run of module will be
func (m *StateMachine) Attempt(module string) int {
	if attempt, ok := m.exec.RetryAttempts[module]; ok {
		return attempt
	}
	return 1
}

// IsSkipped reports whether a previous failure marked module to be skipped
func (m *StateMachine) IsSkipped(module string) bool {
	return m.skipped[module]
}

// RecordSuccess notes that module completed
func (m *StateMachine) RecordSuccess(module string) {
	m.succeeded = append(m.succeeded, module)
}

// RecordFailure analyzes the failure of module, resolves the strategy and applies it
func (m *StateMachine) RecordFailure(module string) (models.StrategyDecision, error) {
	if m.state != StateRunning {
		return models.StrategyDecision{}, fmt.Errorf("%w: cannot record failure of %s in state %s",
			ErrRunNotActive, module, m.state)
	}

	impact, err := AnalyzeImpact(m.graph, module)
	if err != nil {
		return models.StrategyDecision{}, err
	}

	decision := ResolveStrategy(impact, m.policy, m.Attempt(module))

	m.exec.FailedModules = append(m.exec.FailedModules, module)
	m.exec.LastFailureImpact = &impact
	m.exec.LastFailureStrategy = decision.Strategy

	switch decision.Strategy {
	case models.StrategyRetry:
		m.exec.RetryAttempts[module] = decision.NextAttempt
	case models.StrategySkipDependents:
		// Overlapping skip sets are kept as reported; see FailureReport.UniqueSkipped
		m.exec.SkippedModules = append(m.exec.SkippedModules, decision.SkipModules...)
		for _, name := range decision.SkipModules {
			m.skipped[name] = true
		}
	case models.StrategyAbort:
		m.exec.ShouldAbort = true
		m.state = StateAborted
	}

	m.decisions = append(m.decisions, decision)
	return decision, nil
}

// Snapshot returns a copy of the execution state
func (m *StateMachine) Snapshot() models.ExecutionState {
	snapshot := models.ExecutionState{
		FailedModules:       append([]string{}, m.exec.FailedModules...),
		SkippedModules:      append([]string{}, m.exec.SkippedModules...),
		RetryAttempts:       make(map[string]int, len(m.exec.RetryAttempts)),
		ShouldAbort:         m.exec.ShouldAbort,
		LastFailureStrategy: m.exec.LastFailureStrategy,
	}
	for name, attempt := range m.exec.RetryAttempts {
		snapshot.RetryAttempts[name] = attempt
	}
	if m.exec.LastFailureImpact != nil {
		impact := copyImpact(*m.exec.LastFailureImpact)
		snapshot.LastFailureImpact = &impact
	}
	return snapshot
}

// Decisions returns every decision taken so far, oldest first
func (m *StateMachine) Decisions() []models.StrategyDecision {
	decisions := make([]models.StrategyDecision, len(m.decisions))
	for i, d := range m.decisions {
		decisions[i] = copyDecision(d)
	}
	return decisions
}

// Complete ends the run and returns its failure report.
// Calling it again returns the same report.
func (m *StateMachine) Complete() models.FailureReport {
	if m.report == nil {
		report := buildReport(m.runID, m.Snapshot(), m.succeeded, m.Decisions())
		m.report = &report
		m.state = StateCompleted
	}
	return *m.report
}

func copyImpact(i models.FailureImpact) models.FailureImpact {
	i.DirectDependents = append([]string{}, i.DirectDependents...)
	i.TransitiveDependents = append([]string{}, i.TransitiveDependents...)
	return i
}

func copyDecision(d models.StrategyDecision) models.StrategyDecision {
	d.Impact = copyImpact(d.Impact)
	if d.SkipModules != nil {
		d.SkipModules = append([]string{}, d.SkipModules...)
	}
	return d
}
