// SPDX-License-Identifier: Apache-2.0

package failure

import (
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
)

func buildReport(runID string, state models.ExecutionState, succeeded []string, decisions []models.StrategyDecision) models.FailureReport {
	// The first attempt of a module is not a retry
	totalRetries := 0
	for _, attempts := range state.RetryAttempts {
		if attempts > 1 {
			totalRetries += attempts - 1
		}
	}

	lastImpact := models.ImpactNone
	if state.LastFailureImpact != nil {
		lastImpact = state.LastFailureImpact.ImpactLevel
	}

	return models.FailureReport{
		RunID:            runID,
		TotalFailures:    len(state.FailedModules),
		TotalSkipped:     len(state.SkippedModules),
		TotalRetries:     totalRetries,
		FailedModules:    state.FailedModules,
		SkippedModules:   state.SkippedModules,
		SucceededModules: append([]string{}, succeeded...),
		Aborted:          state.ShouldAbort,
		LastImpactLevel:  lastImpact,
		Decisions:        decisions,
	}
}
