// SPDX-License-Identifier: Apache-2.0

package failure

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/graph"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
)

// ErrUnknownModule is returned when a failure is reported for a module that is not in the graph
var ErrUnknownModule = errors.New("unknown module")

// AnalyzeImpact computes which modules are affected when module fails.
// A module reachable both directly and through another dependent counts as direct only.
func AnalyzeImpact(g *graph.Graph, module string) (models.FailureImpact, error) {
	if g == nil || !g.Has(module) {
		return models.FailureImpact{}, fmt.Errorf("%w: '%s' is not in the dependency graph", ErrUnknownModule, module)
	}

	direct := g.DirectDependents(module)
	isDirect := make(map[string]bool, len(direct))
	for _, name := range direct {
		isDirect[name] = true
	}

	seen := make(map[string]bool)
	transitive := []string{}
	for _, d := range direct {
		for _, name := range g.TransitiveDependents(d) {
			if isDirect[name] || name == module || seen[name] {
				continue
			}
			seen[name] = true
			transitive = append(transitive, name)
		}
	}
	sort.Strings(transitive)

	if direct == nil {
		direct = []string{}
	}

	return models.FailureImpact{
		FailedModule:         module,
		DirectDependents:     direct,
		TransitiveDependents: transitive,
		ImpactLevel:          ClassifyImpact(len(direct) + len(transitive)),
	}, nil
}

// ClassifyImpact maps the number of affected modules to an impact level
func ClassifyImpact(affected int) models.ImpactLevel {
	switch {
	case affected <= 0:
		return models.ImpactNone
	case affected <= 2:
		return models.ImpactLow
	case affected <= 4:
		return models.ImpactMedium
	default:
		return models.ImpactHigh
	}
}
