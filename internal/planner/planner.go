// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/graph"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
)

// SecurityThreshold is the score below which security enhancement is planned
const SecurityThreshold = 85.0

// ErrPlanInvariant is returned when a plan does not cover the module catalog exactly
var ErrPlanInvariant = errors.New("execution plan invariant violated")

// rule describes how one category becomes a planned or skipped module
type rule struct {
	reason     func(finding models.AuditFinding) string
	duration   func(finding models.AuditFinding) int
	skipReason string
}

var rules = map[models.Category]rule{
	models.CategoryBloatware: {
		reason:     countReason("%d bloatware item(s) detected"),
		duration:   scaled(10, 3),
		skipReason: "No bloatware detected",
	},
	models.CategoryEssentialApps: {
		reason:     countReason("%d missing essential app(s)"),
		duration:   scaled(30, 15),
		skipReason: "All essential apps are installed",
	},
	models.CategorySystemOptimization: {
		reason:     countReason("%d optimization(s) available"),
		duration:   scaled(15, 5),
		skipReason: "No optimizations needed",
	},
	models.CategoryTelemetry: {
		reason:     countReason("%d active telemetry service(s)"),
		duration:   scaled(10, 2),
		skipReason: "No active telemetry detected",
	},
	models.CategorySecurity: {
		reason: func(f models.AuditFinding) string {
			return fmt.Sprintf("Security score: %s%% (below %s%% threshold)",
				formatScore(f.ScorePercent), formatScore(SecurityThreshold))
		},
		duration:   func(models.AuditFinding) int { return 20 },
		skipReason: "Security score meets the 85% threshold",
	},
	models.CategoryWindowsUpdates: {
		reason:     countReason("%d pending update(s)"),
		duration:   scaled(60, 30),
		skipReason: "No pending updates",
	},
	models.CategoryAppUpgrade: {
		reason:     countReason("%d app upgrade(s) available"),
		duration:   scaled(20, 10),
		skipReason: "All apps are up to date",
	},
}

// DefaultPriorities returns the fixed priority of every module, 1 being the highest
func DefaultPriorities() map[string]int {
	return map[string]int{
		models.ModuleBloatwareRemoval:    1,
		models.ModuleSecurityEnhancement: 2,
		models.ModuleSystemOptimization:  3,
		models.ModuleTelemetryDisable:    4,
		models.ModuleEssentialApps:       5,
		models.ModuleWindowsUpdates:      6,
		models.ModuleAppUpgrade:          7,
	}
}

// BuildPlan decides which modules run and in which order.
// Missing or malformed findings mean the module has nothing to do; BuildPlan never fails.
// priorities overrides DefaultPriorities per module and may be nil.
func BuildPlan(findings map[models.Category]models.AuditFinding, priorities map[string]int) models.ExecutionPlan {
	plan := models.ExecutionPlan{
		RequiredModules: []models.PlannedModule{},
		SkippedModules:  []models.SkippedModule{},
	}

	defaults := DefaultPriorities()
	for _, category := range models.Categories() {
		name := category.ModuleName()
		r := rules[category]
		finding := findings[category]

		if !needsWork(category, finding) {
			plan.SkippedModules = append(plan.SkippedModules, models.SkippedModule{
				Name:     name,
				Reason:   r.skipReason,
				Category: category,
			})
			continue
		}

		priority, ok := priorities[name]
		if !ok {
			priority = defaults[name]
		}

		module := models.PlannedModule{
			Name:                     name,
			Reason:                   r.reason(finding),
			Priority:                 priority,
			EstimatedDurationSeconds: r.duration(finding),
			Category:                 category,
		}
		if category != models.CategorySecurity {
			module.ItemCount = finding.ItemCount
		}

		plan.RequiredModules = append(plan.RequiredModules, module)
		plan.TotalItemsDetected += module.ItemCount
		plan.TotalEstimatedSeconds += module.EstimatedDurationSeconds
	}

	sort.SliceStable(plan.RequiredModules, func(i, j int) bool {
		return plan.RequiredModules[i].Priority < plan.RequiredModules[j].Priority
	})

	return plan
}

// ValidatePlan checks that planned and skipped modules together cover the catalog exactly
// once and that every module is a node of g.
func ValidatePlan(plan models.ExecutionPlan, g *graph.Graph) error {
	seen := make(map[string]int)
	for _, m := range plan.RequiredModules {
		seen[m.Name]++
	}
	for _, m := range plan.SkippedModules {
		seen[m.Name]++
	}

	var problems []string
	for _, name := range models.ModuleCatalog() {
		switch seen[name] {
		case 0:
			problems = append(problems, fmt.Sprintf("module '%s' is neither planned nor skipped", name))
		case 1:
		default:
			problems = append(problems, fmt.Sprintf("module '%s' appears %d times", name, seen[name]))
		}
		delete(seen, name)
		if g != nil && !g.Has(name) {
			problems = append(problems, fmt.Sprintf("module '%s' is not in the dependency graph", name))
		}
	}

	extra := make([]string, 0, len(seen))
	for name := range seen {
		extra = append(extra, name)
	}
	sort.Strings(extra)
	for _, name := range extra {
		problems = append(problems, fmt.Sprintf("module '%s' is not part of the catalog", name))
	}

	if g != nil {
		problems = append(problems, orderProblems(plan.RequiredModules, g)...)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrPlanInvariant, strings.Join(problems, "; "))
	}
	return nil
}

// CheckOrder verifies that no planned module runs before a module it depends on,
// directly or through other modules
func CheckOrder(modules []models.PlannedModule, g *graph.Graph) error {
	if problems := orderProblems(modules, g); len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrPlanInvariant, strings.Join(problems, "; "))
	}
	return nil
}

func orderProblems(modules []models.PlannedModule, g *graph.Graph) []string {
	position := make(map[string]int, len(modules))
	for i, m := range modules {
		position[m.Name] = i
	}

	var problems []string
	for i, prerequisite := range modules {
		if !g.Has(prerequisite.Name) {
			continue
		}
		// Dependents are sorted, so the problems come out in a stable order
		for _, dependent := range g.TransitiveDependents(prerequisite.Name) {
			if j, planned := position[dependent]; planned && j < i {
				problems = append(problems, fmt.Sprintf("module '%s' runs before its prerequisite '%s'",
					dependent, prerequisite.Name))
			}
		}
	}
	return problems
}

func needsWork(category models.Category, f models.AuditFinding) bool {
	if category == models.CategorySecurity {
		if !f.Scored || math.IsNaN(f.ScorePercent) || f.ScorePercent < 0 || f.ScorePercent > 100 {
			return false
		}
		return f.ScorePercent < SecurityThreshold
	}
	return f.ItemCount > 0
}

func countReason(format string) func(models.AuditFinding) string {
	return func(f models.AuditFinding) string {
		return fmt.Sprintf(format, f.ItemCount)
	}
}

// scaled returns max(floor, count*perItem)
func scaled(floor, perItem int) func(models.AuditFinding) int {
	return func(f models.AuditFinding) int {
		if d := f.ItemCount * perItem; d > floor {
			return d
		}
		return floor
	}
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
