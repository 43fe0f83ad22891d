// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/cel-go/cel"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
)

// ErrNoData is returned when an audit document has no entry for a category
var ErrNoData = errors.New("no audit data")

const (
	listOrDetectedItems = "type(audit) == list ? size(audit) : size(audit.DetectedItems)"
	pendingUpdates      = "type(audit) == list ? size(audit) : audit.PendingAudit.PendingCount"
	securityScore       = "type(audit) == map ? audit.SecurityScore : audit"
)

// DefaultExpressions returns the CEL expression used for each category.
// The expressions see the raw audit output of the category as the variable "audit".
func DefaultExpressions() map[models.Category]string {
	return map[models.Category]string{
		models.CategoryBloatware:          listOrDetectedItems,
		models.CategoryEssentialApps:      listOrDetectedItems,
		models.CategorySystemOptimization: listOrDetectedItems,
		models.CategoryTelemetry:          listOrDetectedItems,
		models.CategorySecurity:           securityScore,
		models.CategoryWindowsUpdates:     pendingUpdates,
		models.CategoryAppUpgrade:         listOrDetectedItems,
	}
}

// Normalizer turns raw audit output into findings using one CEL program per category
type Normalizer struct {
	programs    map[models.Category]cel.Program
	expressions map[models.Category]string
}

// Result holds normalized findings and the problems met on the way
type Result struct {
	Findings map[models.Category]models.AuditFinding
	Warnings []string
}

// NewNormalizer compiles the expressions. Categories without an override use the default.
func NewNormalizer(overrides map[models.Category]string) (*Normalizer, error) {
	env, err := cel.NewEnv(
		cel.Variable("audit", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}

	expressions := DefaultExpressions()
	for category, expression := range overrides {
		if !category.Valid() {
			return nil, fmt.Errorf("normalizer defined for unknown category '%s'", category)
		}
		expressions[category] = expression
	}

	n := &Normalizer{
		programs:    make(map[models.Category]cel.Program, len(expressions)),
		expressions: expressions,
	}
	for category, expression := range expressions {
		ast, issues := env.Compile(expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("error compiling %s expression: %w", category, issues.Err())
		}

		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("error creating %s program: %w", category, err)
		}
		n.programs[category] = program
	}

	return n, nil
}

// Expression returns the expression in use for category
func (n *Normalizer) Expression(category models.Category) string {
	return n.expressions[category]
}

// NormalizeCategory evaluates the category expression against its raw audit output
func (n *Normalizer) NormalizeCategory(category models.Category, raw interface{}) (models.AuditFinding, error) {
	finding := models.AuditFinding{Category: category}

	program, ok := n.programs[category]
	if !ok {
		return finding, fmt.Errorf("no normalizer for category '%s'", category)
	}

	result, _, err := program.Eval(map[string]interface{}{"audit": raw})
	if err != nil {
		return finding, fmt.Errorf("error evaluating %s expression: %w", category, err)
	}

	value, ok := toNumber(result.Value())
	if !ok {
		return finding, fmt.Errorf("%s expression returned %T, expected a number", category, result.Value())
	}

	if category == models.CategorySecurity {
		if value < 0 || value > 100 {
			return finding, fmt.Errorf("security score %v is outside 0-100", value)
		}
		finding.ScorePercent = value
		finding.Scored = true
		return finding, nil
	}

	if value < 0 {
		return finding, fmt.Errorf("%s expression returned negative count %v", category, value)
	}
	finding.ItemCount = int(math.Floor(value))
	return finding, nil
}

// Normalize converts a whole audit document. It never fails: a category whose data is
// missing or unusable gets a zero finding and a warning.
func (n *Normalizer) Normalize(raw map[string]interface{}) Result {
	result := Result{
		Findings: make(map[models.Category]models.AuditFinding, len(n.programs)),
	}

	for _, category := range models.Categories() {
		data, ok := raw[string(category)]
		if !ok {
			result.Findings[category] = models.AuditFinding{Category: category}
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", category, ErrNoData))
			continue
		}

		finding, err := n.NormalizeCategory(category, data)
		if err != nil {
			finding = models.AuditFinding{Category: category}
			result.Warnings = append(result.Warnings, err.Error())
		}
		result.Findings[category] = finding
	}

	var unknown []string
	for key := range raw {
		if !models.Category(key).Valid() {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		result.Warnings = append(result.Warnings, fmt.Sprintf("ignoring audit data for unknown category '%s'", key))
	}

	return result
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
