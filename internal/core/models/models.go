// SPDX-License-Identifier: Apache-2.0

package models

// Category identifies one remediation area that an audit reports on
type Category string

const (
	CategoryBloatware          Category = "Bloatware"
	CategoryEssentialApps      Category = "EssentialApps"
	CategorySystemOptimization Category = "SystemOptimization"
	CategoryTelemetry          Category = "Telemetry"
	CategorySecurity           Category = "Security"
	CategoryWindowsUpdates     Category = "WindowsUpdates"
	CategoryAppUpgrade         Category = "AppUpgrade"
)

// Module names of the fixed remediation catalog
const (
	ModuleBloatwareRemoval    = "BloatwareRemoval"
	ModuleEssentialApps       = "EssentialApps"
	ModuleSystemOptimization  = "SystemOptimization"
	ModuleTelemetryDisable    = "TelemetryDisable"
	ModuleSecurityEnhancement = "SecurityEnhancement"
	ModuleWindowsUpdates      = "WindowsUpdates"
	ModuleAppUpgrade          = "AppUpgrade"
)

// Categories returns every category in planning order.
// The order is also the tie breaker when two modules share a priority.
func Categories() []Category {
	return []Category{
		CategoryBloatware,
		CategoryEssentialApps,
		CategorySystemOptimization,
		CategoryTelemetry,
		CategorySecurity,
		CategoryWindowsUpdates,
		CategoryAppUpgrade,
	}
}

var categoryModules = map[Category]string{
	CategoryBloatware:          ModuleBloatwareRemoval,
	CategoryEssentialApps:      ModuleEssentialApps,
	CategorySystemOptimization: ModuleSystemOptimization,
	CategoryTelemetry:          ModuleTelemetryDisable,
	CategorySecurity:           ModuleSecurityEnhancement,
	CategoryWindowsUpdates:     ModuleWindowsUpdates,
	CategoryAppUpgrade:         ModuleAppUpgrade,
}

// ModuleName returns the remediation module that handles the category
func (c Category) ModuleName() string {
	return categoryModules[c]
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := categoryModules[c]
	return ok
}

// ModuleCatalog returns the names of the seven known remediation modules in planning order
func ModuleCatalog() []string {
	names := make([]string, 0, len(categoryModules))
	for _, c := range Categories() {
		names = append(names, c.ModuleName())
	}
	return names
}

// AuditFinding is the normalized result of auditing one category.
// Security findings carry a score instead of an item count.
type AuditFinding struct {
	Category     Category `json:"category" yaml:"category"`
	ItemCount    int      `json:"item_count" yaml:"item_count"`
	ScorePercent float64  `json:"score_percent,omitempty" yaml:"score_percent,omitempty"`
	Scored       bool     `json:"scored,omitempty" yaml:"scored,omitempty"`
}

// PlannedModule is a remediation module selected to run
type PlannedModule struct {
	Name                     string   `json:"name" yaml:"name"`
	Reason                   string   `json:"reason" yaml:"reason"`
	Priority                 int      `json:"priority" yaml:"priority"`
	ItemCount                int      `json:"item_count" yaml:"item_count"`
	EstimatedDurationSeconds int      `json:"estimated_duration_seconds" yaml:"estimated_duration_seconds"`
	Category                 Category `json:"category" yaml:"category"`
}

// SkippedModule is a remediation module with nothing to do
type SkippedModule struct {
	Name     string   `json:"name" yaml:"name"`
	Reason   string   `json:"reason" yaml:"reason"`
	Category Category `json:"category" yaml:"category"`
}

// ExecutionPlan represents the generated plan for one maintenance run
type ExecutionPlan struct {
	RequiredModules       []PlannedModule `json:"required_modules" yaml:"required_modules"`
	SkippedModules        []SkippedModule `json:"skipped_modules" yaml:"skipped_modules"`
	TotalItemsDetected    int             `json:"total_items_detected" yaml:"total_items_detected"`
	TotalEstimatedSeconds int             `json:"total_estimated_seconds" yaml:"total_estimated_seconds"`
}

// ModuleNames returns the names of the planned modules in execution order
func (p ExecutionPlan) ModuleNames() []string {
	names := make([]string, 0, len(p.RequiredModules))
	for _, m := range p.RequiredModules {
		names = append(names, m.Name)
	}
	return names
}

// ExecutionOptions contains options for plan execution
type ExecutionOptions struct {
	DryRun         bool
	VerboseLogging bool
}
