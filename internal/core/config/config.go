// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/audit"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/format"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/graph"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/schema"
	"gopkg.in/yaml.v3"
)

// Constants for default paths
const (
	DefaultConfigDir      = ".mentenanta"
	DefaultConfigFileName = "config.yaml"
	HomeEnvVar            = "MENTENANTA_HOME"
)

// ModuleConfig describes one maintenance module
type ModuleConfig struct {
	Name        string   `yaml:"name" json:"name"`
	Priority    *int     `yaml:"priority,omitempty" json:"priority,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	DependsOn   []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Command     string   `yaml:"command,omitempty" json:"command,omitempty"`
	Args        []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// PolicyConfig is the failure policy section. Nil fields keep the value they override.
type PolicyConfig struct {
	MaxRetries                   *int     `yaml:"max_retries,omitempty" json:"max_retries,omitempty"`
	RetryDelaySeconds            *int     `yaml:"retry_delay_seconds,omitempty" json:"retry_delay_seconds,omitempty"`
	AbortOnCriticalFailure       *bool    `yaml:"abort_on_critical_failure,omitempty" json:"abort_on_critical_failure,omitempty"`
	ContinueOnNonCriticalFailure *bool    `yaml:"continue_on_non_critical_failure,omitempty" json:"continue_on_non_critical_failure,omitempty"`
	CriticalModules              []string `yaml:"critical_modules,omitempty" json:"critical_modules,omitempty"`
}

// Config holds the application configuration
type Config struct {
	Modules       []ModuleConfig    `yaml:"modules,omitempty" json:"modules,omitempty"`
	FailurePolicy PolicyConfig      `yaml:"failure_policy,omitempty" json:"failure_policy,omitempty"`
	Normalizers   map[string]string `yaml:"normalizers,omitempty" json:"normalizers,omitempty"`
}

// NewDefaultConfig creates the built-in configuration: the seven catalog modules,
// their dependencies and the default failure policy
func NewDefaultConfig() *Config {
	module := func(name string, priority int, description string, dependsOn ...string) ModuleConfig {
		return ModuleConfig{
			Name:        name,
			Priority:    intPtr(priority),
			Description: description,
			DependsOn:   dependsOn,
			Command:     "powershell",
			Args: []string{
				"-NoProfile", "-ExecutionPolicy", "Bypass",
				"-File", filepath.Join("modules", name+".ps1"),
				"-ItemCount", "{{.ItemCount}}",
			},
		}
	}

	return &Config{
		Modules: []ModuleConfig{
			module(models.ModuleBloatwareRemoval, 1, "Remove preinstalled bloatware"),
			module(models.ModuleSecurityEnhancement, 2, "Harden security settings"),
			module(models.ModuleSystemOptimization, 3, "Apply system optimizations", models.ModuleBloatwareRemoval),
			module(models.ModuleTelemetryDisable, 4, "Disable telemetry services", models.ModuleBloatwareRemoval),
			module(models.ModuleEssentialApps, 5, "Install missing essential apps", models.ModuleBloatwareRemoval),
			module(models.ModuleWindowsUpdates, 6, "Install pending Windows updates", models.ModuleSecurityEnhancement),
			module(models.ModuleAppUpgrade, 7, "Upgrade installed apps", models.ModuleEssentialApps, models.ModuleWindowsUpdates),
		},
		FailurePolicy: PolicyConfig{
			MaxRetries:                   intPtr(1),
			RetryDelaySeconds:            intPtr(5),
			AbortOnCriticalFailure:       boolPtr(true),
			ContinueOnNonCriticalFailure: boolPtr(true),
			CriticalModules:              []string{models.ModuleSecurityEnhancement},
		},
		Normalizers: map[string]string{},
	}
}

// ExpandPathWithTilde expands ~ to the user home directory.
// It respects the MENTENANTA_HOME environment variable.
func ExpandPathWithTilde(path string) string {
	if path == "~" {
		home := getHomeDir()
		if home == "" {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home := getHomeDir()
		if home == "" {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func getHomeDir() string {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// GlobalConfigFilePath returns the absolute path to the global config file.
// It respects the MENTENANTA_HOME environment variable.
func GlobalConfigFilePath() (string, error) {
	home := getHomeDir()
	if home == "" {
		return "", fmt.Errorf("could not get user home directory")
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFileName), nil
}

// LoadConfig loads the application configuration.
// It starts with default settings, then merges the global configuration file when one exists.
// configPathOverride replaces the global path; a missing override file is an error while a
// missing global file is not.
func LoadConfig(configPathOverride string) (*Config, error) {
	config := NewDefaultConfig()

	configPath := ExpandPathWithTilde(configPathOverride)
	if configPath == "" {
		var err error
		configPath, err = GlobalConfigFilePath()
		if err != nil {
			fmt.Printf("Warning: could not determine global config path: %v\n", err)
			return config, nil
		}
	}

	fileConfig, err := LoadConfigFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && configPathOverride == "" {
			return config, nil
		}
		return nil, fmt.Errorf("error loading config file '%s': %w", configPath, err)
	}

	mergeConfigs(config, fileConfig)
	return config, nil
}

// LoadConfigFile loads a configuration from a YAML or JSON file and validates it
// against the configuration schema
func LoadConfigFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path cannot be empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var document interface{}
	if err := format.ParseData(data, &document); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if document == nil {
		return &Config{}, nil
	}
	if err := schema.ValidateDocument(schema.ConfigSchema(), document); err != nil {
		return nil, err
	}

	// JSON is a subset of YAML, so one decoder serves both formats
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, nil
}

// SaveConfig writes the configuration to path, YAML or JSON by extension
func SaveConfig(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory '%s': %w", filepath.Dir(path), err)
	}
	if err := format.WriteFile(path, config); err != nil {
		return fmt.Errorf("error writing config file '%s': %w", path, err)
	}
	return nil
}

// mergeConfigs merges source config into target config.
// Modules are matched by name: set fields override, unknown names are appended.
func mergeConfigs(target, source *Config) {
	for _, module := range source.Modules {
		i := target.moduleIndex(module.Name)
		if i < 0 {
			target.Modules = append(target.Modules, module)
			continue
		}
		existing := &target.Modules[i]
		if module.Priority != nil {
			existing.Priority = module.Priority
		}
		if module.Description != "" {
			existing.Description = module.Description
		}
		if module.DependsOn != nil {
			existing.DependsOn = module.DependsOn
		}
		if module.Command != "" {
			existing.Command = module.Command
			existing.Args = module.Args
		} else if module.Args != nil {
			existing.Args = module.Args
		}
	}

	policy := source.FailurePolicy
	if policy.MaxRetries != nil {
		target.FailurePolicy.MaxRetries = policy.MaxRetries
	}
	if policy.RetryDelaySeconds != nil {
		target.FailurePolicy.RetryDelaySeconds = policy.RetryDelaySeconds
	}
	if policy.AbortOnCriticalFailure != nil {
		target.FailurePolicy.AbortOnCriticalFailure = policy.AbortOnCriticalFailure
	}
	if policy.ContinueOnNonCriticalFailure != nil {
		target.FailurePolicy.ContinueOnNonCriticalFailure = policy.ContinueOnNonCriticalFailure
	}
	if policy.CriticalModules != nil {
		target.FailurePolicy.CriticalModules = policy.CriticalModules
	}

	if target.Normalizers == nil {
		target.Normalizers = map[string]string{}
	}
	for category, expression := range source.Normalizers {
		target.Normalizers[category] = expression
	}
}

func (c *Config) moduleIndex(name string) int {
	for i, module := range c.Modules {
		if module.Name == name {
			return i
		}
	}
	return -1
}

// Module returns the configuration of the named module
func (c *Config) Module(name string) (ModuleConfig, bool) {
	i := c.moduleIndex(name)
	if i < 0 {
		return ModuleConfig{}, false
	}
	return c.Modules[i], true
}

// Graph builds the validated dependency graph of the configured modules
func (c *Config) Graph() (*graph.Graph, error) {
	nodes := make([]string, 0, len(c.Modules))
	edges := make(map[string][]string)
	for _, module := range c.Modules {
		nodes = append(nodes, module.Name)
		if len(module.DependsOn) > 0 {
			edges[module.Name] = module.DependsOn
		}
	}

	g, err := graph.BuildGraph(nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("error building module graph: %w", err)
	}
	return g, nil
}

// Priorities returns the configured priority of every module that sets one
func (c *Config) Priorities() map[string]int {
	priorities := make(map[string]int)
	for _, module := range c.Modules {
		if module.Priority != nil {
			priorities[module.Name] = *module.Priority
		}
	}
	return priorities
}

// Policy builds the validated failure policy. Critical modules must be configured modules.
func (c *Config) Policy() (models.FailurePolicy, error) {
	p := c.FailurePolicy
	for _, name := range p.CriticalModules {
		if c.moduleIndex(name) < 0 {
			return models.FailurePolicy{}, fmt.Errorf("%w: critical module '%s' is not configured", models.ErrInvalidPolicy, name)
		}
	}

	return models.NewFailurePolicy(
		derefInt(p.MaxRetries),
		derefInt(p.RetryDelaySeconds),
		derefBool(p.AbortOnCriticalFailure),
		derefBool(p.ContinueOnNonCriticalFailure),
		p.CriticalModules,
	)
}

// Normalizer compiles the audit normalizer with the configured expression overrides
func (c *Config) Normalizer() (*audit.Normalizer, error) {
	overrides := make(map[models.Category]string, len(c.Normalizers))

	names := make([]string, 0, len(c.Normalizers))
	for name := range c.Normalizers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		category := models.Category(name)
		if !category.Valid() {
			return nil, fmt.Errorf("error in normalizers: unknown category '%s'", name)
		}
		overrides[category] = c.Normalizers[name]
	}

	normalizer, err := audit.NewNormalizer(overrides)
	if err != nil {
		return nil, fmt.Errorf("error compiling normalizers: %w", err)
	}
	return normalizer, nil
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefBool(v *bool) bool {
	return v != nil && *v
}
