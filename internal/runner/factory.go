// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"fmt"
	"io"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/config"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
)

// FromConfig creates one remediation per configured module.
// In dry-run mode every module gets a DryRunRemediation; otherwise modules
// without a command get none and are reported by Run if they are planned.
func FromConfig(cfg *config.Config, opts models.ExecutionOptions, out io.Writer) (map[string]Remediation, error) {
	if out == nil {
		out = io.Discard
	}

	remediations := make(map[string]Remediation, len(cfg.Modules))
	for _, module := range cfg.Modules {
		description := module.Description
		if description == "" {
			description = module.Name
		}

		if opts.DryRun {
			remediations[module.Name] = NewDryRunRemediation(description, out)
			continue
		}

		if module.Command == "" {
			continue
		}

		remediation, err := NewCommandRemediation(module.Command, module.Args, description)
		if err != nil {
			return nil, fmt.Errorf("error creating remediation for module '%s': %w", module.Name, err)
		}
		remediations[module.Name] = remediation.WithOutput(out).WithVerbose(opts.VerboseLogging)
	}

	return remediations, nil
}
