// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/template"
)

// CommandRemediation runs a command line tool for a planned module.
// The command and its arguments are templates rendered against the module,
// so "{{.ItemCount}}" becomes the number of detected items.
type CommandRemediation struct {
	command     string
	args        []string
	description string
	workingDir  string
	environment []string
	out         io.Writer
	verbose     bool
}

// NewCommandRemediation creates a command remediation
func NewCommandRemediation(command string, args []string, description string) (*CommandRemediation, error) {
	if command == "" {
		return nil, fmt.Errorf("command is required for command remediations")
	}

	return &CommandRemediation{
		command:     command,
		args:        append([]string(nil), args...),
		description: description,
		out:         os.Stdout,
	}, nil
}

// WithWorkingDir sets the working directory
func (c *CommandRemediation) WithWorkingDir(dir string) *CommandRemediation {
	c.workingDir = dir
	return c
}

// WithEnvironment adds environment variables to the inherited environment
func (c *CommandRemediation) WithEnvironment(env []string) *CommandRemediation {
	c.environment = env
	return c
}

// WithOutput sets where progress and, in verbose mode, command output is written
func (c *CommandRemediation) WithOutput(out io.Writer) *CommandRemediation {
	c.out = out
	return c
}

// WithVerbose enables streaming of the command output
func (c *CommandRemediation) WithVerbose(verbose bool) *CommandRemediation {
	c.verbose = verbose
	return c
}

// Remediate renders the command for the module and runs it until it exits or ctx is done
func (c *CommandRemediation) Remediate(ctx context.Context, module models.PlannedModule) error {
	command, args, err := c.Render(module)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr bytes.Buffer
	if c.verbose {
		cmd.Stdout = io.MultiWriter(&stdout, c.out)
		cmd.Stderr = io.MultiWriter(&stderr, c.out)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if c.workingDir != "" {
		cmd.Dir = c.workingDir
	}
	if len(c.environment) > 0 {
		cmd.Env = append(os.Environ(), c.environment...)
	}

	fmt.Fprintf(c.out, "Executing: %s %s\n", command, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("command '%s' interrupted: %w", command, ctxErr)
		}
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return fmt.Errorf("command '%s' failed: %w: %s", command, err, detail)
		}
		return fmt.Errorf("command '%s' failed: %w", command, err)
	}

	return nil
}

// Render returns the command and arguments as they would run for module
func (c *CommandRemediation) Render(module models.PlannedModule) (string, []string, error) {
	command, err := template.ProcessString(c.command, module)
	if err != nil {
		return "", nil, fmt.Errorf("error processing command: %w", err)
	}

	args, err := template.ProcessStrings(c.args, module)
	if err != nil {
		return "", nil, fmt.Errorf("error processing arguments: %w", err)
	}

	return command, args, nil
}

// Description returns the remediation description
func (c *CommandRemediation) Description() string {
	if c.description != "" {
		return c.description
	}
	return "Execute a command line tool"
}
