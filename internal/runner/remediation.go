// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
)

// ErrSimulatedFailure is returned by FlakyRemediation for the attempts it is told to fail
var ErrSimulatedFailure = errors.New("simulated failure")

// Remediation defines the interface that every module remediation must implement
type Remediation interface {
	// Remediate fixes the findings of one planned module
	Remediate(ctx context.Context, module models.PlannedModule) error

	// Description returns a human-readable description of the remediation
	Description() string
}

// DryRunRemediation prints what would run and always succeeds
type DryRunRemediation struct {
	description string
	out         io.Writer
}

// NewDryRunRemediation creates a dry-run remediation writing to out
func NewDryRunRemediation(description string, out io.Writer) *DryRunRemediation {
	if out == nil {
		out = io.Discard
	}
	return &DryRunRemediation{description: description, out: out}
}

// Remediate reports the module without touching the system
func (d *DryRunRemediation) Remediate(ctx context.Context, module models.PlannedModule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "[dry-run] %s: %s (%s)\n", module.Name, d.description, module.Reason)
	return nil
}

// Description returns the remediation description
func (d *DryRunRemediation) Description() string {
	return d.description
}

// FlakyRemediation fails its first N calls, then delegates to the wrapped remediation
type FlakyRemediation struct {
	next     Remediation
	failures int

	mu    sync.Mutex
	calls int
}

// NewFlakyRemediation wraps next so that its first failures calls fail
func NewFlakyRemediation(next Remediation, failures int) *FlakyRemediation {
	return &FlakyRemediation{next: next, failures: failures}
}

// Remediate fails with ErrSimulatedFailure until the configured number of failures is reached
func (f *FlakyRemediation) Remediate(ctx context.Context, module models.PlannedModule) error {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if call <= f.failures {
		return fmt.Errorf("%w: %s call %d of %d", ErrSimulatedFailure, module.Name, call, f.failures)
	}
	return f.next.Remediate(ctx, module)
}

// Description returns the description of the wrapped remediation
func (f *FlakyRemediation) Description() string {
	return f.next.Description() + " (simulated failures)"
}

// Calls returns how many times Remediate was called
func (f *FlakyRemediation) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
