// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/models"
	"github.com/stretchr/testify/mock"
)

// MockRemediation provides a mock implementation of the runner Remediation interface
type MockRemediation struct {
	mock.Mock
	Desc string
}

// Remediate mocks the Remediate method
func (m *MockRemediation) Remediate(ctx context.Context, module models.PlannedModule) error {
	// Without expectations behave like a remediation that always succeeds
	if len(m.ExpectedCalls) == 0 {
		return nil
	}
	args := m.Called(ctx, module)
	return args.Error(0)
}

// Description returns the remediation description
func (m *MockRemediation) Description() string {
	if m.Desc != "" {
		return m.Desc
	}
	return "mock remediation"
}

// Remediations returns a succeeding MockRemediation for every name
func Remediations(names ...string) map[string]*MockRemediation {
	mocks := make(map[string]*MockRemediation, len(names))
	for _, name := range names {
		mocks[name] = &MockRemediation{Desc: "mock " + name}
	}
	return mocks
}
