package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edupath/application-management-api/internal/models"
)

// MockAuditStore is a mock implementation of AuditStore
type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) Create(ctx context.Context, entry *models.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
