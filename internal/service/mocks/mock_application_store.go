package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

// MockApplicationStore is a mock implementation of ApplicationStore
type MockApplicationStore struct {
	mock.Mock
}

func (m *MockApplicationStore) CreateWithTx(ctx context.Context, tx *database.Transaction, app *models.Application) error {
	args := m.Called(ctx, tx, app)
	return args.Error(0)
}

func (m *MockApplicationStore) GetByID(ctx context.Context, applicationID string) (*models.Application, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *MockApplicationStore) GetByIDWithTx(ctx context.Context, tx *database.Transaction, applicationID string) (*models.Application, error) {
	args := m.Called(ctx, tx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *MockApplicationStore) UpdateWithTx(ctx context.Context, tx *database.Transaction, app *models.Application) error {
	args := m.Called(ctx, tx, app)
	return args.Error(0)
}

func (m *MockApplicationStore) Search(ctx context.Context, params *models.ApplicationSearchParams) ([]models.Application, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Application), args.Int(1), args.Error(2)
}

func (m *MockApplicationStore) FindByStatusOlderThan(ctx context.Context, statuses []string, cutoffMillis int64) ([]models.Application, error) {
	args := m.Called(ctx, statuses, cutoffMillis)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Application), args.Error(1)
}
