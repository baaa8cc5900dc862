package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

// MockStageHistoryStore is a mock implementation of StageHistoryStore
type MockStageHistoryStore struct {
	mock.Mock
}

func (m *MockStageHistoryStore) CreateWithTx(ctx context.Context, tx *database.Transaction, entry *models.StageHistoryEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockStageHistoryStore) GetByApplicationID(ctx context.Context, applicationID string) ([]models.StageHistoryEntry, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StageHistoryEntry), args.Error(1)
}
