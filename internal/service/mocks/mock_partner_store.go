package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

// MockPartnerStore is a mock implementation of PartnerStore
type MockPartnerStore struct {
	mock.Mock
}

func (m *MockPartnerStore) GetByID(ctx context.Context, partnerID string) (*models.Partner, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Partner), args.Error(1)
}

func (m *MockPartnerStore) AdjustAggregatesWithTx(ctx context.Context, tx *database.Transaction, partnerID string, earnedDelta, pendingDelta float64, updatedTime int64) error {
	args := m.Called(ctx, tx, partnerID, earnedDelta, pendingDelta, updatedTime)
	return args.Error(0)
}

// MockProgramStore is a mock implementation of ProgramStore
type MockProgramStore struct {
	mock.Mock
}

func (m *MockProgramStore) GetByID(ctx context.Context, programID string) (*models.Program, error) {
	args := m.Called(ctx, programID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Program), args.Error(1)
}
