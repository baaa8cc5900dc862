package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

// MockCommissionStore is a mock implementation of CommissionStore
type MockCommissionStore struct {
	mock.Mock
}

func (m *MockCommissionStore) CreateWithTx(ctx context.Context, tx *database.Transaction, tracking *models.CommissionTracking) error {
	args := m.Called(ctx, tx, tracking)
	return args.Error(0)
}

func (m *MockCommissionStore) GetByID(ctx context.Context, trackingID string) (*models.CommissionTracking, error) {
	args := m.Called(ctx, trackingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommissionTracking), args.Error(1)
}

func (m *MockCommissionStore) GetByIDWithTx(ctx context.Context, tx *database.Transaction, trackingID string) (*models.CommissionTracking, error) {
	args := m.Called(ctx, tx, trackingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommissionTracking), args.Error(1)
}

func (m *MockCommissionStore) GetByApplicationID(ctx context.Context, applicationID string) (*models.CommissionTracking, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommissionTracking), args.Error(1)
}

func (m *MockCommissionStore) GetByApplicationIDWithTx(ctx context.Context, tx *database.Transaction, applicationID string) (*models.CommissionTracking, error) {
	args := m.Called(ctx, tx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommissionTracking), args.Error(1)
}

func (m *MockCommissionStore) UpdateWithTx(ctx context.Context, tx *database.Transaction, tracking *models.CommissionTracking) error {
	args := m.Called(ctx, tx, tracking)
	return args.Error(0)
}

func (m *MockCommissionStore) PipelineStats(ctx context.Context) ([]models.CommissionPipelineStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CommissionPipelineStat), args.Error(1)
}

func (m *MockCommissionStore) SummaryByPartner(ctx context.Context, partnerID string) ([]models.CommissionPipelineStat, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CommissionPipelineStat), args.Error(1)
}
