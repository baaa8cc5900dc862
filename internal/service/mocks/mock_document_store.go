package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

// MockDocumentStore is a mock implementation of DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) CreateWithTx(ctx context.Context, tx *database.Transaction, doc *models.Document) error {
	args := m.Called(ctx, tx, doc)
	return args.Error(0)
}

func (m *MockDocumentStore) GetByID(ctx context.Context, documentID string) (*models.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentStore) GetByApplicationID(ctx context.Context, applicationID string) ([]models.Document, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Document), args.Error(1)
}

func (m *MockDocumentStore) UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, documentID, status string, reviewedBy, reviewReason *string, updatedTime int64) error {
	args := m.Called(ctx, tx, documentID, status, reviewedBy, reviewReason, updatedTime)
	return args.Error(0)
}

func (m *MockDocumentStore) CreateRequirementWithTx(ctx context.Context, tx *database.Transaction, req *models.DocumentRequirement) error {
	args := m.Called(ctx, tx, req)
	return args.Error(0)
}

func (m *MockDocumentStore) GetRequirements(ctx context.Context, applicationID string, stage int) ([]models.DocumentRequirement, error) {
	args := m.Called(ctx, applicationID, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DocumentRequirement), args.Error(1)
}
