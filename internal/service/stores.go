package service

import (
	"context"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

// The services accept narrow store interfaces rather than concrete DAOs so
// the engines can be exercised in tests without a database. The DAOs in
// internal/dao satisfy these.

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(*database.Transaction) error) error
}

// ApplicationStore persists applications.
type ApplicationStore interface {
	CreateWithTx(ctx context.Context, tx *database.Transaction, app *models.Application) error
	GetByID(ctx context.Context, applicationID string) (*models.Application, error)
	GetByIDWithTx(ctx context.Context, tx *database.Transaction, applicationID string) (*models.Application, error)
	UpdateWithTx(ctx context.Context, tx *database.Transaction, app *models.Application) error
	Search(ctx context.Context, params *models.ApplicationSearchParams) ([]models.Application, int, error)
	FindByStatusOlderThan(ctx context.Context, statuses []string, cutoffMillis int64) ([]models.Application, error)
}

// StageHistoryStore persists the append-only stage history.
type StageHistoryStore interface {
	CreateWithTx(ctx context.Context, tx *database.Transaction, entry *models.StageHistoryEntry) error
	GetByApplicationID(ctx context.Context, applicationID string) ([]models.StageHistoryEntry, error)
}

// DocumentStore persists documents and requirement checklists.
type DocumentStore interface {
	CreateWithTx(ctx context.Context, tx *database.Transaction, doc *models.Document) error
	GetByID(ctx context.Context, documentID string) (*models.Document, error)
	GetByApplicationID(ctx context.Context, applicationID string) ([]models.Document, error)
	UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, documentID, status string, reviewedBy, reviewReason *string, updatedTime int64) error
	CreateRequirementWithTx(ctx context.Context, tx *database.Transaction, req *models.DocumentRequirement) error
	GetRequirements(ctx context.Context, applicationID string, stage int) ([]models.DocumentRequirement, error)
}

// CommissionStore persists commission tracking records.
type CommissionStore interface {
	CreateWithTx(ctx context.Context, tx *database.Transaction, tracking *models.CommissionTracking) error
	GetByID(ctx context.Context, trackingID string) (*models.CommissionTracking, error)
	GetByIDWithTx(ctx context.Context, tx *database.Transaction, trackingID string) (*models.CommissionTracking, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*models.CommissionTracking, error)
	GetByApplicationIDWithTx(ctx context.Context, tx *database.Transaction, applicationID string) (*models.CommissionTracking, error)
	UpdateWithTx(ctx context.Context, tx *database.Transaction, tracking *models.CommissionTracking) error
	PipelineStats(ctx context.Context) ([]models.CommissionPipelineStat, error)
	SummaryByPartner(ctx context.Context, partnerID string) ([]models.CommissionPipelineStat, error)
}

// PartnerStore reads partners and maintains their commission aggregates.
type PartnerStore interface {
	GetByID(ctx context.Context, partnerID string) (*models.Partner, error)
	AdjustAggregatesWithTx(ctx context.Context, tx *database.Transaction, partnerID string, earnedDelta, pendingDelta float64, updatedTime int64) error
}

// ProgramStore reads university programs.
type ProgramStore interface {
	GetByID(ctx context.Context, programID string) (*models.Program, error)
}

// AuditStore writes the best-effort audit log.
type AuditStore interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
}
