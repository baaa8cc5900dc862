package dao

import (
	"context"
	"fmt"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

// AuditDAO handles database operations for the best-effort workflow audit
// log. Audit writes happen after the transition transaction has committed,
// so they are never part of one.
type AuditDAO struct {
	db *database.DB
}

// NewAuditDAO creates a new AuditDAO instance
func NewAuditDAO(db *database.DB) *AuditDAO {
	return &AuditDAO{db: db}
}

// Create inserts a new audit entry
func (dao *AuditDAO) Create(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO WORKFLOW_AUDIT (
			AUDIT_ID, APPLICATION_ID, EVENT, MESSAGE, ACTOR, ACTOR_ROLE,
			OLD_STATUS, NEW_STATUS, DETAILS, CREATED_TIME
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := dao.db.ExecContext(ctx, query,
		entry.AuditID,
		entry.ApplicationID,
		entry.Event,
		entry.Message,
		entry.Actor,
		entry.ActorRole,
		entry.OldStatus,
		entry.NewStatus,
		entry.Details,
		entry.CreatedTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	return nil
}

// GetByApplicationID retrieves all audit entries for an application
func (dao *AuditDAO) GetByApplicationID(ctx context.Context, applicationID string) ([]models.AuditEntry, error) {
	query := `
		SELECT AUDIT_ID, APPLICATION_ID, EVENT, MESSAGE, ACTOR, ACTOR_ROLE,
		       OLD_STATUS, NEW_STATUS, DETAILS, CREATED_TIME
		FROM WORKFLOW_AUDIT
		WHERE APPLICATION_ID = ?
		ORDER BY CREATED_TIME DESC
	`

	var entries []models.AuditEntry
	if err := dao.db.SelectContext(ctx, &entries, query, applicationID); err != nil {
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}

	return entries, nil
}
