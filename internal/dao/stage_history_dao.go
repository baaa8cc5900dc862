package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

// StageHistoryDAO handles database operations for the append-only stage
// history of an application.
type StageHistoryDAO struct {
	db *database.DB
}

// NewStageHistoryDAO creates a new StageHistoryDAO instance
func NewStageHistoryDAO(db *database.DB) *StageHistoryDAO {
	return &StageHistoryDAO{db: db}
}

// CreateWithTx appends a new history entry using a transaction
func (dao *StageHistoryDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, entry *models.StageHistoryEntry) error {
	query := `
		INSERT INTO APPLICATION_STAGE_HISTORY (
			HISTORY_ID, APPLICATION_ID, STAGE, STATUS, ACTION_TIME,
			ACTOR, ACTOR_ROLE, REASON, NOTES
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		entry.HistoryID,
		entry.ApplicationID,
		entry.Stage,
		entry.Status,
		entry.ActionTime,
		entry.Actor,
		entry.ActorRole,
		entry.Reason,
		entry.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create stage history entry: %w", err)
	}

	return nil
}

// GetByApplicationID retrieves the full history for an application in
// chronological order.
func (dao *StageHistoryDAO) GetByApplicationID(ctx context.Context, applicationID string) ([]models.StageHistoryEntry, error) {
	query := `
		SELECT HISTORY_ID, APPLICATION_ID, STAGE, STATUS, ACTION_TIME,
		       ACTOR, ACTOR_ROLE, REASON, NOTES
		FROM APPLICATION_STAGE_HISTORY
		WHERE APPLICATION_ID = ?
		ORDER BY ACTION_TIME ASC, HISTORY_ID ASC
	`

	var entries []models.StageHistoryEntry
	if err := dao.db.SelectContext(ctx, &entries, query, applicationID); err != nil {
		return nil, fmt.Errorf("failed to get stage history: %w", err)
	}

	return entries, nil
}

// GetLatestByApplicationID retrieves the most recent history entry for an
// application.
func (dao *StageHistoryDAO) GetLatestByApplicationID(ctx context.Context, applicationID string) (*models.StageHistoryEntry, error) {
	query := `
		SELECT HISTORY_ID, APPLICATION_ID, STAGE, STATUS, ACTION_TIME,
		       ACTOR, ACTOR_ROLE, REASON, NOTES
		FROM APPLICATION_STAGE_HISTORY
		WHERE APPLICATION_ID = ?
		ORDER BY ACTION_TIME DESC, HISTORY_ID DESC
		LIMIT 1
	`

	var entry models.StageHistoryEntry
	err := dao.db.GetContext(ctx, &entry, query, applicationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no stage history found for application: %s", applicationID)
		}
		return nil, fmt.Errorf("failed to get latest stage history entry: %w", err)
	}

	return &entry, nil
}
