package dao

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

const applicationColumns = `
	APPLICATION_ID, TRACKING_NUMBER, STUDENT_NAME, PARTNER_ID, PROGRAM_ID,
	CURRENT_STAGE, CURRENT_STATUS, NEXT_ACTOR, NEXT_ACTION,
	PREVIOUS_STAGE, PREVIOUS_STATUS, PREVIOUS_NEXT_ACTOR,
	REQUIRED_DOCUMENTS_COUNT, UPLOADED_DOCUMENTS_COUNT, APPROVED_DOCUMENTS_COUNT,
	COMMISSION_PERCENTAGE, ESTIMATED_COMMISSION, COMMISSION_STATUS,
	STATUS_CHANGE_COUNT, LAST_STATUS_CHANGE_AT, CREATED_TIME, UPDATED_TIME`

// ApplicationDAO handles database operations for student applications
type ApplicationDAO struct {
	db *database.DB
}

// NewApplicationDAO creates a new ApplicationDAO instance
func NewApplicationDAO(db *database.DB) *ApplicationDAO {
	return &ApplicationDAO{db: db}
}

// CreateWithTx inserts a new application using a transaction
func (dao *ApplicationDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, app *models.Application) error {
	query := `
		INSERT INTO STUDENT_APPLICATION (` + applicationColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		app.ApplicationID, app.TrackingNumber, app.StudentName, app.PartnerID, app.ProgramID,
		app.CurrentStage, app.CurrentStatus, app.NextActor, app.NextAction,
		app.PreviousStage, app.PreviousStatus, app.PreviousNextActor,
		app.RequiredDocumentsCount, app.UploadedDocumentsCount, app.ApprovedDocumentsCount,
		app.CommissionPercentage, app.EstimatedCommission, app.CommissionStatus,
		app.StatusChangeCount, app.LastStatusChangeAt, app.CreatedTime, app.UpdatedTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID retrieves an application by ID
func (dao *ApplicationDAO) GetByID(ctx context.Context, applicationID string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM STUDENT_APPLICATION WHERE APPLICATION_ID = ?`

	var app models.Application
	err := dao.db.GetContext(ctx, &app, query, applicationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("application not found: %s", applicationID)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &app, nil
}

// GetByIDWithTx retrieves an application by ID using a transaction
func (dao *ApplicationDAO) GetByIDWithTx(ctx context.Context, tx *database.Transaction, applicationID string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM STUDENT_APPLICATION WHERE APPLICATION_ID = ? FOR UPDATE`

	var app models.Application
	err := tx.GetContext(ctx, &app, query, applicationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("application not found: %s", applicationID)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &app, nil
}

// UpdateWithTx updates the mutable workflow fields of an application
func (dao *ApplicationDAO) UpdateWithTx(ctx context.Context, tx *database.Transaction, app *models.Application) error {
	query := `
		UPDATE STUDENT_APPLICATION SET
			CURRENT_STAGE = ?, CURRENT_STATUS = ?, NEXT_ACTOR = ?, NEXT_ACTION = ?,
			PREVIOUS_STAGE = ?, PREVIOUS_STATUS = ?, PREVIOUS_NEXT_ACTOR = ?,
			REQUIRED_DOCUMENTS_COUNT = ?, UPLOADED_DOCUMENTS_COUNT = ?, APPROVED_DOCUMENTS_COUNT = ?,
			COMMISSION_PERCENTAGE = ?, ESTIMATED_COMMISSION = ?, COMMISSION_STATUS = ?,
			STATUS_CHANGE_COUNT = ?, LAST_STATUS_CHANGE_AT = ?, UPDATED_TIME = ?
		WHERE APPLICATION_ID = ?
	`

	result, err := tx.ExecContext(ctx, query,
		app.CurrentStage, app.CurrentStatus, app.NextActor, app.NextAction,
		app.PreviousStage, app.PreviousStatus, app.PreviousNextActor,
		app.RequiredDocumentsCount, app.UploadedDocumentsCount, app.ApprovedDocumentsCount,
		app.CommissionPercentage, app.EstimatedCommission, app.CommissionStatus,
		app.StatusChangeCount, app.LastStatusChangeAt, app.UpdatedTime,
		app.ApplicationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("application not found: %s", app.ApplicationID)
	}

	return nil
}

// Search searches for applications based on provided parameters
func (dao *ApplicationDAO) Search(ctx context.Context, params *models.ApplicationSearchParams) ([]models.Application, int, error) {
	var conditions []string
	var args []interface{}

	if params.PartnerID != "" {
		conditions = append(conditions, "PARTNER_ID = ?")
		args = append(args, params.PartnerID)
	}

	if len(params.Stages) > 0 {
		placeholders := strings.Repeat("?,", len(params.Stages)-1) + "?"
		conditions = append(conditions, fmt.Sprintf("CURRENT_STAGE IN (%s)", placeholders))
		for _, s := range params.Stages {
			args = append(args, s)
		}
	}

	if len(params.Statuses) > 0 {
		placeholders := strings.Repeat("?,", len(params.Statuses)-1) + "?"
		conditions = append(conditions, fmt.Sprintf("CURRENT_STATUS IN (%s)", placeholders))
		for _, s := range params.Statuses {
			args = append(args, s)
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM STUDENT_APPLICATION` + whereClause
	var total int
	if err := dao.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query := `SELECT ` + applicationColumns + ` FROM STUDENT_APPLICATION` + whereClause +
		` ORDER BY CREATED_TIME DESC LIMIT ? OFFSET ?`
	args = append(args, params.Limit, params.Offset)

	var apps []models.Application
	if err := dao.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search applications: %w", err)
	}

	return apps, total, nil
}

// FindByStatusOlderThan returns non-terminal applications sitting in one of
// the given statuses since before the cutoff time. Used by the staleness
// sweep and the monitoring view.
func (dao *ApplicationDAO) FindByStatusOlderThan(ctx context.Context, statuses []string, cutoffMillis int64) ([]models.Application, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(statuses)-1) + "?"
	query := fmt.Sprintf(`SELECT `+applicationColumns+`
		FROM STUDENT_APPLICATION
		WHERE CURRENT_STATUS IN (%s) AND LAST_STATUS_CHANGE_AT < ?
		ORDER BY LAST_STATUS_CHANGE_AT ASC`, placeholders)

	args := make([]interface{}, 0, len(statuses)+1)
	for _, s := range statuses {
		args = append(args, s)
	}
	args = append(args, cutoffMillis)

	var apps []models.Application
	if err := dao.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find stale applications: %w", err)
	}

	return apps, nil
}
