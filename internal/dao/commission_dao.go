package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

const commissionColumns = `
	TRACKING_ID, APPLICATION_ID, PARTNER_ID, PROGRAM_ID,
	TUITION_FEE, COMMISSION_PERCENTAGE, PARTNER_TIER,
	BASE_AMOUNT, BONUS_AMOUNT, AMOUNT, STATUS, ENROLLMENT_DATE,
	APPROVED_BY, APPROVED_AT, RELEASED_BY, RELEASED_AT, PAID_BY, PAID_AT,
	PAYMENT_METHOD, PAYMENT_REFERENCE, DISPUTE_REASON, NOTES,
	CREATED_TIME, UPDATED_TIME`

// CommissionDAO handles database operations for commission tracking records
type CommissionDAO struct {
	db *database.DB
}

// NewCommissionDAO creates a new CommissionDAO instance
func NewCommissionDAO(db *database.DB) *CommissionDAO {
	return &CommissionDAO{db: db}
}

// CreateWithTx inserts a new commission tracking record using a transaction
func (dao *CommissionDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, tracking *models.CommissionTracking) error {
	query := `
		INSERT INTO COMMISSION_TRACKING (` + commissionColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		tracking.TrackingID, tracking.ApplicationID, tracking.PartnerID, tracking.ProgramID,
		tracking.TuitionFee, tracking.CommissionPercentage, tracking.PartnerTier,
		tracking.BaseAmount, tracking.BonusAmount, tracking.Amount, tracking.Status, tracking.EnrollmentDate,
		tracking.ApprovedBy, tracking.ApprovedAt, tracking.ReleasedBy, tracking.ReleasedAt, tracking.PaidBy, tracking.PaidAt,
		tracking.PaymentMethod, tracking.PaymentReference, tracking.DisputeReason, tracking.Notes,
		tracking.CreatedTime, tracking.UpdatedTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create commission tracking: %w", err)
	}

	return nil
}

// GetByID retrieves a commission tracking record by ID
func (dao *CommissionDAO) GetByID(ctx context.Context, trackingID string) (*models.CommissionTracking, error) {
	query := `SELECT ` + commissionColumns + ` FROM COMMISSION_TRACKING WHERE TRACKING_ID = ?`

	var tracking models.CommissionTracking
	err := dao.db.GetContext(ctx, &tracking, query, trackingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("commission tracking not found: %s", trackingID)
		}
		return nil, fmt.Errorf("failed to get commission tracking: %w", err)
	}

	return &tracking, nil
}

// GetByIDWithTx retrieves a commission tracking record by ID using a transaction
func (dao *CommissionDAO) GetByIDWithTx(ctx context.Context, tx *database.Transaction, trackingID string) (*models.CommissionTracking, error) {
	query := `SELECT ` + commissionColumns + ` FROM COMMISSION_TRACKING WHERE TRACKING_ID = ? FOR UPDATE`

	var tracking models.CommissionTracking
	err := tx.GetContext(ctx, &tracking, query, trackingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("commission tracking not found: %s", trackingID)
		}
		return nil, fmt.Errorf("failed to get commission tracking: %w", err)
	}

	return &tracking, nil
}

// GetByApplicationID retrieves the commission tracking record for an application
func (dao *CommissionDAO) GetByApplicationID(ctx context.Context, applicationID string) (*models.CommissionTracking, error) {
	query := `SELECT ` + commissionColumns + ` FROM COMMISSION_TRACKING WHERE APPLICATION_ID = ?`

	var tracking models.CommissionTracking
	err := dao.db.GetContext(ctx, &tracking, query, applicationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("commission tracking not found for application: %s", applicationID)
		}
		return nil, fmt.Errorf("failed to get commission tracking: %w", err)
	}

	return &tracking, nil
}

// GetByApplicationIDWithTx retrieves the commission tracking record for an
// application using a transaction, locking the row for update
func (dao *CommissionDAO) GetByApplicationIDWithTx(ctx context.Context, tx *database.Transaction, applicationID string) (*models.CommissionTracking, error) {
	query := `SELECT ` + commissionColumns + ` FROM COMMISSION_TRACKING WHERE APPLICATION_ID = ? FOR UPDATE`

	var tracking models.CommissionTracking
	err := tx.GetContext(ctx, &tracking, query, applicationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("commission tracking not found for application: %s", applicationID)
		}
		return nil, fmt.Errorf("failed to get commission tracking: %w", err)
	}

	return &tracking, nil
}

// UpdateWithTx updates a commission tracking record using a transaction
func (dao *CommissionDAO) UpdateWithTx(ctx context.Context, tx *database.Transaction, tracking *models.CommissionTracking) error {
	query := `
		UPDATE COMMISSION_TRACKING SET
			STATUS = ?, APPROVED_BY = ?, APPROVED_AT = ?, RELEASED_BY = ?, RELEASED_AT = ?,
			PAID_BY = ?, PAID_AT = ?, PAYMENT_METHOD = ?, PAYMENT_REFERENCE = ?,
			DISPUTE_REASON = ?, NOTES = ?, UPDATED_TIME = ?
		WHERE TRACKING_ID = ?
	`

	result, err := tx.ExecContext(ctx, query,
		tracking.Status, tracking.ApprovedBy, tracking.ApprovedAt, tracking.ReleasedBy, tracking.ReleasedAt,
		tracking.PaidBy, tracking.PaidAt, tracking.PaymentMethod, tracking.PaymentReference,
		tracking.DisputeReason, tracking.Notes, tracking.UpdatedTime,
		tracking.TrackingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update commission tracking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("commission tracking not found: %s", tracking.TrackingID)
	}

	return nil
}

// PipelineStats aggregates count and total amount per commission status
func (dao *CommissionDAO) PipelineStats(ctx context.Context) ([]models.CommissionPipelineStat, error) {
	query := `
		SELECT STATUS, COUNT(*) AS CNT, COALESCE(SUM(AMOUNT), 0) AS TOTAL
		FROM COMMISSION_TRACKING
		GROUP BY STATUS
	`

	var stats []models.CommissionPipelineStat
	if err := dao.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get commission pipeline stats: %w", err)
	}

	return stats, nil
}

// SummaryByPartner aggregates commission amounts, optionally scoped to a
// single partner (empty partnerID aggregates across all partners).
func (dao *CommissionDAO) SummaryByPartner(ctx context.Context, partnerID string) ([]models.CommissionPipelineStat, error) {
	query := `
		SELECT STATUS, COUNT(*) AS CNT, COALESCE(SUM(AMOUNT), 0) AS TOTAL
		FROM COMMISSION_TRACKING
	`
	var args []interface{}
	if partnerID != "" {
		query += ` WHERE PARTNER_ID = ?`
		args = append(args, partnerID)
	}
	query += ` GROUP BY STATUS`

	var stats []models.CommissionPipelineStat
	if err := dao.db.SelectContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get commission summary: %w", err)
	}

	return stats, nil
}
