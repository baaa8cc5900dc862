package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

// PartnerDAO handles database operations for partners
type PartnerDAO struct {
	db *database.DB
}

// NewPartnerDAO creates a new PartnerDAO instance
func NewPartnerDAO(db *database.DB) *PartnerDAO {
	return &PartnerDAO{db: db}
}

// GetByID retrieves a partner by ID
func (dao *PartnerDAO) GetByID(ctx context.Context, partnerID string) (*models.Partner, error) {
	query := `
		SELECT PARTNER_ID, NAME, TIER, CONVERSION_RATE,
		       TOTAL_COMMISSION_EARNED, COMMISSION_PENDING,
		       CREATED_TIME, UPDATED_TIME
		FROM PARTNER
		WHERE PARTNER_ID = ?
	`

	var partner models.Partner
	err := dao.db.GetContext(ctx, &partner, query, partnerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("partner not found: %s", partnerID)
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	return &partner, nil
}

// AdjustAggregatesWithTx applies deltas to a partner's commission aggregates
// using a transaction. Called when a commission is earned or paid out.
func (dao *PartnerDAO) AdjustAggregatesWithTx(ctx context.Context, tx *database.Transaction, partnerID string, earnedDelta, pendingDelta float64, updatedTime int64) error {
	query := `
		UPDATE PARTNER
		SET TOTAL_COMMISSION_EARNED = TOTAL_COMMISSION_EARNED + ?,
		    COMMISSION_PENDING = COMMISSION_PENDING + ?,
		    UPDATED_TIME = ?
		WHERE PARTNER_ID = ?
	`

	result, err := tx.ExecContext(ctx, query, earnedDelta, pendingDelta, updatedTime, partnerID)
	if err != nil {
		return fmt.Errorf("failed to adjust partner aggregates: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("partner not found: %s", partnerID)
	}

	return nil
}

// ProgramDAO handles database operations for university programs
type ProgramDAO struct {
	db *database.DB
}

// NewProgramDAO creates a new ProgramDAO instance
func NewProgramDAO(db *database.DB) *ProgramDAO {
	return &ProgramDAO{db: db}
}

// GetByID retrieves a program by ID
func (dao *ProgramDAO) GetByID(ctx context.Context, programID string) (*models.Program, error) {
	query := `
		SELECT PROGRAM_ID, UNIVERSITY_NAME, NAME, TUITION_FEE, COMMISSION_PERCENTAGE,
		       CREATED_TIME, UPDATED_TIME
		FROM PROGRAM
		WHERE PROGRAM_ID = ?
	`

	var program models.Program
	err := dao.db.GetContext(ctx, &program, query, programID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("program not found: %s", programID)
		}
		return nil, fmt.Errorf("failed to get program: %w", err)
	}

	return &program, nil
}
