package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
)

// DocumentDAO handles database operations for documents and their
// per-stage requirement checklists.
type DocumentDAO struct {
	db *database.DB
}

// NewDocumentDAO creates a new DocumentDAO instance
func NewDocumentDAO(db *database.DB) *DocumentDAO {
	return &DocumentDAO{db: db}
}

// CreateWithTx inserts a new document record using a transaction
func (dao *DocumentDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, doc *models.Document) error {
	query := `
		INSERT INTO APPLICATION_DOCUMENT (
			DOCUMENT_ID, APPLICATION_ID, DOCUMENT_TYPE, STATUS, FILE_NAME,
			UPLOADED_BY, REVIEWED_BY, REVIEW_REASON, CREATED_TIME, UPDATED_TIME
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		doc.DocumentID, doc.ApplicationID, doc.DocumentType, doc.Status, doc.FileName,
		doc.UploadedBy, doc.ReviewedBy, doc.ReviewReason, doc.CreatedTime, doc.UpdatedTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (dao *DocumentDAO) GetByID(ctx context.Context, documentID string) (*models.Document, error) {
	query := `
		SELECT DOCUMENT_ID, APPLICATION_ID, DOCUMENT_TYPE, STATUS, FILE_NAME,
		       UPLOADED_BY, REVIEWED_BY, REVIEW_REASON, CREATED_TIME, UPDATED_TIME
		FROM APPLICATION_DOCUMENT
		WHERE DOCUMENT_ID = ?
	`

	var doc models.Document
	err := dao.db.GetContext(ctx, &doc, query, documentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("document not found: %s", documentID)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// GetByApplicationID retrieves all documents for an application
func (dao *DocumentDAO) GetByApplicationID(ctx context.Context, applicationID string) ([]models.Document, error) {
	query := `
		SELECT DOCUMENT_ID, APPLICATION_ID, DOCUMENT_TYPE, STATUS, FILE_NAME,
		       UPLOADED_BY, REVIEWED_BY, REVIEW_REASON, CREATED_TIME, UPDATED_TIME
		FROM APPLICATION_DOCUMENT
		WHERE APPLICATION_ID = ?
		ORDER BY CREATED_TIME ASC
	`

	var docs []models.Document
	if err := dao.db.SelectContext(ctx, &docs, query, applicationID); err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}

	return docs, nil
}

// UpdateStatusWithTx updates a document's review outcome using a transaction
func (dao *DocumentDAO) UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, documentID, status string, reviewedBy, reviewReason *string, updatedTime int64) error {
	query := `
		UPDATE APPLICATION_DOCUMENT
		SET STATUS = ?, REVIEWED_BY = ?, REVIEW_REASON = ?, UPDATED_TIME = ?
		WHERE DOCUMENT_ID = ?
	`

	result, err := tx.ExecContext(ctx, query, status, reviewedBy, reviewReason, updatedTime, documentID)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("document not found: %s", documentID)
	}

	return nil
}

// CreateRequirementWithTx inserts a document requirement using a transaction
func (dao *DocumentDAO) CreateRequirementWithTx(ctx context.Context, tx *database.Transaction, req *models.DocumentRequirement) error {
	query := `
		INSERT INTO DOCUMENT_REQUIREMENT (
			REQUIREMENT_ID, APPLICATION_ID, STAGE, DOCUMENT_TYPE, MANDATORY
		) VALUES (?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		req.RequirementID, req.ApplicationID, req.Stage, req.DocumentType, req.Mandatory,
	)
	if err != nil {
		return fmt.Errorf("failed to create document requirement: %w", err)
	}

	return nil
}

// GetRequirements retrieves the requirement checklist for an application,
// optionally restricted to one stage (stage 0 returns all).
func (dao *DocumentDAO) GetRequirements(ctx context.Context, applicationID string, stage int) ([]models.DocumentRequirement, error) {
	query := `
		SELECT REQUIREMENT_ID, APPLICATION_ID, STAGE, DOCUMENT_TYPE, MANDATORY
		FROM DOCUMENT_REQUIREMENT
		WHERE APPLICATION_ID = ?
	`
	args := []interface{}{applicationID}

	if stage > 0 {
		query += ` AND STAGE = ?`
		args = append(args, stage)
	}
	query += ` ORDER BY STAGE ASC, DOCUMENT_TYPE ASC`

	var reqs []models.DocumentRequirement
	if err := dao.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get document requirements: %w", err)
	}

	return reqs, nil
}
