package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
	"github.com/edupath/application-management-api/internal/workflow"
	"github.com/edupath/application-management-api/pkg/utils"
)

// checklistEntry is one row of the default per-stage document checklist,
// seeded onto every new application.
type checklistEntry struct {
	Stage        workflow.Stage
	DocumentType workflow.DocumentType
	Mandatory    bool
}

var defaultChecklist = []checklistEntry{
	{workflow.StageSubmission, workflow.DocPassportCopy, true},
	{workflow.StageSubmission, workflow.DocAcademicTranscripts, true},
	{workflow.StageSubmission, workflow.DocEnglishCertificate, true},
	{workflow.StageSubmission, workflow.DocRecommendationLetter, false},
	{workflow.StageVisa, workflow.DocVisaPaymentProof, true},
	{workflow.StageVisa, workflow.DocFinancialStatement, true},
}

// stage1MandatoryCount is derived from defaultChecklist and stored on the
// application row at creation time.
func stage1MandatoryCount() int {
	n := 0
	for _, e := range defaultChecklist {
		if e.Stage == workflow.StageSubmission && e.Mandatory {
			n++
		}
	}
	return n
}

// DocumentTracker records document uploads and reviews against an
// application's per-stage requirement checklist. It never moves the workflow
// itself; the engine reacts to upload events separately.
type DocumentTracker struct {
	db     TxRunner
	locks  *ApplicationLocks
	apps   ApplicationStore
	docs   DocumentStore
	audit  AuditStore
	logger *logrus.Logger
}

// NewDocumentTracker creates a document tracker service.
func NewDocumentTracker(db TxRunner, locks *ApplicationLocks, apps ApplicationStore,
	docs DocumentStore, audit AuditStore, logger *logrus.Logger) *DocumentTracker {
	return &DocumentTracker{
		db:     db,
		locks:  locks,
		apps:   apps,
		docs:   docs,
		audit:  audit,
		logger: logger,
	}
}

// SeedChecklistWithTx inserts the default requirement checklist for a new
// application inside the creation transaction.
func (t *DocumentTracker) SeedChecklistWithTx(ctx context.Context, tx *database.Transaction, applicationID string) error {
	for _, e := range defaultChecklist {
		req := &models.DocumentRequirement{
			RequirementID: utils.GenerateID(),
			ApplicationID: applicationID,
			Stage:         int(e.Stage),
			DocumentType:  string(e.DocumentType),
			Mandatory:     e.Mandatory,
		}
		if err := t.docs.CreateRequirementWithTx(ctx, tx, req); err != nil {
			return fmt.Errorf("failed to seed requirement %s: %w", e.DocumentType, err)
		}
	}
	return nil
}

// Upload records a document upload. The latest upload of a type supersedes
// earlier ones, including rejected ones. The caller is expected to follow up
// with the workflow engine's upload hook so auto transitions can fire.
func (t *DocumentTracker) Upload(ctx context.Context, applicationID string, req *models.DocumentUploadRequest, actor string, role workflow.Role) (*models.Document, error) {
	if err := utils.ValidateApplicationID(applicationID); err != nil {
		return nil, err
	}
	docType, ok := workflow.ParseDocumentType(req.DocumentType)
	if !ok {
		return nil, fmt.Errorf("unknown document type: %s", req.DocumentType)
	}

	unlock := t.locks.Lock(applicationID)
	defer unlock()

	now := utils.GetCurrentTimeMillis()
	doc := &models.Document{
		DocumentID:    utils.GenerateDocumentID(),
		ApplicationID: applicationID,
		DocumentType:  string(docType),
		Status:        models.DocumentStatusUploaded,
		UploadedBy:    actor,
		CreatedTime:   now,
		UpdatedTime:   now,
	}
	if req.FileName != "" {
		name := utils.SanitizeString(req.FileName)
		doc.FileName = &name
	}

	err := t.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		app, err := t.apps.GetByIDWithTx(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if err := t.docs.CreateWithTx(ctx, tx, doc); err != nil {
			return err
		}
		if err := t.refreshCounters(ctx, app, doc); err != nil {
			return err
		}
		app.UpdatedTime = now
		return t.apps.UpdateWithTx(ctx, tx, app)
	})
	if err != nil {
		return nil, err
	}

	t.recordAudit(ctx, applicationID, "document_uploaded",
		fmt.Sprintf("document %s uploaded", docType), actor, role)
	return doc, nil
}

// Review applies an admin decision to an uploaded document. Rejections
// require a reason.
func (t *DocumentTracker) Review(ctx context.Context, applicationID, documentID string, req *models.DocumentReviewRequest, actor string, role workflow.Role) (*models.Document, error) {
	if role != workflow.RoleAdmin {
		return nil, workflow.NewError(workflow.ErrCodeUnauthorizedActor,
			"role %q is not authorized to review documents", role)
	}
	if req.Decision != models.DocumentStatusApproved && req.Decision != models.DocumentStatusRejected {
		return nil, fmt.Errorf("invalid review decision: %s", req.Decision)
	}
	if req.Decision == models.DocumentStatusRejected && strings.TrimSpace(req.Reason) == "" {
		return nil, workflow.NewError(workflow.ErrCodeMissingReason,
			"a reason is required to reject a document")
	}

	unlock := t.locks.Lock(applicationID)
	defer unlock()

	now := utils.GetCurrentTimeMillis()
	var doc *models.Document
	err := t.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		app, err := t.apps.GetByIDWithTx(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		doc, err = t.docs.GetByID(ctx, documentID)
		if err != nil {
			return err
		}
		if doc.ApplicationID != applicationID {
			return fmt.Errorf("document not found: %s", documentID)
		}
		var reason *string
		if req.Reason != "" {
			r := utils.SanitizeString(req.Reason)
			reason = &r
		}
		if err := t.docs.UpdateStatusWithTx(ctx, tx, documentID, req.Decision, &actor, reason, now); err != nil {
			return err
		}
		doc.Status = req.Decision
		doc.ReviewedBy = &actor
		doc.ReviewReason = reason
		doc.UpdatedTime = now

		if err := t.refreshCounters(ctx, app, doc); err != nil {
			return err
		}
		app.UpdatedTime = now
		return t.apps.UpdateWithTx(ctx, tx, app)
	})
	if err != nil {
		return nil, err
	}

	t.recordAudit(ctx, applicationID, "document_reviewed",
		fmt.Sprintf("document %s %s", doc.DocumentType, req.Decision), actor, role)
	return doc, nil
}

// ListDocuments returns all documents recorded against an application.
func (t *DocumentTracker) ListDocuments(ctx context.Context, applicationID string) ([]models.Document, error) {
	if err := utils.ValidateApplicationID(applicationID); err != nil {
		return nil, err
	}
	return t.docs.GetByApplicationID(ctx, applicationID)
}

// StageChecklist returns the requirement checklist for one stage, with each
// requirement paired to the document currently satisfying it.
func (t *DocumentTracker) StageChecklist(ctx context.Context, applicationID string, stage int) (*models.StageChecklist, error) {
	if err := utils.ValidateApplicationID(applicationID); err != nil {
		return nil, err
	}
	reqs, err := t.docs.GetRequirements(ctx, applicationID, stage)
	if err != nil {
		return nil, err
	}
	docs, err := t.docs.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	checklist := &models.StageChecklist{Stage: stage, Complete: true}
	for _, r := range reqs {
		satisfying := latestSatisfying(docs, r.DocumentType)
		item := models.StageChecklistItem{
			DocumentType: r.DocumentType,
			Mandatory:    r.Mandatory,
			Satisfied:    satisfying != nil,
			Document:     satisfying,
		}
		if r.Mandatory && !item.Satisfied {
			checklist.Complete = false
		}
		checklist.Items = append(checklist.Items, item)
	}
	return checklist, nil
}

// IsStageComplete reports whether every mandatory requirement of a stage has
// a satisfying document.
func (t *DocumentTracker) IsStageComplete(ctx context.Context, applicationID string, stage int) (bool, error) {
	checklist, err := t.StageChecklist(ctx, applicationID, stage)
	if err != nil {
		return false, err
	}
	return checklist.Complete, nil
}

// CountersFor recomputes the application's document counters over the
// mandatory requirements of the given stage.
func (t *DocumentTracker) CountersFor(ctx context.Context, applicationID string, stage int) (required, uploaded, approved int, err error) {
	reqs, err := t.docs.GetRequirements(ctx, applicationID, stage)
	if err != nil {
		return 0, 0, 0, err
	}
	docs, err := t.docs.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return 0, 0, 0, err
	}
	required, uploaded, approved = countDocuments(reqs, docs)
	return required, uploaded, approved, nil
}

// refreshCounters recomputes the counters for the application's current
// stage, folding in a document changed inside the open transaction that a
// plain read would not see yet.
func (t *DocumentTracker) refreshCounters(ctx context.Context, app *models.Application, changed *models.Document) error {
	reqs, err := t.docs.GetRequirements(ctx, app.ApplicationID, app.CurrentStage)
	if err != nil {
		return err
	}
	docs, err := t.docs.GetByApplicationID(ctx, app.ApplicationID)
	if err != nil {
		return err
	}
	merged := make([]models.Document, 0, len(docs)+1)
	for _, d := range docs {
		if d.DocumentID == changed.DocumentID {
			continue
		}
		merged = append(merged, d)
	}
	merged = append(merged, *changed)

	app.RequiredDocumentsCount, app.UploadedDocumentsCount, app.ApprovedDocumentsCount = countDocuments(reqs, merged)
	return nil
}

func (t *DocumentTracker) recordAudit(ctx context.Context, applicationID, event, message, actor string, role workflow.Role) {
	entry := &models.AuditEntry{
		AuditID:       utils.GenerateAuditID(),
		ApplicationID: applicationID,
		Event:         event,
		Message:       message,
		Actor:         actor,
		ActorRole:     string(role),
		CreatedTime:   utils.GetCurrentTimeMillis(),
	}
	if err := t.audit.Create(ctx, entry); err != nil {
		t.logger.WithFields(logrus.Fields{
			"application_id": applicationID,
			"event":          event,
			"error":          err.Error(),
		}).Warn("Failed to write audit entry")
	}
}

// countDocuments computes (required, uploaded, approved) over the mandatory
// requirements of a single stage. A requirement counts as uploaded when a
// non-rejected document of its type exists, and as approved when that
// document has been approved.
func countDocuments(reqs []models.DocumentRequirement, docs []models.Document) (required, uploaded, approved int) {
	for _, r := range reqs {
		if !r.Mandatory {
			continue
		}
		required++
		d := latestSatisfying(docs, r.DocumentType)
		if d == nil {
			continue
		}
		uploaded++
		if d.Status == models.DocumentStatusApproved {
			approved++
		}
	}
	return required, uploaded, approved
}

// latestSatisfying returns the most recent non-rejected document of the given
// type, or nil when none satisfies the requirement.
func latestSatisfying(docs []models.Document, docType string) *models.Document {
	var best *models.Document
	for i := range docs {
		d := &docs[i]
		if d.DocumentType != docType || d.Status == models.DocumentStatusRejected {
			continue
		}
		if best == nil || d.CreatedTime > best.CreatedTime {
			best = d
		}
	}
	return best
}
