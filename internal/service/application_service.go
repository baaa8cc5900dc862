package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/models"
	"github.com/edupath/application-management-api/internal/workflow"
	"github.com/edupath/application-management-api/pkg/utils"
)

const systemActor = "system"

// WorkflowEngine drives applications through the five-stage pipeline. Every
// state change runs under the application's lock and inside one database
// transaction; the audit log is written after commit and never blocks or
// reverses a change.
type WorkflowEngine struct {
	db          TxRunner
	matrix      *workflow.Matrix
	locks       *ApplicationLocks
	apps        ApplicationStore
	history     StageHistoryStore
	docs        DocumentStore
	tracker     *DocumentTracker
	commissions *CommissionEngine
	audit       AuditStore
	logger      *logrus.Logger
}

// NewWorkflowEngine creates the workflow engine service.
func NewWorkflowEngine(db TxRunner, matrix *workflow.Matrix, locks *ApplicationLocks,
	apps ApplicationStore, history StageHistoryStore, docs DocumentStore,
	tracker *DocumentTracker, commissions *CommissionEngine, audit AuditStore,
	logger *logrus.Logger) *WorkflowEngine {
	return &WorkflowEngine{
		db:          db,
		matrix:      matrix,
		locks:       locks,
		apps:        apps,
		history:     history,
		docs:        docs,
		tracker:     tracker,
		commissions: commissions,
		audit:       audit,
		logger:      logger,
	}
}

// CreateApplication registers a new application at stage 1 with its default
// document checklist seeded.
func (e *WorkflowEngine) CreateApplication(ctx context.Context, req *models.ApplicationCreateRequest, actor string, role workflow.Role) (*models.Application, error) {
	rule, err := e.matrix.Rule(workflow.StageSubmission, workflow.StatusNewApplication)
	if err != nil {
		return nil, err
	}

	now := utils.GetCurrentTimeMillis()
	app := &models.Application{
		ApplicationID:          utils.GenerateApplicationID(),
		TrackingNumber:         utils.GenerateTrackingNumber(),
		StudentName:            utils.SanitizeString(req.StudentName),
		PartnerID:              req.PartnerID,
		ProgramID:              req.ProgramID,
		CurrentStage:           int(workflow.StageSubmission),
		CurrentStatus:          string(workflow.StatusNewApplication),
		NextActor:              string(rule.NextActor),
		NextAction:             rule.NextAction,
		RequiredDocumentsCount: stage1MandatoryCount(),
		LastStatusChangeAt:     now,
		CreatedTime:            now,
		UpdatedTime:            now,
	}

	err = e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		if err := e.apps.CreateWithTx(ctx, tx, app); err != nil {
			return err
		}
		if err := e.tracker.SeedChecklistWithTx(ctx, tx, app.ApplicationID); err != nil {
			return err
		}
		entry := &models.StageHistoryEntry{
			HistoryID:     utils.GenerateHistoryID(),
			ApplicationID: app.ApplicationID,
			Stage:         app.CurrentStage,
			Status:        app.CurrentStatus,
			ActionTime:    now,
			Actor:         actor,
			ActorRole:     string(role),
		}
		return e.history.CreateWithTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	e.recordAudit(ctx, app.ApplicationID, "application_created",
		"application created", actor, role, nil, &app.CurrentStatus)
	e.logger.WithFields(logrus.Fields{
		"application_id":  app.ApplicationID,
		"tracking_number": app.TrackingNumber,
		"partner_id":      app.PartnerID,
	}).Info("Application created")
	return app, nil
}

// ApplyTransition moves an application to the requested target status. When
// enrollment is confirmed the engine immediately advances to commission
// pending in the same transaction and creates the commission record.
func (e *WorkflowEngine) ApplyTransition(ctx context.Context, applicationID string, req *models.TransitionRequest, actor string, role workflow.Role) (*models.Application, error) {
	if err := utils.ValidateApplicationID(applicationID); err != nil {
		return nil, err
	}
	target := workflow.Status(req.TargetStatus)

	unlock := e.locks.Lock(applicationID)
	defer unlock()

	var app *models.Application
	var oldStatus string
	chained := false
	err := e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var err error
		app, err = e.apps.GetByIDWithTx(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		oldStatus = app.CurrentStatus
		if err := e.applyLocked(ctx, tx, app, target, actor, role,
			optional(req.Reason), optional(req.Notes), true); err != nil {
			return err
		}
		if app.Status() == workflow.StatusEnrollmentConfirmed {
			chained = true
			return e.applyLocked(ctx, tx, app, workflow.StatusCommissionPending,
				systemActor, workflow.RoleSystem, nil, nil, true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.recordAudit(ctx, applicationID, "status_changed",
		"status changed from "+oldStatus+" to "+string(target),
		actor, role, &oldStatus, strPtr(string(target)))
	if chained {
		e.recordAudit(ctx, applicationID, "status_changed",
			"status changed from "+string(workflow.StatusEnrollmentConfirmed)+" to "+app.CurrentStatus,
			systemActor, workflow.RoleSystem,
			strPtr(string(workflow.StatusEnrollmentConfirmed)), &app.CurrentStatus)
	}
	return app, nil
}

// OnDocumentUploaded reacts to a committed document upload: a visa payment
// proof confirms payment, and completing the stage 1 mandatory checklist
// submits the documents for review.
func (e *WorkflowEngine) OnDocumentUploaded(ctx context.Context, applicationID string, docType workflow.DocumentType) (*models.Application, error) {
	unlock := e.locks.Lock(applicationID)
	defer unlock()

	var app *models.Application
	var oldStatus string
	transitioned := false
	err := e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var err error
		app, err = e.apps.GetByIDWithTx(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		oldStatus = app.CurrentStatus

		var target workflow.Status
		switch {
		case docType == workflow.DocVisaPaymentProof &&
			app.Status() == workflow.StatusWaitingVisaPayment:
			target = workflow.StatusPaymentReceived
		case awaitingStage1Documents(app.Status()):
			complete, err := e.tracker.IsStageComplete(ctx, applicationID, int(workflow.StageSubmission))
			if err != nil {
				return err
			}
			if !complete {
				return nil
			}
			target = workflow.StatusDocumentsSubmitted
		default:
			return nil
		}

		transitioned = true
		return e.applyLocked(ctx, tx, app, target, systemActor, workflow.RoleSystem, nil, nil, true)
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		e.recordAudit(ctx, applicationID, "status_changed",
			"status changed from "+oldStatus+" to "+app.CurrentStatus+" after document upload",
			systemActor, workflow.RoleSystem, &oldStatus, &app.CurrentStatus)
	}
	return app, nil
}

// Hold freezes an application, remembering its position for a later resume.
// Works from any status except on_hold itself, terminal statuses included.
// Admin only; a reason is mandatory.
func (e *WorkflowEngine) Hold(ctx context.Context, applicationID string, req *models.AdminActionRequest, actor string, role workflow.Role) (*models.Application, error) {
	if role != workflow.RoleAdmin {
		return nil, workflow.NewError(workflow.ErrCodeUnauthorizedActor,
			"role %q is not authorized to place applications on hold", role)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, workflow.ErrMissingReason(workflow.StatusOnHold)
	}

	unlock := e.locks.Lock(applicationID)
	defer unlock()

	var app *models.Application
	var oldStatus string
	err := e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var err error
		app, err = e.apps.GetByIDWithTx(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if app.Status() == workflow.StatusOnHold {
			return workflow.ErrInvalidTransition(app.Stage(), app.Status(), workflow.StatusOnHold)
		}
		rule, err := e.matrix.Rule(app.Stage(), workflow.StatusOnHold)
		if err != nil {
			return err
		}

		oldStatus = app.CurrentStatus
		prevStage := app.CurrentStage
		prevActor := app.NextActor
		app.PreviousStage = &prevStage
		app.PreviousStatus = &oldStatus
		app.PreviousNextActor = &prevActor
		app.CurrentStatus = string(workflow.StatusOnHold)
		app.NextActor = string(rule.NextActor)
		app.NextAction = rule.NextAction

		return e.finishChange(ctx, tx, app, actor, role, optional(req.Reason), nil)
	})
	if err != nil {
		return nil, err
	}

	e.recordAudit(ctx, applicationID, "application_held",
		"application placed on hold", actor, role, &oldStatus, &app.CurrentStatus)
	return app, nil
}

// Resume restores an on-hold application to its remembered position.
func (e *WorkflowEngine) Resume(ctx context.Context, applicationID string, req *models.AdminActionRequest, actor string, role workflow.Role) (*models.Application, error) {
	if role != workflow.RoleAdmin {
		return nil, workflow.NewError(workflow.ErrCodeUnauthorizedActor,
			"role %q is not authorized to resume applications", role)
	}

	unlock := e.locks.Lock(applicationID)
	defer unlock()

	var app *models.Application
	err := e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var err error
		app, err = e.apps.GetByIDWithTx(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if app.Status() != workflow.StatusOnHold {
			return workflow.NewError(workflow.ErrCodeInvalidTransition,
				"application %s is not on hold", applicationID)
		}
		if app.PreviousStatus == nil || app.PreviousStage == nil {
			return workflow.NewError(workflow.ErrCodeConfiguration,
				"application %s is on hold without a remembered position", applicationID)
		}
		restored := workflow.Status(*app.PreviousStatus)
		rule, err := e.matrix.Rule(workflow.Stage(*app.PreviousStage), restored)
		if err != nil {
			return err
		}

		app.CurrentStage = *app.PreviousStage
		app.CurrentStatus = *app.PreviousStatus
		app.NextActor = string(rule.NextActor)
		if app.PreviousNextActor != nil {
			app.NextActor = *app.PreviousNextActor
		}
		app.NextAction = rule.NextAction
		app.PreviousStage = nil
		app.PreviousStatus = nil
		app.PreviousNextActor = nil

		return e.finishChange(ctx, tx, app, actor, role, optional(req.Reason), nil)
	})
	if err != nil {
		return nil, err
	}

	hold := string(workflow.StatusOnHold)
	e.recordAudit(ctx, applicationID, "application_resumed",
		"application resumed", actor, role, &hold, &app.CurrentStatus)
	return app, nil
}

// Cancel terminates an application from any status except cancelled itself,
// including from hold or a terminal status. Admin only; a reason is mandatory.
func (e *WorkflowEngine) Cancel(ctx context.Context, applicationID string, req *models.AdminActionRequest, actor string, role workflow.Role) (*models.Application, error) {
	if role != workflow.RoleAdmin {
		return nil, workflow.NewError(workflow.ErrCodeUnauthorizedActor,
			"role %q is not authorized to cancel applications", role)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, workflow.ErrMissingReason(workflow.StatusCancelled)
	}

	unlock := e.locks.Lock(applicationID)
	defer unlock()

	var app *models.Application
	var oldStatus string
	err := e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var err error
		app, err = e.apps.GetByIDWithTx(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if app.Status() == workflow.StatusCancelled {
			return workflow.ErrInvalidTransition(app.Stage(), app.Status(), workflow.StatusCancelled)
		}
		rule, err := e.matrix.Rule(app.Stage(), workflow.StatusCancelled)
		if err != nil {
			return err
		}

		oldStatus = app.CurrentStatus
		app.CurrentStatus = string(workflow.StatusCancelled)
		app.NextActor = string(rule.NextActor)
		app.NextAction = rule.NextAction
		app.PreviousStage = nil
		app.PreviousStatus = nil
		app.PreviousNextActor = nil

		return e.finishChange(ctx, tx, app, actor, role, optional(req.Reason), nil)
	})
	if err != nil {
		return nil, err
	}

	e.recordAudit(ctx, applicationID, "application_cancelled",
		"application cancelled", actor, role, &oldStatus, &app.CurrentStatus)
	return app, nil
}

// GetApplication returns one application with its history and the actions
// the given role may take next.
func (e *WorkflowEngine) GetApplication(ctx context.Context, applicationID string, role workflow.Role) (*models.ApplicationResponse, error) {
	if err := utils.ValidateApplicationID(applicationID); err != nil {
		return nil, err
	}
	app, err := e.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	history, err := e.history.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	displayName, err := e.matrix.DisplayName(app.Stage(), app.Status(), role)
	if err != nil {
		return nil, err
	}
	transitions, err := e.matrix.AvailableTransitions(app.Stage(), app.Status(), role)
	if err != nil {
		return nil, err
	}
	return &models.ApplicationResponse{
		Application:          *app,
		StatusDisplayName:    displayName,
		History:              history,
		AvailableTransitions: transitions,
	}, nil
}

// SearchApplications lists applications matching the filters, newest first.
func (e *WorkflowEngine) SearchApplications(ctx context.Context, params *models.ApplicationSearchParams) ([]models.Application, int, error) {
	params.Limit = utils.ValidateLimit(params.Limit)
	params.Offset = utils.ValidateOffset(params.Offset)
	return e.apps.Search(ctx, params)
}

// GetHistory returns the ordered stage history of an application.
func (e *WorkflowEngine) GetHistory(ctx context.Context, applicationID string) ([]models.StageHistoryEntry, error) {
	if err := utils.ValidateApplicationID(applicationID); err != nil {
		return nil, err
	}
	if _, err := e.apps.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}
	return e.history.GetByApplicationID(ctx, applicationID)
}

// AvailableTransitions lists the actions role may take on an application.
func (e *WorkflowEngine) AvailableTransitions(ctx context.Context, applicationID string, role workflow.Role) ([]workflow.TransitionOption, error) {
	app, err := e.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return e.matrix.AvailableTransitions(app.Stage(), app.Status(), role)
}

// EscalateStale advances every application that has overstayed a status with
// an auto trigger configured. Failures are logged and skipped so one bad row
// cannot stall the sweep. Returns the number of applications escalated.
func (e *WorkflowEngine) EscalateStale(ctx context.Context) (int, error) {
	escalated := 0
	for _, status := range e.matrix.Statuses() {
		stage, err := e.matrix.StageOf(status)
		if err != nil {
			continue
		}
		rule, err := e.matrix.Rule(stage, status)
		if err != nil || rule.SystemAutoTriggerAfterHours == 0 {
			continue
		}
		cutoff := utils.MillisAgo(int64(rule.SystemAutoTriggerAfterHours))
		stale, err := e.apps.FindByStatusOlderThan(ctx, []string{string(status)}, cutoff)
		if err != nil {
			return escalated, err
		}
		for i := range stale {
			if e.escalateOne(ctx, stale[i].ApplicationID, status, rule.AutoTriggerTarget, cutoff) {
				escalated++
			}
		}
	}
	return escalated, nil
}

// StaleApplications returns the monitoring view of applications stuck in a
// status beyond its allowed duration. It never changes any state.
func (e *WorkflowEngine) StaleApplications(ctx context.Context) ([]models.StaleApplication, error) {
	out := []models.StaleApplication{}
	for _, status := range e.matrix.Statuses() {
		stage, err := e.matrix.StageOf(status)
		if err != nil {
			continue
		}
		rule, err := e.matrix.Rule(stage, status)
		if err != nil || rule.MaxStuckDurationHours == 0 {
			continue
		}
		cutoff := utils.MillisAgo(int64(rule.MaxStuckDurationHours))
		stuck, err := e.apps.FindByStatusOlderThan(ctx, []string{string(status)}, cutoff)
		if err != nil {
			return nil, err
		}
		for _, app := range stuck {
			out = append(out, models.StaleApplication{
				Application:           app,
				MaxStuckDurationHours: rule.MaxStuckDurationHours,
				StuckForHours:         utils.HoursSinceMillis(app.LastStatusChangeAt),
			})
		}
	}
	return out, nil
}

// StartSweeper runs the staleness escalation loop until ctx is cancelled.
func (e *WorkflowEngine) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := e.EscalateStale(ctx)
				if err != nil {
					e.logger.WithError(err).Warn("Staleness sweep failed")
					continue
				}
				if n > 0 {
					e.logger.WithField("escalated", n).Info("Staleness sweep escalated applications")
				}
			}
		}
	}()
}

// applyLocked validates and applies one transition on an application already
// loaded under its lock. Validation order: reachability, authority, reason,
// documents. enforceAuthority is false only for the staleness sweep, which
// acts in place of whichever role owns the target.
func (e *WorkflowEngine) applyLocked(ctx context.Context, tx *database.Transaction, app *models.Application, target workflow.Status, actor string, role workflow.Role, reason, notes *string, enforceAuthority bool) error {
	fromRule, err := e.matrix.Rule(app.Stage(), app.Status())
	if err != nil {
		return err
	}
	if fromRule.IsTerminal {
		return workflow.ErrInvalidTransition(app.Stage(), app.Status(), target)
	}
	targetStage, err := e.matrix.StageOf(target)
	if err != nil {
		return workflow.ErrInvalidTransition(app.Stage(), app.Status(), target)
	}
	targetRule, err := e.matrix.Rule(targetStage, target)
	if err != nil {
		return err
	}

	allowed := false
	for _, next := range fromRule.AllowedNext {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return workflow.ErrInvalidTransition(app.Stage(), app.Status(), target)
	}
	if enforceAuthority && !e.matrix.Authorized(role, targetRule) {
		return workflow.ErrUnauthorizedActor(role, target)
	}
	if targetRule.RequiresReason && (reason == nil || strings.TrimSpace(*reason) == "") {
		return workflow.ErrMissingReason(target)
	}
	if len(targetRule.RequiresDocuments) > 0 {
		missing, err := e.missingDocuments(ctx, app.ApplicationID, targetRule.RequiresDocuments)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return workflow.ErrDocumentsIncomplete(app.Stage())
		}
	}

	oldStage := app.CurrentStage
	app.CurrentStage = int(targetRule.Stage)
	app.CurrentStatus = string(target)
	app.NextActor = string(targetRule.NextActor)
	app.NextAction = targetRule.NextAction

	if app.CurrentStage != oldStage {
		required, uploaded, approved, err := e.tracker.CountersFor(ctx, app.ApplicationID, app.CurrentStage)
		if err != nil {
			return err
		}
		app.RequiredDocumentsCount = required
		app.UploadedDocumentsCount = uploaded
		app.ApprovedDocumentsCount = approved
	}

	switch target {
	case workflow.StatusCommissionPending:
		// The transition stands even when the commission record cannot be
		// created; the record is created on the next sweep or by hand.
		if _, err := e.commissions.CreateTrackingWithTx(ctx, tx, app, utils.GetCurrentTimeMillis()); err != nil {
			e.logger.WithFields(logrus.Fields{
				"application_id": app.ApplicationID,
				"error":          err.Error(),
			}).Warn("Failed to create commission tracking")
		}
	case workflow.StatusCommissionReleased, workflow.StatusCommissionPaid,
		workflow.StatusCommissionTransferDisputed:
		if err := e.commissions.syncWorkflowStatusWithTx(ctx, tx, app, target, actor, reason); err != nil {
			return err
		}
	}

	return e.finishChange(ctx, tx, app, actor, role, reason, notes)
}

// finishChange stamps the change counters, appends the history entry, and
// persists the application row.
func (e *WorkflowEngine) finishChange(ctx context.Context, tx *database.Transaction, app *models.Application, actor string, role workflow.Role, reason, notes *string) error {
	now := utils.GetCurrentTimeMillis()
	app.StatusChangeCount++
	app.LastStatusChangeAt = now
	app.UpdatedTime = now

	entry := &models.StageHistoryEntry{
		HistoryID:     utils.GenerateHistoryID(),
		ApplicationID: app.ApplicationID,
		Stage:         app.CurrentStage,
		Status:        app.CurrentStatus,
		ActionTime:    now,
		Actor:         actor,
		ActorRole:     string(role),
		Reason:        reason,
		Notes:         notes,
	}
	if err := e.history.CreateWithTx(ctx, tx, entry); err != nil {
		return err
	}
	return e.apps.UpdateWithTx(ctx, tx, app)
}

// escalateOne re-checks and escalates a single stale application. The reload
// under lock guards against a user action racing the sweep.
func (e *WorkflowEngine) escalateOne(ctx context.Context, applicationID string, from, target workflow.Status, cutoff int64) bool {
	unlock := e.locks.Lock(applicationID)
	defer unlock()

	var oldStatus string
	moved := false
	err := e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		app, err := e.apps.GetByIDWithTx(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if app.Status() != from || app.LastStatusChangeAt > cutoff {
			return nil
		}
		oldStatus = app.CurrentStatus
		moved = true
		return e.applyLocked(ctx, tx, app, target, systemActor, workflow.RoleSystem, nil, nil, false)
	})
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"application_id": applicationID,
			"from":           from,
			"target":         target,
			"error":          err.Error(),
		}).Warn("Failed to escalate stale application")
		return false
	}
	if moved {
		newStatus := string(target)
		e.recordAudit(ctx, applicationID, "status_auto_escalated",
			"status auto-escalated from "+oldStatus+" to "+newStatus,
			systemActor, workflow.RoleSystem, &oldStatus, &newStatus)
	}
	return moved
}

// missingDocuments returns the required document types without a satisfying
// upload.
func (e *WorkflowEngine) missingDocuments(ctx context.Context, applicationID string, required []workflow.DocumentType) ([]workflow.DocumentType, error) {
	docs, err := e.docs.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	var missing []workflow.DocumentType
	for _, docType := range required {
		if latestSatisfying(docs, string(docType)) == nil {
			missing = append(missing, docType)
		}
	}
	return missing, nil
}

func (e *WorkflowEngine) recordAudit(ctx context.Context, applicationID, event, message, actor string, role workflow.Role, oldStatus, newStatus *string) {
	entry := &models.AuditEntry{
		AuditID:       utils.GenerateAuditID(),
		ApplicationID: applicationID,
		Event:         event,
		Message:       message,
		Actor:         actor,
		ActorRole:     string(role),
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		CreatedTime:   utils.GetCurrentTimeMillis(),
	}
	if err := e.audit.Create(ctx, entry); err != nil {
		e.logger.WithFields(logrus.Fields{
			"application_id": applicationID,
			"event":          event,
			"error":          err.Error(),
		}).Warn("Failed to write audit entry")
	}
}

// awaitingStage1Documents reports whether the status is one from which
// completing the stage 1 checklist auto-submits the documents.
func awaitingStage1Documents(status workflow.Status) bool {
	switch status {
	case workflow.StatusNewApplication, workflow.StatusCorrectionRequested,
		workflow.StatusDocumentsResubmission:
		return true
	}
	return false
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v := utils.SanitizeString(s)
	return &v
}

func strPtr(s string) *string {
	return &s
}
