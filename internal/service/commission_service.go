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

// TierMultiplier returns the commission multiplier for a partner tier.
// Unknown tiers fall back to the bronze multiplier.
func TierMultiplier(tier string) float64 {
	switch tier {
	case models.TierSilver:
		return 1.1
	case models.TierGold:
		return 1.2
	case models.TierPlatinum:
		return 1.3
	default:
		return 1.0
	}
}

// CalculateCommission computes the commission breakdown for one enrollment.
// The base is the contracted percentage of the tuition fee. The conversion
// bonus is computed on the base before the tier multiplier is applied.
func CalculateCommission(tuitionFee, commissionPercentage float64, tier string, conversionRate float64) models.CommissionBreakdown {
	base := tuitionFee * commissionPercentage / 100
	bonus := 0.0
	switch {
	case conversionRate > 85:
		bonus = base * 0.05
	case conversionRate > 80:
		bonus = base * 0.025
	}
	return models.CommissionBreakdown{
		Base:  base,
		Bonus: bonus,
		Total: base*TierMultiplier(tier) + bonus,
	}
}

// CommissionEngine owns commission tracking records and the partner payout
// aggregates. Tracking records move pending → approved → released → paid,
// with disputed and cancelled as side exits.
type CommissionEngine struct {
	db          TxRunner
	commissions CommissionStore
	apps        ApplicationStore
	partners    PartnerStore
	programs    ProgramStore
	audit       AuditStore
	logger      *logrus.Logger
}

// NewCommissionEngine creates a commission engine service.
func NewCommissionEngine(db TxRunner, commissions CommissionStore, apps ApplicationStore,
	partners PartnerStore, programs ProgramStore, audit AuditStore, logger *logrus.Logger) *CommissionEngine {
	return &CommissionEngine{
		db:          db,
		commissions: commissions,
		apps:        apps,
		partners:    partners,
		programs:    programs,
		audit:       audit,
		logger:      logger,
	}
}

// CreateTrackingWithTx creates the commission tracking record for an enrolled
// application inside the caller's transaction. It is idempotent: an existing
// record for the application is returned as-is. The application's commission
// mirror fields are set on the passed struct; persisting them is the
// caller's responsibility.
func (e *CommissionEngine) CreateTrackingWithTx(ctx context.Context, tx *database.Transaction, app *models.Application, enrollmentDate int64) (*models.CommissionTracking, error) {
	existing, err := e.commissions.GetByApplicationIDWithTx(ctx, tx, app.ApplicationID)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	partner, err := e.partners.GetByID(ctx, app.PartnerID)
	if err != nil {
		if isNotFound(err) {
			return nil, workflow.NewError(workflow.ErrCodeMissingProgramOrPartner,
				"partner %s not found for application %s", app.PartnerID, app.ApplicationID)
		}
		return nil, err
	}
	program, err := e.programs.GetByID(ctx, app.ProgramID)
	if err != nil {
		if isNotFound(err) {
			return nil, workflow.NewError(workflow.ErrCodeMissingProgramOrPartner,
				"program %s not found for application %s", app.ProgramID, app.ApplicationID)
		}
		return nil, err
	}

	breakdown := CalculateCommission(program.TuitionFee, program.CommissionPercentage,
		partner.Tier, partner.ConversionRate)
	now := utils.GetCurrentTimeMillis()
	tracking := &models.CommissionTracking{
		TrackingID:           utils.GenerateCommissionID(),
		ApplicationID:        app.ApplicationID,
		PartnerID:            app.PartnerID,
		ProgramID:            app.ProgramID,
		TuitionFee:           program.TuitionFee,
		CommissionPercentage: program.CommissionPercentage,
		PartnerTier:          partner.Tier,
		BaseAmount:           breakdown.Base,
		BonusAmount:          breakdown.Bonus,
		Amount:               breakdown.Total,
		Status:               models.CommissionStatusPending,
		EnrollmentDate:       enrollmentDate,
		CreatedTime:          now,
		UpdatedTime:          now,
	}
	if err := e.commissions.CreateWithTx(ctx, tx, tracking); err != nil {
		return nil, err
	}
	if err := e.partners.AdjustAggregatesWithTx(ctx, tx, app.PartnerID, 0, breakdown.Total, now); err != nil {
		return nil, err
	}

	earned := models.ApplicationCommissionEarned
	app.CommissionPercentage = &tracking.CommissionPercentage
	app.EstimatedCommission = &tracking.Amount
	app.CommissionStatus = &earned

	e.logger.WithFields(logrus.Fields{
		"application_id": app.ApplicationID,
		"tracking_id":    tracking.TrackingID,
		"partner_id":     app.PartnerID,
		"amount":         tracking.Amount,
	}).Info("Commission tracking created")
	return tracking, nil
}

// Approve moves a pending commission to approved.
func (e *CommissionEngine) Approve(ctx context.Context, trackingID string, req *models.CommissionApproveRequest, actor string, role workflow.Role) (*models.CommissionTracking, error) {
	if role != workflow.RoleAdmin {
		return nil, workflow.NewError(workflow.ErrCodeUnauthorizedActor,
			"role %q is not authorized to approve commissions", role)
	}
	now := utils.GetCurrentTimeMillis()
	var tracking *models.CommissionTracking
	err := e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var err error
		tracking, err = e.commissions.GetByIDWithTx(ctx, tx, trackingID)
		if err != nil {
			return err
		}
		if tracking.Status != models.CommissionStatusPending {
			return errInvalidCommissionState(tracking, models.CommissionStatusPending)
		}
		tracking.Status = models.CommissionStatusApproved
		tracking.ApprovedBy = &actor
		tracking.ApprovedAt = &now
		if req != nil && req.Notes != "" {
			notes := utils.SanitizeString(req.Notes)
			tracking.Notes = &notes
		}
		tracking.UpdatedTime = now
		return e.commissions.UpdateWithTx(ctx, tx, tracking)
	})
	if err != nil {
		return nil, err
	}
	e.recordAudit(ctx, tracking, "commission_approved", actor, role)
	return tracking, nil
}

// Release moves an approved commission to released, meaning the transfer has
// been sent to the partner.
func (e *CommissionEngine) Release(ctx context.Context, trackingID, actor string, role workflow.Role) (*models.CommissionTracking, error) {
	if role != workflow.RoleAdmin {
		return nil, workflow.NewError(workflow.ErrCodeUnauthorizedActor,
			"role %q is not authorized to release commissions", role)
	}
	now := utils.GetCurrentTimeMillis()
	var tracking *models.CommissionTracking
	err := e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var err error
		tracking, err = e.commissions.GetByIDWithTx(ctx, tx, trackingID)
		if err != nil {
			return err
		}
		// A disputed transfer is re-released once the dispute is resolved.
		if tracking.Status != models.CommissionStatusApproved &&
			tracking.Status != models.CommissionStatusDisputed {
			return errInvalidCommissionState(tracking, models.CommissionStatusApproved)
		}
		tracking.Status = models.CommissionStatusReleased
		tracking.ReleasedBy = &actor
		tracking.ReleasedAt = &now
		tracking.DisputeReason = nil
		tracking.UpdatedTime = now
		return e.commissions.UpdateWithTx(ctx, tx, tracking)
	})
	if err != nil {
		return nil, err
	}
	e.recordAudit(ctx, tracking, "commission_released", actor, role)
	return tracking, nil
}

// MarkPaid records the partner's confirmation that the transfer arrived and
// settles the partner aggregates: the amount moves from pending to earned.
func (e *CommissionEngine) MarkPaid(ctx context.Context, trackingID string, req *models.CommissionPayRequest, actor string, role workflow.Role) (*models.CommissionTracking, error) {
	if role != workflow.RoleAdmin && role != workflow.RolePartner {
		return nil, workflow.NewError(workflow.ErrCodeUnauthorizedActor,
			"role %q is not authorized to confirm commission payment", role)
	}
	now := utils.GetCurrentTimeMillis()
	var tracking *models.CommissionTracking
	err := e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var err error
		tracking, err = e.commissions.GetByIDWithTx(ctx, tx, trackingID)
		if err != nil {
			return err
		}
		// Released is the partner confirmation path; approved covers manual
		// payouts settled without a separate release step.
		if tracking.Status != models.CommissionStatusReleased &&
			tracking.Status != models.CommissionStatusApproved {
			return errInvalidCommissionState(tracking, models.CommissionStatusReleased)
		}
		if err := e.markPaidLocked(ctx, tx, tracking, req, actor, now); err != nil {
			return err
		}

		app, err := e.apps.GetByIDWithTx(ctx, tx, tracking.ApplicationID)
		if err != nil {
			return err
		}
		paid := models.ApplicationCommissionPaid
		app.CommissionStatus = &paid
		app.UpdatedTime = now
		return e.apps.UpdateWithTx(ctx, tx, app)
	})
	if err != nil {
		return nil, err
	}
	e.recordAudit(ctx, tracking, "commission_paid", actor, role)
	return tracking, nil
}

// markPaidLocked applies the paid state and settles the partner aggregates.
// The caller holds the tracking row lock.
func (e *CommissionEngine) markPaidLocked(ctx context.Context, tx *database.Transaction, tracking *models.CommissionTracking, req *models.CommissionPayRequest, actor string, now int64) error {
	tracking.Status = models.CommissionStatusPaid
	tracking.PaidBy = &actor
	tracking.PaidAt = &now
	if req != nil {
		if req.PaymentMethod != "" {
			method := utils.SanitizeString(req.PaymentMethod)
			tracking.PaymentMethod = &method
		}
		if req.PaymentReference != "" {
			ref := utils.SanitizeString(req.PaymentReference)
			tracking.PaymentReference = &ref
		}
	}
	tracking.UpdatedTime = now
	if err := e.commissions.UpdateWithTx(ctx, tx, tracking); err != nil {
		return err
	}
	return e.partners.AdjustAggregatesWithTx(ctx, tx, tracking.PartnerID,
		tracking.Amount, -tracking.Amount, now)
}

// Dispute records a partner dispute against a released transfer. A reason
// code from the fixed list or free text is required.
func (e *CommissionEngine) Dispute(ctx context.Context, trackingID string, req *models.CommissionDisputeRequest, actor string, role workflow.Role) (*models.CommissionTracking, error) {
	if role != workflow.RoleAdmin && role != workflow.RolePartner {
		return nil, workflow.NewError(workflow.ErrCodeUnauthorizedActor,
			"role %q is not authorized to dispute commissions", role)
	}
	reason, err := disputeReason(req)
	if err != nil {
		return nil, err
	}
	now := utils.GetCurrentTimeMillis()
	var tracking *models.CommissionTracking
	err = e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var err error
		tracking, err = e.commissions.GetByIDWithTx(ctx, tx, trackingID)
		if err != nil {
			return err
		}
		if tracking.Status == models.CommissionStatusPaid ||
			tracking.Status == models.CommissionStatusCancelled {
			return workflow.NewError(workflow.ErrCodeInvalidCommissionState,
				"commission %s is %q and can no longer be disputed",
				tracking.TrackingID, tracking.Status)
		}
		tracking.Status = models.CommissionStatusDisputed
		tracking.DisputeReason = &reason
		tracking.UpdatedTime = now
		return e.commissions.UpdateWithTx(ctx, tx, tracking)
	})
	if err != nil {
		return nil, err
	}
	e.recordAudit(ctx, tracking, "commission_disputed", actor, role)
	return tracking, nil
}

// CancelTracking cancels a pending commission and backs its amount out of
// the partner's pending aggregate.
func (e *CommissionEngine) CancelTracking(ctx context.Context, trackingID, reason, actor string, role workflow.Role) (*models.CommissionTracking, error) {
	if role != workflow.RoleAdmin {
		return nil, workflow.NewError(workflow.ErrCodeUnauthorizedActor,
			"role %q is not authorized to cancel commissions", role)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, workflow.NewError(workflow.ErrCodeMissingReason,
			"a reason is required to cancel a commission")
	}
	now := utils.GetCurrentTimeMillis()
	var tracking *models.CommissionTracking
	err := e.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var err error
		tracking, err = e.commissions.GetByIDWithTx(ctx, tx, trackingID)
		if err != nil {
			return err
		}
		if tracking.Status != models.CommissionStatusPending {
			return errInvalidCommissionState(tracking, models.CommissionStatusPending)
		}
		tracking.Status = models.CommissionStatusCancelled
		notes := utils.SanitizeString(reason)
		tracking.Notes = &notes
		tracking.UpdatedTime = now
		if err := e.commissions.UpdateWithTx(ctx, tx, tracking); err != nil {
			return err
		}
		return e.partners.AdjustAggregatesWithTx(ctx, tx, tracking.PartnerID,
			0, -tracking.Amount, now)
	})
	if err != nil {
		return nil, err
	}
	e.recordAudit(ctx, tracking, "commission_cancelled", actor, role)
	return tracking, nil
}

// syncWorkflowStatusWithTx aligns the tracking record with a stage 5
// workflow transition, inside the workflow engine's transaction. The state
// checks here mirror the endpoint operations so the two entry points cannot
// diverge.
func (e *CommissionEngine) syncWorkflowStatusWithTx(ctx context.Context, tx *database.Transaction, app *models.Application, target workflow.Status, actor string, reason *string) error {
	tracking, err := e.commissions.GetByApplicationIDWithTx(ctx, tx, app.ApplicationID)
	if err != nil {
		if isNotFound(err) {
			return workflow.NewError(workflow.ErrCodeInvalidCommissionState,
				"no commission tracking exists for application %s", app.ApplicationID)
		}
		return err
	}
	now := utils.GetCurrentTimeMillis()

	switch target {
	case workflow.StatusCommissionReleased:
		if tracking.Status == models.CommissionStatusPending {
			tracking.ApprovedBy = &actor
			tracking.ApprovedAt = &now
		} else if tracking.Status != models.CommissionStatusApproved &&
			tracking.Status != models.CommissionStatusDisputed {
			return errInvalidCommissionState(tracking, models.CommissionStatusApproved)
		}
		tracking.Status = models.CommissionStatusReleased
		tracking.ReleasedBy = &actor
		tracking.ReleasedAt = &now
		tracking.DisputeReason = nil
	case workflow.StatusCommissionPaid:
		if tracking.Status != models.CommissionStatusReleased &&
			tracking.Status != models.CommissionStatusApproved {
			return errInvalidCommissionState(tracking, models.CommissionStatusReleased)
		}
		if err := e.markPaidLocked(ctx, tx, tracking, nil, actor, now); err != nil {
			return err
		}
		paid := models.ApplicationCommissionPaid
		app.CommissionStatus = &paid
		return nil
	case workflow.StatusCommissionTransferDisputed:
		if tracking.Status != models.CommissionStatusReleased {
			return errInvalidCommissionState(tracking, models.CommissionStatusReleased)
		}
		tracking.Status = models.CommissionStatusDisputed
		tracking.DisputeReason = reason
	default:
		return nil
	}

	tracking.UpdatedTime = now
	return e.commissions.UpdateWithTx(ctx, tx, tracking)
}

// Get returns one tracking record by its ID.
func (e *CommissionEngine) Get(ctx context.Context, trackingID string) (*models.CommissionTracking, error) {
	if err := utils.ValidateTrackingID(trackingID); err != nil {
		return nil, err
	}
	return e.commissions.GetByID(ctx, trackingID)
}

// GetByApplication returns the tracking record for an application.
func (e *CommissionEngine) GetByApplication(ctx context.Context, applicationID string) (*models.CommissionTracking, error) {
	if err := utils.ValidateApplicationID(applicationID); err != nil {
		return nil, err
	}
	return e.commissions.GetByApplicationID(ctx, applicationID)
}

// PipelineStats returns count and total amount per tracking status.
func (e *CommissionEngine) PipelineStats(ctx context.Context) ([]models.CommissionPipelineStat, error) {
	return e.commissions.PipelineStats(ctx)
}

// Summary aggregates commission amounts, optionally scoped to one partner.
// An empty partnerID summarizes all partners.
func (e *CommissionEngine) Summary(ctx context.Context, partnerID string) (*models.CommissionSummary, error) {
	stats, err := e.commissions.SummaryByPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	summary := &models.CommissionSummary{PartnerID: partnerID}
	for _, s := range stats {
		summary.RecordCount += s.Count
		switch s.Status {
		case models.CommissionStatusPending:
			summary.TotalPending += s.Total
		case models.CommissionStatusApproved:
			summary.TotalApproved += s.Total
		case models.CommissionStatusReleased:
			summary.TotalReleased += s.Total
		case models.CommissionStatusPaid:
			summary.TotalPaid += s.Total
		case models.CommissionStatusDisputed:
			summary.TotalDisputed += s.Total
		}
	}
	return summary, nil
}

func (e *CommissionEngine) recordAudit(ctx context.Context, tracking *models.CommissionTracking, event, actor string, role workflow.Role) {
	status := tracking.Status
	entry := &models.AuditEntry{
		AuditID:       utils.GenerateAuditID(),
		ApplicationID: tracking.ApplicationID,
		Event:         event,
		Message:       fmt.Sprintf("commission %s is now %s", tracking.TrackingID, status),
		Actor:         actor,
		ActorRole:     string(role),
		NewStatus:     &status,
		CreatedTime:   utils.GetCurrentTimeMillis(),
	}
	if err := e.audit.Create(ctx, entry); err != nil {
		e.logger.WithFields(logrus.Fields{
			"tracking_id": tracking.TrackingID,
			"event":       event,
			"error":       err.Error(),
		}).Warn("Failed to write audit entry")
	}
}

func errInvalidCommissionState(tracking *models.CommissionTracking, expected string) error {
	return workflow.NewError(workflow.ErrCodeInvalidCommissionState,
		"commission %s is %q, expected %q", tracking.TrackingID, tracking.Status, expected)
}

func disputeReason(req *models.CommissionDisputeRequest) (string, error) {
	if req == nil || (strings.TrimSpace(req.ReasonCode) == "" && strings.TrimSpace(req.Reason) == "") {
		return "", workflow.NewError(workflow.ErrCodeMissingReason,
			"a reason is required to dispute a commission transfer")
	}
	if req.ReasonCode != "" {
		known := false
		for _, code := range workflow.DisputeReasonCodes {
			if req.ReasonCode == code {
				known = true
				break
			}
		}
		if !known {
			return "", fmt.Errorf("unknown dispute reason code: %s", req.ReasonCode)
		}
	}
	reason := req.ReasonCode
	if req.Reason != "" {
		if reason != "" {
			reason += ": "
		}
		reason += utils.SanitizeString(req.Reason)
	}
	return reason, nil
}

// isNotFound matches the DAO convention of wrapping sql.ErrNoRows into a
// "not found" message.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}
