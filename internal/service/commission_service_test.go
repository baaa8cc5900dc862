package service

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edupath/application-management-api/internal/models"
	"github.com/edupath/application-management-api/internal/service/mocks"
	"github.com/edupath/application-management-api/internal/workflow"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type commissionFixture struct {
	engine      *CommissionEngine
	commissions *mocks.MockCommissionStore
	apps        *mocks.MockApplicationStore
	partners    *mocks.MockPartnerStore
	programs    *mocks.MockProgramStore
	audit       *mocks.MockAuditStore
}

func newCommissionFixture() *commissionFixture {
	f := &commissionFixture{
		commissions: &mocks.MockCommissionStore{},
		apps:        &mocks.MockApplicationStore{},
		partners:    &mocks.MockPartnerStore{},
		programs:    &mocks.MockProgramStore{},
		audit:       &mocks.MockAuditStore{},
	}
	f.engine = NewCommissionEngine(&mocks.StubTxRunner{}, f.commissions, f.apps,
		f.partners, f.programs, f.audit, testLogger())
	return f
}

func pendingTracking() *models.CommissionTracking {
	return &models.CommissionTracking{
		TrackingID:    "COM-1",
		ApplicationID: "APP-1",
		PartnerID:     "PARTNER-1",
		ProgramID:     "PROG-1",
		Amount:        3600,
		Status:        models.CommissionStatusPending,
	}
}

func TestTierMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, TierMultiplier(models.TierBronze))
	assert.Equal(t, 1.1, TierMultiplier(models.TierSilver))
	assert.Equal(t, 1.2, TierMultiplier(models.TierGold))
	assert.Equal(t, 1.3, TierMultiplier(models.TierPlatinum))
	assert.Equal(t, 1.0, TierMultiplier("unknown"))
}

func TestCalculateCommission(t *testing.T) {
	// 25000 at 12% is a 3000 base; gold multiplies to 3600; a 70 conversion
	// rate earns no bonus.
	breakdown := CalculateCommission(25000, 12, models.TierGold, 70)
	assert.InDelta(t, 3000, breakdown.Base, 0.001)
	assert.InDelta(t, 0, breakdown.Bonus, 0.001)
	assert.InDelta(t, 3600, breakdown.Total, 0.001)
}

func TestCalculateCommissionConversionBonus(t *testing.T) {
	// Above 85 the bonus is 5% of the base, above 80 it is 2.5%. The bonus
	// is added after the tier multiplier.
	high := CalculateCommission(10000, 10, models.TierBronze, 90)
	assert.InDelta(t, 1000, high.Base, 0.001)
	assert.InDelta(t, 50, high.Bonus, 0.001)
	assert.InDelta(t, 1050, high.Total, 0.001)

	mid := CalculateCommission(10000, 10, models.TierBronze, 82)
	assert.InDelta(t, 25, mid.Bonus, 0.001)
	assert.InDelta(t, 1025, mid.Total, 0.001)

	// Thresholds are exclusive.
	atEighty := CalculateCommission(10000, 10, models.TierBronze, 80)
	assert.InDelta(t, 0, atEighty.Bonus, 0.001)
	atEightyFive := CalculateCommission(10000, 10, models.TierBronze, 85)
	assert.InDelta(t, 25, atEightyFive.Bonus, 0.001)

	// Bonus is computed on the base, not the multiplied amount.
	platinum := CalculateCommission(10000, 10, models.TierPlatinum, 90)
	assert.InDelta(t, 1000*1.3+50, platinum.Total, 0.001)
}

func TestCreateTrackingComputesAmountAndAggregates(t *testing.T) {
	f := newCommissionFixture()
	app := &models.Application{ApplicationID: "APP-1", PartnerID: "PARTNER-1", ProgramID: "PROG-1"}

	f.commissions.On("GetByApplicationIDWithTx", mock.Anything, mock.Anything, "APP-1").
		Return(nil, fmt.Errorf("commission tracking not found for application: APP-1"))
	f.partners.On("GetByID", mock.Anything, "PARTNER-1").
		Return(&models.Partner{PartnerID: "PARTNER-1", Tier: models.TierGold, ConversionRate: 70}, nil)
	f.programs.On("GetByID", mock.Anything, "PROG-1").
		Return(&models.Program{ProgramID: "PROG-1", TuitionFee: 25000, CommissionPercentage: 12}, nil)
	f.commissions.On("CreateWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.partners.On("AdjustAggregatesWithTx", mock.Anything, mock.Anything, "PARTNER-1",
		0.0, mock.Anything, mock.Anything).Return(nil)

	tracking, err := f.engine.CreateTrackingWithTx(context.Background(), nil, app, 1000)
	require.NoError(t, err)

	assert.InDelta(t, 3600, tracking.Amount, 0.001)
	assert.Equal(t, models.CommissionStatusPending, tracking.Status)
	assert.Equal(t, models.TierGold, tracking.PartnerTier)
	assert.Equal(t, int64(1000), tracking.EnrollmentDate)

	// The application mirrors the earned commission.
	require.NotNil(t, app.EstimatedCommission)
	assert.InDelta(t, 3600, *app.EstimatedCommission, 0.001)
	require.NotNil(t, app.CommissionStatus)
	assert.Equal(t, models.ApplicationCommissionEarned, *app.CommissionStatus)

	f.commissions.AssertExpectations(t)
	f.partners.AssertExpectations(t)
}

func TestCreateTrackingIsIdempotent(t *testing.T) {
	f := newCommissionFixture()
	app := &models.Application{ApplicationID: "APP-1", PartnerID: "PARTNER-1", ProgramID: "PROG-1"}
	existing := pendingTracking()

	f.commissions.On("GetByApplicationIDWithTx", mock.Anything, mock.Anything, "APP-1").Return(existing, nil)

	tracking, err := f.engine.CreateTrackingWithTx(context.Background(), nil, app, 1000)
	require.NoError(t, err)
	assert.Same(t, existing, tracking)
	f.commissions.AssertNotCalled(t, "CreateWithTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTrackingMissingPartner(t *testing.T) {
	f := newCommissionFixture()
	app := &models.Application{ApplicationID: "APP-1", PartnerID: "PARTNER-GONE", ProgramID: "PROG-1"}

	f.commissions.On("GetByApplicationIDWithTx", mock.Anything, mock.Anything, "APP-1").
		Return(nil, fmt.Errorf("commission tracking not found for application: APP-1"))
	f.partners.On("GetByID", mock.Anything, "PARTNER-GONE").
		Return(nil, fmt.Errorf("partner not found: PARTNER-GONE"))

	_, err := f.engine.CreateTrackingWithTx(context.Background(), nil, app, 1000)
	require.Error(t, err)
	assert.Equal(t, workflow.ErrCodeMissingProgramOrPartner, workflow.CodeOf(err))
}

func TestApproveCommission(t *testing.T) {
	f := newCommissionFixture()
	tracking := pendingTracking()

	f.commissions.On("GetByIDWithTx", mock.Anything, mock.Anything, "COM-1").Return(tracking, nil)
	f.commissions.On("UpdateWithTx", mock.Anything, mock.Anything, tracking).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.engine.Approve(context.Background(), "COM-1",
		&models.CommissionApproveRequest{Notes: "checked"}, "admin-1", workflow.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, models.CommissionStatusApproved, result.Status)
	require.NotNil(t, result.ApprovedBy)
	assert.Equal(t, "admin-1", *result.ApprovedBy)
	assert.NotNil(t, result.ApprovedAt)
	require.NotNil(t, result.Notes)
	assert.Equal(t, "checked", *result.Notes)
}

func TestApproveCommissionWrongState(t *testing.T) {
	f := newCommissionFixture()
	tracking := pendingTracking()
	tracking.Status = models.CommissionStatusPaid

	f.commissions.On("GetByIDWithTx", mock.Anything, mock.Anything, "COM-1").Return(tracking, nil)

	_, err := f.engine.Approve(context.Background(), "COM-1", nil, "admin-1", workflow.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, workflow.ErrCodeInvalidCommissionState, workflow.CodeOf(err))
}

func TestApproveCommissionRequiresAdmin(t *testing.T) {
	f := newCommissionFixture()

	_, err := f.engine.Approve(context.Background(), "COM-1", nil, "partner-1", workflow.RolePartner)
	require.Error(t, err)
	assert.Equal(t, workflow.ErrCodeUnauthorizedActor, workflow.CodeOf(err))
}

func TestReleaseClearsDispute(t *testing.T) {
	f := newCommissionFixture()
	tracking := pendingTracking()
	tracking.Status = models.CommissionStatusDisputed
	reason := "amount_mismatch"
	tracking.DisputeReason = &reason

	f.commissions.On("GetByIDWithTx", mock.Anything, mock.Anything, "COM-1").Return(tracking, nil)
	f.commissions.On("UpdateWithTx", mock.Anything, mock.Anything, tracking).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.engine.Release(context.Background(), "COM-1", "admin-1", workflow.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.CommissionStatusReleased, result.Status)
	assert.Nil(t, result.DisputeReason)
}

func TestMarkPaidSettlesAggregates(t *testing.T) {
	f := newCommissionFixture()
	tracking := pendingTracking()
	tracking.Status = models.CommissionStatusReleased
	app := &models.Application{ApplicationID: "APP-1", PartnerID: "PARTNER-1"}

	f.commissions.On("GetByIDWithTx", mock.Anything, mock.Anything, "COM-1").Return(tracking, nil)
	f.commissions.On("UpdateWithTx", mock.Anything, mock.Anything, tracking).Return(nil)
	f.partners.On("AdjustAggregatesWithTx", mock.Anything, mock.Anything, "PARTNER-1",
		3600.0, -3600.0, mock.Anything).Return(nil)
	f.apps.On("GetByIDWithTx", mock.Anything, mock.Anything, "APP-1").Return(app, nil)
	f.apps.On("UpdateWithTx", mock.Anything, mock.Anything, app).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.engine.MarkPaid(context.Background(), "COM-1",
		&models.CommissionPayRequest{PaymentMethod: "bank_transfer", PaymentReference: "TX-9"},
		"partner-1", workflow.RolePartner)
	require.NoError(t, err)

	assert.Equal(t, models.CommissionStatusPaid, result.Status)
	require.NotNil(t, result.PaymentMethod)
	assert.Equal(t, "bank_transfer", *result.PaymentMethod)
	require.NotNil(t, app.CommissionStatus)
	assert.Equal(t, models.ApplicationCommissionPaid, *app.CommissionStatus)
	f.partners.AssertExpectations(t)
}

func TestMarkPaidRejectsPending(t *testing.T) {
	f := newCommissionFixture()
	tracking := pendingTracking()

	f.commissions.On("GetByIDWithTx", mock.Anything, mock.Anything, "COM-1").Return(tracking, nil)

	_, err := f.engine.MarkPaid(context.Background(), "COM-1",
		&models.CommissionPayRequest{PaymentMethod: "bank_transfer"}, "admin-1", workflow.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, workflow.ErrCodeInvalidCommissionState, workflow.CodeOf(err))
}

func TestMarkPaidFromApproved(t *testing.T) {
	f := newCommissionFixture()
	tracking := pendingTracking()
	tracking.Status = models.CommissionStatusApproved

	f.commissions.On("GetByIDWithTx", mock.Anything, mock.Anything, "COM-1").Return(tracking, nil)
	f.commissions.On("UpdateWithTx", mock.Anything, mock.Anything, tracking).Return(nil)
	f.partners.On("AdjustAggregatesWithTx", mock.Anything, mock.Anything, "PARTNER-1",
		3600.0, -3600.0, mock.Anything).Return(nil)
	app := &models.Application{ApplicationID: "APP-1", PartnerID: "PARTNER-1"}
	f.apps.On("GetByIDWithTx", mock.Anything, mock.Anything, "APP-1").Return(app, nil)
	f.apps.On("UpdateWithTx", mock.Anything, mock.Anything, app).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	// A manual payout settled without a separate release step.
	result, err := f.engine.MarkPaid(context.Background(), "COM-1",
		&models.CommissionPayRequest{PaymentMethod: "check"}, "admin-1", workflow.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.CommissionStatusPaid, result.Status)
}

func TestDisputeRequiresReason(t *testing.T) {
	f := newCommissionFixture()

	_, err := f.engine.Dispute(context.Background(), "COM-1",
		&models.CommissionDisputeRequest{}, "partner-1", workflow.RolePartner)
	require.Error(t, err)
	assert.Equal(t, workflow.ErrCodeMissingReason, workflow.CodeOf(err))
}

func TestDisputeRejectsUnknownReasonCode(t *testing.T) {
	f := newCommissionFixture()

	_, err := f.engine.Dispute(context.Background(), "COM-1",
		&models.CommissionDisputeRequest{ReasonCode: "vibes"}, "partner-1", workflow.RolePartner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dispute reason code")
}

func TestDisputeReleasedCommission(t *testing.T) {
	f := newCommissionFixture()
	tracking := pendingTracking()
	tracking.Status = models.CommissionStatusReleased

	f.commissions.On("GetByIDWithTx", mock.Anything, mock.Anything, "COM-1").Return(tracking, nil)
	f.commissions.On("UpdateWithTx", mock.Anything, mock.Anything, tracking).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.engine.Dispute(context.Background(), "COM-1",
		&models.CommissionDisputeRequest{ReasonCode: "not_received", Reason: "no transfer on statement"},
		"partner-1", workflow.RolePartner)
	require.NoError(t, err)

	assert.Equal(t, models.CommissionStatusDisputed, result.Status)
	require.NotNil(t, result.DisputeReason)
	assert.Equal(t, "not_received: no transfer on statement", *result.DisputeReason)
}

func TestDisputePendingCommission(t *testing.T) {
	f := newCommissionFixture()
	tracking := pendingTracking()

	f.commissions.On("GetByIDWithTx", mock.Anything, mock.Anything, "COM-1").Return(tracking, nil)
	f.commissions.On("UpdateWithTx", mock.Anything, mock.Anything, tracking).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.engine.Dispute(context.Background(), "COM-1",
		&models.CommissionDisputeRequest{ReasonCode: "amount_mismatch"},
		"admin-1", workflow.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.CommissionStatusDisputed, result.Status)
}

func TestDisputeRejectedWhenSettled(t *testing.T) {
	f := newCommissionFixture()
	tracking := pendingTracking()
	tracking.Status = models.CommissionStatusPaid

	f.commissions.On("GetByIDWithTx", mock.Anything, mock.Anything, "COM-1").Return(tracking, nil)

	_, err := f.engine.Dispute(context.Background(), "COM-1",
		&models.CommissionDisputeRequest{ReasonCode: "not_received"},
		"partner-1", workflow.RolePartner)
	require.Error(t, err)
	assert.Equal(t, workflow.ErrCodeInvalidCommissionState, workflow.CodeOf(err))
}

func TestCancelTrackingBacksOutPending(t *testing.T) {
	f := newCommissionFixture()
	tracking := pendingTracking()

	f.commissions.On("GetByIDWithTx", mock.Anything, mock.Anything, "COM-1").Return(tracking, nil)
	f.commissions.On("UpdateWithTx", mock.Anything, mock.Anything, tracking).Return(nil)
	f.partners.On("AdjustAggregatesWithTx", mock.Anything, mock.Anything, "PARTNER-1",
		0.0, -3600.0, mock.Anything).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.engine.CancelTracking(context.Background(), "COM-1",
		"application cancelled", "admin-1", workflow.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.CommissionStatusCancelled, result.Status)
	f.partners.AssertExpectations(t)
}

func TestSummaryFoldsPipelineRows(t *testing.T) {
	f := newCommissionFixture()

	f.commissions.On("SummaryByPartner", mock.Anything, "PARTNER-1").Return([]models.CommissionPipelineStat{
		{Status: models.CommissionStatusPending, Count: 2, Total: 5000},
		{Status: models.CommissionStatusReleased, Count: 1, Total: 3600},
		{Status: models.CommissionStatusPaid, Count: 3, Total: 9000},
	}, nil)

	summary, err := f.engine.Summary(context.Background(), "PARTNER-1")
	require.NoError(t, err)

	assert.Equal(t, 6, summary.RecordCount)
	assert.InDelta(t, 5000, summary.TotalPending, 0.001)
	assert.InDelta(t, 3600, summary.TotalReleased, 0.001)
	assert.InDelta(t, 9000, summary.TotalPaid, 0.001)
	assert.InDelta(t, 0, summary.TotalApproved, 0.001)
}
