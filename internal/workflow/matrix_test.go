package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMatrixIntegrity checks that every status row is internally consistent:
// reachable targets exist, terminal rows lead nowhere, and every row names
// its owner and next action.
func TestMatrixIntegrity(t *testing.T) {
	m := Default()

	for _, status := range m.Statuses() {
		stage, err := m.StageOf(status)
		require.NoError(t, err, "status %s should resolve to a stage", status)

		rule, err := m.Rule(stage, status)
		require.NoError(t, err, "status %s should have a rule", status)

		assert.NotEmpty(t, rule.SetBy, "status %s should have an owner", status)
		assert.NotEmpty(t, rule.NextAction, "status %s should state the next action", status)
		assert.NotEmpty(t, rule.AdminDisplayName, "status %s should have a display name", status)

		if rule.IsTerminal {
			assert.Empty(t, rule.AllowedNext, "terminal status %s should lead nowhere", status)
		}

		for _, next := range rule.AllowedNext {
			_, err := m.StageOf(next)
			assert.NoError(t, err, "status %s points at unknown target %s", status, next)
		}

		if rule.SystemAutoTriggerAfterHours > 0 {
			assert.NotEmpty(t, rule.AutoTriggerTarget,
				"status %s has an auto trigger without a target", status)
		}
	}
}

// TestMatrixStageAssignment checks the stage each status belongs to.
func TestMatrixStageAssignment(t *testing.T) {
	m := Default()

	expectations := map[Status]Stage{
		StatusNewApplication:             StageSubmission,
		StatusApprovedStage1:             StageSubmission,
		StatusSentToUniversity:           StageUniversity,
		StatusOfferAccepted:              StageUniversity,
		StatusWaitingVisaPayment:         StageVisa,
		StatusVisaApproved:               StageVisa,
		StatusArrivalPending:             StageArrival,
		StatusEnrollmentConfirmed:        StageArrival,
		StatusCommissionPending:          StageCommission,
		StatusCommissionPaid:             StageCommission,
		StatusOnHold:                     StageAny,
		StatusCancelled:                  StageAny,
	}
	for status, want := range expectations {
		stage, err := m.StageOf(status)
		require.NoError(t, err)
		assert.Equal(t, want, stage, "status %s", status)
	}
}

// TestHappyPathIsWalkable walks the full pipeline from submission to paid
// commission, each step taken by the role that owns its target.
func TestHappyPathIsWalkable(t *testing.T) {
	m := Default()

	steps := []struct {
		from Status
		to   Status
		role Role
	}{
		{StatusNewApplication, StatusDocumentsSubmitted, RoleSystem},
		{StatusDocumentsSubmitted, StatusUnderAdminReview, RoleAdmin},
		{StatusUnderAdminReview, StatusApprovedStage1, RoleAdmin},
		{StatusApprovedStage1, StatusSentToUniversity, RoleAdmin},
		{StatusSentToUniversity, StatusUniversityReview, RoleUniversity},
		{StatusUniversityReview, StatusOfferIssued, RoleUniversity},
		{StatusOfferIssued, StatusOfferAccepted, RolePartner},
		{StatusOfferAccepted, StatusWaitingVisaPayment, RoleAdmin},
		{StatusWaitingVisaPayment, StatusPaymentReceived, RoleSystem},
		{StatusPaymentReceived, StatusVisaApplicationSubmitted, RoleAdmin},
		{StatusVisaApplicationSubmitted, StatusVisaApproved, RoleImmigration},
		{StatusVisaApproved, StatusArrivalPending, RoleAdmin},
		{StatusArrivalPending, StatusStudentArrived, RolePartner},
		{StatusStudentArrived, StatusEnrollmentConfirmed, RoleAdmin},
		{StatusEnrollmentConfirmed, StatusCommissionPending, RoleSystem},
		{StatusCommissionPending, StatusCommissionReleased, RoleAdmin},
		{StatusCommissionReleased, StatusCommissionPaid, RolePartner},
	}

	for _, step := range steps {
		stage, err := m.StageOf(step.from)
		require.NoError(t, err)
		ok, err := m.CanTransition(stage, step.from, step.to, step.role)
		require.NoError(t, err, "%s -> %s", step.from, step.to)
		assert.True(t, ok, "%s should be able to move %s -> %s", step.role, step.from, step.to)
	}

	stage, err := m.StageOf(StatusCommissionPaid)
	require.NoError(t, err)
	terminal, err := m.IsTerminal(stage, StatusCommissionPaid)
	require.NoError(t, err)
	assert.True(t, terminal)
}

// TestAdminOverrideAuthority verifies that admin may act in place of any
// other role, while non-owners are refused.
func TestAdminOverrideAuthority(t *testing.T) {
	m := Default()

	// offer_issued is owned by university; admin may set it, partner may not.
	ok, err := m.CanTransition(StageUniversity, StatusUniversityReview, StatusOfferIssued, RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok, "admin should override university authority")

	ok, err = m.CanTransition(StageUniversity, StatusUniversityReview, StatusOfferIssued, RolePartner)
	require.NoError(t, err)
	assert.False(t, ok, "partner should not set a university-owned status")

	ok, err = m.CanTransition(StageSubmission, StatusUnderAdminReview, StatusApprovedStage1, RolePartner)
	require.NoError(t, err)
	assert.False(t, ok, "partner should not approve stage 1")
}

// TestUnreachableTransitions verifies moves outside the graph are refused
// regardless of role.
func TestUnreachableTransitions(t *testing.T) {
	m := Default()

	ok, err := m.CanTransition(StageSubmission, StatusNewApplication, StatusVisaApproved, RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok, "skipping stages should not be possible")

	ok, err = m.CanTransition(StageSubmission, StatusNewApplication, StatusNewApplication, RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok, "self transition should not be possible")
}

func TestRuleStageMismatch(t *testing.T) {
	m := Default()

	_, err := m.Rule(StageVisa, StatusNewApplication)
	require.Error(t, err)
	assert.Equal(t, ErrCodeConfiguration, CodeOf(err))

	// Stage-agnostic rows resolve at any stage.
	for _, stage := range []Stage{StageSubmission, StageVisa, StageCommission} {
		_, err := m.Rule(stage, StatusOnHold)
		assert.NoError(t, err)
	}
}

func TestRequirementsGates(t *testing.T) {
	m := Default()

	reqs, err := m.Requirements(StageSubmission, StatusDocumentsSubmitted)
	require.NoError(t, err)
	assert.ElementsMatch(t, []DocumentType{DocPassportCopy, DocAcademicTranscripts, DocEnglishCertificate},
		reqs.RequiresDocuments)
	assert.False(t, reqs.RequiresReason)

	reqs, err = m.Requirements(StageVisa, StatusPaymentReceived)
	require.NoError(t, err)
	assert.ElementsMatch(t, []DocumentType{DocVisaPaymentProof}, reqs.RequiresDocuments)

	for _, status := range []Status{StatusRejectedStage1, StatusRejectedUniversity, StatusVisaRejected, StatusCancelled, StatusOnHold} {
		stage, err := m.StageOf(status)
		require.NoError(t, err)
		reqs, err := m.Requirements(stage, status)
		require.NoError(t, err)
		assert.True(t, reqs.RequiresReason, "status %s should require a reason", status)
	}
}

func TestAvailableTransitionsByRole(t *testing.T) {
	m := Default()

	adminOptions, err := m.AvailableTransitions(StageSubmission, StatusUnderAdminReview, RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, adminOptions, 4)

	partnerOptions, err := m.AvailableTransitions(StageSubmission, StatusUnderAdminReview, RolePartner)
	require.NoError(t, err)
	assert.Empty(t, partnerOptions, "partner has no actions during admin review")

	// Partner may accept the offer but not reject for the university.
	partnerOptions, err = m.AvailableTransitions(StageUniversity, StatusOfferIssued, RolePartner)
	require.NoError(t, err)
	require.Len(t, partnerOptions, 1)
	assert.Equal(t, StatusOfferAccepted, partnerOptions[0].Key)
	assert.NotEmpty(t, partnerOptions[0].DisplayName)
}

func TestDisplayNamePerRole(t *testing.T) {
	m := Default()

	adminName, err := m.DisplayName(StageSubmission, StatusUnderAdminReview, RoleAdmin)
	require.NoError(t, err)
	partnerName, err := m.DisplayName(StageSubmission, StatusUnderAdminReview, RolePartner)
	require.NoError(t, err)
	assert.NotEqual(t, adminName, partnerName)

	universityName, err := m.DisplayName(StageSubmission, StatusUnderAdminReview, RoleUniversity)
	require.NoError(t, err)
	assert.Equal(t, adminName, universityName, "non-partner roles see the admin wording")
}

func TestDuplicateStatusPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewMatrix([]Rule{
			{Stage: StageSubmission, Status: StatusNewApplication},
			{Stage: StageVisa, Status: StatusNewApplication},
		})
	})
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func TestParseDocumentType(t *testing.T) {
	docType, ok := ParseDocumentType("visa_payment_proof")
	assert.True(t, ok)
	assert.Equal(t, DocVisaPaymentProof, docType)

	_, ok = ParseDocumentType("selfie")
	assert.False(t, ok)
}
