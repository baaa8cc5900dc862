package models

// CommissionTracking statuses form their own lifecycle, independent of the
// application's workflow: pending → approved → released → paid, with
// disputed reachable from approved/released and cancelled from pending.
const (
	CommissionStatusPending   = "pending"
	CommissionStatusApproved  = "approved"
	CommissionStatusReleased  = "released"
	CommissionStatusPaid      = "paid"
	CommissionStatusCancelled = "cancelled"
	CommissionStatusDisputed  = "disputed"
)

// Application-side mirror values for CommissionTracking state.
const (
	ApplicationCommissionEarned = "earned"
	ApplicationCommissionPaid   = "paid"
)

// CommissionTracking represents the COMMISSION_TRACKING table, keyed 1:1 to
// an application once enrollment is reached.
type CommissionTracking struct {
	TrackingID    string `db:"TRACKING_ID" json:"trackingId"`
	ApplicationID string `db:"APPLICATION_ID" json:"applicationId"`
	PartnerID     string `db:"PARTNER_ID" json:"partnerId"`
	ProgramID     string `db:"PROGRAM_ID" json:"programId"`

	TuitionFee           float64 `db:"TUITION_FEE" json:"tuitionFee"`
	CommissionPercentage float64 `db:"COMMISSION_PERCENTAGE" json:"commissionPercentage"`
	PartnerTier          string  `db:"PARTNER_TIER" json:"partnerTier"`
	BaseAmount           float64 `db:"BASE_AMOUNT" json:"baseAmount"`
	BonusAmount          float64 `db:"BONUS_AMOUNT" json:"bonusAmount"`
	Amount               float64 `db:"AMOUNT" json:"amount"`

	Status         string `db:"STATUS" json:"status"`
	EnrollmentDate int64  `db:"ENROLLMENT_DATE" json:"enrollmentDate"`

	ApprovedBy *string `db:"APPROVED_BY" json:"approvedBy,omitempty"`
	ApprovedAt *int64  `db:"APPROVED_AT" json:"approvedAt,omitempty"`
	ReleasedBy *string `db:"RELEASED_BY" json:"releasedBy,omitempty"`
	ReleasedAt *int64  `db:"RELEASED_AT" json:"releasedAt,omitempty"`
	PaidBy     *string `db:"PAID_BY" json:"paidBy,omitempty"`
	PaidAt     *int64  `db:"PAID_AT" json:"paidAt,omitempty"`

	PaymentMethod    *string `db:"PAYMENT_METHOD" json:"paymentMethod,omitempty"`
	PaymentReference *string `db:"PAYMENT_REFERENCE" json:"paymentReference,omitempty"`
	DisputeReason    *string `db:"DISPUTE_REASON" json:"disputeReason,omitempty"`
	Notes            *string `db:"NOTES" json:"notes,omitempty"`

	CreatedTime int64 `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime int64 `db:"UPDATED_TIME" json:"updatedTime"`
}

// CommissionBreakdown is the result of the pure commission calculation.
type CommissionBreakdown struct {
	Base  float64 `json:"base"`
	Bonus float64 `json:"bonus"`
	Total float64 `json:"total"`
}

// CommissionApproveRequest represents the API payload for approving a
// pending commission.
type CommissionApproveRequest struct {
	Notes string `json:"notes,omitempty"`
}

// CommissionPayRequest represents the API payload for marking a commission
// transfer as paid.
type CommissionPayRequest struct {
	PaymentMethod    string `json:"paymentMethod" binding:"required"`
	PaymentReference string `json:"paymentReference,omitempty"`
}

// CommissionDisputeRequest represents the API payload for disputing a
// commission. ReasonCode is one of workflow.DisputeReasonCodes; Reason
// carries free text.
type CommissionDisputeRequest struct {
	ReasonCode string `json:"reasonCode,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// CommissionPipelineStat is one aggregate row of the pipeline dashboard.
type CommissionPipelineStat struct {
	Status string  `db:"STATUS" json:"status"`
	Count  int     `db:"CNT" json:"count"`
	Total  float64 `db:"TOTAL" json:"total"`
}

// CommissionSummary aggregates commission amounts, optionally scoped to a
// single partner.
type CommissionSummary struct {
	PartnerID     string  `json:"partnerId,omitempty"`
	TotalPending  float64 `json:"totalPending"`
	TotalApproved float64 `json:"totalApproved"`
	TotalReleased float64 `json:"totalReleased"`
	TotalPaid     float64 `json:"totalPaid"`
	TotalDisputed float64 `json:"totalDisputed"`
	RecordCount   int     `json:"recordCount"`
}
