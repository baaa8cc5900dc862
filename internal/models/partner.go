package models

// Partner tiers, ordered by commission multiplier.
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

// Partner represents the PARTNER table: the recruiting agency an
// application belongs to.
type Partner struct {
	PartnerID      string  `db:"PARTNER_ID" json:"partnerId"`
	Name           string  `db:"NAME" json:"name"`
	Tier           string  `db:"TIER" json:"tier"`
	ConversionRate float64 `db:"CONVERSION_RATE" json:"conversionRate"`

	// Aggregates maintained by the commission engine on payout.
	TotalCommissionEarned float64 `db:"TOTAL_COMMISSION_EARNED" json:"totalCommissionEarned"`
	CommissionPending     float64 `db:"COMMISSION_PENDING" json:"commissionPending"`

	CreatedTime int64 `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime int64 `db:"UPDATED_TIME" json:"updatedTime"`
}

// Program represents the PROGRAM table: a university program with its
// tuition fee and contracted commission percentage.
type Program struct {
	ProgramID            string  `db:"PROGRAM_ID" json:"programId"`
	UniversityName       string  `db:"UNIVERSITY_NAME" json:"universityName"`
	Name                 string  `db:"NAME" json:"name"`
	TuitionFee           float64 `db:"TUITION_FEE" json:"tuitionFee"`
	CommissionPercentage float64 `db:"COMMISSION_PERCENTAGE" json:"commissionPercentage"`

	CreatedTime int64 `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime int64 `db:"UPDATED_TIME" json:"updatedTime"`
}
