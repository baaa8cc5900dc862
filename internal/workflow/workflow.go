package workflow

// Role identifies who is authorized to cause a transition.
type Role string

const (
	RoleAdmin       Role = "admin"
	RolePartner     Role = "partner"
	RoleUniversity  Role = "university"
	RoleImmigration Role = "immigration"
	RoleSystem      Role = "system"
)

// ParseRole maps a wire value onto a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RolePartner, RoleUniversity, RoleImmigration, RoleSystem:
		return Role(s), true
	}
	return "", false
}

// Stage is one of the five ordered phases of an application's life.
type Stage int

const (
	StageSubmission Stage = 1
	StageUniversity Stage = 2
	StageVisa       Stage = 3
	StageArrival    Stage = 4
	StageCommission Stage = 5
)

// StageAny marks rules that apply regardless of the application's stage
// (administrative hold and cancel).
const StageAny Stage = 0

// Status is a fine-grained state within a stage.
type Status string

// Stage 1 — submission and admin review.
const (
	StatusNewApplication         Status = "new_application"
	StatusDocumentsSubmitted     Status = "documents_submitted"
	StatusUnderAdminReview       Status = "under_admin_review"
	StatusCorrectionRequested    Status = "correction_requested_admin"
	StatusDocumentsResubmission  Status = "documents_resubmission_required"
	StatusApprovedStage1         Status = "approved_stage1"
	StatusRejectedStage1         Status = "rejected_stage1"
)

// Stage 2 — university review.
const (
	StatusSentToUniversity        Status = "sent_to_university"
	StatusUniversityReview        Status = "university_review"
	StatusAdditionalDocsRequested Status = "additional_docs_requested"
	StatusOfferIssued             Status = "offer_issued"
	StatusOfferAccepted           Status = "offer_accepted"
	StatusRejectedUniversity      Status = "rejected_university"
)

// Stage 3 — visa processing.
const (
	StatusWaitingVisaPayment       Status = "waiting_visa_payment"
	StatusPaymentReceived          Status = "payment_received"
	StatusVisaApplicationSubmitted Status = "visa_application_submitted"
	StatusVisaApproved             Status = "visa_approved"
	StatusVisaRejected             Status = "visa_rejected"
)

// Stage 4 — arrival and enrollment.
const (
	StatusArrivalPending      Status = "arrival_pending"
	StatusStudentArrived      Status = "student_arrived"
	StatusEnrollmentConfirmed Status = "enrollment_confirmed"
)

// Stage 5 — commission settlement.
const (
	StatusCommissionPending          Status = "commission_pending"
	StatusCommissionReleased         Status = "commission_released"
	StatusCommissionPaid             Status = "commission_paid"
	StatusCommissionTransferDisputed Status = "commission_transfer_disputed"
)

// Administrative escape hatches, valid at any stage.
const (
	StatusOnHold    Status = "on_hold"
	StatusCancelled Status = "cancelled"
)

// DocumentType classifies documents attached to an application.
type DocumentType string

const (
	DocPassportCopy         DocumentType = "passport_copy"
	DocAcademicTranscripts  DocumentType = "academic_transcripts"
	DocEnglishCertificate   DocumentType = "english_certificate"
	DocRecommendationLetter DocumentType = "recommendation_letter"
	DocOfferLetter          DocumentType = "offer_letter"
	DocVisaPaymentProof     DocumentType = "visa_payment_proof"
	DocFinancialStatement   DocumentType = "financial_statement"
	DocEnrollmentLetter     DocumentType = "enrollment_letter"
)

// ParseDocumentType maps a wire value onto a known document type.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch DocumentType(s) {
	case DocPassportCopy, DocAcademicTranscripts, DocEnglishCertificate,
		DocRecommendationLetter, DocOfferLetter, DocVisaPaymentProof,
		DocFinancialStatement, DocEnrollmentLetter:
		return DocumentType(s), true
	}
	return "", false
}

// DisputeReasonCodes are the fixed reason codes a partner may supply when
// disputing a commission transfer; free text is also accepted.
var DisputeReasonCodes = []string{
	"amount_mismatch",
	"not_received",
	"wrong_account",
	"other",
}
