package workflow

// Default returns the production status-authority table: one row per
// (stage, status). This is the single source of truth for who may move an
// application where, and what each move demands.
func Default() *Matrix {
	return NewMatrix([]Rule{
		// ---- Stage 1: submission -------------------------------------------
		{
			Stage: StageSubmission, Status: StatusNewApplication,
			SetBy:                 RolePartner,
			AllowedNext:           []Status{StatusDocumentsSubmitted},
			EstimatedDurationDays: 3, MaxStuckDurationHours: 72,
			NextActor: RolePartner, NextAction: "Upload the required documents",
			AdminDisplayName:   "New application received, waiting for documents",
			PartnerDisplayName: "Upload the required documents to continue",
		},
		{
			Stage: StageSubmission, Status: StatusDocumentsSubmitted,
			SetBy:             RoleSystem,
			AllowedNext:       []Status{StatusUnderAdminReview},
			RequiresDocuments: []DocumentType{DocPassportCopy, DocAcademicTranscripts, DocEnglishCertificate},
			EstimatedDurationDays: 2, MaxStuckDurationHours: 48,
			SystemAutoTriggerAfterHours: 48, AutoTriggerTarget: StatusUnderAdminReview,
			NextActor: RoleAdmin, NextAction: "Review the submitted documents",
			AdminDisplayName:   "Documents submitted, review pending",
			PartnerDisplayName: "Documents submitted, waiting for review",
		},
		{
			Stage: StageSubmission, Status: StatusUnderAdminReview,
			SetBy:       RoleAdmin,
			AllowedNext: []Status{StatusApprovedStage1, StatusCorrectionRequested, StatusDocumentsResubmission, StatusRejectedStage1},
			EstimatedDurationDays: 3, MaxStuckDurationHours: 96,
			NextActor: RoleAdmin, NextAction: "Approve, request corrections, or reject",
			AdminDisplayName:   "Application under review",
			PartnerDisplayName: "Your application is being reviewed",
		},
		{
			Stage: StageSubmission, Status: StatusCorrectionRequested,
			SetBy:          RoleAdmin,
			AllowedNext:    []Status{StatusDocumentsSubmitted},
			RequiresReason: true,
			EstimatedDurationDays: 5, MaxStuckDurationHours: 168,
			NextActor: RolePartner, NextAction: "Correct and re-upload the flagged documents",
			AdminDisplayName:   "Corrections requested from partner",
			PartnerDisplayName: "Corrections requested, please re-upload the flagged documents",
		},
		{
			Stage: StageSubmission, Status: StatusDocumentsResubmission,
			SetBy:          RoleAdmin,
			AllowedNext:    []Status{StatusDocumentsSubmitted},
			RequiresReason: true,
			EstimatedDurationDays: 5, MaxStuckDurationHours: 168,
			NextActor: RolePartner, NextAction: "Resubmit the required documents",
			AdminDisplayName:   "Document resubmission required",
			PartnerDisplayName: "Please resubmit the required documents",
		},
		{
			Stage: StageSubmission, Status: StatusApprovedStage1,
			SetBy:       RoleAdmin,
			AllowedNext: []Status{StatusSentToUniversity},
			EstimatedDurationDays: 1, MaxStuckDurationHours: 48,
			NextActor: RoleAdmin, NextAction: "Forward the application to the university",
			AdminDisplayName:   "Application approved, ready to send to university",
			PartnerDisplayName: "Application approved, being forwarded to the university",
		},
		{
			Stage: StageSubmission, Status: StatusRejectedStage1,
			SetBy:          RoleAdmin,
			RequiresReason: true,
			IsTerminal:     true,
			NextActor:      RoleSystem, NextAction: "No further action",
			AdminDisplayName:   "Application rejected at submission review",
			PartnerDisplayName: "Application was rejected, see the stated reason",
		},

		// ---- Stage 2: university review ------------------------------------
		{
			Stage: StageUniversity, Status: StatusSentToUniversity,
			SetBy:       RoleAdmin,
			AllowedNext: []Status{StatusUniversityReview},
			EstimatedDurationDays: 7, MaxStuckDurationHours: 240,
			SystemAutoTriggerAfterHours: 240, AutoTriggerTarget: StatusUniversityReview,
			NextActor: RoleUniversity, NextAction: "Acknowledge receipt and open the review",
			AdminDisplayName:   "Sent to university, awaiting acknowledgement",
			PartnerDisplayName: "Application forwarded to the university",
		},
		{
			Stage: StageUniversity, Status: StatusUniversityReview,
			SetBy:       RoleUniversity,
			AllowedNext: []Status{StatusOfferIssued, StatusAdditionalDocsRequested, StatusRejectedUniversity},
			EstimatedDurationDays: 14, MaxStuckDurationHours: 504,
			NextActor: RoleUniversity, NextAction: "Issue an offer, request documents, or reject",
			AdminDisplayName:   "University review in progress",
			PartnerDisplayName: "The university is reviewing the application",
		},
		{
			Stage: StageUniversity, Status: StatusAdditionalDocsRequested,
			SetBy:          RoleUniversity,
			AllowedNext:    []Status{StatusUniversityReview},
			RequiresReason: true,
			EstimatedDurationDays: 7, MaxStuckDurationHours: 336,
			NextActor: RolePartner, NextAction: "Provide the additional documents requested",
			AdminDisplayName:   "University requested additional documents",
			PartnerDisplayName: "Additional documents requested by the university",
		},
		{
			Stage: StageUniversity, Status: StatusOfferIssued,
			SetBy:       RoleUniversity,
			AllowedNext: []Status{StatusOfferAccepted, StatusRejectedUniversity},
			EstimatedDurationDays: 7, MaxStuckDurationHours: 336,
			NextActor: RolePartner, NextAction: "Confirm offer acceptance with the student",
			AdminDisplayName:   "Offer issued, waiting for acceptance",
			PartnerDisplayName: "Offer issued! Confirm acceptance with the student",
		},
		{
			Stage: StageUniversity, Status: StatusOfferAccepted,
			SetBy:       RolePartner,
			AllowedNext: []Status{StatusWaitingVisaPayment},
			EstimatedDurationDays: 2, MaxStuckDurationHours: 96,
			NextActor: RoleAdmin, NextAction: "Open the visa process",
			AdminDisplayName:   "Offer accepted, ready for visa processing",
			PartnerDisplayName: "Offer accepted, visa processing starts next",
		},
		{
			Stage: StageUniversity, Status: StatusRejectedUniversity,
			SetBy:          RoleUniversity,
			RequiresReason: true,
			IsTerminal:     true,
			NextActor:      RoleSystem, NextAction: "No further action",
			AdminDisplayName:   "Rejected by the university",
			PartnerDisplayName: "The university rejected the application",
		},

		// ---- Stage 3: visa -------------------------------------------------
		{
			Stage: StageVisa, Status: StatusWaitingVisaPayment,
			SetBy:       RoleAdmin,
			AllowedNext: []Status{StatusPaymentReceived},
			EstimatedDurationDays: 5, MaxStuckDurationHours: 168,
			NextActor: RolePartner, NextAction: "Upload the visa payment proof",
			AdminDisplayName:   "Waiting for visa fee payment",
			PartnerDisplayName: "Pay the visa fee and upload the payment proof",
		},
		{
			Stage: StageVisa, Status: StatusPaymentReceived,
			SetBy:             RoleSystem,
			AllowedNext:       []Status{StatusVisaApplicationSubmitted},
			RequiresDocuments: []DocumentType{DocVisaPaymentProof},
			EstimatedDurationDays: 2, MaxStuckDurationHours: 72,
			NextActor: RoleAdmin, NextAction: "Submit the visa application",
			AdminDisplayName:   "Visa payment received",
			PartnerDisplayName: "Payment received, visa application is being prepared",
		},
		{
			Stage: StageVisa, Status: StatusVisaApplicationSubmitted,
			SetBy:       RoleAdmin,
			AllowedNext: []Status{StatusVisaApproved, StatusVisaRejected},
			EstimatedDurationDays: 21, MaxStuckDurationHours: 720,
			NextActor: RoleImmigration, NextAction: "Decide on the visa application",
			AdminDisplayName:   "Visa application submitted to immigration",
			PartnerDisplayName: "Visa application submitted, decision pending",
		},
		{
			Stage: StageVisa, Status: StatusVisaApproved,
			SetBy:       RoleImmigration,
			AllowedNext: []Status{StatusArrivalPending},
			EstimatedDurationDays: 1, MaxStuckDurationHours: 72,
			NextActor: RoleAdmin, NextAction: "Record the planned arrival",
			AdminDisplayName:   "Visa approved",
			PartnerDisplayName: "Visa approved! Arrival planning starts next",
		},
		{
			Stage: StageVisa, Status: StatusVisaRejected,
			SetBy:          RoleImmigration,
			RequiresReason: true,
			IsTerminal:     true,
			NextActor:      RoleSystem, NextAction: "No further action",
			AdminDisplayName:   "Visa rejected by immigration",
			PartnerDisplayName: "The visa application was rejected",
		},

		// ---- Stage 4: arrival ----------------------------------------------
		{
			Stage: StageArrival, Status: StatusArrivalPending,
			SetBy:       RoleAdmin,
			AllowedNext: []Status{StatusStudentArrived},
			EstimatedDurationDays: 30, MaxStuckDurationHours: 1440,
			NextActor: RolePartner, NextAction: "Confirm the student's arrival",
			AdminDisplayName:   "Waiting for the student to arrive",
			PartnerDisplayName: "Confirm once the student has arrived",
		},
		{
			Stage: StageArrival, Status: StatusStudentArrived,
			SetBy:       RolePartner,
			AllowedNext: []Status{StatusEnrollmentConfirmed},
			EstimatedDurationDays: 7, MaxStuckDurationHours: 336,
			NextActor: RoleAdmin, NextAction: "Confirm enrollment with the university",
			AdminDisplayName:   "Student arrived, enrollment confirmation pending",
			PartnerDisplayName: "Arrival recorded, enrollment is being confirmed",
		},
		{
			Stage: StageArrival, Status: StatusEnrollmentConfirmed,
			SetBy:       RoleAdmin,
			AllowedNext: []Status{StatusCommissionPending},
			EstimatedDurationDays: 1, MaxStuckDurationHours: 24,
			NextActor: RoleSystem, NextAction: "Commission record is created automatically",
			AdminDisplayName:   "Enrollment confirmed",
			PartnerDisplayName: "Enrollment confirmed, commission is being calculated",
		},

		// ---- Stage 5: commission -------------------------------------------
		{
			Stage: StageCommission, Status: StatusCommissionPending,
			SetBy:       RoleSystem,
			AllowedNext: []Status{StatusCommissionReleased},
			EstimatedDurationDays: 14, MaxStuckDurationHours: 504,
			NextActor: RoleAdmin, NextAction: "Approve and release the commission transfer",
			AdminDisplayName:   "Commission pending release",
			PartnerDisplayName: "Commission earned, payout is being processed",
		},
		{
			Stage: StageCommission, Status: StatusCommissionReleased,
			SetBy:       RoleAdmin,
			AllowedNext: []Status{StatusCommissionPaid, StatusCommissionTransferDisputed},
			EstimatedDurationDays: 5, MaxStuckDurationHours: 168,
			NextActor: RolePartner, NextAction: "Confirm receipt of the commission transfer",
			AdminDisplayName:   "Commission transfer sent",
			PartnerDisplayName: "Transfer sent, confirm once received",
		},
		{
			Stage: StageCommission, Status: StatusCommissionPaid,
			SetBy:      RolePartner,
			IsTerminal: true,
			NextActor:  RoleSystem, NextAction: "No further action",
			AdminDisplayName:   "Commission paid and confirmed",
			PartnerDisplayName: "Commission received, case closed",
		},
		{
			Stage: StageCommission, Status: StatusCommissionTransferDisputed,
			SetBy:          RolePartner,
			AllowedNext:    []Status{StatusCommissionReleased},
			RequiresReason: true,
			EstimatedDurationDays: 7, MaxStuckDurationHours: 336,
			NextActor: RoleAdmin, NextAction: "Resolve the dispute and re-send the transfer",
			AdminDisplayName:   "Commission transfer disputed by partner",
			PartnerDisplayName: "Dispute recorded, the transfer is being re-checked",
		},

		// ---- Administrative, stage-agnostic --------------------------------
		{
			Stage: StageAny, Status: StatusOnHold,
			SetBy:          RoleAdmin,
			RequiresReason: true,
			NextActor:      RoleAdmin, NextAction: "Resume or cancel the application",
			AdminDisplayName:   "Application on hold",
			PartnerDisplayName: "The application is on hold",
		},
		{
			Stage: StageAny, Status: StatusCancelled,
			SetBy:          RoleAdmin,
			RequiresReason: true,
			IsTerminal:     true,
			NextActor:      RoleSystem, NextAction: "No further action",
			AdminDisplayName:   "Application cancelled",
			PartnerDisplayName: "The application was cancelled",
		},
	})
}
