package models

// Document statuses. A requirement counts as satisfied by a document whose
// status is uploaded or approved; rejected documents do not satisfy anything.
const (
	DocumentStatusUploaded = "uploaded"
	DocumentStatusApproved = "approved"
	DocumentStatusRejected = "rejected"
)

// Document represents the APPLICATION_DOCUMENT table. Only the tracking
// state lives here; file storage mechanics are outside this service.
type Document struct {
	DocumentID    string  `db:"DOCUMENT_ID" json:"documentId"`
	ApplicationID string  `db:"APPLICATION_ID" json:"applicationId"`
	DocumentType  string  `db:"DOCUMENT_TYPE" json:"documentType"`
	Status        string  `db:"STATUS" json:"status"`
	FileName      *string `db:"FILE_NAME" json:"fileName,omitempty"`
	UploadedBy    string  `db:"UPLOADED_BY" json:"uploadedBy"`
	ReviewedBy    *string `db:"REVIEWED_BY" json:"reviewedBy,omitempty"`
	ReviewReason  *string `db:"REVIEW_REASON" json:"reviewReason,omitempty"`
	CreatedTime   int64   `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime   int64   `db:"UPDATED_TIME" json:"updatedTime"`
}

// DocumentRequirement represents the DOCUMENT_REQUIREMENT table: one entry
// of an application's per-stage document checklist.
type DocumentRequirement struct {
	RequirementID string `db:"REQUIREMENT_ID" json:"requirementId"`
	ApplicationID string `db:"APPLICATION_ID" json:"applicationId"`
	Stage         int    `db:"STAGE" json:"stage"`
	DocumentType  string `db:"DOCUMENT_TYPE" json:"documentType"`
	Mandatory     bool   `db:"MANDATORY" json:"mandatory"`
}

// DocumentUploadRequest represents the API payload for recording an upload.
type DocumentUploadRequest struct {
	DocumentType string `json:"documentType" binding:"required"`
	FileName     string `json:"fileName,omitempty"`
}

// DocumentReviewRequest represents the API payload for reviewing a document.
type DocumentReviewRequest struct {
	Decision string `json:"decision" binding:"required"` // approved | rejected
	Reason   string `json:"reason,omitempty"`
}

// StageChecklist summarizes requirement completion for one stage.
type StageChecklist struct {
	Stage    int                  `json:"stage"`
	Complete bool                 `json:"complete"`
	Items    []StageChecklistItem `json:"items"`
}

// StageChecklistItem pairs a requirement with its satisfying document, if any.
type StageChecklistItem struct {
	DocumentType string    `json:"documentType"`
	Mandatory    bool      `json:"mandatory"`
	Satisfied    bool      `json:"satisfied"`
	Document     *Document `json:"document,omitempty"`
}
