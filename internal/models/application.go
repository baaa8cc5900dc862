package models

import (
	"time"

	"github.com/edupath/application-management-api/internal/workflow"
)

// Application represents the STUDENT_APPLICATION table: the central entity
// under workflow control.
type Application struct {
	ApplicationID  string `db:"APPLICATION_ID" json:"applicationId"`
	TrackingNumber string `db:"TRACKING_NUMBER" json:"trackingNumber"`
	StudentName    string `db:"STUDENT_NAME" json:"studentName"`
	PartnerID      string `db:"PARTNER_ID" json:"partnerId"`
	ProgramID      string `db:"PROGRAM_ID" json:"programId"`

	CurrentStage  int    `db:"CURRENT_STAGE" json:"currentStage"`
	CurrentStatus string `db:"CURRENT_STATUS" json:"currentStatus"`
	NextActor     string `db:"NEXT_ACTOR" json:"nextActor"`
	NextAction    string `db:"NEXT_ACTION" json:"nextAction"`

	// Pre-hold state, populated only while the application is on hold.
	PreviousStage     *int    `db:"PREVIOUS_STAGE" json:"previousStage,omitempty"`
	PreviousStatus    *string `db:"PREVIOUS_STATUS" json:"previousStatus,omitempty"`
	PreviousNextActor *string `db:"PREVIOUS_NEXT_ACTOR" json:"previousNextActor,omitempty"`

	// Derived document counters, recomputed on each document event.
	RequiredDocumentsCount int `db:"REQUIRED_DOCUMENTS_COUNT" json:"requiredDocumentsCount"`
	UploadedDocumentsCount int `db:"UPLOADED_DOCUMENTS_COUNT" json:"uploadedDocumentsCount"`
	ApprovedDocumentsCount int `db:"APPROVED_DOCUMENTS_COUNT" json:"approvedDocumentsCount"`

	CommissionPercentage *float64 `db:"COMMISSION_PERCENTAGE" json:"commissionPercentage,omitempty"`
	EstimatedCommission  *float64 `db:"ESTIMATED_COMMISSION" json:"estimatedCommission,omitempty"`
	CommissionStatus     *string  `db:"COMMISSION_STATUS" json:"commissionStatus,omitempty"`

	StatusChangeCount  int   `db:"STATUS_CHANGE_COUNT" json:"statusChangeCount"`
	LastStatusChangeAt int64 `db:"LAST_STATUS_CHANGE_AT" json:"lastStatusChangeAt"`
	CreatedTime        int64 `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime        int64 `db:"UPDATED_TIME" json:"updatedTime"`
}

// Stage returns the current stage as a workflow stage.
func (a *Application) Stage() workflow.Stage {
	return workflow.Stage(a.CurrentStage)
}

// Status returns the current status as a workflow status.
func (a *Application) Status() workflow.Status {
	return workflow.Status(a.CurrentStatus)
}

// GetCreatedTime returns the created time as a time.Time
func (a *Application) GetCreatedTime() time.Time {
	return time.Unix(0, a.CreatedTime*int64(time.Millisecond))
}

// StageHistoryEntry represents one row of the APPLICATION_STAGE_HISTORY
// table. The history is ordered and append-only; the last entry always
// mirrors the application's current (stage, status).
type StageHistoryEntry struct {
	HistoryID     string  `db:"HISTORY_ID" json:"historyId"`
	ApplicationID string  `db:"APPLICATION_ID" json:"applicationId"`
	Stage         int     `db:"STAGE" json:"stage"`
	Status        string  `db:"STATUS" json:"status"`
	ActionTime    int64   `db:"ACTION_TIME" json:"actionTime"`
	Actor         string  `db:"ACTOR" json:"actor"`
	ActorRole     string  `db:"ACTOR_ROLE" json:"actorRole"`
	Reason        *string `db:"REASON" json:"reason,omitempty"`
	Notes         *string `db:"NOTES" json:"notes,omitempty"`
}

// AuditEntry represents one row of the WORKFLOW_AUDIT table: a best-effort
// activity log written after every committed transition. Writes are never
// allowed to block or reverse a state change.
type AuditEntry struct {
	AuditID       string  `db:"AUDIT_ID" json:"auditId"`
	ApplicationID string  `db:"APPLICATION_ID" json:"applicationId"`
	Event         string  `db:"EVENT" json:"event"`
	Message       string  `db:"MESSAGE" json:"message"`
	Actor         string  `db:"ACTOR" json:"actor"`
	ActorRole     string  `db:"ACTOR_ROLE" json:"actorRole"`
	OldStatus     *string `db:"OLD_STATUS" json:"oldStatus,omitempty"`
	NewStatus     *string `db:"NEW_STATUS" json:"newStatus,omitempty"`
	Details       JSON    `db:"DETAILS" json:"details,omitempty"`
	CreatedTime   int64   `db:"CREATED_TIME" json:"createdTime"`
}

// ApplicationCreateRequest represents the API payload for submitting a new
// application.
type ApplicationCreateRequest struct {
	StudentName string `json:"studentName" binding:"required"`
	PartnerID   string `json:"partnerId" binding:"required"`
	ProgramID   string `json:"programId" binding:"required"`
}

// TransitionRequest represents the API payload for a workflow action.
type TransitionRequest struct {
	TargetStatus string `json:"targetStatus" binding:"required"`
	Reason       string `json:"reason,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// AdminActionRequest represents the payload for hold/resume/cancel actions.
type AdminActionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ApplicationSearchParams represents search parameters for application queries
type ApplicationSearchParams struct {
	PartnerID string   `form:"partnerId"`
	Stages    []int    `form:"stages"`
	Statuses  []string `form:"statuses"`
	Limit     int      `form:"limit"`
	Offset    int      `form:"offset"`
}

// ApplicationResponse represents an application with its history attached.
type ApplicationResponse struct {
	Application
	StatusDisplayName    string              `json:"statusDisplayName,omitempty"`
	History              []StageHistoryEntry `json:"history,omitempty"`
	AvailableTransitions interface{}         `json:"availableTransitions,omitempty"`
}

// StaleApplication is one row of the monitoring view: an application that
// has sat in its status longer than the matrix allows.
type StaleApplication struct {
	Application
	MaxStuckDurationHours int   `json:"maxStuckDurationHours"`
	StuckForHours         int64 `json:"stuckForHours"`
}
