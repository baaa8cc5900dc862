package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edupath/application-management-api/internal/models"
	"github.com/edupath/application-management-api/internal/service"
	"github.com/edupath/application-management-api/internal/utils"
	"github.com/edupath/application-management-api/internal/workflow"
)

// DocumentHandler handles document tracking HTTP requests
type DocumentHandler struct {
	tracker *service.DocumentTracker
	engine  *service.WorkflowEngine
}

// NewDocumentHandler creates a new document handler instance
func NewDocumentHandler(tracker *service.DocumentTracker, engine *service.WorkflowEngine) *DocumentHandler {
	return &DocumentHandler{tracker: tracker, engine: engine}
}

// UploadDocument handles POST /applications/:applicationId/documents. The
// upload is committed first, then the workflow reacts to it, so a failed
// auto transition never loses the document.
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	applicationID := c.Param("applicationId")
	var request models.DocumentUploadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}
	docType, ok := workflow.ParseDocumentType(request.DocumentType)
	if !ok {
		utils.SendBadRequestError(c, "Unknown document type", request.DocumentType)
		return
	}

	actor := utils.GetActorFromContext(c)
	role := utils.GetActorRoleFromContext(c)

	doc, err := h.tracker.Upload(c.Request.Context(), applicationID, &request, actor, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	app, err := h.engine.OnDocumentUploaded(c.Request.Context(), applicationID, docType)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendCreatedResponse(c, gin.H{
		"document":    doc,
		"application": app,
	})
}

// ReviewDocument handles PUT /applications/:applicationId/documents/:documentId/review
func (h *DocumentHandler) ReviewDocument(c *gin.Context) {
	applicationID := c.Param("applicationId")
	documentID := c.Param("documentId")
	var request models.DocumentReviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actor := utils.GetActorFromContext(c)
	role := utils.GetActorRoleFromContext(c)

	doc, err := h.tracker.Review(c.Request.Context(), applicationID, documentID, &request, actor, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, doc)
}

// ListDocuments handles GET /applications/:applicationId/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	applicationID := c.Param("applicationId")

	docs, err := h.tracker.ListDocuments(c.Request.Context(), applicationID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, gin.H{"documents": docs})
}

// GetChecklist handles GET /applications/:applicationId/checklist
func (h *DocumentHandler) GetChecklist(c *gin.Context) {
	applicationID := c.Param("applicationId")
	stage, err := strconv.Atoi(c.DefaultQuery("stage", "1"))
	if err != nil {
		utils.SendBadRequestError(c, "Invalid stage", c.Query("stage"))
		return
	}

	checklist, err := h.tracker.StageChecklist(c.Request.Context(), applicationID, stage)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, checklist)
}
