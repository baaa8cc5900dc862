package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edupath/application-management-api/internal/models"
	"github.com/edupath/application-management-api/internal/service"
	"github.com/edupath/application-management-api/internal/utils"
	"github.com/edupath/application-management-api/internal/workflow"
)

// ApplicationHandler handles application workflow HTTP requests
type ApplicationHandler struct {
	engine *service.WorkflowEngine
}

// NewApplicationHandler creates a new application handler instance
func NewApplicationHandler(engine *service.WorkflowEngine) *ApplicationHandler {
	return &ApplicationHandler{engine: engine}
}

// CreateApplication handles POST /applications
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var request models.ApplicationCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actor := utils.GetActorFromContext(c)
	role := utils.GetActorRoleFromContext(c)

	app, err := h.engine.CreateApplication(c.Request.Context(), &request, actor, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendCreatedResponse(c, app)
}

// GetApplication handles GET /applications/:applicationId
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	applicationID := c.Param("applicationId")
	role := utils.GetActorRoleFromContext(c)

	response, err := h.engine.GetApplication(c.Request.Context(), applicationID, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, response)
}

// SearchApplications handles GET /applications
func (h *ApplicationHandler) SearchApplications(c *gin.Context) {
	params := &models.ApplicationSearchParams{
		PartnerID: c.Query("partnerId"),
	}
	params.Statuses = splitQuery(c.Query("statuses"))
	for _, s := range splitQuery(c.Query("stages")) {
		stage, err := strconv.Atoi(s)
		if err != nil {
			utils.SendBadRequestError(c, "Invalid stage filter", s)
			return
		}
		params.Stages = append(params.Stages, stage)
	}
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	params.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	apps, total, err := h.engine.SearchApplications(c.Request.Context(), params)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, gin.H{
		"applications": apps,
		"pagination":   utils.CalculatePaginationMetadata(total, params.Limit, params.Offset),
	})
}

// ApplyTransition handles POST /applications/:applicationId/transitions
func (h *ApplicationHandler) ApplyTransition(c *gin.Context) {
	applicationID := c.Param("applicationId")
	var request models.TransitionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actor := utils.GetActorFromContext(c)
	role := utils.GetActorRoleFromContext(c)

	app, err := h.engine.ApplyTransition(c.Request.Context(), applicationID, &request, actor, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, app)
}

// GetAvailableTransitions handles GET /applications/:applicationId/transitions
func (h *ApplicationHandler) GetAvailableTransitions(c *gin.Context) {
	applicationID := c.Param("applicationId")
	role := utils.GetActorRoleFromContext(c)

	options, err := h.engine.AvailableTransitions(c.Request.Context(), applicationID, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, gin.H{"transitions": options})
}

// GetHistory handles GET /applications/:applicationId/history
func (h *ApplicationHandler) GetHistory(c *gin.Context) {
	applicationID := c.Param("applicationId")

	history, err := h.engine.GetHistory(c.Request.Context(), applicationID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, gin.H{"history": history})
}

// HoldApplication handles POST /applications/:applicationId/hold
func (h *ApplicationHandler) HoldApplication(c *gin.Context) {
	h.adminAction(c, h.engine.Hold)
}

// ResumeApplication handles POST /applications/:applicationId/resume
func (h *ApplicationHandler) ResumeApplication(c *gin.Context) {
	h.adminAction(c, h.engine.Resume)
}

// CancelApplication handles POST /applications/:applicationId/cancel
func (h *ApplicationHandler) CancelApplication(c *gin.Context) {
	h.adminAction(c, h.engine.Cancel)
}

// GetStaleApplications handles GET /applications/stale
func (h *ApplicationHandler) GetStaleApplications(c *gin.Context) {
	stale, err := h.engine.StaleApplications(c.Request.Context())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, gin.H{"applications": stale})
}

// adminActionFunc is the shared shape of the engine's hold, resume, and
// cancel operations.
type adminActionFunc func(ctx context.Context, applicationID string, req *models.AdminActionRequest, actor string, role workflow.Role) (*models.Application, error)

func (h *ApplicationHandler) adminAction(c *gin.Context, action adminActionFunc) {
	applicationID := c.Param("applicationId")
	var request models.AdminActionRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actor := utils.GetActorFromContext(c)
	role := utils.GetActorRoleFromContext(c)

	app, err := action(c.Request.Context(), applicationID, &request, actor, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, app)
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
