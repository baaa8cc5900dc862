package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/edupath/application-management-api/internal/models"
	"github.com/edupath/application-management-api/internal/service"
	"github.com/edupath/application-management-api/internal/utils"
)

// CommissionHandler handles commission tracking HTTP requests
type CommissionHandler struct {
	engine *service.CommissionEngine
}

// NewCommissionHandler creates a new commission handler instance
func NewCommissionHandler(engine *service.CommissionEngine) *CommissionHandler {
	return &CommissionHandler{engine: engine}
}

// GetCommission handles GET /commissions/:trackingId
func (h *CommissionHandler) GetCommission(c *gin.Context) {
	tracking, err := h.engine.Get(c.Request.Context(), c.Param("trackingId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, tracking)
}

// GetApplicationCommission handles GET /applications/:applicationId/commission
func (h *CommissionHandler) GetApplicationCommission(c *gin.Context) {
	tracking, err := h.engine.GetByApplication(c.Request.Context(), c.Param("applicationId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, tracking)
}

// ApproveCommission handles POST /commissions/:trackingId/approve
func (h *CommissionHandler) ApproveCommission(c *gin.Context) {
	var request models.CommissionApproveRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actor := utils.GetActorFromContext(c)
	role := utils.GetActorRoleFromContext(c)

	tracking, err := h.engine.Approve(c.Request.Context(), c.Param("trackingId"), &request, actor, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, tracking)
}

// ReleaseCommission handles POST /commissions/:trackingId/release
func (h *CommissionHandler) ReleaseCommission(c *gin.Context) {
	actor := utils.GetActorFromContext(c)
	role := utils.GetActorRoleFromContext(c)

	tracking, err := h.engine.Release(c.Request.Context(), c.Param("trackingId"), actor, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, tracking)
}

// PayCommission handles POST /commissions/:trackingId/pay
func (h *CommissionHandler) PayCommission(c *gin.Context) {
	var request models.CommissionPayRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actor := utils.GetActorFromContext(c)
	role := utils.GetActorRoleFromContext(c)

	tracking, err := h.engine.MarkPaid(c.Request.Context(), c.Param("trackingId"), &request, actor, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, tracking)
}

// DisputeCommission handles POST /commissions/:trackingId/dispute
func (h *CommissionHandler) DisputeCommission(c *gin.Context) {
	var request models.CommissionDisputeRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actor := utils.GetActorFromContext(c)
	role := utils.GetActorRoleFromContext(c)

	tracking, err := h.engine.Dispute(c.Request.Context(), c.Param("trackingId"), &request, actor, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, tracking)
}

// CancelCommission handles POST /commissions/:trackingId/cancel
func (h *CommissionHandler) CancelCommission(c *gin.Context) {
	var request models.AdminActionRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actor := utils.GetActorFromContext(c)
	role := utils.GetActorRoleFromContext(c)

	tracking, err := h.engine.CancelTracking(c.Request.Context(), c.Param("trackingId"), request.Reason, actor, role)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, tracking)
}

// GetPipelineStats handles GET /commissions/pipeline
func (h *CommissionHandler) GetPipelineStats(c *gin.Context) {
	stats, err := h.engine.PipelineStats(c.Request.Context())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, gin.H{"pipeline": stats})
}

// GetSummary handles GET /commissions/summary
func (h *CommissionHandler) GetSummary(c *gin.Context) {
	summary, err := h.engine.Summary(c.Request.Context(), c.Query("partnerId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, summary)
}
