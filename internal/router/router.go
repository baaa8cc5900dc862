package router

import (
	"github.com/gin-gonic/gin"

	"github.com/edupath/application-management-api/internal/handlers"
	"github.com/edupath/application-management-api/internal/service"
	"github.com/edupath/application-management-api/internal/utils"
	"github.com/edupath/application-management-api/internal/workflow"
)

// SetupRouter configures all API routes
func SetupRouter(
	engine *service.WorkflowEngine,
	tracker *service.DocumentTracker,
	commissions *service.CommissionEngine,
) *gin.Engine {
	router := gin.Default()

	// Global middleware to extract actor headers and set context
	router.Use(func(c *gin.Context) {
		if actorID := c.GetHeader("actor-id"); actorID != "" {
			c.Set(utils.ContextActorID, actorID)
		}
		if role, ok := workflow.ParseRole(c.GetHeader("actor-role")); ok {
			c.Set(utils.ContextActorRole, role)
		}
		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Create handlers
	applicationHandler := handlers.NewApplicationHandler(engine)
	documentHandler := handlers.NewDocumentHandler(tracker, engine)
	commissionHandler := handlers.NewCommissionHandler(commissions)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		applications := v1.Group("/applications")
		{
			applications.POST("", applicationHandler.CreateApplication)
			applications.GET("", applicationHandler.SearchApplications)
			applications.GET("/stale", applicationHandler.GetStaleApplications)
			applications.GET("/:applicationId", applicationHandler.GetApplication)
			applications.POST("/:applicationId/transitions", applicationHandler.ApplyTransition)
			applications.GET("/:applicationId/transitions", applicationHandler.GetAvailableTransitions)
			applications.GET("/:applicationId/history", applicationHandler.GetHistory)
			applications.POST("/:applicationId/hold", applicationHandler.HoldApplication)
			applications.POST("/:applicationId/resume", applicationHandler.ResumeApplication)
			applications.POST("/:applicationId/cancel", applicationHandler.CancelApplication)

			applications.POST("/:applicationId/documents", documentHandler.UploadDocument)
			applications.GET("/:applicationId/documents", documentHandler.ListDocuments)
			applications.PUT("/:applicationId/documents/:documentId/review", documentHandler.ReviewDocument)
			applications.GET("/:applicationId/checklist", documentHandler.GetChecklist)

			applications.GET("/:applicationId/commission", commissionHandler.GetApplicationCommission)
		}

		commissionRoutes := v1.Group("/commissions")
		{
			commissionRoutes.GET("/pipeline", commissionHandler.GetPipelineStats)
			commissionRoutes.GET("/summary", commissionHandler.GetSummary)
			commissionRoutes.GET("/:trackingId", commissionHandler.GetCommission)
			commissionRoutes.POST("/:trackingId/approve", commissionHandler.ApproveCommission)
			commissionRoutes.POST("/:trackingId/release", commissionHandler.ReleaseCommission)
			commissionRoutes.POST("/:trackingId/pay", commissionHandler.PayCommission)
			commissionRoutes.POST("/:trackingId/dispute", commissionHandler.DisputeCommission)
			commissionRoutes.POST("/:trackingId/cancel", commissionHandler.CancelCommission)
		}
	}

	return router
}
