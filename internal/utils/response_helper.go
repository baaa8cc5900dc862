package utils

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/edupath/application-management-api/internal/models"
	"github.com/edupath/application-management-api/internal/workflow"
)

var logger = logrus.StandardLogger()

// SetLogger routes this package's diagnostics to the application logger.
func SetLogger(l *logrus.Logger) {
	logger = l
}

// Context keys populated by the actor middleware.
const (
	ContextActorID   = "actorID"
	ContextActorRole = "actorRole"
)

// SendSuccessResponse sends a successful JSON response
func SendSuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendCreatedResponse sends a 201 Created response
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendForbiddenError sends a 403 Forbidden error
func SendForbiddenError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusForbidden, models.ErrCodeForbidden, message, "")
}

// SendNotFoundError sends a 404 Not Found error
func SendNotFoundError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusNotFound, models.ErrCodeNotFound, message, "")
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, "Validation failed", details)
}

// SendServiceError maps a service layer error onto the wire. Workflow errors
// carry their own code; DAO "not found" errors become 404; anything else is
// an internal error.
func SendServiceError(c *gin.Context, err error) {
	if code := workflow.CodeOf(err); code != "" {
		// A configuration code means the status matrix or stored data is
		// inconsistent, not that the caller did anything wrong.
		if code == workflow.ErrCodeConfiguration {
			logger.WithFields(logrus.Fields{
				"error_code": code,
				"path":       c.FullPath(),
			}).WithError(err).Error("Workflow configuration error")
		}
		SendErrorResponse(c, models.HTTPStatusForErrorCode(code), code, err.Error(), "")
		return
	}
	if strings.Contains(err.Error(), "not found") {
		SendNotFoundError(c, err.Error())
		return
	}
	SendInternalServerError(c, "An unexpected error occurred", err.Error())
}

// GetActorFromContext extracts the acting user's identifier from context.
func GetActorFromContext(c *gin.Context) string {
	actor, exists := c.Get(ContextActorID)
	if !exists {
		return "anonymous"
	}
	return actor.(string)
}

// GetActorRoleFromContext extracts the acting user's role from context.
// Requests without a recognized role default to partner, the least
// privileged role.
func GetActorRoleFromContext(c *gin.Context) workflow.Role {
	v, exists := c.Get(ContextActorRole)
	if !exists {
		return workflow.RolePartner
	}
	return v.(workflow.Role)
}
