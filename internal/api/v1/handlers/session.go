package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"echoscript/internal/api/middleware"
	"echoscript/internal/api/v1/services"
)

// SessionHandler handles credential login
type SessionHandler struct {
	service services.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Create handles POST /api/v1/session
// Validates the credential live and marks its stale jobs as interrupted
func (h *SessionHandler) Create(c *gin.Context) {
	response, err := h.service.OpenSession(c.Request.Context(), middleware.APIKey(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
