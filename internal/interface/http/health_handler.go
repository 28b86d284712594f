package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/quiz-auth/pkg/response"
)

type healthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health GET /api/health
func Health(c *gin.Context) {
	response.Success(c, http.StatusOK, healthStatus{Status: "OK", Message: "Server is running"}, "healthy", nil)
}

// NotFound answers unknown routes with the requested path.
func NotFound(c *gin.Context) {
	response.Error[any](c, http.StatusNotFound, "Route not found", gin.H{"path": c.Request.URL.Path})
}
