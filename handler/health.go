package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	model string
}

func NewHealthHandler(model string) *HealthHandler {
	return &HealthHandler{model: model}
}

// Root names the service and the model it talks to
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "LexAI Backend is running",
		"model":  h.model,
	})
}

// Health reports liveness
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
