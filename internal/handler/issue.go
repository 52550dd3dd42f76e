package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
	"github.com/sengtan/utm-campus-chatbot/internal/service"
)

// IssueHandler handles issue classification requests
type IssueHandler struct {
	assistant *service.Assistant
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(assistant *service.Assistant) *IssueHandler {
	return &IssueHandler{assistant: assistant}
}

// Classify handles POST /api/v1/issues/classify
func (h *IssueHandler) Classify(c *gin.Context) {
	var req model.IssueClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.assistant.ClassifyIssue(c.Request.Context(), req.Description))
}
