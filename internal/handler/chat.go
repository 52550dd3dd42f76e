package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
	"github.com/sengtan/utm-campus-chatbot/internal/service"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	assistant *service.Assistant
}

// NewChatHandler creates a new chat handler
func NewChatHandler(assistant *service.Assistant) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
		return
	}

	start := time.Now()
	ctx := c.Request.Context()

	intent := h.assistant.ClassifyIntent(ctx, message)
	reply := h.assistant.GenerateResponse(ctx, message, intent, req.History)

	c.JSON(http.StatusOK, model.ChatResponse{
		Response:   reply,
		Intent:     intent.Intent,
		Entities:   intent.Entities,
		Confidence: intent.Confidence,
		Took:       time.Since(start).Milliseconds(),
	})
}
