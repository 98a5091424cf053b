package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medportal/internal/assistant"
)

// AssistantHandler mantiene dependencias para el asistente de salud.
type AssistantHandler struct {
	logger *zap.Logger
	client assistant.Client
}

// NewAssistantHandler crea una instancia de AssistantHandler.
func NewAssistantHandler(logger *zap.Logger, client assistant.Client) *AssistantHandler {
	return &AssistantHandler{
		logger: logger,
		client: client,
	}
}

// Ask maneja POST /assistant/ask.
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no prompt provided"})
		return
	}

	reply, err := h.client.Ask(c.Request.Context(), req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant unavailable, please try again"})
		case errors.Is(err, assistant.ErrBadResponse):
			c.JSON(http.StatusBadGateway, gin.H{"error": "assistant returned an unexpected response"})
		default:
			h.logger.Error("assistant ask failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reach assistant"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
