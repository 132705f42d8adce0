package handlers

import (
	"errors"
	"net/http"

	"quizdeck/middleware"
	"quizdeck/services"

	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	aiService *services.AIService
}

func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{
		aiService: aiService,
	}
}

func (h *AIHandler) GenerateQuiz(c *gin.Context) {
	var req services.GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.aiService.GenerateQuiz(c.Request.Context(), middleware.UserName(c), &req)
	if err != nil {
		status := services.HTTPStatus(err)
		if errors.Is(err, services.ErrAINotConfigured) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quiz)
}
