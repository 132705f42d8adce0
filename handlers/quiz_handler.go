package handlers

import (
	"net/http"

	"quizdeck/middleware"
	"quizdeck/services"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizService *services.QuizService
	hub         *services.Hub
}

func NewQuizHandler(quizService *services.QuizService, hub *services.Hub) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		hub:         hub,
	}
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AdminName == "" {
		req.AdminName = middleware.UserName(c)
	}

	quiz, err := h.quizService.CreateQuiz(middleware.UserID(c), &req)
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"quiz": quiz})
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.quizService.GetQuizPublic(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quiz": quiz})
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var req services.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.UpdateQuiz(c.Request.Context(), c.Param("code"), middleware.UserID(c), &req)
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quiz": quiz})
}

func (h *QuizHandler) StartQuiz(c *gin.Context) {
	code := c.Param("code")

	quiz, err := h.quizService.StartQuiz(c.Request.Context(), code, middleware.UserID(c))
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	// Tell everyone waiting in the lobby.
	if h.hub != nil {
		h.hub.BroadcastToQuiz(code, "quiz_started", gin.H{"code": code})
	}

	c.JSON(http.StatusOK, gin.H{"quiz": quiz})
}

func (h *QuizHandler) GetUserQuizzes(c *gin.Context) {
	quizzes, err := h.quizService.GetUserQuizzes(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}
