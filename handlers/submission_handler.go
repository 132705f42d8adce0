package handlers

import (
	"net/http"

	"quizdeck/middleware"
	"quizdeck/services"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
	resultService     *services.ResultService
}

func NewSubmissionHandler(submissionService *services.SubmissionService, resultService *services.ResultService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		resultService:     resultService,
	}
}

func (h *SubmissionHandler) SubmitAnswers(c *gin.Context) {
	var req services.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, score, detail, err := h.submissionService.SubmitAnswers(c.Param("code"), &req)
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submission": submission,
		"score":      score,
		"detail":     detail,
	})
}

func (h *SubmissionHandler) GetResults(c *gin.Context) {
	results, err := h.resultService.GetResults(
		c.Param("code"),
		middleware.UserID(c),
		c.Query("participantId"),
	)
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}

type GuestResultsRequest struct {
	Code            string `json:"code" binding:"required"`
	ParticipantName string `json:"participantName" binding:"required"`
}

func (h *SubmissionHandler) GetGuestResults(c *gin.Context) {
	var req GuestResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quiz code and participant name are required"})
		return
	}

	review, err := h.resultService.GetGuestReview(req.Code, req.ParticipantName)
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *SubmissionHandler) GetLastAttempted(c *gin.Context) {
	review, err := h.resultService.GetLastAttempted(middleware.UserID(c))
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, review)
}
