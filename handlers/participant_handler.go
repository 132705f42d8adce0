package handlers

import (
	"net/http"

	"quizdeck/middleware"
	"quizdeck/services"

	"github.com/gin-gonic/gin"
)

type ParticipantHandler struct {
	participantService *services.ParticipantService
	hub                *services.Hub
}

func NewParticipantHandler(participantService *services.ParticipantService, hub *services.Hub) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		hub:                hub,
	}
}

func (h *ParticipantHandler) JoinQuiz(c *gin.Context) {
	code := c.Param("code")

	var req services.JoinQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.participantService.JoinQuiz(
		c.Request.Context(), code, req.Username,
		middleware.UserID(c), middleware.UserName(c),
	)
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	// Let the lobby see the new name appear.
	if h.hub != nil {
		h.hub.BroadcastToQuiz(code, "participant_joined", gin.H{
			"participant": gin.H{"id": participant.ID, "username": participant.Username},
		})
	}

	c.JSON(http.StatusOK, gin.H{"participant": participant})
}
