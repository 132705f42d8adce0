package routes

import (
	"log"
	"net/http"

	"quizdeck/handlers"
	"quizdeck/middleware"
	"quizdeck/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	quizHandler *handlers.QuizHandler,
	questionHandler *handlers.QuestionHandler,
	participantHandler *handlers.ParticipantHandler,
	submissionHandler *handlers.SubmissionHandler,
	aiHandler *handlers.AIHandler,
	hub *services.Hub,
	quizService *services.QuizService,
	authService *services.AuthService,
) {
	// Identity is optional on most routes; handlers that need it layer
	// RequireAuth on top.
	router.Use(middleware.OptionalAuth(authService))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.RequireAuth(), authHandler.Logout)
			auth.GET("/profile", middleware.RequireAuth(), authHandler.GetProfile)
		}

		quizzes := api.Group("/quizzes")
		{
			quizzes.POST("", middleware.RequireAuth(), quizHandler.CreateQuiz)
			quizzes.GET("/:code", quizHandler.GetQuiz)
			quizzes.PATCH("/:code", middleware.RequireAuth(), quizHandler.UpdateQuiz)
			quizzes.POST("/:code/start", middleware.RequireAuth(), quizHandler.StartQuiz)

			quizzes.POST("/:code/questions", middleware.RequireAuth(), questionHandler.AddQuestion)
			quizzes.PATCH("/:code/questions/:qid", middleware.RequireAuth(), questionHandler.EditQuestion)
			quizzes.DELETE("/:code/questions/:qid", middleware.RequireAuth(), questionHandler.DeleteQuestion)

			quizzes.POST("/:code/join", participantHandler.JoinQuiz)
			quizzes.POST("/:code/submit", submissionHandler.SubmitAnswers)
			quizzes.GET("/:code/results", submissionHandler.GetResults)
		}

		user := api.Group("/user", middleware.RequireAuth())
		{
			user.GET("/quizzes", quizHandler.GetUserQuizzes)
			user.GET("/last-attempted", submissionHandler.GetLastAttempted)
		}

		api.POST("/ai/generate-quiz", middleware.RequireAuth(), aiHandler.GenerateQuiz)
		api.POST("/guest/quiz-results", submissionHandler.GetGuestResults)
	}

	// WebSocket endpoint for the quiz lobby: join announcements and the
	// quiz-started signal.
	router.GET("/ws/:code", func(c *gin.Context) {
		code := c.Param("code")

		// The quiz must exist before we hold a socket open for it.
		if _, err := quizService.GetQuizByCode(code); err != nil {
			c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for quiz %s: %v", code, err)
			return
		}

		hub.RegisterClient(conn, code)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
