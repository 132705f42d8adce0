package main

import (
	"log"

	"quizdeck/config"
	"quizdeck/handlers"
	"quizdeck/middleware"
	"quizdeck/models"
	"quizdeck/routes"
	"quizdeck/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.Participant{},
		&models.Submission{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	quizCache := services.NewQuizCache(redisClient, cfg.QuizCacheTTL)
	authService := services.NewAuthService(db, redisClient, cfg.JWTSecret)
	quizService := services.NewQuizService(db, quizCache)
	questionService := services.NewQuestionService(db, quizCache)
	participantService := services.NewParticipantService(db, quizCache)
	submissionService := services.NewSubmissionService(db)
	resultService := services.NewResultService(db)
	aiService := services.NewAIService(cfg.GeminiAPIKey)

	// Initialize WebSocket lobby hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	quizHandler := handlers.NewQuizHandler(quizService, hub)
	questionHandler := handlers.NewQuestionHandler(questionService)
	participantHandler := handlers.NewParticipantHandler(participantService, hub)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, resultService)
	aiHandler := handlers.NewAIHandler(aiService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(
		router,
		authHandler,
		quizHandler,
		questionHandler,
		participantHandler,
		submissionHandler,
		aiHandler,
		hub,
		quizService,
		authService,
	)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
