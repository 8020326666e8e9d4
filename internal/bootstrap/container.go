package bootstrap

import (
	"log"

	"session-intelligence-be/internal/config"
	"session-intelligence-be/internal/controller"
	"session-intelligence-be/internal/pkg/logger"
	"session-intelligence-be/internal/repository/memory"
	"session-intelligence-be/internal/repository/mongodb"
	"session-intelligence-be/internal/service"
	"session-intelligence-be/pkg/llm/factory"

	"go.mongodb.org/mongo-driver/mongo"
)

type Container struct {
	// Controllers
	SessionController controller.ISessionController

	// Shared facades
	Logger logger.ILogger
}

func NewContainer(mongoClient *mongo.Client, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3. Repositories
	sessionRepo := mongodb.NewSessionRepository(mongoClient, cfg.Mongo.Database, cfg.Lookup, sysLogger)
	conversationRepo := memory.NewConversationRepository()

	// 4. Services
	sessionAIService := service.NewSessionAIService(
		sessionRepo,
		llmProvider,
		conversationRepo,
		cfg.Lookup.EnableFallbackScan,
		sysLogger,
	)

	// 5. Controllers
	sessionController := controller.NewSessionController(sessionAIService)

	return &Container{
		SessionController: sessionController,
		Logger:            sysLogger,
	}
}
