package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/ai"
	appsvc "docuchat/internal/app"
	"docuchat/internal/bootstrap"
	"docuchat/internal/cache"
	rabbitmqClient "docuchat/internal/platform/rabbitmq"
	"docuchat/internal/repository"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	llmClient := ai.NewAnthropicClient(
		app.Config.LLM.BaseURL,
		app.Config.LLM.APIKey,
		time.Duration(app.Config.LLM.TimeoutSeconds)*time.Second,
	)
	analysisRepo := repository.NewAnalysisRepository(app.MySQL)
	sessionRepo := repository.NewChatSessionRepository(app.MySQL)
	messageRepo := repository.NewChatMessageRepository(app.MySQL)
	publisher := rabbitmqClient.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)

	uploadService := appsvc.NewUploadService(app.Blob)
	analysisService := appsvc.NewAnalysisService(app.Blob, llmClient, analysisRepo, ai.RequestConfig{
		Model:     app.Config.LLM.AnalysisModel,
		MaxTokens: app.Config.LLM.AnalysisMaxTokens,
	})
	chatService := appsvc.NewChatService(sessionRepo, messageRepo, publisher, historyCache, app.Blob, llmClient, ai.RequestConfig{
		Model:     app.Config.LLM.ChatModel,
		MaxTokens: app.Config.LLM.ChatMaxTokens,
	})

	healthHandler := handler.NewHealthHandler(app)
	uploadHandler := handler.NewUploadHandler(uploadService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	chatHandler := handler.NewChatHandler(chatService)
	documentHandler := handler.NewDocumentHandler(app.Blob)

	router.GET("/healthz", healthHandler.Check)
	router.POST("/upload", uploadHandler.Upload)
	router.POST("/analyze", analysisHandler.Analyze)
	router.POST("/chat", chatHandler.Stream)

	v1 := router.Group("/api/v1")
	v1.GET("/documents", documentHandler.ListDocuments)
	v1.GET("/analyses", analysisHandler.ListAnalyses)

	chatGroup := v1.Group("/chat")
	chatGroup.POST("/sessions", chatHandler.CreateSession)
	chatGroup.GET("/sessions", chatHandler.ListSessions)
	chatGroup.DELETE("/sessions/:id", chatHandler.DeleteSession)
	chatGroup.GET("/history", chatHandler.GetHistory)

	return router
}
