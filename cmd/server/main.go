package main

import (
	"aifitness/coach-app/internal/ai"
	"aifitness/coach-app/internal/api"
	"aifitness/coach-app/internal/config"
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"aifitness/coach-app/internal/repository/mongo"
	"aifitness/coach-app/internal/service"
	"aifitness/coach-app/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Coach App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureProfileIndexes(ctx, appDB.Collection("profiles"))
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("plans"))
		mongo.EnsureAIModelIndexes(ctx, appDB.Collection("ai_models"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("workout_sessions"))
		mongo.EnsureChatIndexes(ctx, appDB.Collection("chat_messages"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	profileRepo := mongo.NewMongoProfileRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	modelRepo := mongo.NewMongoAIModelRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	chatRepo := mongo.NewMongoChatRepository(appDB)

	// --- Initialize AI Router ---
	aiRouter := ai.NewRouter(modelRepo, cfg.AI)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	seedModelRegistry(seedCtx, modelRepo, cfg.AI.GeminiModel)
	seedCancel()

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	profileService := service.NewProfileService(profileRepo, fileStorage)
	planService := service.NewPlanService(planRepo, profileRepo, aiRouter)
	sessionService := service.NewSessionService(sessionRepo, planRepo)
	chatService := service.NewChatService(chatRepo, profileRepo, planRepo, aiRouter)
	modelService := service.NewModelService(modelRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Expiration, cfg.Server.CookieDomain, cfg.Server.CookieSecure,
		authService, profileService, planService, sessionService, chatService, modelService)

	// --- Start HTTP Server ---
	// Plan generation holds the connection open while the providers respond,
	// so the write timeout has to outlast the AI client timeout.
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// seedModelRegistry inserts one enabled entry for the configured Gemini model
// when the registry is empty. An empty registry would fail every generation;
// afterwards admins manage the registry through the API.
func seedModelRegistry(ctx context.Context, modelRepo repository.AIModelRepository, defaultModel string) {
	models, err := modelRepo.List(ctx)
	if err != nil {
		log.Printf("WARN: could not inspect AI model registry for seeding: %v", err)
		return
	}
	if len(models) > 0 {
		return
	}

	if _, err := modelRepo.Create(ctx, &domain.AIModel{
		Name:    defaultModel,
		Type:    domain.ModelTypeGemini,
		Enabled: true,
	}); err != nil {
		log.Printf("WARN: could not seed default AI model: %v", err)
		return
	}
	log.Printf("Seeded AI model registry with %s", defaultModel)
}
