package main

import (
	"alcyxob/coach-hub/internal/api"
	"alcyxob/coach-hub/internal/config"
	"alcyxob/coach-hub/internal/repository/mongo"
	"alcyxob/coach-hub/internal/service"
	"alcyxob/coach-hub/internal/storage"
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
	log.Println("Starting Coach Hub server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// The reference timezone is configuration, never the host's local
	// clock: "today" must mean the same day for every deployment.
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Fatalf("FATAL: Invalid reference timezone %q: %v", cfg.App.Timezone, err)
	}

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
		mongo.EnsureAllIndexes(ctx, appDB)
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	templateRepo := mongo.NewMongoTemplateRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	completionRepo := mongo.NewMongoCompletionRepository(appDB)
	feedbackRepo := mongo.NewMongoFeedbackRepository(appDB)
	documentRepo := mongo.NewMongoDocumentRepository(appDB)
	auditRepo := mongo.NewMongoAuditRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, auditRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	coachService := service.NewCoachService(userRepo, templateRepo, assignmentRepo, completionRepo, feedbackRepo, auditRepo, loc)
	traineeService := service.NewTraineeService(userRepo, assignmentRepo, completionRepo, feedbackRepo, auditRepo, loc)
	documentService := service.NewDocumentService(userRepo, documentRepo, auditRepo, fileStorage)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, cfg.App, loc, authService, coachService, traineeService, documentService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s (reference timezone %s)", cfg.Server.Address, cfg.App.Timezone)

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
