package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tubecraft/contentops-app/internal/api"
	"tubecraft/contentops-app/internal/audit"
	"tubecraft/contentops-app/internal/config"
	"tubecraft/contentops-app/internal/repository/mongo"
	"tubecraft/contentops-app/internal/service"
	"tubecraft/contentops-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	// --- Logging ---
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	logger.Info().Str("address", cfg.Server.Address).Msg("starting content-ops server")

	// --- Database Connection ---
	dbClient, appDB, err := mongo.ConnectDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to MongoDB")
	}
	defer func() {
		logger.Info().Msg("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect MongoDB")
		}
	}()
	logger.Info().Str("database", cfg.Database.Name).Msg("database connection established")

	// --- Ensure Indexes ---
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureAssignmentIndexes(ctx, appDB.Collection("user_assignments"))
		mongo.EnsureVideoIndexes(ctx, appDB.Collection("ai_videos"))
		mongo.EnsureAuditIndexes(ctx, appDB.Collection("compliance_records"), appDB.Collection("activity_logs"))
		mongo.EnsureBlogIndexes(ctx, appDB.Collection("blog_posts"))
		logger.Info().Msg("index creation process completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize S3 storage")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	videoRepo := mongo.NewMongoVideoRepository(appDB)
	complianceRepo := mongo.NewMongoComplianceRepository(appDB)
	activityRepo := mongo.NewMongoActivityLogRepository(appDB)
	blogRepo := mongo.NewMongoBlogRepository(appDB)

	// --- Initialize Services ---
	audits := audit.NewRecorder(complianceRepo, activityRepo, logger)
	clock := service.SystemClock()

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	rewards := service.NewRewardEvaluator(videoRepo, logger)
	taskService := service.NewTaskService(assignmentRepo, userRepo, rewards, audits, clock)
	allocationService := service.NewAllocationService(videoRepo, userRepo, audits, logger)
	videoService := service.NewVideoService(videoRepo, fileStorage, audits)
	dashboardService := service.NewDashboardService(userRepo, assignmentRepo, videoRepo, clock)
	blogService := service.NewBlogService(blogRepo)
	userService := service.NewUserService(userRepo)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		authService,
		taskService,
		videoService,
		allocationService,
		dashboardService,
		blogService,
		userService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen and serve error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	// The context gives in-flight requests 5 seconds to finish.
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exiting")
}
