package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/fitness-coach/internal/api"
	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/generation"
	"alcyxob/fitness-coach/internal/observability"
	"alcyxob/fitness-coach/internal/repository/mongo"
	"alcyxob/fitness-coach/internal/scheduler"
	"alcyxob/fitness-coach/internal/service"
	"alcyxob/fitness-coach/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Fitness Coach API
// @version 1.0
// @description Weekly training plans, workout logging and progress tracking.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}
	log := observability.NewLogger(cfg.Log)
	slog.SetDefault(log)
	log.Info("starting fitness coach server")

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server exiting")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	// The active-plan and daily-condition indexes enforce invariants, so they
	// must exist before the first request.
	indexCtx, cancelIndexes := context.WithTimeout(ctx, time.Minute)
	err = mongo.EnsureIndexes(indexCtx, appDB)
	cancelIndexes()
	if err != nil {
		return err
	}

	// --- Initialize Repositories ---
	repos := service.Repositories{
		Users:            mongo.NewMongoUserRepository(appDB),
		Exercises:        mongo.NewMongoExerciseRepository(appDB),
		Plans:            mongo.NewMongoTrainingPlanRepository(appDB),
		Sessions:         mongo.NewMongoWorkoutSessionRepository(appDB),
		WorkoutExercises: mongo.NewMongoWorkoutExerciseRepository(appDB),
		Results:          mongo.NewMongoExerciseResultRepository(appDB),
		Conditions:       mongo.NewMongoDailyConditionRepository(appDB),
		Measurements:     mongo.NewMongoMeasurementRepository(appDB),
		Tx:               mongo.NewMongoTransactor(dbClient),
	}

	// --- Initialize Storage ---
	var files storage.FileStorage
	if cfg.S3.BucketName != "" {
		files, err = storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			return err
		}
	} else {
		log.Warn("s3 bucket not configured, exercise media is disabled")
	}

	// --- Plan Generator ---
	var generator generation.PlanGenerator
	if cfg.Generation.APIKey != "" {
		generator, err = generation.NewGeminiGenerator(ctx, cfg.Generation.APIKey, cfg.Generation.Model, cfg.Generation.Temperature)
		if err != nil {
			return err
		}
		log.Info("plan generation uses Gemini", "model", cfg.Generation.Model)
	} else {
		generator = generation.NewStaticGenerator()
		log.Warn("generation api key not configured, using the built-in plan")
	}

	// --- Initialize Services ---
	clock := service.SystemClock
	analyzer := service.NewAnalyzer(repos)
	cascade := service.NewCascadeEngine(repos, clock, log)
	sweeper := service.NewSweeper(repos, clock, log)
	auth := service.NewAuthService(repos.Users, cfg.JWT.Secret, cfg.JWT.Expiration, clock)

	services := api.Services{
		Auth:             auth,
		Catalog:          service.NewCatalogService(repos.Exercises, repos.WorkoutExercises, files),
		Plans:            service.NewPlanService(repos),
		Synthesizer:      service.NewSynthesizer(repos, analyzer, generator, cfg.Planning, cfg.Generation.Timeout, clock, log),
		Cascade:          cascade,
		WorkoutExercises: service.NewWorkoutExerciseService(repos, cascade),
		Results:          service.NewResultService(repos),
		Conditions:       service.NewConditionService(repos),
		Stats:            service.NewStatsService(repos, analyzer, clock),
		Sweeper:          sweeper,
	}

	// --- Overdue Sweeper ---
	if cfg.Sweeper.Enabled {
		sched, err := scheduler.New(cfg.Sweeper.Schedule, sweeper, log)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	// --- Initialize Gin Engine ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, services, log)

	// --- Start HTTP Server ---
	// WriteTimeout leaves room for a slow generation call.
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Generation.Timeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		log.Info("shutting down server", "signal", sig.String())
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(ctx, 5*time.Second)
	defer cancelShutdown()
	return server.Shutdown(ctxShutdown)
}
