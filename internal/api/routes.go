package api

import (
	"log/slog"
	"net/http"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// Services is everything the HTTP surface calls into.
type Services struct {
	Auth             service.AuthService
	Catalog          service.CatalogService
	Plans            *service.PlanService
	Synthesizer      *service.Synthesizer
	Cascade          *service.CascadeEngine
	WorkoutExercises *service.WorkoutExerciseService
	Results          *service.ResultService
	Conditions       *service.ConditionService
	Stats            *service.StatsService
	Sweeper          SweepRunner
}

func SetupRoutes(router *gin.Engine, svc Services, log *slog.Logger) {
	authHandler := NewAuthHandler(svc.Auth, log)
	exerciseHandler := NewExerciseHandler(svc.Catalog, log)
	planHandler := NewPlanHandler(svc.Plans, svc.Synthesizer, svc.Cascade, log)
	weHandler := NewWorkoutExerciseHandler(svc.WorkoutExercises, svc.Cascade, svc.Results, log)
	conditionHandler := NewConditionHandler(svc.Conditions, log)
	statsHandler := NewStatsHandler(svc.Stats, log)
	adminHandler := NewAdminHandler(svc.Sweeper, log)

	router.Use(RequestLogger(log))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(svc.Auth))
	{
		protected.GET("/me/profile", authHandler.GetProfile)
		protected.PUT("/me/profile", authHandler.UpdateProfile)

		// --- Plan Routes ---
		plans := protected.Group("/plans")
		{
			plans.POST("/generate", planHandler.GeneratePlan)
			plans.GET("", planHandler.ListPlans)
			plans.GET("/:planId", planHandler.GetPlan)
			plans.PATCH("/:planId/status", planHandler.SetPlanStatus)
		}

		sessions := protected.Group("/sessions")
		{
			sessions.GET("/:sessionId", planHandler.GetSession)
			sessions.PATCH("/:sessionId/status", planHandler.SetSessionStatus)
			sessions.POST("/:sessionId/exercises", weHandler.AddExercise)
		}

		workoutExercises := protected.Group("/workout-exercises")
		{
			workoutExercises.PUT("/:id", weHandler.UpdateExercise)
			workoutExercises.DELETE("/:id", weHandler.DeleteExercise)
			workoutExercises.PATCH("/:id/swap", weHandler.SwapExercise)
			workoutExercises.PATCH("/:id/status", weHandler.SetExerciseStatus)
			workoutExercises.POST("/:id/results", weHandler.RecordResult)
			workoutExercises.GET("/:id/results", weHandler.ListResults)
		}

		protected.GET("/results", weHandler.ListUserResults)

		// --- Condition & Stats Routes ---
		conditions := protected.Group("/conditions")
		{
			conditions.POST("", conditionHandler.CreateCondition)
			conditions.GET("", conditionHandler.ListConditions)
			conditions.PUT("/:date", conditionHandler.UpdateCondition)
		}
		stats := protected.Group("/stats")
		{
			stats.GET("/progress", statsHandler.Progress)
			stats.GET("/performance/exercise/:exerciseId", statsHandler.ExercisePerformance)
			stats.GET("/sessions", statsHandler.SessionStats)
			stats.GET("/daily-conditions", statsHandler.ConditionStats)
			stats.GET("/completion/plans", statsHandler.PlanCompletion)
			stats.POST("/measurements", statsHandler.CreateMeasurement)
			stats.GET("/measurements", statsHandler.ListMeasurements)
		}

		// --- Exercise Catalog Routes ---
		exercises := protected.Group("/exercises")
		{
			exercises.GET("", exerciseHandler.ListExercises)
			exercises.GET("/:id", exerciseHandler.GetExercise)
			exercises.POST("", exerciseHandler.CreateExercise)
			exercises.PUT("/:id", exerciseHandler.UpdateExercise)
			exercises.DELETE("/:id", exerciseHandler.DeleteExercise)
			exercises.POST("/:id/media-upload-url", exerciseHandler.MediaUploadURL)
			exercises.GET("/:id/media-url", exerciseHandler.MediaURL)
		}

		// --- Admin Routes ---
		admin := protected.Group("/admin")
		admin.Use(RoleMiddleware(domain.RoleAdmin))
		{
			admin.POST("/sweeps", adminHandler.RunSweep)
		}
	}
}
