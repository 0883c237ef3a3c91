package service

import (
	"time"

	"alcyxob/fitness-coach/internal/repository"
)

// Repositories bundles the stores the plan lifecycle works against.
// Tx must cover every repository in the bundle.
type Repositories struct {
	Users            repository.UserRepository
	Exercises        repository.ExerciseRepository
	Plans            repository.TrainingPlanRepository
	Sessions         repository.WorkoutSessionRepository
	WorkoutExercises repository.WorkoutExerciseRepository
	Results          repository.ExerciseResultRepository
	Conditions       repository.DailyConditionRepository
	Measurements     repository.MeasurementRepository
	Tx               repository.Transactor
}

// Clock returns the current time. Injected so tests can pin "today".
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time { return time.Now().UTC() }
