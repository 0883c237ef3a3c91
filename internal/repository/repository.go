package repository

import (
	"alcyxob/fitness-coach/internal/domain" // Import our defined domain models
	"context"                               // Standard for request-scoped deadlines, cancellation signals, etc.
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key") // A unique constraint rejected the write
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn as one all-or-nothing unit against the store.
// Repository calls made with the ctx passed to fn take part in the transaction.
// Calling WithinTx again with that ctx joins the running transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, profile domain.Profile) error
}

// ExerciseFilter narrows catalog listings. Empty fields match everything.
type ExerciseFilter struct {
	Equipment []string // Match any of these equipment tags
	BodyPart  string
	Search    string // Case-insensitive substring of the name
}

// ExerciseRepository defines the interface for interacting with the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	List(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error) // Sorted by name
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TrainingPlanRepository defines the interface for interacting with training plan data.
type TrainingPlanRepository interface {
	// Create returns ErrDuplicate if the user already has an Active plan.
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error) // Newest start date first
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error)
	// GetLatestTerminal returns the Completed or Archived plan with the latest end date.
	GetLatestTerminal(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error)
	// ListActiveEndingBefore returns Active plans whose end date is strictly before date.
	ListActiveEndingBefore(ctx context.Context, date time.Time) ([]domain.TrainingPlan, error)
	// UpdateStatus returns ErrDuplicate if the change would leave two Active plans for one user.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.PlanStatus) error
	MarkCustomized(ctx context.Context, id primitive.ObjectID) error
	// CountByStatus counts a user's plans whose end date falls in [from, to].
	CountByStatus(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (map[domain.PlanStatus]int, error)
}

// WorkoutSessionRepository defines the interface for interacting with session data.
type WorkoutSessionRepository interface {
	CreateMany(ctx context.Context, sessions []*domain.WorkoutSession) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.WorkoutSession, error) // Ordered by date
	// ListByPlansInRange returns sessions of the given plans dated within [from, to].
	ListByPlansInRange(ctx context.Context, planIDs []primitive.ObjectID, from, to time.Time) ([]domain.WorkoutSession, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus) error
}

// WorkoutExerciseRepository defines the interface for interacting with planned exercise instances.
type WorkoutExerciseRepository interface {
	Create(ctx context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error)
	CreateMany(ctx context.Context, wes []*domain.WorkoutExercise) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error)
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.WorkoutExercise, error) // Ordered by order
	ListBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error)
	Update(ctx context.Context, we *domain.WorkoutExercise) error // Planned fields, order, notes, exercise reference
	// ListByExercise returns every instance of a catalog exercise, across all plans.
	ListByExercise(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.WorkoutExercise, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ExerciseStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ResultFilter narrows a user's result history. Zero values mean no bound.
type ResultFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// ExerciseResultRepository defines the interface for interacting with logged sets.
type ExerciseResultRepository interface {
	Create(ctx context.Context, result *domain.ExerciseResult) (primitive.ObjectID, error)
	CountByWorkoutExercise(ctx context.Context, workoutExerciseID primitive.ObjectID) (int, error)
	// ListByWorkoutExercise orders by set number, then completion time.
	ListByWorkoutExercise(ctx context.Context, workoutExerciseID primitive.ObjectID) ([]domain.ExerciseResult, error)
	ListByWorkoutExercises(ctx context.Context, ids []primitive.ObjectID) ([]domain.ExerciseResult, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, filter ResultFilter) ([]domain.ExerciseResult, error) // Newest first
	DeleteByWorkoutExercise(ctx context.Context, workoutExerciseID primitive.ObjectID) error
}

// DailyConditionRepository defines the interface for interacting with daily condition entries.
type DailyConditionRepository interface {
	// Create returns ErrDuplicate if the user already has an entry for that date.
	Create(ctx context.Context, condition *domain.DailyCondition) (primitive.ObjectID, error)
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.DailyCondition, error)
	Update(ctx context.Context, condition *domain.DailyCondition) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.DailyCondition, error) // Ordered by date
}

// MeasurementRepository defines the interface for interacting with body measurements.
type MeasurementRepository interface {
	Create(ctx context.Context, m *domain.UserMeasurement) (primitive.ObjectID, error)
	// ListByUser returns entries dated within the bounds, oldest first. A nil bound is open.
	ListByUser(ctx context.Context, userID primitive.ObjectID, from, to *time.Time) ([]domain.UserMeasurement, error)
}
