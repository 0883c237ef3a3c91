package service

import (
	"context"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultResultLimit = 50
	maxResultLimit     = 200
)

// ResultService reads logged sets. Writes go through the cascade engine.
type ResultService struct {
	results repository.ExerciseResultRepository
	owners  *OwnershipResolver
}

func NewResultService(repos Repositories) *ResultService {
	return &ResultService{results: repos.Results, owners: NewOwnershipResolver(repos)}
}

// ListForWorkoutExercise returns the sets logged against one exercise,
// ordered by set number.
func (s *ResultService) ListForWorkoutExercise(ctx context.Context, workoutExerciseID, userID primitive.ObjectID) ([]domain.ExerciseResult, error) {
	if _, err := owned(s.owners.WorkoutExercise(ctx, workoutExerciseID, userID)); err != nil {
		return nil, err
	}
	return s.results.ListByWorkoutExercise(ctx, workoutExerciseID)
}

// ListForUser pages through the user's results, newest first.
func (s *ResultService) ListForUser(ctx context.Context, userID primitive.ObjectID, filter repository.ResultFilter) ([]domain.ExerciseResult, error) {
	verr := &ValidationError{}
	if filter.Limit < 0 || filter.Limit > maxResultLimit {
		verr.Add("limit", "must be between 1 and 200")
	}
	if filter.Offset < 0 {
		verr.Add("offset", "must not be negative")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		verr.Add("endDate", "must not be before startDate")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if filter.Limit == 0 {
		filter.Limit = defaultResultLimit
	}
	return s.results.ListByUser(ctx, userID, filter)
}
