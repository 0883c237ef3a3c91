package memory

import (
	"context"
	"errors"
	"slices"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type resultRepo struct{ s *Store }

func (r *resultRepo) Create(ctx context.Context, result *domain.ExerciseResult) (primitive.ObjectID, error) {
	if result.WorkoutExerciseID == primitive.NilObjectID || result.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("result requires workoutExerciseId and userId")
	}
	defer r.s.lock(ctx)()

	result.ID = primitive.NewObjectID()
	result.CreatedAt = time.Now().UTC()
	if result.CompletedAt.IsZero() {
		result.CompletedAt = result.CreatedAt
	}
	r.s.t.results[result.ID] = *result
	return result.ID, nil
}

func (r *resultRepo) CountByWorkoutExercise(ctx context.Context, workoutExerciseID primitive.ObjectID) (int, error) {
	defer r.s.lock(ctx)()
	n := 0
	for _, res := range r.s.t.results {
		if res.WorkoutExerciseID == workoutExerciseID {
			n++
		}
	}
	return n, nil
}

func bySetNumber(a, b domain.ExerciseResult) int {
	if a.SetNumber != b.SetNumber {
		return a.SetNumber - b.SetNumber
	}
	return a.CompletedAt.Compare(b.CompletedAt)
}

func (r *resultRepo) ListByWorkoutExercise(ctx context.Context, workoutExerciseID primitive.ObjectID) ([]domain.ExerciseResult, error) {
	return r.ListByWorkoutExercises(ctx, []primitive.ObjectID{workoutExerciseID})
}

func (r *resultRepo) ListByWorkoutExercises(ctx context.Context, ids []primitive.ObjectID) ([]domain.ExerciseResult, error) {
	defer r.s.lock(ctx)()
	out := []domain.ExerciseResult{}
	for _, res := range r.s.t.results {
		if slices.Contains(ids, res.WorkoutExerciseID) {
			out = append(out, res)
		}
	}
	slices.SortStableFunc(out, bySetNumber)
	return out, nil
}

func (r *resultRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, filter repository.ResultFilter) ([]domain.ExerciseResult, error) {
	defer r.s.lock(ctx)()
	out := []domain.ExerciseResult{}
	for _, res := range r.s.t.results {
		if res.UserID != userID {
			continue
		}
		if filter.From != nil && res.CompletedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && res.CompletedAt.After(*filter.To) {
			continue
		}
		out = append(out, res)
	}
	slices.SortFunc(out, func(a, b domain.ExerciseResult) int { return b.CompletedAt.Compare(a.CompletedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []domain.ExerciseResult{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *resultRepo) DeleteByWorkoutExercise(ctx context.Context, workoutExerciseID primitive.ObjectID) error {
	defer r.s.lock(ctx)()
	for id, res := range r.s.t.results {
		if res.WorkoutExerciseID == workoutExerciseID {
			delete(r.s.t.results, id)
		}
	}
	return nil
}
