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

type workoutExerciseRepo struct{ s *Store }

func (r *workoutExerciseRepo) insert(we *domain.WorkoutExercise, now time.Time) {
	we.ID = primitive.NewObjectID()
	we.CreatedAt = now
	we.UpdatedAt = now
	r.s.t.workoutExercises[we.ID] = *we
}

func (r *workoutExerciseRepo) Create(ctx context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error) {
	if we.SessionID == primitive.NilObjectID || we.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout exercise requires sessionId and exerciseId")
	}
	defer r.s.lock(ctx)()
	r.insert(we, time.Now().UTC())
	return we.ID, nil
}

func (r *workoutExerciseRepo) CreateMany(ctx context.Context, wes []*domain.WorkoutExercise) error {
	defer r.s.lock(ctx)()
	now := time.Now().UTC()
	for _, we := range wes {
		r.insert(we, now)
	}
	return nil
}

func (r *workoutExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	defer r.s.lock(ctx)()
	we, ok := r.s.t.workoutExercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &we, nil
}

func byOrder(a, b domain.WorkoutExercise) int {
	if a.SessionID != b.SessionID {
		return slices.Compare(a.SessionID[:], b.SessionID[:])
	}
	return a.Order - b.Order
}

func (r *workoutExerciseRepo) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	return r.ListBySessions(ctx, []primitive.ObjectID{sessionID})
}

func (r *workoutExerciseRepo) ListBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	defer r.s.lock(ctx)()
	out := []domain.WorkoutExercise{}
	for _, we := range r.s.t.workoutExercises {
		if slices.Contains(sessionIDs, we.SessionID) {
			out = append(out, we)
		}
	}
	slices.SortStableFunc(out, byOrder)
	return out, nil
}

func (r *workoutExerciseRepo) ListByExercise(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	defer r.s.lock(ctx)()
	out := []domain.WorkoutExercise{}
	for _, we := range r.s.t.workoutExercises {
		if we.ExerciseID == exerciseID {
			out = append(out, we)
		}
	}
	slices.SortStableFunc(out, byOrder)
	return out, nil
}

func (r *workoutExerciseRepo) Update(ctx context.Context, we *domain.WorkoutExercise) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.t.workoutExercises[we.ID]
	if !ok {
		return repository.ErrNotFound
	}
	current.ExerciseID = we.ExerciseID
	current.Order = we.Order
	current.SetsPlanned = we.SetsPlanned
	current.RepsPlanned = we.RepsPlanned
	current.WeightPlanned = we.WeightPlanned
	current.DurationPlanned = we.DurationPlanned
	current.RestPeriod = we.RestPeriod
	current.Notes = we.Notes
	current.UpdatedAt = time.Now().UTC()
	r.s.t.workoutExercises[we.ID] = current
	return nil
}

func (r *workoutExerciseRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ExerciseStatus) error {
	defer r.s.lock(ctx)()
	we, ok := r.s.t.workoutExercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	we.Status = status
	we.UpdatedAt = time.Now().UTC()
	r.s.t.workoutExercises[id] = we
	return nil
}

func (r *workoutExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.t.workoutExercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.t.workoutExercises, id)
	return nil
}
