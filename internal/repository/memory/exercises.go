package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type exerciseRepo struct{ s *Store }

func (r *exerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	defer r.s.lock(ctx)()

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.s.t.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	defer r.s.lock(ctx)()
	e, ok := r.s.t.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *exerciseRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	defer r.s.lock(ctx)()
	out := []domain.Exercise{}
	for _, id := range ids {
		if e, ok := r.s.t.exercises[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *exerciseRepo) List(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	defer r.s.lock(ctx)()
	search := strings.ToLower(filter.Search)
	out := []domain.Exercise{}
	for _, e := range r.s.t.exercises {
		if len(filter.Equipment) > 0 && !slices.Contains(filter.Equipment, e.Equipment) {
			continue
		}
		if filter.BodyPart != "" && e.BodyPart != filter.BodyPart {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Name), search) {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.Exercise) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *exerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.t.exercises[exercise.ID]
	if !ok {
		return repository.ErrNotFound
	}
	current.Name = exercise.Name
	current.TargetMuscle = exercise.TargetMuscle
	current.BodyPart = exercise.BodyPart
	current.Equipment = exercise.Equipment
	current.SecondaryMuscles = exercise.SecondaryMuscles
	current.Description = exercise.Description
	current.MediaKey = exercise.MediaKey
	current.UpdatedAt = time.Now().UTC()
	r.s.t.exercises[exercise.ID] = current
	return nil
}

func (r *exerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.t.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.t.exercises, id)
	return nil
}
