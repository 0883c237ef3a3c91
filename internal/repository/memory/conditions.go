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

type conditionRepo struct{ s *Store }

func (r *conditionRepo) Create(ctx context.Context, condition *domain.DailyCondition) (primitive.ObjectID, error) {
	if condition.UserID == primitive.NilObjectID || condition.Date.IsZero() {
		return primitive.NilObjectID, errors.New("condition requires userId and date")
	}
	defer r.s.lock(ctx)()

	for _, c := range r.s.t.conditions {
		if c.UserID == condition.UserID && c.Date.Equal(condition.Date) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	condition.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	condition.CreatedAt = now
	condition.UpdatedAt = now
	r.s.t.conditions[condition.ID] = *condition
	return condition.ID, nil
}

func (r *conditionRepo) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.DailyCondition, error) {
	defer r.s.lock(ctx)()
	for _, c := range r.s.t.conditions {
		if c.UserID == userID && c.Date.Equal(date) {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *conditionRepo) Update(ctx context.Context, condition *domain.DailyCondition) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.t.conditions[condition.ID]
	if !ok {
		return repository.ErrNotFound
	}
	current.SleepHours = condition.SleepHours
	current.SleepQuality = condition.SleepQuality
	current.EnergyLevel = condition.EnergyLevel
	current.StressLevel = condition.StressLevel
	current.MuscleSoreness = condition.MuscleSoreness
	current.Notes = condition.Notes
	current.UpdatedAt = time.Now().UTC()
	r.s.t.conditions[condition.ID] = current
	return nil
}

func (r *conditionRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.DailyCondition, error) {
	defer r.s.lock(ctx)()
	out := []domain.DailyCondition{}
	for _, c := range r.s.t.conditions {
		if c.UserID == userID && !c.Date.Before(from) && !c.Date.After(to) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.DailyCondition) int { return a.Date.Compare(b.Date) })
	return out, nil
}
