package memory

import (
	"context"
	"errors"
	"slices"
	"time"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type measurementRepo struct{ s *Store }

func (r *measurementRepo) Create(ctx context.Context, m *domain.UserMeasurement) (primitive.ObjectID, error) {
	if m.UserID == primitive.NilObjectID || m.Date.IsZero() {
		return primitive.NilObjectID, errors.New("measurement requires userId and date")
	}
	defer r.s.lock(ctx)()

	m.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	r.s.t.measurements[m.ID] = *m
	return m.ID, nil
}

func (r *measurementRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, from, to *time.Time) ([]domain.UserMeasurement, error) {
	defer r.s.lock(ctx)()
	out := []domain.UserMeasurement{}
	for _, m := range r.s.t.measurements {
		if m.UserID != userID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b domain.UserMeasurement) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}
