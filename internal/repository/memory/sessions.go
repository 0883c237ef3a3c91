package memory

import (
	"context"
	"slices"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionRepo struct{ s *Store }

func (r *sessionRepo) CreateMany(ctx context.Context, sessions []*domain.WorkoutSession) error {
	defer r.s.lock(ctx)()
	now := time.Now().UTC()
	for _, ws := range sessions {
		ws.ID = primitive.NewObjectID()
		ws.CreatedAt = now
		ws.UpdatedAt = now
		r.s.t.sessions[ws.ID] = *ws
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	defer r.s.lock(ctx)()
	ws, ok := r.s.t.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ws, nil
}

func byDate(a, b domain.WorkoutSession) int { return a.Date.Compare(b.Date) }

func (r *sessionRepo) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	defer r.s.lock(ctx)()
	out := []domain.WorkoutSession{}
	for _, ws := range r.s.t.sessions {
		if ws.PlanID == planID {
			out = append(out, ws)
		}
	}
	slices.SortFunc(out, byDate)
	return out, nil
}

func (r *sessionRepo) ListByPlansInRange(ctx context.Context, planIDs []primitive.ObjectID, from, to time.Time) ([]domain.WorkoutSession, error) {
	defer r.s.lock(ctx)()
	out := []domain.WorkoutSession{}
	for _, ws := range r.s.t.sessions {
		if slices.Contains(planIDs, ws.PlanID) && !ws.Date.Before(from) && !ws.Date.After(to) {
			out = append(out, ws)
		}
	}
	slices.SortFunc(out, byDate)
	return out, nil
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus) error {
	defer r.s.lock(ctx)()
	ws, ok := r.s.t.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	ws.Status = status
	ws.UpdatedAt = time.Now().UTC()
	r.s.t.sessions[id] = ws
	return nil
}
