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

type planRepo struct{ s *Store }

// activeConflict reports whether another plan of userID is Active.
func (r *planRepo) activeConflict(userID, except primitive.ObjectID) bool {
	for _, p := range r.s.t.plans {
		if p.UserID == userID && p.ID != except && p.Status == domain.PlanActive {
			return true
		}
	}
	return false
}

func (r *planRepo) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires userId and name")
	}
	defer r.s.lock(ctx)()

	if plan.Status == domain.PlanActive && r.activeConflict(plan.UserID, primitive.NilObjectID) {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	r.s.t.plans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *planRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.t.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *planRepo) collect(match func(domain.TrainingPlan) bool) []domain.TrainingPlan {
	out := []domain.TrainingPlan{}
	for _, p := range r.s.t.plans {
		if match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *planRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	defer r.s.lock(ctx)()
	out := r.collect(func(p domain.TrainingPlan) bool { return p.UserID == userID })
	slices.SortFunc(out, func(a, b domain.TrainingPlan) int {
		if c := b.StartDate.Compare(a.StartDate); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *planRepo) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	defer r.s.lock(ctx)()
	for _, p := range r.s.t.plans {
		if p.UserID == userID && p.Status == domain.PlanActive {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *planRepo) GetLatestTerminal(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	defer r.s.lock(ctx)()
	var latest *domain.TrainingPlan
	for _, p := range r.s.t.plans {
		if p.UserID != userID || !p.Status.IsTerminal() {
			continue
		}
		if latest == nil || p.EndDate.After(latest.EndDate) ||
			(p.EndDate.Equal(latest.EndDate) && p.CreatedAt.After(latest.CreatedAt)) {
			p := p
			latest = &p
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

func (r *planRepo) ListActiveEndingBefore(ctx context.Context, date time.Time) ([]domain.TrainingPlan, error) {
	defer r.s.lock(ctx)()
	out := r.collect(func(p domain.TrainingPlan) bool {
		return p.Status == domain.PlanActive && p.EndDate.Before(date)
	})
	slices.SortFunc(out, func(a, b domain.TrainingPlan) int { return a.EndDate.Compare(b.EndDate) })
	return out, nil
}

func (r *planRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.PlanStatus) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.t.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	if status == domain.PlanActive && r.activeConflict(p.UserID, p.ID) {
		return repository.ErrDuplicate
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	r.s.t.plans[id] = p
	return nil
}

func (r *planRepo) MarkCustomized(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.t.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsCustomized = true
	p.UpdatedAt = time.Now().UTC()
	r.s.t.plans[id] = p
	return nil
}

func (r *planRepo) CountByStatus(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (map[domain.PlanStatus]int, error) {
	defer r.s.lock(ctx)()
	counts := make(map[domain.PlanStatus]int)
	for _, p := range r.s.t.plans {
		if p.UserID == userID && !p.EndDate.Before(from) && !p.EndDate.After(to) {
			counts[p.Status]++
		}
	}
	return counts, nil
}
