package service

import (
	"context"
	"errors"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OwnershipStatus is the outcome of walking an entity up to its owning user.
type OwnershipStatus int

const (
	OwnershipNotFound OwnershipStatus = iota // some link of the chain is missing
	OwnershipNotOwned                        // the chain resolves to another user
	OwnershipOwned
)

func (s OwnershipStatus) String() string {
	switch s {
	case OwnershipOwned:
		return "owned"
	case OwnershipNotOwned:
		return "not owned"
	default:
		return "not found"
	}
}

// Ownership is the typed result of an ownership lookup. The entities resolved
// along the way are filled in even when they belong to someone else.
type Ownership struct {
	Status   OwnershipStatus
	Missing  string // which entity was not found
	Plan     *domain.TrainingPlan
	Session  *domain.WorkoutSession
	Exercise *domain.WorkoutExercise
}

// Err maps the outcome onto the service error kinds.
func (o Ownership) Err() error {
	switch o.Status {
	case OwnershipOwned:
		return nil
	case OwnershipNotOwned:
		return ErrForbidden
	default:
		return notFound(o.Missing)
	}
}

// OwnershipResolver walks WorkoutExercise -> Session -> Plan -> user.
type OwnershipResolver struct {
	plans     repository.TrainingPlanRepository
	sessions  repository.WorkoutSessionRepository
	exercises repository.WorkoutExerciseRepository
}

func NewOwnershipResolver(repos Repositories) *OwnershipResolver {
	return &OwnershipResolver{
		plans:     repos.Plans,
		sessions:  repos.Sessions,
		exercises: repos.WorkoutExercises,
	}
}

// Plan resolves a plan. The returned error is only set for storage failures.
func (r *OwnershipResolver) Plan(ctx context.Context, planID, userID primitive.ObjectID) (Ownership, error) {
	plan, err := r.plans.GetByID(ctx, planID)
	if errors.Is(err, repository.ErrNotFound) {
		return Ownership{Status: OwnershipNotFound, Missing: "training plan"}, nil
	}
	if err != nil {
		return Ownership{}, err
	}
	o := Ownership{Plan: plan, Status: OwnershipOwned}
	if plan.UserID != userID {
		o.Status = OwnershipNotOwned
	}
	return o, nil
}

// Session resolves a session through its plan.
func (r *OwnershipResolver) Session(ctx context.Context, sessionID, userID primitive.ObjectID) (Ownership, error) {
	session, err := r.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return Ownership{Status: OwnershipNotFound, Missing: "workout session"}, nil
	}
	if err != nil {
		return Ownership{}, err
	}
	o, err := r.Plan(ctx, session.PlanID, userID)
	if err != nil {
		return Ownership{}, err
	}
	o.Session = session
	return o, nil
}

// WorkoutExercise resolves a workout exercise through its session and plan.
func (r *OwnershipResolver) WorkoutExercise(ctx context.Context, id, userID primitive.ObjectID) (Ownership, error) {
	we, err := r.exercises.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return Ownership{Status: OwnershipNotFound, Missing: "workout exercise"}, nil
	}
	if err != nil {
		return Ownership{}, err
	}
	o, err := r.Session(ctx, we.SessionID, userID)
	if err != nil {
		return Ownership{}, err
	}
	o.Exercise = we
	return o, nil
}

// owned turns a lookup into (ownership, error) where any non-owned outcome is an error.
func owned(o Ownership, err error) (Ownership, error) {
	if err != nil {
		return o, err
	}
	return o, o.Err()
}
