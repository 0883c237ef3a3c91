package service

import (
	"context"
	"log/slog"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/observability"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResultInput is one logged set as submitted by the user.
type ResultInput struct {
	SetNumber         int
	RepsCompleted     *int
	WeightUsed        *float64
	DurationCompleted *int
	Rating            *int
	Notes             string
	CompletedAt       *time.Time // defaults to now
}

// Validate checks the storage-level constraints of a result.
func (in ResultInput) Validate() error {
	verr := &ValidationError{}
	if in.SetNumber < 1 {
		verr.Add("setNumber", "must be at least 1")
	}
	if in.RepsCompleted != nil && *in.RepsCompleted < 0 {
		verr.Add("repsCompleted", "must not be negative")
	}
	if in.WeightUsed != nil && *in.WeightUsed < 0 {
		verr.Add("weightUsed", "must not be negative")
	}
	if in.DurationCompleted != nil && *in.DurationCompleted < 0 {
		verr.Add("durationCompleted", "must not be negative")
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 10) {
		verr.Add("rating", "must be between 1 and 10")
	}
	return verr.OrNil()
}

// CascadeEngine keeps every parent status a function of its children.
// Propagation is bottom-up and only a transition into Completed moves upward.
type CascadeEngine struct {
	repos  Repositories
	owners *OwnershipResolver
	now    Clock
	log    *slog.Logger
}

func NewCascadeEngine(repos Repositories, now Clock, log *slog.Logger) *CascadeEngine {
	return &CascadeEngine{
		repos:  repos,
		owners: NewOwnershipResolver(repos),
		now:    now,
		log:    log,
	}
}

// RecordResult logs a set and applies the resulting status changes atomically.
func (e *CascadeEngine) RecordResult(ctx context.Context, workoutExerciseID, userID primitive.ObjectID, in ResultInput) (*domain.ExerciseResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var result *domain.ExerciseResult
	err := e.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := owned(e.owners.WorkoutExercise(ctx, workoutExerciseID, userID))
		if err != nil {
			return err
		}
		we := o.Exercise

		completedAt := e.now()
		if in.CompletedAt != nil {
			completedAt = in.CompletedAt.UTC()
		}
		result = &domain.ExerciseResult{
			WorkoutExerciseID: we.ID,
			UserID:            o.Plan.UserID,
			SetNumber:         in.SetNumber,
			RepsCompleted:     in.RepsCompleted,
			WeightUsed:        in.WeightUsed,
			DurationCompleted: in.DurationCompleted,
			Rating:            in.Rating,
			Notes:             in.Notes,
			CompletedAt:       completedAt,
		}
		if _, err := e.repos.Results.Create(ctx, result); err != nil {
			return err
		}

		if we.Status == domain.ExercisePlanned {
			if err := e.repos.WorkoutExercises.UpdateStatus(ctx, we.ID, domain.ExerciseStarted); err != nil {
				return err
			}
			we.Status = domain.ExerciseStarted
		}

		if !we.AutoCompletes() || we.Status.IsTerminal() {
			return nil
		}
		logged, err := e.repos.Results.CountByWorkoutExercise(ctx, we.ID)
		if err != nil {
			return err
		}
		if logged < *we.SetsPlanned {
			return nil
		}
		if err := e.repos.WorkoutExercises.UpdateStatus(ctx, we.ID, domain.ExerciseCompleted); err != nil {
			return err
		}
		_, err = e.recomputeSession(ctx, we.SessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecomputeSession completes the session when all of its exercises are
// terminal, then recomputes the plan. It reports whether the session changed.
func (e *CascadeEngine) RecomputeSession(ctx context.Context, sessionID primitive.ObjectID) (bool, error) {
	var changed bool
	err := e.repos.Tx.WithinTx(ctx, func(ctx context.Context) (err error) {
		changed, err = e.recomputeSession(ctx, sessionID)
		return err
	})
	return changed, err
}

// RecomputePlan completes an Active plan when all of its sessions are terminal.
// It reports whether the plan changed.
func (e *CascadeEngine) RecomputePlan(ctx context.Context, planID primitive.ObjectID) (bool, error) {
	var changed bool
	err := e.repos.Tx.WithinTx(ctx, func(ctx context.Context) (err error) {
		changed, err = e.recomputePlan(ctx, planID)
		return err
	})
	return changed, err
}

func (e *CascadeEngine) recomputeSession(ctx context.Context, sessionID primitive.ObjectID) (bool, error) {
	session, err := e.repos.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return false, mapRepoErr(err, "workout session")
	}
	if session.Status.IsTerminal() {
		return false, nil
	}

	exercises, err := e.repos.WorkoutExercises.ListBySession(ctx, sessionID)
	if err != nil {
		return false, err
	}
	// Rest days are left to manual handling or the sweeper.
	if len(exercises) == 0 {
		return false, nil
	}
	for _, we := range exercises {
		if !we.Status.IsTerminal() {
			return false, nil
		}
	}

	if err := e.repos.Sessions.UpdateStatus(ctx, sessionID, domain.SessionCompleted); err != nil {
		return false, err
	}
	observability.LoggerFromContext(ctx, e.log).Debug("session completed by cascade",
		"session_id", sessionID.Hex(), "plan_id", session.PlanID.Hex())

	if _, err := e.recomputePlan(ctx, session.PlanID); err != nil {
		return true, err
	}
	return true, nil
}

func (e *CascadeEngine) recomputePlan(ctx context.Context, planID primitive.ObjectID) (bool, error) {
	plan, err := e.repos.Plans.GetByID(ctx, planID)
	if err != nil {
		return false, mapRepoErr(err, "training plan")
	}
	if plan.Status != domain.PlanActive {
		return false, nil
	}

	sessions, err := e.repos.Sessions.ListByPlan(ctx, planID)
	if err != nil {
		return false, err
	}
	if len(sessions) == 0 || !allSessionsTerminal(sessions) {
		return false, nil
	}

	if err := e.repos.Plans.UpdateStatus(ctx, planID, domain.PlanCompleted); err != nil {
		return false, err
	}
	observability.LoggerFromContext(ctx, e.log).Info("plan completed by cascade",
		"plan_id", planID.Hex(), "user_id", plan.UserID.Hex())
	return true, nil
}

func allSessionsTerminal(sessions []domain.WorkoutSession) bool {
	for _, s := range sessions {
		if !s.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// SetSessionStatus completes or skips a session by hand. Exercises still open
// in the session follow it: completing the session completes them, skipping it
// skips them. The session never ends with open children.
func (e *CascadeEngine) SetSessionStatus(ctx context.Context, sessionID, userID primitive.ObjectID, status domain.SessionStatus) (*domain.WorkoutSession, error) {
	if status != domain.SessionCompleted && status != domain.SessionSkipped {
		return nil, invalid("status", "must be Completed or Skipped")
	}

	var session *domain.WorkoutSession
	err := e.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := owned(e.owners.Session(ctx, sessionID, userID))
		if err != nil {
			return err
		}
		session = o.Session
		if session.Status.IsTerminal() || !session.Status.CanTransitionTo(status) {
			return ErrSessionTerminal
		}

		exercises, err := e.repos.WorkoutExercises.ListBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		// A session marked done counts its open work as done too
		forced := domain.ExerciseSkipped
		if status == domain.SessionCompleted {
			forced = domain.ExerciseCompleted
		}
		for _, we := range exercises {
			if we.Status.IsTerminal() {
				continue
			}
			if err := e.repos.WorkoutExercises.UpdateStatus(ctx, we.ID, forced); err != nil {
				return err
			}
		}

		if err := e.repos.Sessions.UpdateStatus(ctx, sessionID, status); err != nil {
			return err
		}
		session.Status = status

		_, err = e.recomputePlan(ctx, session.PlanID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SetExerciseStatus completes or skips a workout exercise by hand. This is the
// only way to finish an exercise that has no planned set count.
func (e *CascadeEngine) SetExerciseStatus(ctx context.Context, workoutExerciseID, userID primitive.ObjectID, status domain.ExerciseStatus) (*domain.WorkoutExercise, error) {
	if status != domain.ExerciseCompleted && status != domain.ExerciseSkipped {
		return nil, invalid("status", "must be Completed or Skipped")
	}

	var we *domain.WorkoutExercise
	err := e.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := owned(e.owners.WorkoutExercise(ctx, workoutExerciseID, userID))
		if err != nil {
			return err
		}
		we = o.Exercise
		if !we.Status.CanTransitionTo(status) {
			return ErrExerciseTerminal
		}
		if err := e.repos.WorkoutExercises.UpdateStatus(ctx, we.ID, status); err != nil {
			return err
		}
		we.Status = status

		if status != domain.ExerciseCompleted {
			return nil
		}
		_, err = e.recomputeSession(ctx, we.SessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return we, nil
}

// SetPlanStatus changes a plan's status by hand, following the plan
// transition table. Setting the current status again is a no-op.
func (e *CascadeEngine) SetPlanStatus(ctx context.Context, planID, userID primitive.ObjectID, status domain.PlanStatus) (*domain.TrainingPlan, error) {
	if !status.Valid() {
		return nil, invalid("status", "must be one of Active, Paused, Completed, Archived")
	}

	var plan *domain.TrainingPlan
	err := e.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := owned(e.owners.Plan(ctx, planID, userID))
		if err != nil {
			return err
		}
		plan = o.Plan
		if plan.Status == status {
			return nil
		}
		if !plan.Status.CanTransitionTo(status) {
			return conflictf("cannot change plan from %s to %s", plan.Status, status)
		}
		if err := e.repos.Plans.UpdateStatus(ctx, planID, status); err != nil {
			return mapRepoErr(err, "training plan")
		}
		plan.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}
