package service

import (
	"context"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutExerciseInput carries the planned values of an exercise in a session.
type WorkoutExerciseInput struct {
	ExerciseID      primitive.ObjectID // required when adding
	Order           *int               // nil appends on add and keeps the position on update
	SetsPlanned     *int
	RepsPlanned     *int
	WeightPlanned   *float64
	DurationPlanned *int
	RestPeriod      *int
	Notes           string
}

func (in WorkoutExerciseInput) validate(requireExercise bool) error {
	verr := &ValidationError{}
	if requireExercise && in.ExerciseID.IsZero() {
		verr.Add("exerciseId", "is required")
	}
	if in.Order != nil && *in.Order < 0 {
		verr.Add("order", "must not be negative")
	}
	if in.SetsPlanned != nil && *in.SetsPlanned < 0 {
		verr.Add("setsPlanned", "must not be negative")
	}
	if in.RepsPlanned != nil && *in.RepsPlanned < 0 {
		verr.Add("repsPlanned", "must not be negative")
	}
	if in.WeightPlanned != nil && *in.WeightPlanned < 0 {
		verr.Add("weightPlanned", "must not be negative")
	}
	if in.DurationPlanned != nil && *in.DurationPlanned < 0 {
		verr.Add("durationPlanned", "must not be negative")
	}
	if in.RestPeriod != nil && *in.RestPeriod < 0 {
		verr.Add("restPeriod", "must not be negative")
	}
	return verr.OrNil()
}

// WorkoutExerciseService lets a user customize the sessions of a plan.
// Any change marks the plan as customized.
type WorkoutExerciseService struct {
	repos   Repositories
	owners  *OwnershipResolver
	cascade *CascadeEngine
}

func NewWorkoutExerciseService(repos Repositories, cascade *CascadeEngine) *WorkoutExerciseService {
	return &WorkoutExerciseService{repos: repos, owners: NewOwnershipResolver(repos), cascade: cascade}
}

// AddExercise appends a catalog exercise to an open session.
func (s *WorkoutExerciseService) AddExercise(ctx context.Context, sessionID, userID primitive.ObjectID, in WorkoutExerciseInput) (*domain.WorkoutExercise, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}

	var we *domain.WorkoutExercise
	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := owned(s.owners.Session(ctx, sessionID, userID))
		if err != nil {
			return err
		}
		if o.Session.Status.IsTerminal() {
			return ErrSessionTerminal
		}
		if _, err := s.repos.Exercises.GetByID(ctx, in.ExerciseID); err != nil {
			return mapRepoErr(err, "exercise")
		}

		order := 0
		if in.Order != nil {
			order = *in.Order
		} else {
			existing, err := s.repos.WorkoutExercises.ListBySession(ctx, sessionID)
			if err != nil {
				return err
			}
			for _, e := range existing {
				order = max(order, e.Order+1)
			}
		}

		we = &domain.WorkoutExercise{
			SessionID:       sessionID,
			ExerciseID:      in.ExerciseID,
			Order:           order,
			SetsPlanned:     in.SetsPlanned,
			RepsPlanned:     in.RepsPlanned,
			WeightPlanned:   in.WeightPlanned,
			DurationPlanned: in.DurationPlanned,
			RestPeriod:      in.RestPeriod,
			Notes:           in.Notes,
			Status:          domain.ExercisePlanned,
		}
		if _, err := s.repos.WorkoutExercises.Create(ctx, we); err != nil {
			return err
		}
		return s.repos.Plans.MarkCustomized(ctx, o.Plan.ID)
	})
	if err != nil {
		return nil, err
	}
	return we, nil
}

// UpdateExercise replaces the planned values and notes of an open exercise.
func (s *WorkoutExerciseService) UpdateExercise(ctx context.Context, id, userID primitive.ObjectID, in WorkoutExerciseInput) (*domain.WorkoutExercise, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, userID, func(we *domain.WorkoutExercise) error {
		if in.Order != nil {
			we.Order = *in.Order
		}
		we.SetsPlanned = in.SetsPlanned
		we.RepsPlanned = in.RepsPlanned
		we.WeightPlanned = in.WeightPlanned
		we.DurationPlanned = in.DurationPlanned
		we.RestPeriod = in.RestPeriod
		we.Notes = in.Notes
		return nil
	})
}

// SwapExercise points the instance at another catalog exercise. Planned
// values, status and logged results stay with the instance.
func (s *WorkoutExerciseService) SwapExercise(ctx context.Context, id, userID, exerciseID primitive.ObjectID) (*domain.WorkoutExercise, error) {
	if exerciseID.IsZero() {
		return nil, invalid("exerciseId", "is required")
	}
	return s.modify(ctx, id, userID, func(we *domain.WorkoutExercise) error {
		if _, err := s.repos.Exercises.GetByID(ctx, exerciseID); err != nil {
			return mapRepoErr(err, "exercise")
		}
		we.ExerciseID = exerciseID
		return nil
	})
}

func (s *WorkoutExerciseService) modify(ctx context.Context, id, userID primitive.ObjectID, apply func(*domain.WorkoutExercise) error) (*domain.WorkoutExercise, error) {
	var we *domain.WorkoutExercise
	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := owned(s.owners.WorkoutExercise(ctx, id, userID))
		if err != nil {
			return err
		}
		we = o.Exercise
		if we.Status.IsTerminal() {
			return ErrExerciseTerminal
		}
		if err := apply(we); err != nil {
			return err
		}
		if err := s.repos.WorkoutExercises.Update(ctx, we); err != nil {
			return mapRepoErr(err, "workout exercise")
		}
		return s.repos.Plans.MarkCustomized(ctx, o.Plan.ID)
	})
	if err != nil {
		return nil, err
	}
	return we, nil
}

// DeleteExercise removes an exercise and its logged results. When the rest
// of the session is already finished the session completes.
func (s *WorkoutExerciseService) DeleteExercise(ctx context.Context, id, userID primitive.ObjectID) error {
	return s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := owned(s.owners.WorkoutExercise(ctx, id, userID))
		if err != nil {
			return err
		}
		if err := s.repos.Results.DeleteByWorkoutExercise(ctx, id); err != nil {
			return err
		}
		if err := s.repos.WorkoutExercises.Delete(ctx, id); err != nil {
			return mapRepoErr(err, "workout exercise")
		}
		if err := s.repos.Plans.MarkCustomized(ctx, o.Plan.ID); err != nil {
			return err
		}
		_, err = s.cascade.recomputeSession(ctx, o.Session.ID)
		return err
	})
}
