package service

import (
	"context"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanDetail is a plan with everything below it, as the client renders it.
type PlanDetail struct {
	domain.TrainingPlan
	Sessions []SessionDetail `json:"sessions"`
}

type SessionDetail struct {
	domain.WorkoutSession
	Exercises []WorkoutExerciseDetail `json:"exercises"`
}

type WorkoutExerciseDetail struct {
	domain.WorkoutExercise
	Exercise *domain.Exercise        `json:"exercise,omitempty"` // nil when the catalog entry is gone
	Results  []domain.ExerciseResult `json:"results"`
}

// PlanService serves read access to a user's plans.
type PlanService struct {
	repos  Repositories
	owners *OwnershipResolver
}

func NewPlanService(repos Repositories) *PlanService {
	return &PlanService{repos: repos, owners: NewOwnershipResolver(repos)}
}

// ListPlans returns the user's plans, newest first.
func (s *PlanService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return s.repos.Plans.ListByUser(ctx, userID)
}

// GetPlan loads a plan with its sessions, exercises, catalog entries and results.
func (s *PlanService) GetPlan(ctx context.Context, planID, userID primitive.ObjectID) (*PlanDetail, error) {
	o, err := owned(s.owners.Plan(ctx, planID, userID))
	if err != nil {
		return nil, err
	}
	sessions, err := s.repos.Sessions.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	details, err := s.expand(ctx, sessions)
	if err != nil {
		return nil, err
	}
	return &PlanDetail{TrainingPlan: *o.Plan, Sessions: details}, nil
}

// GetSession loads one session with its exercises and results.
func (s *PlanService) GetSession(ctx context.Context, sessionID, userID primitive.ObjectID) (*SessionDetail, error) {
	o, err := owned(s.owners.Session(ctx, sessionID, userID))
	if err != nil {
		return nil, err
	}
	details, err := s.expand(ctx, []domain.WorkoutSession{*o.Session})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// expand batches the lookups for every level instead of querying per row.
func (s *PlanService) expand(ctx context.Context, sessions []domain.WorkoutSession) ([]SessionDetail, error) {
	sessionIDs := make([]primitive.ObjectID, len(sessions))
	for i, session := range sessions {
		sessionIDs[i] = session.ID
	}
	exercises, err := s.repos.WorkoutExercises.ListBySessions(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	weIDs := make([]primitive.ObjectID, len(exercises))
	catalogIDs := make([]primitive.ObjectID, 0, len(exercises))
	seen := make(map[primitive.ObjectID]bool)
	for i, we := range exercises {
		weIDs[i] = we.ID
		if !seen[we.ExerciseID] {
			seen[we.ExerciseID] = true
			catalogIDs = append(catalogIDs, we.ExerciseID)
		}
	}

	results, err := s.repos.Results.ListByWorkoutExercises(ctx, weIDs)
	if err != nil {
		return nil, err
	}
	catalog, err := s.repos.Exercises.GetByIDs(ctx, catalogIDs)
	if err != nil {
		return nil, err
	}

	resultsByWE := make(map[primitive.ObjectID][]domain.ExerciseResult)
	for _, r := range results {
		resultsByWE[r.WorkoutExerciseID] = append(resultsByWE[r.WorkoutExerciseID], r)
	}
	catalogByID := make(map[primitive.ObjectID]*domain.Exercise, len(catalog))
	for i := range catalog {
		catalogByID[catalog[i].ID] = &catalog[i]
	}
	bySession := make(map[primitive.ObjectID][]WorkoutExerciseDetail)
	for _, we := range exercises {
		res := resultsByWE[we.ID]
		if res == nil {
			res = []domain.ExerciseResult{}
		}
		bySession[we.SessionID] = append(bySession[we.SessionID], WorkoutExerciseDetail{
			WorkoutExercise: we,
			Exercise:        catalogByID[we.ExerciseID],
			Results:         res,
		})
	}

	out := make([]SessionDetail, len(sessions))
	for i, session := range sessions {
		wes := bySession[session.ID]
		if wes == nil {
			wes = []WorkoutExerciseDetail{}
		}
		out[i] = SessionDetail{WorkoutSession: session, Exercises: wes}
	}
	return out, nil
}
