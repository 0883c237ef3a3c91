package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/observability"
	"alcyxob/fitness-coach/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wednesday 2025-03-12, mid-morning.
var testNow = time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC)

type testEnv struct {
	store *memory.Store
	repos Repositories
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	return &testEnv{
		store: store,
		now:   testNow,
		repos: Repositories{
			Users:            store.Users(),
			Exercises:        store.Exercises(),
			Plans:            store.Plans(),
			Sessions:         store.Sessions(),
			WorkoutExercises: store.WorkoutExercises(),
			Results:          store.Results(),
			Conditions:       store.Conditions(),
			Measurements:     store.Measurements(),
			Tx:               store,
		},
	}
}

func (e *testEnv) clock() time.Time { return e.now }

func (e *testEnv) today() time.Time { return domain.DateOnly(e.now) }

func (e *testEnv) cascade() *CascadeEngine {
	return NewCascadeEngine(e.repos, e.clock, observability.Discard())
}

func (e *testEnv) user(t *testing.T, profile domain.Profile) *domain.User {
	t.Helper()
	u := &domain.User{
		Name:         "Test User",
		Email:        primitive.NewObjectID().Hex() + "@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		Profile:      profile,
	}
	_, err := e.repos.Users.Create(context.Background(), u)
	require.NoError(t, err)
	return u
}

func (e *testEnv) exercise(t *testing.T, name, equipment string) *domain.Exercise {
	t.Helper()
	ex := &domain.Exercise{Name: name, Equipment: equipment, TargetMuscle: "glutes", BodyPart: "upper legs"}
	_, err := e.repos.Exercises.Create(context.Background(), ex)
	require.NoError(t, err)
	return ex
}

func (e *testEnv) plan(t *testing.T, userID primitive.ObjectID, start time.Time, status domain.PlanStatus) *domain.TrainingPlan {
	t.Helper()
	p := &domain.TrainingPlan{
		UserID:    userID,
		Name:      "Week",
		StartDate: domain.DateOnly(start),
		EndDate:   domain.AddDays(domain.DateOnly(start), 6),
		Status:    status,
	}
	_, err := e.repos.Plans.Create(context.Background(), p)
	require.NoError(t, err)
	return p
}

func (e *testEnv) session(t *testing.T, planID primitive.ObjectID, date time.Time, status domain.SessionStatus) *domain.WorkoutSession {
	t.Helper()
	s := &domain.WorkoutSession{PlanID: planID, Name: date.Weekday().String() + " Workout", Date: domain.DateOnly(date), Status: status}
	require.NoError(t, e.repos.Sessions.CreateMany(context.Background(), []*domain.WorkoutSession{s}))
	return s
}

func (e *testEnv) workoutExercise(t *testing.T, sessionID, exerciseID primitive.ObjectID, sets *int, status domain.ExerciseStatus) *domain.WorkoutExercise {
	t.Helper()
	we := &domain.WorkoutExercise{SessionID: sessionID, ExerciseID: exerciseID, SetsPlanned: sets, Status: status}
	_, err := e.repos.WorkoutExercises.Create(context.Background(), we)
	require.NoError(t, err)
	return we
}

// chain builds an Active plan with one session today holding one exercise.
func (e *testEnv) chain(t *testing.T, sets *int) (*domain.User, *domain.TrainingPlan, *domain.WorkoutSession, *domain.WorkoutExercise) {
	t.Helper()
	u := e.user(t, domain.Profile{})
	ex := e.exercise(t, "glute bridge", "body weight")
	p := e.plan(t, u.ID, e.today(), domain.PlanActive)
	s := e.session(t, p.ID, e.today(), domain.SessionPlanned)
	we := e.workoutExercise(t, s.ID, ex.ID, sets, domain.ExercisePlanned)
	return u, p, s, we
}

func (e *testEnv) planStatus(t *testing.T, id primitive.ObjectID) domain.PlanStatus {
	t.Helper()
	p, err := e.repos.Plans.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Status
}

func (e *testEnv) sessionStatus(t *testing.T, id primitive.ObjectID) domain.SessionStatus {
	t.Helper()
	s, err := e.repos.Sessions.GetByID(context.Background(), id)
	require.NoError(t, err)
	return s.Status
}

func (e *testEnv) exerciseStatus(t *testing.T, id primitive.ObjectID) domain.ExerciseStatus {
	t.Helper()
	we, err := e.repos.WorkoutExercises.GetByID(context.Background(), id)
	require.NoError(t, err)
	return we.Status
}
