package service

import (
	"context"
	"errors"
	"testing"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecordResult_CompletesUpTheChain(t *testing.T) {
	env := newTestEnv(t)
	user, plan, session, we := env.chain(t, ptr(2))
	engine := env.cascade()
	ctx := context.Background()

	_, err := engine.RecordResult(ctx, we.ID, user.ID, ResultInput{SetNumber: 1, RepsCompleted: ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseStarted, env.exerciseStatus(t, we.ID))
	assert.Equal(t, domain.SessionPlanned, env.sessionStatus(t, session.ID))
	assert.Equal(t, domain.PlanActive, env.planStatus(t, plan.ID))

	_, err = engine.RecordResult(ctx, we.ID, user.ID, ResultInput{SetNumber: 2, RepsCompleted: ptr(8)})
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseCompleted, env.exerciseStatus(t, we.ID))
	assert.Equal(t, domain.SessionCompleted, env.sessionStatus(t, session.ID))
	assert.Equal(t, domain.PlanCompleted, env.planStatus(t, plan.ID))
}

func TestRecordResult_StampsOwnerAndTime(t *testing.T) {
	env := newTestEnv(t)
	user, _, _, we := env.chain(t, ptr(3))

	res, err := env.cascade().RecordResult(context.Background(), we.ID, user.ID, ResultInput{SetNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.UserID)
	assert.Equal(t, testNow, res.CompletedAt)
	assert.False(t, res.ID.IsZero())
}

func TestRecordResult_NullSetsNeverAutoCompletes(t *testing.T) {
	env := newTestEnv(t)
	user, plan, session, we := env.chain(t, nil)
	engine := env.cascade()

	for i := 1; i <= 6; i++ {
		_, err := engine.RecordResult(context.Background(), we.ID, user.ID, ResultInput{SetNumber: i})
		require.NoError(t, err)
	}
	assert.Equal(t, domain.ExerciseStarted, env.exerciseStatus(t, we.ID))
	assert.Equal(t, domain.SessionPlanned, env.sessionStatus(t, session.ID))
	assert.Equal(t, domain.PlanActive, env.planStatus(t, plan.ID))
}

func TestRecordResult_ZeroSetsNeverAutoCompletes(t *testing.T) {
	env := newTestEnv(t)
	user, _, _, we := env.chain(t, ptr(0))

	_, err := env.cascade().RecordResult(context.Background(), we.ID, user.ID, ResultInput{SetNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseStarted, env.exerciseStatus(t, we.ID))
}

func TestRecordResult_OwnershipErrors(t *testing.T) {
	env := newTestEnv(t)
	_, _, _, we := env.chain(t, ptr(2))
	stranger := env.user(t, domain.Profile{})
	engine := env.cascade()

	_, err := engine.RecordResult(context.Background(), we.ID, stranger.ID, ResultInput{SetNumber: 1})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = engine.RecordResult(context.Background(), primitive.NewObjectID(), stranger.ID, ResultInput{SetNumber: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := env.repos.Results.CountByWorkoutExercise(context.Background(), we.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, domain.ExercisePlanned, env.exerciseStatus(t, we.ID))
}

func TestRecordResult_Validation(t *testing.T) {
	env := newTestEnv(t)
	user, _, _, we := env.chain(t, ptr(2))

	_, err := env.cascade().RecordResult(context.Background(), we.ID, user.ID, ResultInput{
		SetNumber:     0,
		RepsCompleted: ptr(-1),
		WeightUsed:    ptr(-2.5),
		Rating:        ptr(11),
	})
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"setNumber", "repsCompleted", "weightUsed", "rating"}, fields)
}

// failingSessions breaks the cascade halfway through a transaction.
type failingSessions struct {
	repository.WorkoutSessionRepository
}

func (failingSessions) UpdateStatus(context.Context, primitive.ObjectID, domain.SessionStatus) error {
	return errors.New("write conflict")
}

func TestRecordResult_RollsBackWhenCascadeFails(t *testing.T) {
	env := newTestEnv(t)
	user, _, session, we := env.chain(t, ptr(1))
	env.repos.Sessions = failingSessions{env.repos.Sessions}

	_, err := env.cascade().RecordResult(context.Background(), we.ID, user.ID, ResultInput{SetNumber: 1})
	require.Error(t, err)

	n, err := env.repos.Results.CountByWorkoutExercise(context.Background(), we.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "result must not survive a failed cascade")
	assert.Equal(t, domain.ExercisePlanned, env.exerciseStatus(t, we.ID))
	assert.Equal(t, domain.SessionPlanned, env.sessionStatus(t, session.ID))
}

func TestRecompute_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	_, plan, session, we := env.chain(t, nil)
	require.NoError(t, env.repos.WorkoutExercises.UpdateStatus(context.Background(), we.ID, domain.ExerciseSkipped))
	engine := env.cascade()

	changed, err := engine.RecomputeSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.PlanCompleted, env.planStatus(t, plan.ID))

	changed, err = engine.RecomputeSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = engine.RecomputePlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, domain.PlanCompleted, env.planStatus(t, plan.ID))
}

func TestRecomputeSession_EmptySessionStaysOpen(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, domain.Profile{})
	plan := env.plan(t, user.ID, env.today(), domain.PlanActive)
	rest := env.session(t, plan.ID, env.today(), domain.SessionPlanned)

	changed, err := env.cascade().RecomputeSession(context.Background(), rest.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, domain.SessionPlanned, env.sessionStatus(t, rest.ID))
}

func TestRecomputePlan_RequiresSessionsAndActiveStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, domain.Profile{})
	engine := env.cascade()

	empty := env.plan(t, user.ID, env.today(), domain.PlanActive)
	changed, err := engine.RecomputePlan(context.Background(), empty.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, domain.PlanActive, env.planStatus(t, empty.ID))

	require.NoError(t, env.repos.Plans.UpdateStatus(context.Background(), empty.ID, domain.PlanPaused))
	env.session(t, empty.ID, env.today(), domain.SessionCompleted)
	changed, err = engine.RecomputePlan(context.Background(), empty.ID)
	require.NoError(t, err)
	assert.False(t, changed, "paused plans are never completed by the cascade")
}

func TestSetSessionStatus(t *testing.T) {
	t.Run("completing completes open exercises and the plan", func(t *testing.T) {
		env := newTestEnv(t)
		user, plan, session, we := env.chain(t, ptr(3))
		skipped := env.workoutExercise(t, session.ID, we.ExerciseID, ptr(2), domain.ExerciseSkipped)

		got, err := env.cascade().SetSessionStatus(context.Background(), session.ID, user.ID, domain.SessionCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionCompleted, got.Status)
		assert.Equal(t, domain.ExerciseCompleted, env.exerciseStatus(t, we.ID))
		assert.Equal(t, domain.ExerciseSkipped, env.exerciseStatus(t, skipped.ID), "terminal exercises are kept")
		assert.Equal(t, domain.PlanCompleted, env.planStatus(t, plan.ID))

		summary, err := NewAnalyzer(env.repos).AnalyzePlan(context.Background(), plan)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.CompletedSessions)
		for _, ex := range summary.Exercises {
			assert.Equal(t, 1, ex.SkippedCount, "only the exercise skipped by the user counts")
		}
	})

	t.Run("skipping skips open exercises", func(t *testing.T) {
		env := newTestEnv(t)
		user, plan, session, we := env.chain(t, ptr(3))

		_, err := env.cascade().SetSessionStatus(context.Background(), session.ID, user.ID, domain.SessionSkipped)
		require.NoError(t, err)
		assert.Equal(t, domain.ExerciseSkipped, env.exerciseStatus(t, we.ID))
		assert.Equal(t, domain.PlanCompleted, env.planStatus(t, plan.ID))
	})

	t.Run("terminal session is a conflict", func(t *testing.T) {
		env := newTestEnv(t)
		user, _, session, _ := env.chain(t, ptr(3))
		engine := env.cascade()

		_, err := engine.SetSessionStatus(context.Background(), session.ID, user.ID, domain.SessionCompleted)
		require.NoError(t, err)
		_, err = engine.SetSessionStatus(context.Background(), session.ID, user.ID, domain.SessionSkipped)
		assert.ErrorIs(t, err, ErrConflict)
		assert.ErrorIs(t, err, ErrSessionTerminal)
	})

	t.Run("planned is not a manual target", func(t *testing.T) {
		env := newTestEnv(t)
		user, _, session, _ := env.chain(t, ptr(3))
		_, err := env.cascade().SetSessionStatus(context.Background(), session.ID, user.ID, domain.SessionPlanned)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("foreign session is forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		_, _, session, _ := env.chain(t, ptr(3))
		stranger := env.user(t, domain.Profile{})
		_, err := env.cascade().SetSessionStatus(context.Background(), session.ID, stranger.ID, domain.SessionSkipped)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestSetExerciseStatus(t *testing.T) {
	env := newTestEnv(t)
	user, plan, session, we := env.chain(t, nil)
	engine := env.cascade()

	got, err := engine.SetExerciseStatus(context.Background(), we.ID, user.ID, domain.ExerciseCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseCompleted, got.Status)
	assert.Equal(t, domain.SessionCompleted, env.sessionStatus(t, session.ID))
	assert.Equal(t, domain.PlanCompleted, env.planStatus(t, plan.ID))

	_, err = engine.SetExerciseStatus(context.Background(), we.ID, user.ID, domain.ExerciseSkipped)
	assert.ErrorIs(t, err, ErrExerciseTerminal)
}

func TestSetExerciseStatus_SkipDoesNotPropagate(t *testing.T) {
	env := newTestEnv(t)
	user, _, session, we := env.chain(t, ptr(2))

	_, err := env.cascade().SetExerciseStatus(context.Background(), we.ID, user.ID, domain.ExerciseSkipped)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionPlanned, env.sessionStatus(t, session.ID))
}

func TestSetPlanStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, domain.Profile{})
	plan := env.plan(t, user.ID, env.today(), domain.PlanActive)
	engine := env.cascade()
	ctx := context.Background()

	got, err := engine.SetPlanStatus(ctx, plan.ID, user.ID, domain.PlanPaused)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPaused, got.Status)

	_, err = engine.SetPlanStatus(ctx, plan.ID, user.ID, domain.PlanPaused)
	assert.NoError(t, err, "same status is a no-op")

	// A second plan takes the Active slot while the first is paused.
	second := env.plan(t, user.ID, domain.AddDays(env.today(), 7), domain.PlanActive)
	_, err = engine.SetPlanStatus(ctx, plan.ID, user.ID, domain.PlanActive)
	assert.ErrorIs(t, err, ErrActivePlanExists)
	assert.Equal(t, domain.PlanPaused, env.planStatus(t, plan.ID))

	_, err = engine.SetPlanStatus(ctx, second.ID, user.ID, domain.PlanArchived)
	require.NoError(t, err)
	_, err = engine.SetPlanStatus(ctx, second.ID, user.ID, domain.PlanActive)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = engine.SetPlanStatus(ctx, plan.ID, user.ID, domain.PlanStatus("Deleted"))
	assert.ErrorIs(t, err, ErrValidation)

	stranger := env.user(t, domain.Profile{})
	_, err = engine.SetPlanStatus(ctx, plan.ID, stranger.ID, domain.PlanArchived)
	assert.ErrorIs(t, err, ErrForbidden)
}
