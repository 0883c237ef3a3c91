package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/observability"
	"alcyxob/fitness-coach/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSweeper_CompletesPlanWhenAllSessionsEnd(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, domain.Profile{})
	ex := env.exercise(t, "push-up", "body weight")
	// Ended three days ago.
	plan := env.plan(t, user.ID, domain.AddDays(env.today(), -9), domain.PlanActive)
	done1 := env.session(t, plan.ID, plan.StartDate, domain.SessionCompleted)
	done2 := env.session(t, plan.ID, domain.AddDays(plan.StartDate, 2), domain.SessionCompleted)
	open := env.session(t, plan.ID, domain.AddDays(plan.StartDate, 4), domain.SessionPlanned)
	started := env.workoutExercise(t, open.ID, ex.ID, ptr(3), domain.ExerciseStarted)
	planned := env.workoutExercise(t, open.ID, ex.ID, ptr(3), domain.ExercisePlanned)
	finished := env.workoutExercise(t, open.ID, ex.ID, ptr(3), domain.ExerciseCompleted)

	report := NewSweeper(env.repos, env.clock, observability.Discard()).Run(context.Background())

	assert.Equal(t, SweepReport{Processed: 1, Completed: 1}, report)
	assert.Equal(t, domain.PlanCompleted, env.planStatus(t, plan.ID))
	assert.Equal(t, domain.SessionSkipped, env.sessionStatus(t, open.ID))
	assert.Equal(t, domain.SessionCompleted, env.sessionStatus(t, done1.ID))
	assert.Equal(t, domain.SessionCompleted, env.sessionStatus(t, done2.ID))
	assert.Equal(t, domain.ExerciseSkipped, env.exerciseStatus(t, started.ID))
	assert.Equal(t, domain.ExerciseSkipped, env.exerciseStatus(t, planned.ID))
	assert.Equal(t, domain.ExerciseCompleted, env.exerciseStatus(t, finished.ID))
}

func TestSweeper_ArchivesWhenSessionsRemainOpen(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, domain.Profile{})
	plan := env.plan(t, user.ID, domain.AddDays(env.today(), -8), domain.PlanActive)
	env.session(t, plan.ID, plan.StartDate, domain.SessionCompleted)
	// Not in the past, so the sweeper leaves it alone.
	future := env.session(t, plan.ID, env.today(), domain.SessionPlanned)

	report := NewSweeper(env.repos, env.clock, observability.Discard()).Run(context.Background())

	assert.Equal(t, SweepReport{Processed: 1, Archived: 1}, report)
	assert.Equal(t, domain.PlanArchived, env.planStatus(t, plan.ID))
	assert.Equal(t, domain.SessionPlanned, env.sessionStatus(t, future.ID))
}

func TestSweeper_ArchivesPlanWithoutSessions(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, domain.Profile{})
	plan := env.plan(t, user.ID, domain.AddDays(env.today(), -10), domain.PlanActive)

	report := NewSweeper(env.repos, env.clock, observability.Discard()).Run(context.Background())
	assert.Equal(t, 1, report.Archived)
	assert.Equal(t, domain.PlanArchived, env.planStatus(t, plan.ID))
}

func TestSweeper_IgnoresCurrentAndInactivePlans(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, domain.Profile{})
	other := env.user(t, domain.Profile{})
	// Started six days ago, so it ends today.
	current := env.plan(t, user.ID, domain.AddDays(env.today(), -6), domain.PlanActive)
	paused := env.plan(t, other.ID, domain.AddDays(env.today(), -20), domain.PlanPaused)

	report := NewSweeper(env.repos, env.clock, observability.Discard()).Run(context.Background())
	assert.Zero(t, report.Processed)
	assert.Equal(t, domain.PlanActive, env.planStatus(t, current.ID))
	assert.Equal(t, domain.PlanPaused, env.planStatus(t, paused.ID))
}

// brokenPlanSessions fails session listing for one plan only.
type brokenPlanSessions struct {
	repository.WorkoutSessionRepository
	broken primitive.ObjectID
}

func (b brokenPlanSessions) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	if planID == b.broken {
		return nil, errors.New("cursor died")
	}
	return b.WorkoutSessionRepository.ListByPlan(ctx, planID)
}

func TestSweeper_IsolatesFailures(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, domain.Profile{})
	bob := env.user(t, domain.Profile{})
	bad := env.plan(t, alice.ID, domain.AddDays(env.today(), -10), domain.PlanActive)
	good := env.plan(t, bob.ID, domain.AddDays(env.today(), -10), domain.PlanActive)
	env.session(t, good.ID, good.StartDate, domain.SessionPlanned)
	env.repos.Sessions = brokenPlanSessions{WorkoutSessionRepository: env.repos.Sessions, broken: bad.ID}

	report := NewSweeper(env.repos, env.clock, observability.Discard()).Run(context.Background())

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, domain.PlanActive, env.planStatus(t, bad.ID))
	assert.Equal(t, domain.PlanCompleted, env.planStatus(t, good.ID))
}

func TestSweeper_SecondRunIsNoop(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, domain.Profile{})
	plan := env.plan(t, user.ID, domain.AddDays(env.today(), -10), domain.PlanActive)
	env.session(t, plan.ID, plan.StartDate, domain.SessionPlanned)
	sweeper := NewSweeper(env.repos, env.clock, observability.Discard())

	require.Equal(t, 1, sweeper.Run(context.Background()).Completed)
	assert.Equal(t, SweepReport{}, sweeper.Run(context.Background()))
}

// failingPlanStatus rejects the final plan status write for one plan.
type failingPlanStatus struct {
	repository.TrainingPlanRepository
	broken primitive.ObjectID
}

func (f failingPlanStatus) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.PlanStatus) error {
	if id == f.broken {
		return errors.New("write concern timeout")
	}
	return f.TrainingPlanRepository.UpdateStatus(ctx, id, status)
}

func TestSweeper_RollsBackSkippedSessionsWhenPlanUpdateFails(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, domain.Profile{})
	ex := env.exercise(t, "push-up", "body weight")
	plan := env.plan(t, user.ID, domain.AddDays(env.today(), -9), domain.PlanActive)
	open := env.session(t, plan.ID, plan.StartDate, domain.SessionPlanned)
	we := env.workoutExercise(t, open.ID, ex.ID, ptr(3), domain.ExerciseStarted)
	env.repos.Plans = failingPlanStatus{TrainingPlanRepository: env.repos.Plans, broken: plan.ID}

	report := NewSweeper(env.repos, env.clock, observability.Discard()).Run(context.Background())

	assert.Equal(t, SweepReport{Processed: 1, Failed: 1}, report)
	assert.Equal(t, domain.PlanActive, env.planStatus(t, plan.ID))
	assert.Equal(t, domain.SessionPlanned, env.sessionStatus(t, open.ID), "session skip is rolled back")
	assert.Equal(t, domain.ExerciseStarted, env.exerciseStatus(t, we.ID), "exercise skip is rolled back")
}

// pausedAfterListing pauses every listed plan before the sweeper reconciles
// it, as a user request landing in between would.
type pausedAfterListing struct {
	repository.TrainingPlanRepository
}

func (p pausedAfterListing) ListActiveEndingBefore(ctx context.Context, date time.Time) ([]domain.TrainingPlan, error) {
	plans, err := p.TrainingPlanRepository.ListActiveEndingBefore(ctx, date)
	if err != nil {
		return nil, err
	}
	for _, plan := range plans {
		if err := p.TrainingPlanRepository.UpdateStatus(ctx, plan.ID, domain.PlanPaused); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

func TestSweeper_LeavesPlanPausedAfterListing(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, domain.Profile{})
	plan := env.plan(t, user.ID, domain.AddDays(env.today(), -9), domain.PlanActive)
	open := env.session(t, plan.ID, plan.StartDate, domain.SessionPlanned)
	env.repos.Plans = pausedAfterListing{TrainingPlanRepository: env.repos.Plans}

	report := NewSweeper(env.repos, env.clock, observability.Discard()).Run(context.Background())

	assert.Equal(t, SweepReport{Processed: 1, Skipped: 1}, report)
	assert.Equal(t, domain.PlanPaused, env.planStatus(t, plan.ID))
	assert.Equal(t, domain.SessionPlanned, env.sessionStatus(t, open.ID))
}
