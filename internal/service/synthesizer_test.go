package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/generation"
	"alcyxob/fitness-coach/internal/observability"
	"alcyxob/fitness-coach/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	block   bool // wait for the context to end
	calls   int
	prompts []string
}

func (g *fakeGenerator) GenerateStructuredPlan(ctx context.Context, prompt string) (*generation.PlanDraft, error) {
	g.mu.Lock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	return generation.ParseDraft(g.text)
}

func (g *fakeGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

const twoDayDraft = "```json\n" + `{
  "planName": "Strength Base",
  "description": "Two sessions",
  "sessions": [
    {"day": "Monday", "name": "Lower", "exercises": [
      {"exerciseName": "Goblet Squat", "sets": 3, "reps": 10, "weight": 12.5, "rest": 90, "notes": "slow"},
      {"exerciseName": "moon walk", "sets": 3, "reps": 10},
      {"exerciseName": "glute bridge", "sets": "3-4", "reps": "to failure", "weight": "bodyweight", "duration": null}
    ], "notes": "warm up"},
    {"day": "Funday", "name": "Party", "exercises": []},
    {"day": "Thursday", "exercises": [{"exerciseName": "push-up", "sets": 2, "reps": 12}]},
    {"day": "thursday", "name": "Again", "exercises": [{"exerciseName": "push-up", "sets": 5}]}
  ]
}` + "\n```"

func newTestSynthesizer(t *testing.T, env *testEnv, gen generation.PlanGenerator) *Synthesizer {
	t.Helper()
	tables, err := config.DefaultPlanningTables()
	require.NoError(t, err)
	return NewSynthesizer(env.repos, NewAnalyzer(env.repos), gen, tables, time.Second, env.clock, observability.Discard())
}

func seedHomeCatalog(t *testing.T, env *testEnv) {
	t.Helper()
	env.exercise(t, "goblet squat", "dumbbell")
	env.exercise(t, "glute bridge", "body weight")
	env.exercise(t, "push-up", "body weight")
	env.exercise(t, "barbell bench press", "barbell") // gym only
}

func countPlans(t *testing.T, env *testEnv, userID primitive.ObjectID) int {
	t.Helper()
	plans, err := env.repos.Plans.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	return len(plans)
}

func TestGeneratePlan_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	seedHomeCatalog(t, env)
	user := env.user(t, domain.Profile{Goal: "Strength", TrainingLocation: "Home"})
	gen := &fakeGenerator{text: twoDayDraft}

	plan, err := newTestSynthesizer(t, env, gen).GeneratePlan(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, "Strength Base", plan.Name)
	assert.Equal(t, domain.PlanActive, plan.Status)
	assert.Equal(t, domain.AddDays(env.today(), 1), plan.StartDate, "first plan starts tomorrow")
	assert.Equal(t, domain.AddDays(plan.StartDate, 6), plan.EndDate)

	prompt := gen.lastPrompt()
	assert.Contains(t, prompt, "- goblet squat (")
	assert.NotContains(t, prompt, "barbell bench press", "catalog is filtered by location equipment")

	detail, err := NewPlanService(env.repos).GetPlan(context.Background(), plan.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, detail.Sessions, 7)

	byDay := map[time.Weekday]SessionDetail{}
	for _, s := range detail.Sessions {
		assert.False(t, s.Date.Before(plan.StartDate))
		assert.False(t, s.Date.After(plan.EndDate))
		assert.Equal(t, domain.SessionPlanned, s.Status)
		_, dup := byDay[s.Date.Weekday()]
		assert.False(t, dup, "one session per calendar day")
		byDay[s.Date.Weekday()] = s
	}

	monday := byDay[time.Monday]
	assert.Equal(t, "Lower", monday.Name)
	assert.Equal(t, "warm up", monday.Notes)
	require.Len(t, monday.Exercises, 2, "unknown exercise name is skipped")

	squat := monday.Exercises[0]
	assert.Equal(t, "goblet squat", squat.Exercise.Name)
	assert.Equal(t, 0, squat.Order)
	assert.Equal(t, ptr(3), squat.SetsPlanned)
	assert.Equal(t, ptr(10), squat.RepsPlanned)
	assert.Equal(t, ptr(12.5), squat.WeightPlanned)
	assert.Equal(t, ptr(90), squat.RestPeriod)
	assert.Equal(t, "slow", squat.Notes)
	assert.Equal(t, domain.ExercisePlanned, squat.Status)

	bridge := monday.Exercises[1]
	assert.Equal(t, 2, bridge.Order, "order is the position in the generated list")
	assert.Nil(t, bridge.SetsPlanned, "symbolic values are not copied")
	assert.Nil(t, bridge.RepsPlanned)
	assert.Nil(t, bridge.WeightPlanned)

	thursday := byDay[time.Thursday]
	assert.Equal(t, "Thursday Workout", thursday.Name)
	require.Len(t, thursday.Exercises, 1, "repeated day is ignored")
	assert.Equal(t, ptr(2), thursday.Exercises[0].SetsPlanned)

	for _, day := range []time.Weekday{time.Tuesday, time.Wednesday, time.Friday, time.Saturday, time.Sunday} {
		assert.Equal(t, restDayName, byDay[day].Name)
		assert.Empty(t, byDay[day].Exercises)
	}
}

func TestGeneratePlan_StaticGeneratorFillsTheWeek(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"push-up", "dumbbell goblet squat", "dumbbell bent over row", "bodyweight lunge",
		"dumbbell shoulder press", "front plank", "dumbbell romanian deadlift", "resistance band pull apart", "glute bridge"} {
		env.exercise(t, name, "body weight")
	}
	user := env.user(t, domain.Profile{})

	plan, err := newTestSynthesizer(t, env, generation.NewStaticGenerator()).GeneratePlan(context.Background(), user.ID)
	require.NoError(t, err)

	detail, err := NewPlanService(env.repos).GetPlan(context.Background(), plan.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, detail.Sessions, 7)
	total := 0
	for _, s := range detail.Sessions {
		total += len(s.Exercises)
	}
	assert.Equal(t, 9, total)
}

func TestGeneratePlan_ActivePlanExists(t *testing.T) {
	env := newTestEnv(t)
	seedHomeCatalog(t, env)
	user := env.user(t, domain.Profile{})
	env.plan(t, user.ID, env.today(), domain.PlanActive)
	gen := &fakeGenerator{text: twoDayDraft}

	_, err := newTestSynthesizer(t, env, gen).GeneratePlan(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrActivePlanExists)
	assert.Zero(t, gen.calls)
	assert.Equal(t, 1, countPlans(t, env, user.ID))
}

func TestGeneratePlan_NoExercisesAvailable(t *testing.T) {
	env := newTestEnv(t)
	env.exercise(t, "barbell bench press", "barbell")
	user := env.user(t, domain.Profile{TrainingLocation: "outdoor"})
	gen := &fakeGenerator{text: twoDayDraft}

	_, err := newTestSynthesizer(t, env, gen).GeneratePlan(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrNoExercisesAvailable)
	assert.Zero(t, gen.calls)
	assert.Zero(t, countPlans(t, env, user.ID))
}

func TestGeneratePlan_GenerationFailures(t *testing.T) {
	cases := map[string]*fakeGenerator{
		"service error": {err: errors.New("503 from upstream")},
		"empty":         {text: "   "},
		"malformed":     {text: "Sure! Here is your plan: {"},
		"timeout":       {block: true},
	}
	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			seedHomeCatalog(t, env)
			user := env.user(t, domain.Profile{})
			synth := newTestSynthesizer(t, env, gen)
			synth.timeout = 20 * time.Millisecond

			_, err := synth.GeneratePlan(context.Background(), user.ID)
			assert.ErrorIs(t, err, ErrGenerationFailed)
			assert.NotContains(t, err.Error(), "503 from upstream", "upstream detail is only logged")
			assert.Zero(t, countPlans(t, env, user.ID))
		})
	}
}

func TestGeneratePlan_NoSessions(t *testing.T) {
	env := newTestEnv(t)
	seedHomeCatalog(t, env)
	user := env.user(t, domain.Profile{})
	gen := &fakeGenerator{text: `{"planName": "Empty", "sessions": []}`}

	_, err := newTestSynthesizer(t, env, gen).GeneratePlan(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrInvalidGeneratedStructure)
	assert.Zero(t, countPlans(t, env, user.ID))
}

func TestGeneratePlan_StartsAfterPreviousPlan(t *testing.T) {
	env := newTestEnv(t)
	seedHomeCatalog(t, env)
	user := env.user(t, domain.Profile{})
	prior := env.plan(t, user.ID, domain.AddDays(env.today(), -4), domain.PlanCompleted)
	env.session(t, prior.ID, prior.StartDate, domain.SessionCompleted)
	gen := &fakeGenerator{text: twoDayDraft}

	plan, err := newTestSynthesizer(t, env, gen).GeneratePlan(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AddDays(prior.EndDate, 1), plan.StartDate)
	assert.Contains(t, gen.lastPrompt(), "--- Performance Summary ---")
	assert.Contains(t, gen.lastPrompt(), "Total Sessions: 1, Completed: 1")
}

func TestGeneratePlan_StaleHistoryContinuesFromPriorEnd(t *testing.T) {
	env := newTestEnv(t)
	seedHomeCatalog(t, env)
	user := env.user(t, domain.Profile{})
	prior := env.plan(t, user.ID, domain.AddDays(env.today(), -30), domain.PlanArchived)

	plan, err := newTestSynthesizer(t, env, &fakeGenerator{text: twoDayDraft}).GeneratePlan(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AddDays(prior.EndDate, 1), plan.StartDate)
	assert.True(t, plan.StartDate.Before(env.today()))
}

func TestGeneratePlan_LocationWithoutEquipment(t *testing.T) {
	env := newTestEnv(t)
	env.exercise(t, "barbell squat", "barbell")
	user := env.user(t, domain.Profile{TrainingLocation: "outdoor"})
	gen := &fakeGenerator{text: twoDayDraft}
	tables := config.PlanningTables{
		DefaultLocation: "home",
		Locations:       map[string][]string{"home": {"body weight"}, "outdoor": {}},
	}
	synth := NewSynthesizer(env.repos, NewAnalyzer(env.repos), gen, tables, time.Second, env.clock, observability.Discard())

	_, err := synth.GeneratePlan(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrNoExercisesAvailable)
	assert.Zero(t, gen.calls)
	assert.Zero(t, countPlans(t, env, user.ID))
}

func TestGeneratePlan_ConcurrentRequestsCreateOnePlan(t *testing.T) {
	env := newTestEnv(t)
	seedHomeCatalog(t, env)
	user := env.user(t, domain.Profile{})
	synth := newTestSynthesizer(t, env, &fakeGenerator{text: twoDayDraft})

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = synth.GeneratePlan(context.Background(), user.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrActivePlanExists)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, countPlans(t, env, user.ID))
}

func TestGeneratePlan_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := newTestSynthesizer(t, env, &fakeGenerator{text: twoDayDraft}).GeneratePlan(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

// recordingSessions remembers every session it was asked to insert.
type recordingSessions struct {
	repository.WorkoutSessionRepository
	created *[]primitive.ObjectID
}

func (r recordingSessions) CreateMany(ctx context.Context, sessions []*domain.WorkoutSession) error {
	if err := r.WorkoutSessionRepository.CreateMany(ctx, sessions); err != nil {
		return err
	}
	for _, s := range sessions {
		*r.created = append(*r.created, s.ID)
	}
	return nil
}

// failingExerciseInsert fails the last write of the plan commit.
type failingExerciseInsert struct {
	repository.WorkoutExerciseRepository
}

func (failingExerciseInsert) CreateMany(context.Context, []*domain.WorkoutExercise) error {
	return errors.New("connection reset by peer")
}

func TestGeneratePlan_CommitFailureLeavesNothing(t *testing.T) {
	env := newTestEnv(t)
	seedHomeCatalog(t, env)
	user := env.user(t, domain.Profile{})
	var created []primitive.ObjectID
	env.repos.Sessions = recordingSessions{WorkoutSessionRepository: env.repos.Sessions, created: &created}
	env.repos.WorkoutExercises = failingExerciseInsert{WorkoutExerciseRepository: env.repos.WorkoutExercises}

	_, err := newTestSynthesizer(t, env, &fakeGenerator{text: twoDayDraft}).GeneratePlan(context.Background(), user.ID)
	require.Error(t, err)

	assert.Zero(t, countPlans(t, env, user.ID), "plan insert is rolled back")
	require.Len(t, created, planLengthDays, "sessions were written before the failure")
	for _, id := range created {
		_, err := env.repos.Sessions.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, repository.ErrNotFound, "session insert is rolled back")
	}
}
