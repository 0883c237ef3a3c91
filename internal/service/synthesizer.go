package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/generation"
	"alcyxob/fitness-coach/internal/observability"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	planLengthDays = 7
	restDayName    = "Rest Day"
)

// Synthesizer builds a user's next weekly plan with the generation service.
type Synthesizer struct {
	repos     Repositories
	analyzer  *Analyzer
	generator generation.PlanGenerator
	tables    config.PlanningTables
	timeout   time.Duration
	now       Clock
	log       *slog.Logger
	locks     *userLocks
}

func NewSynthesizer(
	repos Repositories,
	analyzer *Analyzer,
	generator generation.PlanGenerator,
	tables config.PlanningTables,
	timeout time.Duration,
	now Clock,
	log *slog.Logger,
) *Synthesizer {
	return &Synthesizer{
		repos:     repos,
		analyzer:  analyzer,
		generator: generator,
		tables:    tables,
		timeout:   timeout,
		now:       now,
		log:       log,
		locks:     newUserLocks(),
	}
}

// GeneratePlan creates the next Active plan for the user. Nothing is written
// unless the generation call succeeds and its output has a usable shape.
func (s *Synthesizer) GeneratePlan(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	// Serializes requests of one user inside this process. The partial unique
	// index on Active plans covers concurrent requests across processes.
	unlock := s.locks.Lock(userID)
	defer unlock()

	log := observability.LoggerFromContext(ctx, s.log).With("user_id", userID.Hex())

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err, "user")
	}
	if err := s.ensureNoActivePlan(ctx, userID); err != nil {
		return nil, err
	}

	location := s.tables.ResolveLocation(user.Profile.TrainingLocation)
	equipment := s.tables.EquipmentFor(location)
	// An empty filter lists the whole catalog, so a location without
	// equipment tags has nothing to offer.
	if len(equipment) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoExercisesAvailable, location)
	}
	catalog, err := s.repos.Exercises.List(ctx, repository.ExerciseFilter{Equipment: equipment})
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoExercisesAvailable, location)
	}

	prior, err := s.repos.Plans.GetLatestTerminal(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	var summary *domain.PerformanceSummary
	if prior != nil {
		if summary, err = s.analyzer.AnalyzePlan(ctx, prior); err != nil {
			return nil, err
		}
	}

	prompt := BuildPrompt(PromptInput{
		Profile:   user.Profile,
		Location:  location,
		Frequency: s.tables.FrequencyFor(user.Profile.ActivityLevel),
		Catalog:   catalog,
		Summary:   summary,
	})

	draft, err := s.generate(ctx, log, prompt)
	if err != nil {
		log.Error("plan generation failed", "error", err)
		return nil, err
	}
	if len(draft.Sessions) == 0 {
		return nil, fmt.Errorf("%w: no day entries", ErrInvalidGeneratedStructure)
	}

	start := s.startDate(prior)
	plan := &domain.TrainingPlan{
		UserID:      userID,
		Name:        strings.TrimSpace(draft.PlanName),
		Description: strings.TrimSpace(draft.Description),
		StartDate:   start,
		EndDate:     domain.AddDays(start, planLengthDays-1),
		Status:      domain.PlanActive,
	}
	if plan.Name == "" {
		plan.Name = fallbackPlanName(user.Profile.Goal)
	}
	if plan.Description == "" {
		plan.Description = fmt.Sprintf("1-week plan starting %s", start.Format(time.DateOnly))
	}

	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureNoActivePlan(ctx, userID); err != nil {
			return err
		}
		if _, err := s.repos.Plans.Create(ctx, plan); err != nil {
			return mapRepoErr(err, "training plan")
		}

		sessions, exercises := s.mapDraft(log, plan, draft, catalog)
		if err := s.repos.Sessions.CreateMany(ctx, sessions); err != nil {
			return err
		}
		var all []*domain.WorkoutExercise
		for i, session := range sessions {
			for _, we := range exercises[i] {
				we.SessionID = session.ID
				all = append(all, we)
			}
		}
		return s.repos.WorkoutExercises.CreateMany(ctx, all)
	})
	if err != nil {
		return nil, err
	}

	log.Info("plan generated", "plan_id", plan.ID.Hex(), "start_date", start.Format(time.DateOnly))
	return plan, nil
}

func (s *Synthesizer) ensureNoActivePlan(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.repos.Plans.GetActiveByUser(ctx, userID)
	switch {
	case err == nil:
		return ErrActivePlanExists
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

// generate calls the model under the configured timeout. Every failure,
// including the timeout, is reported as ErrGenerationFailed with a fixed
// summary; the upstream error text is only logged.
func (s *Synthesizer) generate(ctx context.Context, log *slog.Logger, prompt string) (*generation.PlanDraft, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	draft, err := s.generator.GenerateStructuredPlan(genCtx, prompt)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: timed out after %s", ErrGenerationFailed, s.timeout)
	case errors.Is(err, generation.ErrEmptyResponse):
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	case errors.Is(err, generation.ErrMalformedResponse):
		return nil, fmt.Errorf("%w: response was not valid plan JSON", ErrGenerationFailed)
	case err != nil:
		log.Error("generation service call failed", "error", err)
		return nil, fmt.Errorf("%w: generation service error", ErrGenerationFailed)
	case draft == nil:
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return draft, nil
}

// startDate is the day after the previous plan ended, or tomorrow when the
// user has no previous plan. A stale previous plan is not clamped to today.
func (s *Synthesizer) startDate(prior *domain.TrainingPlan) time.Time {
	if prior == nil {
		return domain.AddDays(domain.DateOnly(s.now()), 1)
	}
	return domain.AddDays(prior.EndDate, 1)
}

// mapDraft turns the draft into one session per day of the plan. exercises[i]
// belongs to sessions[i]. Unknown or repeated day labels and exercise names
// missing from the catalog are logged and skipped; days the draft leaves out
// become rest days.
func (s *Synthesizer) mapDraft(
	log *slog.Logger,
	plan *domain.TrainingPlan,
	draft *generation.PlanDraft,
	catalog []domain.Exercise,
) ([]*domain.WorkoutSession, [][]*domain.WorkoutExercise) {
	dayIndex := make(map[string]int, planLengthDays)
	for i := 0; i < planLengthDays; i++ {
		date := domain.AddDays(plan.StartDate, i)
		dayIndex[strings.ToLower(date.Weekday().String())] = i
	}

	byName := make(map[string]primitive.ObjectID, len(catalog))
	for _, ex := range catalog {
		key := strings.ToLower(strings.TrimSpace(ex.Name))
		if _, dup := byName[key]; !dup {
			byName[key] = ex.ID
		}
	}

	sessions := make([]*domain.WorkoutSession, planLengthDays)
	exercises := make([][]*domain.WorkoutExercise, planLengthDays)

	for _, day := range draft.Sessions {
		i, ok := dayIndex[strings.ToLower(strings.TrimSpace(day.Day))]
		if !ok {
			log.Warn("skipping session for unknown day", "day", day.Day)
			continue
		}
		if sessions[i] != nil {
			log.Warn("skipping repeated session for day", "day", day.Day)
			continue
		}

		name := strings.TrimSpace(day.Name)
		if name == "" {
			name = fmt.Sprintf("%s Workout", strings.TrimSpace(day.Day))
		}
		sessions[i] = &domain.WorkoutSession{
			PlanID: plan.ID,
			Name:   name,
			Date:   domain.AddDays(plan.StartDate, i),
			Status: domain.SessionPlanned,
			Notes:  day.Notes,
		}

		for order, ex := range day.Exercises {
			exerciseID, ok := byName[strings.ToLower(strings.TrimSpace(ex.ExerciseName))]
			if !ok {
				log.Warn("skipping exercise missing from catalog", "exercise", ex.ExerciseName, "day", day.Day)
				continue
			}
			exercises[i] = append(exercises[i], mapExercise(exerciseID, order, ex))
		}
	}

	for i := range sessions {
		if sessions[i] == nil {
			sessions[i] = &domain.WorkoutSession{
				PlanID: plan.ID,
				Name:   restDayName,
				Date:   domain.AddDays(plan.StartDate, i),
				Status: domain.SessionPlanned,
			}
		}
	}
	return sessions, exercises
}

// mapExercise copies planned values only when the model sent real numbers.
func mapExercise(exerciseID primitive.ObjectID, order int, ex generation.ExerciseDraft) *domain.WorkoutExercise {
	we := &domain.WorkoutExercise{
		ExerciseID: exerciseID,
		Order:      order,
		Status:     domain.ExercisePlanned,
	}
	if v, ok := ex.Sets.Int(); ok {
		we.SetsPlanned = &v
	}
	if v, ok := ex.Reps.Int(); ok {
		we.RepsPlanned = &v
	}
	if v, ok := ex.Weight.Float(); ok && v >= 0 {
		we.WeightPlanned = &v
	}
	if v, ok := ex.Duration.Int(); ok {
		we.DurationPlanned = &v
	}
	if v, ok := ex.Rest.Int(); ok {
		we.RestPeriod = &v
	}
	if notes, ok := ex.Notes.Str(); ok {
		we.Notes = notes
	}
	return we
}

func fallbackPlanName(goal string) string {
	if goal == "" {
		return "Weekly Training Plan"
	}
	return goal + " Plan"
}
