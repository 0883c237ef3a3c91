package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const unknownExerciseName = "Unknown Exercise"

// Analyzer aggregates logged activity and daily conditions. It never writes.
type Analyzer struct {
	repos Repositories
}

func NewAnalyzer(repos Repositories) *Analyzer {
	return &Analyzer{repos: repos}
}

// AnalyzePlan summarizes one plan together with the conditions logged during its span.
func (a *Analyzer) AnalyzePlan(ctx context.Context, plan *domain.TrainingPlan) (*domain.PerformanceSummary, error) {
	sessions, err := a.repos.Sessions.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	conditions, err := a.repos.Conditions.ListByUser(ctx, plan.UserID, plan.StartDate, plan.EndDate)
	if err != nil {
		return nil, err
	}
	return a.summarize(ctx, sessions, conditions)
}

// AnalyzeRange summarizes every session of the user's plans dated in [from, to].
func (a *Analyzer) AnalyzeRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (*domain.PerformanceSummary, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	plans, err := a.repos.Plans.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	planIDs := make([]primitive.ObjectID, 0, len(plans))
	for _, p := range plans {
		planIDs = append(planIDs, p.ID)
	}
	sessions, err := a.repos.Sessions.ListByPlansInRange(ctx, planIDs, from, to)
	if err != nil {
		return nil, err
	}
	conditions, err := a.repos.Conditions.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return a.summarize(ctx, sessions, conditions)
}

func (a *Analyzer) summarize(ctx context.Context, sessions []domain.WorkoutSession, conditions []domain.DailyCondition) (*domain.PerformanceSummary, error) {
	sessionIDs := make([]primitive.ObjectID, 0, len(sessions))
	for _, s := range sessions {
		sessionIDs = append(sessionIDs, s.ID)
	}
	wes, err := a.repos.WorkoutExercises.ListBySessions(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	bySession := make(map[primitive.ObjectID][]domain.WorkoutExercise, len(sessions))
	weIDs := make([]primitive.ObjectID, 0, len(wes))
	exerciseIDs := make([]primitive.ObjectID, 0, len(wes))
	seenExercise := make(map[primitive.ObjectID]bool)
	for _, we := range wes {
		bySession[we.SessionID] = append(bySession[we.SessionID], we)
		weIDs = append(weIDs, we.ID)
		if !seenExercise[we.ExerciseID] {
			seenExercise[we.ExerciseID] = true
			exerciseIDs = append(exerciseIDs, we.ExerciseID)
		}
	}

	results, err := a.repos.Results.ListByWorkoutExercises(ctx, weIDs)
	if err != nil {
		return nil, err
	}
	resultsByWE := make(map[primitive.ObjectID][]domain.ExerciseResult, len(weIDs))
	for _, r := range results {
		resultsByWE[r.WorkoutExerciseID] = append(resultsByWE[r.WorkoutExerciseID], r)
	}

	catalog, err := a.repos.Exercises.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(catalog))
	for _, ex := range catalog {
		names[ex.ID] = ex.Name
	}

	return buildSummary(sessions, bySession, resultsByWE, names, conditions), nil
}

// buildSummary is the pure aggregation step. Sessions are expected in date order
// and exercises in display order, which fixes the first-seen order of names.
func buildSummary(
	sessions []domain.WorkoutSession,
	exercisesBySession map[primitive.ObjectID][]domain.WorkoutExercise,
	resultsByWE map[primitive.ObjectID][]domain.ExerciseResult,
	names map[primitive.ObjectID]string,
	conditions []domain.DailyCondition,
) *domain.PerformanceSummary {
	summary := &domain.PerformanceSummary{
		TotalSessions: len(sessions),
		Exercises:     []domain.ExercisePerformance{},
	}
	index := make(map[string]int)

	for _, session := range sessions {
		switch session.Status {
		case domain.SessionCompleted:
			summary.CompletedSessions++
		case domain.SessionSkipped:
			summary.SkippedSessions++
		}
		if session.Notes != "" {
			summary.SessionNotes = append(summary.SessionNotes, fmt.Sprintf("Session %s: %s", session.Name, session.Notes))
		}

		for _, we := range exercisesBySession[session.ID] {
			name, ok := names[we.ExerciseID]
			if !ok {
				name = unknownExerciseName
			}
			i, ok := index[name]
			if !ok {
				i = len(summary.Exercises)
				index[name] = i
				summary.Exercises = append(summary.Exercises, domain.ExercisePerformance{Name: name})
			}
			perf := &summary.Exercises[i]

			perf.Instances++
			perf.PlannedSets += intOrZero(we.SetsPlanned)
			perf.PlannedReps += intOrZero(we.RepsPlanned)
			perf.PlannedWeight += floatOrZero(we.WeightPlanned)
			perf.PlannedDuration += intOrZero(we.DurationPlanned)

			switch we.Status {
			case domain.ExerciseSkipped:
				perf.SkippedCount++
			case domain.ExerciseCompleted:
				logged := resultsByWE[we.ID]
				if len(logged) > 0 {
					perf.ActualInstances++
				}
				perf.ActualSets += len(logged)
				for _, r := range logged {
					perf.ActualReps += intOrZero(r.RepsCompleted)
					perf.ActualWeight += floatOrZero(r.WeightUsed)
					perf.ActualDuration += intOrZero(r.DurationCompleted)
					if r.Notes != "" {
						perf.Notes = append(perf.Notes, fmt.Sprintf("- %s (Set %d): %s", name, r.SetNumber, r.Notes))
					}
				}
			}
			if we.Notes != "" {
				perf.Notes = append(perf.Notes, fmt.Sprintf("- %s (Planned Note): %s", name, we.Notes))
			}
		}
	}

	if summary.TotalSessions > 0 {
		summary.CompletionRate = float64(summary.CompletedSessions) / float64(summary.TotalSessions) * 100
	}
	summary.Condition = averageConditions(conditions)
	return summary
}

func averageConditions(conditions []domain.DailyCondition) domain.ConditionAverages {
	avg := domain.ConditionAverages{Entries: len(conditions)}
	if len(conditions) == 0 {
		return avg
	}

	var sleepHours, sleepQuality, energy, stress, soreness float64
	for _, c := range conditions {
		sleepHours += floatOrZero(c.SleepHours)
		sleepQuality += float64(intOrZero(c.SleepQuality))
		energy += float64(intOrZero(c.EnergyLevel))
		stress += float64(intOrZero(c.StressLevel))
		soreness += float64(intOrZero(c.MuscleSoreness))
		if c.Notes != "" {
			avg.Notes = append(avg.Notes, fmt.Sprintf("- %s: %s", c.Date.Format(time.DateOnly), c.Notes))
		}
	}
	n := float64(len(conditions))
	avg.SleepHours = ptr(sleepHours / n)
	avg.SleepQuality = ptr(sleepQuality / n)
	avg.EnergyLevel = ptr(energy / n)
	avg.StressLevel = ptr(stress / n)
	avg.MuscleSoreness = ptr(soreness / n)
	return avg
}

// FormatPerformance renders the performance part of a summary for the prompt.
func FormatPerformance(s *domain.PerformanceSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall Session Completion Rate: %.1f%% (Completed sessions)\n", s.CompletionRate)
	fmt.Fprintf(&b, "Total Sessions: %d, Completed: %d, Skipped: %d\n", s.TotalSessions, s.CompletedSessions, s.SkippedSessions)
	b.WriteString("Exercise Details:\n")
	if len(s.Exercises) == 0 {
		b.WriteString("No exercise data logged.\n")
	}
	for _, e := range s.Exercises {
		fmt.Fprintf(&b, "- %s: Planned: %d sets, %d reps, %skg, %ds | Actual: %d sets logged, %d reps total, %skg total, %ds total",
			e.Name, e.PlannedSets, e.PlannedReps, formatNumber(e.PlannedWeight), e.PlannedDuration,
			e.ActualSets, e.ActualReps, formatNumber(e.ActualWeight), e.ActualDuration)
		if e.SkippedCount > 0 {
			fmt.Fprintf(&b, ", Skipped: %d times", e.SkippedCount)
		}
		if len(e.Notes) > 0 {
			fmt.Fprintf(&b, "\n    Notes: %s", strings.Join(e.Notes, "; "))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Overall Session Notes: %s", joinOrNone(s.SessionNotes))
	return b.String()
}

// FormatCondition renders the condition averages for the prompt. Missing
// averages print as N/A, never as zero.
func FormatCondition(c domain.ConditionAverages) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Average Sleep Hours: %s\n", formatAverage(c.SleepHours))
	fmt.Fprintf(&b, "Average Sleep Quality (1-5): %s\n", formatAverage(c.SleepQuality))
	fmt.Fprintf(&b, "Average Energy Level (1-5): %s\n", formatAverage(c.EnergyLevel))
	fmt.Fprintf(&b, "Average Stress Level (1-5): %s\n", formatAverage(c.StressLevel))
	fmt.Fprintf(&b, "Average Muscle Soreness (1-5): %s\n", formatAverage(c.MuscleSoreness))
	fmt.Fprintf(&b, "Condition Notes: %s", joinOrNone(c.Notes))
	return b.String()
}

func formatAverage(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *v)
}

func formatNumber(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, "; ")
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func ptr[T any](v T) *T { return &v }
