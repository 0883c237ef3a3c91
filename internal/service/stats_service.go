package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultProgressWindow = 30 // days

// Progress is the user's training history over a date range.
type Progress struct {
	From          time.Time                  `json:"from"`
	To            time.Time                  `json:"to"`
	Summary       *domain.PerformanceSummary `json:"summary"`
	PlansByStatus map[domain.PlanStatus]int  `json:"plansByStatus"`
}

type StatsService struct {
	repos    Repositories
	analyzer *Analyzer
	now      Clock
}

func NewStatsService(repos Repositories, analyzer *Analyzer, now Clock) *StatsService {
	return &StatsService{repos: repos, analyzer: analyzer, now: now}
}

// Progress analyzes [from, to]. A zero to means today and a zero from means
// thirty days before to.
func (s *StatsService) Progress(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (*Progress, error) {
	if to.IsZero() {
		to = s.now()
	}
	to = domain.DateOnly(to)
	if from.IsZero() {
		from = domain.AddDays(to, -defaultProgressWindow)
	}
	from = domain.DateOnly(from)
	if to.Before(from) {
		return nil, invalid("endDate", "must not be before startDate")
	}

	summary, err := s.analyzer.AnalyzeRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	counts, err := s.repos.Plans.CountByStatus(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return &Progress{From: from, To: to, Summary: summary, PlansByStatus: counts}, nil
}

// GroupBy is the bucket size of a stats series.
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
	GroupByYear  GroupBy = "year"
)

// ParseGroupBy accepts an empty value as fallback.
func ParseGroupBy(value string, fallback GroupBy) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(value))); g {
	case "":
		return fallback, nil
	case GroupByDay, GroupByWeek, GroupByMonth, GroupByYear:
		return g, nil
	default:
		return "", invalid("groupBy", "must be one of day, week, month, year")
	}
}

// periodStart truncates t to the start of its bucket. Weeks start on Monday.
func periodStart(t time.Time, g GroupBy) time.Time {
	d := domain.DateOnly(t)
	switch g {
	case GroupByWeek:
		offset := (int(d.Weekday()) + 6) % 7
		return domain.AddDays(d, -offset)
	case GroupByMonth:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case GroupByYear:
		return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return d
	}
}

// StatsQuery bounds a stats series. Zero dates fall back like Progress does.
type StatsQuery struct {
	From    time.Time
	To      time.Time
	GroupBy GroupBy
}

func (s *StatsService) resolveRange(q StatsQuery) (time.Time, time.Time, error) {
	to := q.To
	if to.IsZero() {
		to = s.now()
	}
	to = domain.DateOnly(to)
	from := q.From
	if from.IsZero() {
		from = domain.AddDays(to, -defaultProgressWindow)
	}
	from = domain.DateOnly(from)
	if to.Before(from) {
		return time.Time{}, time.Time{}, invalid("endDate", "must not be before startDate")
	}
	return from, to, nil
}

// series keeps buckets in first-seen order, which is chronological when the
// input is sorted by date.
type series[T any] struct {
	order []time.Time
	byKey map[time.Time]*T
}

func newSeries[T any]() *series[T] {
	return &series[T]{byKey: make(map[time.Time]*T)}
}

func (s *series[T]) bucket(period time.Time, init func(time.Time) *T) *T {
	if b, ok := s.byKey[period]; ok {
		return b
	}
	b := init(period)
	s.byKey[period] = b
	s.order = append(s.order, period)
	return b
}

func (s *series[T]) sorted() []T {
	slices.SortFunc(s.order, func(a, b time.Time) int { return a.Compare(b) })
	out := make([]T, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, *s.byKey[p])
	}
	return out
}

// mean accumulates an average over the values that are present.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	return ptr(m.sum / float64(m.n))
}

// PerformancePoint aggregates the logged sets of one exercise in one period.
type PerformancePoint struct {
	Period          time.Time `json:"period"`
	TotalSets       int       `json:"totalSets"`
	MaxWeight       *float64  `json:"maxWeight"`
	AverageReps     *float64  `json:"averageReps"`
	AverageDuration *float64  `json:"averageDuration"`
	TotalVolume     float64   `json:"totalVolume"` // sum of reps x weight over sets logging both

	reps, duration mean
}

// ExercisePerformance groups the user's logged sets of one catalog exercise
// by completion date.
func (s *StatsService) ExercisePerformance(ctx context.Context, userID, exerciseID primitive.ObjectID, q StatsQuery) ([]PerformancePoint, error) {
	from, to, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Exercises.GetByID(ctx, exerciseID); err != nil {
		return nil, mapRepoErr(err, "exercise")
	}

	instances, err := s.repos.WorkoutExercises.ListByExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(instances))
	for _, we := range instances {
		ids = append(ids, we.ID)
	}
	results, err := s.repos.Results.ListByWorkoutExercises(ctx, ids)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(results, func(a, b domain.ExerciseResult) int { return a.CompletedAt.Compare(b.CompletedAt) })

	end := domain.AddDays(to, 1)
	points := newSeries[PerformancePoint]()
	for _, r := range results {
		// Results carry their owner, so other users' sets are dropped here
		if r.UserID != userID || r.CompletedAt.Before(from) || !r.CompletedAt.Before(end) {
			continue
		}
		p := points.bucket(periodStart(r.CompletedAt, q.GroupBy), func(t time.Time) *PerformancePoint {
			return &PerformancePoint{Period: t}
		})
		p.TotalSets++
		if r.WeightUsed != nil && (p.MaxWeight == nil || *r.WeightUsed > *p.MaxWeight) {
			p.MaxWeight = ptr(*r.WeightUsed)
		}
		if r.RepsCompleted != nil {
			p.reps.add(float64(*r.RepsCompleted))
			if r.WeightUsed != nil {
				p.TotalVolume += float64(*r.RepsCompleted) * *r.WeightUsed
			}
		}
		if r.DurationCompleted != nil {
			p.duration.add(float64(*r.DurationCompleted))
		}
	}

	out := points.sorted()
	for i := range out {
		out[i].AverageReps = out[i].reps.value()
		out[i].AverageDuration = out[i].duration.value()
	}
	return out, nil
}

// SessionPoint counts the user's sessions in one period by status.
type SessionPoint struct {
	Period    time.Time `json:"period"`
	Total     int       `json:"totalSessions"`
	Completed int       `json:"completedCount"`
	Skipped   int       `json:"skippedCount"`
	Planned   int       `json:"plannedCount"`
}

// SessionStats groups sessions of all the user's plans by session date. A
// non-empty status keeps only sessions in that status.
func (s *StatsService) SessionStats(ctx context.Context, userID primitive.ObjectID, q StatsQuery, status domain.SessionStatus) ([]SessionPoint, error) {
	from, to, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, invalid("status", "must be one of Planned, Completed, Skipped")
	}
	if q.GroupBy == "" {
		q.GroupBy = GroupByWeek
	}

	plans, err := s.repos.Plans.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return []SessionPoint{}, nil
	}
	planIDs := make([]primitive.ObjectID, 0, len(plans))
	for _, p := range plans {
		planIDs = append(planIDs, p.ID)
	}
	sessions, err := s.repos.Sessions.ListByPlansInRange(ctx, planIDs, from, to)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(sessions, func(a, b domain.WorkoutSession) int { return a.Date.Compare(b.Date) })

	points := newSeries[SessionPoint]()
	for _, ws := range sessions {
		if status != "" && ws.Status != status {
			continue
		}
		p := points.bucket(periodStart(ws.Date, q.GroupBy), func(t time.Time) *SessionPoint {
			return &SessionPoint{Period: t}
		})
		p.Total++
		switch ws.Status {
		case domain.SessionCompleted:
			p.Completed++
		case domain.SessionSkipped:
			p.Skipped++
		case domain.SessionPlanned:
			p.Planned++
		}
	}
	return points.sorted(), nil
}

// ConditionPoint averages the user's daily condition entries in one period.
// An average is nil when no entry in the period reported that metric.
type ConditionPoint struct {
	Period         time.Time `json:"period"`
	Entries        int       `json:"totalEntries"`
	SleepHours     *float64  `json:"averageSleepHours"`
	SleepQuality   *float64  `json:"averageSleepQuality"`
	EnergyLevel    *float64  `json:"averageEnergyLevel"`
	StressLevel    *float64  `json:"averageStressLevel"`
	MuscleSoreness *float64  `json:"averageMuscleSoreness"`

	sleepHours, sleepQuality, energy, stress, soreness mean
}

// ConditionStats groups the user's daily condition entries by date.
func (s *StatsService) ConditionStats(ctx context.Context, userID primitive.ObjectID, q StatsQuery) ([]ConditionPoint, error) {
	from, to, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}
	conditions, err := s.repos.Conditions.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	addInt := func(m *mean, v *int) {
		if v != nil {
			m.add(float64(*v))
		}
	}
	points := newSeries[ConditionPoint]()
	for _, c := range conditions {
		p := points.bucket(periodStart(c.Date, q.GroupBy), func(t time.Time) *ConditionPoint {
			return &ConditionPoint{Period: t}
		})
		p.Entries++
		if c.SleepHours != nil {
			p.sleepHours.add(*c.SleepHours)
		}
		addInt(&p.sleepQuality, c.SleepQuality)
		addInt(&p.energy, c.EnergyLevel)
		addInt(&p.stress, c.StressLevel)
		addInt(&p.soreness, c.MuscleSoreness)
	}

	out := points.sorted()
	for i := range out {
		p := &out[i]
		p.SleepHours = p.sleepHours.value()
		p.SleepQuality = p.sleepQuality.value()
		p.EnergyLevel = p.energy.value()
		p.StressLevel = p.stress.value()
		p.MuscleSoreness = p.soreness.value()
	}
	return out, nil
}

// PlanCompletion counts the user's plans by status over plan end dates.
func (s *StatsService) PlanCompletion(ctx context.Context, userID primitive.ObjectID, q StatsQuery) (map[domain.PlanStatus]int, error) {
	from, to, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}
	return s.repos.Plans.CountByStatus(ctx, userID, from, to)
}

// MeasurementInput is one body measurement. Weight and Height may not both be nil.
type MeasurementInput struct {
	Date   time.Time
	Weight *float64
	Height *float64
	Notes  string
}

func (in MeasurementInput) validate() error {
	verr := &ValidationError{}
	if in.Date.IsZero() {
		verr.Add("date", "is required")
	}
	if in.Weight == nil && in.Height == nil {
		verr.Add("weight", "either weight or height must be provided")
	}
	if in.Weight != nil && *in.Weight < 0 {
		verr.Add("weight", "must not be negative")
	}
	if in.Height != nil && *in.Height < 0 {
		verr.Add("height", "must not be negative")
	}
	return verr.OrNil()
}

// RecordMeasurement stores a body measurement for the user.
func (s *StatsService) RecordMeasurement(ctx context.Context, userID primitive.ObjectID, in MeasurementInput) (*domain.UserMeasurement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	m := &domain.UserMeasurement{
		UserID: userID,
		Date:   domain.DateOnly(in.Date),
		Weight: in.Weight,
		Height: in.Height,
		Notes:  strings.TrimSpace(in.Notes),
	}
	if _, err := s.repos.Measurements.Create(ctx, m); err != nil {
		return nil, mapRepoErr(err, "measurement")
	}
	return m, nil
}

// MeasurementHistory lists the user's measurements oldest first. Nil bounds are open.
func (s *StatsService) MeasurementHistory(ctx context.Context, userID primitive.ObjectID, from, to *time.Time) ([]domain.UserMeasurement, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, invalid("endDate", "must not be before startDate")
	}
	return s.repos.Measurements.ListByUser(ctx, userID, from, to)
}
