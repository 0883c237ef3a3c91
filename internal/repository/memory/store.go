// Package memory is an in-process implementation of every repository and the
// Transactor. It enforces the same unique constraints as the Mongo indexes and
// is used by tests and by local runs without a database.
package memory

import (
	"context"
	"maps"
	"sync"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txKey struct{}

type tables struct {
	users            map[primitive.ObjectID]domain.User
	exercises        map[primitive.ObjectID]domain.Exercise
	plans            map[primitive.ObjectID]domain.TrainingPlan
	sessions         map[primitive.ObjectID]domain.WorkoutSession
	workoutExercises map[primitive.ObjectID]domain.WorkoutExercise
	results          map[primitive.ObjectID]domain.ExerciseResult
	conditions       map[primitive.ObjectID]domain.DailyCondition
	measurements     map[primitive.ObjectID]domain.UserMeasurement
}

func (t tables) clone() tables {
	return tables{
		users:            maps.Clone(t.users),
		exercises:        maps.Clone(t.exercises),
		plans:            maps.Clone(t.plans),
		sessions:         maps.Clone(t.sessions),
		workoutExercises: maps.Clone(t.workoutExercises),
		results:          maps.Clone(t.results),
		conditions:       maps.Clone(t.conditions),
		measurements:     maps.Clone(t.measurements),
	}
}

// Store holds all collections behind one mutex. A transaction holds the mutex
// for its whole duration, so transactions are serializable.
type Store struct {
	mu sync.Mutex
	t  tables
}

func NewStore() *Store {
	return &Store{
		t: tables{
			users:            make(map[primitive.ObjectID]domain.User),
			exercises:        make(map[primitive.ObjectID]domain.Exercise),
			plans:            make(map[primitive.ObjectID]domain.TrainingPlan),
			sessions:         make(map[primitive.ObjectID]domain.WorkoutSession),
			workoutExercises: make(map[primitive.ObjectID]domain.WorkoutExercise),
			results:          make(map[primitive.ObjectID]domain.ExerciseResult),
			conditions:       make(map[primitive.ObjectID]domain.DailyCondition),
			measurements:     make(map[primitive.ObjectID]domain.UserMeasurement),
		},
	}
}

// WithinTx implements repository.Transactor. On error (or panic) every change
// made through the transaction ctx is discarded.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	snapshot := s.t.clone()
	committed := false
	defer func() {
		if !committed {
			s.t = snapshot
		}
		s.mu.Unlock()
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock takes the store mutex unless ctx belongs to a transaction that already holds it.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Users() repository.UserRepository              { return &userRepo{s} }
func (s *Store) Exercises() repository.ExerciseRepository      { return &exerciseRepo{s} }
func (s *Store) Plans() repository.TrainingPlanRepository      { return &planRepo{s} }
func (s *Store) Sessions() repository.WorkoutSessionRepository { return &sessionRepo{s} }
func (s *Store) WorkoutExercises() repository.WorkoutExerciseRepository {
	return &workoutExerciseRepo{s}
}
func (s *Store) Results() repository.ExerciseResultRepository    { return &resultRepo{s} }
func (s *Store) Conditions() repository.DailyConditionRepository { return &conditionRepo{s} }
func (s *Store) Measurements() repository.MeasurementRepository  { return &measurementRepo{s} }
