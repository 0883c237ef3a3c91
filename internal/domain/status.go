package domain

// PlanStatus is the lifecycle state of a TrainingPlan.
type PlanStatus string

const (
	PlanActive    PlanStatus = "Active"
	PlanPaused    PlanStatus = "Paused"
	PlanCompleted PlanStatus = "Completed"
	PlanArchived  PlanStatus = "Archived"
)

// SessionStatus is the lifecycle state of a WorkoutSession.
type SessionStatus string

const (
	SessionPlanned   SessionStatus = "Planned"
	SessionCompleted SessionStatus = "Completed"
	SessionSkipped   SessionStatus = "Skipped"
)

// ExerciseStatus is the lifecycle state of a WorkoutExercise.
type ExerciseStatus string

const (
	ExercisePlanned   ExerciseStatus = "Planned"
	ExerciseStarted   ExerciseStatus = "Started"
	ExerciseCompleted ExerciseStatus = "Completed"
	ExerciseSkipped   ExerciseStatus = "Skipped"
)

// Allowed transitions, one table per entity. Anything not listed is rejected.
var (
	planTransitions = map[PlanStatus][]PlanStatus{
		PlanActive:    {PlanPaused, PlanCompleted, PlanArchived},
		PlanPaused:    {PlanActive, PlanCompleted, PlanArchived},
		PlanCompleted: {PlanArchived},
		PlanArchived:  {},
	}
	sessionTransitions = map[SessionStatus][]SessionStatus{
		SessionPlanned:   {SessionCompleted, SessionSkipped},
		SessionCompleted: {},
		SessionSkipped:   {},
	}
	exerciseTransitions = map[ExerciseStatus][]ExerciseStatus{
		ExercisePlanned:   {ExerciseStarted, ExerciseCompleted, ExerciseSkipped},
		ExerciseStarted:   {ExerciseCompleted, ExerciseSkipped},
		ExerciseCompleted: {},
		ExerciseSkipped:   {},
	}
)

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the known plan states.
func (s PlanStatus) Valid() bool {
	_, ok := planTransitions[s]
	return ok
}

// IsTerminal reports whether the plan no longer takes part in cascading.
// Paused is not terminal but is also not Active, so the cascade leaves it alone.
func (s PlanStatus) IsTerminal() bool {
	return s == PlanCompleted || s == PlanArchived
}

func (s PlanStatus) CanTransitionTo(next PlanStatus) bool {
	return contains(planTransitions[s], next)
}

func (s SessionStatus) Valid() bool {
	_, ok := sessionTransitions[s]
	return ok
}

func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionSkipped
}

func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	return contains(sessionTransitions[s], next)
}

func (s ExerciseStatus) Valid() bool {
	_, ok := exerciseTransitions[s]
	return ok
}

func (s ExerciseStatus) IsTerminal() bool {
	return s == ExerciseCompleted || s == ExerciseSkipped
}

func (s ExerciseStatus) CanTransitionTo(next ExerciseStatus) bool {
	return contains(exerciseTransitions[s], next)
}
