package domain

// PerformanceSummary is the read-side aggregation of a plan (or a date range)
// that feeds plan generation and the progress stats.
type PerformanceSummary struct {
	TotalSessions     int                   `json:"totalSessions"`
	CompletedSessions int                   `json:"completedSessions"`
	SkippedSessions   int                   `json:"skippedSessions"`
	CompletionRate    float64               `json:"completionRate"` // percent, 0 when there are no sessions
	Exercises         []ExercisePerformance `json:"exercises"`      // first-seen order
	SessionNotes      []string              `json:"sessionNotes,omitempty"`
	Condition         ConditionAverages     `json:"condition"`
}

// ExercisePerformance aggregates every instance of one exercise (by name).
// Missing values count as zero in the sums.
type ExercisePerformance struct {
	Name string `json:"name"`

	Instances       int     `json:"instances"`
	PlannedSets     int     `json:"plannedSets"`
	PlannedReps     int     `json:"plannedReps"`
	PlannedWeight   float64 `json:"plannedWeight"`
	PlannedDuration int     `json:"plannedDuration"`

	ActualInstances int     `json:"actualInstances"` // Completed instances with logged sets
	ActualSets      int     `json:"actualSets"`
	ActualReps      int     `json:"actualReps"`
	ActualWeight    float64 `json:"actualWeight"`
	ActualDuration  int     `json:"actualDuration"`

	SkippedCount int      `json:"skippedCount"`
	Notes        []string `json:"notes,omitempty"`
}

// ConditionAverages are nil when no condition entries exist in the range.
// A metric missing from an entry counts as zero but the entry still counts.
type ConditionAverages struct {
	Entries        int      `json:"entries"`
	Notes          []string `json:"notes,omitempty"`
	SleepHours     *float64 `json:"sleepHours"`
	SleepQuality   *float64 `json:"sleepQuality"`
	EnergyLevel    *float64 `json:"energyLevel"`
	StressLevel    *float64 `json:"stressLevel"`
	MuscleSoreness *float64 `json:"muscleSoreness"`
}
