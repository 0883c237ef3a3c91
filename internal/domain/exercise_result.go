package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseResult is one logged set. UserID mirrors the owner of the plan the
// workout exercise belongs to and is only kept for querying.
type ExerciseResult struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutExerciseID primitive.ObjectID `bson:"workoutExerciseId" json:"workoutExerciseId"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	SetNumber         int                `bson:"setNumber" json:"setNumber"` // 1-based label supplied by the caller
	RepsCompleted     *int               `bson:"repsCompleted,omitempty" json:"repsCompleted,omitempty"`
	WeightUsed        *float64           `bson:"weightUsed,omitempty" json:"weightUsed,omitempty"`
	DurationCompleted *int               `bson:"durationCompleted,omitempty" json:"durationCompleted,omitempty"`
	Rating            *int               `bson:"rating,omitempty" json:"rating,omitempty"` // 1-10 perceived effort
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CompletedAt       time.Time          `bson:"completedAt" json:"completedAt"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}
