package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutExercise is a planned occurrence of a catalog Exercise inside a session.
// Its identity survives a swap of ExerciseID, so logged results stay attached.
type WorkoutExercise struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID       primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	ExerciseID      primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Order           int                `bson:"order" json:"order"` // Display position within the session
	SetsPlanned     *int               `bson:"setsPlanned,omitempty" json:"setsPlanned,omitempty"`
	RepsPlanned     *int               `bson:"repsPlanned,omitempty" json:"repsPlanned,omitempty"`
	WeightPlanned   *float64           `bson:"weightPlanned,omitempty" json:"weightPlanned,omitempty"`     // kg
	DurationPlanned *int               `bson:"durationPlanned,omitempty" json:"durationPlanned,omitempty"` // seconds
	RestPeriod      *int               `bson:"restPeriod,omitempty" json:"restPeriod,omitempty"`           // seconds
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status          ExerciseStatus     `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AutoCompletes reports whether logging results can complete this exercise.
func (we *WorkoutExercise) AutoCompletes() bool {
	return we.SetsPlanned != nil && *we.SetsPlanned > 0
}
