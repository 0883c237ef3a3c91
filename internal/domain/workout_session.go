package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutSession is one calendar day within a TrainingPlan.
// A session with no exercises is a rest day.
type WorkoutSession struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID          primitive.ObjectID `bson:"planId" json:"planId"`
	Name            string             `bson:"name" json:"name"` // e.g., "Upper Body Push" or "Rest Day"
	Date            time.Time          `bson:"date" json:"date"`
	Status          SessionStatus      `bson:"status" json:"status"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	DurationPlanned *int               `bson:"durationPlanned,omitempty" json:"durationPlanned,omitempty"` // minutes
	DurationActual  *int               `bson:"durationActual,omitempty" json:"durationActual,omitempty"`   // minutes
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
