package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyCondition is a user's self-reported wellness for one date.
// There is exactly one per (UserID, Date).
type DailyCondition struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Date           time.Time          `bson:"date" json:"date"` // UTC midnight
	SleepHours     *float64           `bson:"sleepHours,omitempty" json:"sleepHours,omitempty"`
	SleepQuality   *int               `bson:"sleepQuality,omitempty" json:"sleepQuality,omitempty"`     // 1-5
	EnergyLevel    *int               `bson:"energyLevel,omitempty" json:"energyLevel,omitempty"`       // 1-5
	StressLevel    *int               `bson:"stressLevel,omitempty" json:"stressLevel,omitempty"`       // 1-5
	MuscleSoreness *int               `bson:"muscleSoreness,omitempty" json:"muscleSoreness,omitempty"` // 1-5
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
