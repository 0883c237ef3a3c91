// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingPlan represents one scheduled week of training for a user.
// At most one plan per user may be Active.
type TrainingPlan struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"` // Owner of the plan
	Name         string             `bson:"name" json:"name"`     // e.g., "Week 3: Strength Focus"
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	StartDate    time.Time          `bson:"startDate" json:"startDate"` // UTC midnight
	EndDate      time.Time          `bson:"endDate" json:"endDate"`     // UTC midnight, inclusive
	Status       PlanStatus         `bson:"status" json:"status"`
	IsCustomized bool               `bson:"isCustomized" json:"isCustomized"` // Set once the user edits the generated plan
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Contains reports whether date falls inside the plan's [StartDate, EndDate] window.
func (p *TrainingPlan) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}
