package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin" // Can curate the catalog and trigger maintenance jobs
)

// User represents an account in the system.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	Profile      Profile            `bson:"profile" json:"profile"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Profile holds the training attributes used when a plan is generated.
type Profile struct {
	Goal                  string   `bson:"goal,omitempty" json:"goal,omitempty"`                         // e.g. "Weight Loss", "Muscle Gain"
	Experience            string   `bson:"experience,omitempty" json:"experience,omitempty"`             // "Beginner", "Intermediate", "Advanced"
	ActivityLevel         string   `bson:"activityLevel,omitempty" json:"activityLevel,omitempty"`       // e.g. "Moderately Active"
	TrainingLocation      string   `bson:"trainingLocation,omitempty" json:"trainingLocation,omitempty"` // "home", "gym", "outdoor"
	PreferredTrainingDays []string `bson:"preferredTrainingDays,omitempty" json:"preferredTrainingDays,omitempty"`
	WeightKg              *float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	HeightCm              *float64 `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WantsPreWorkoutInfo   bool     `bson:"wantsPreWorkoutInfo" json:"wantsPreWorkoutInfo"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
