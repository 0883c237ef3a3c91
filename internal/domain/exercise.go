// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the shared catalog.
// Workout exercises reference it weakly; deleting a workout exercise never
// touches the catalog entry.
type Exercise struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name             string              `bson:"name" json:"name"`
	TargetMuscle     string              `bson:"targetMuscle,omitempty" json:"targetMuscle,omitempty"` // e.g. "pectorals"
	BodyPart         string              `bson:"bodyPart,omitempty" json:"bodyPart,omitempty"`         // e.g. "chest"
	Equipment        string              `bson:"equipment,omitempty" json:"equipment,omitempty"`       // Equipment tag, matched against location tables
	SecondaryMuscles []string            `bson:"secondaryMuscles,omitempty" json:"secondaryMuscles,omitempty"`
	Description      string              `bson:"description,omitempty" json:"description,omitempty"`
	MediaKey         string              `bson:"mediaKey,omitempty" json:"-"` // Object key in S3, internal use
	IsCustom         bool                `bson:"isCustom" json:"isCustom"`    // Added by a user rather than seeded
	CreatedBy        *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
