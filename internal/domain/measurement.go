package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserMeasurement is a body measurement taken on one date. At least one of
// Weight and Height is set. Several entries may share a date.
type UserMeasurement struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Date      time.Time          `bson:"date" json:"date"`                         // UTC midnight
	Weight    *float64           `bson:"weight,omitempty" json:"weight,omitempty"` // kilograms
	Height    *float64           `bson:"height,omitempty" json:"height,omitempty"` // centimeters
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
