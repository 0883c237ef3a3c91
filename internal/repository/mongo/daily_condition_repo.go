package mongo

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dailyConditionCollectionName = "daily_conditions"

// mongoDailyConditionRepository implements repository.DailyConditionRepository
type mongoDailyConditionRepository struct {
	collection *mongo.Collection
}

// NewMongoDailyConditionRepository creates a new DailyCondition repository.
func NewMongoDailyConditionRepository(db *mongo.Database) repository.DailyConditionRepository {
	return &mongoDailyConditionRepository{
		collection: db.Collection(dailyConditionCollectionName),
	}
}

// Create inserts a condition entry. The (userId, date) unique index maps a
// second entry for the same day to repository.ErrDuplicate.
func (r *mongoDailyConditionRepository) Create(ctx context.Context, condition *domain.DailyCondition) (primitive.ObjectID, error) {
	if condition.UserID == primitive.NilObjectID || condition.Date.IsZero() {
		return primitive.NilObjectID, errors.New("condition requires userId and date")
	}
	condition.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	condition.CreatedAt = now
	condition.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, condition); err != nil {
		return primitive.NilObjectID, writeErr(err)
	}
	return condition.ID, nil
}

// GetByUserAndDate retrieves the entry of a user for one date.
func (r *mongoDailyConditionRepository) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date time.Time) (*domain.DailyCondition, error) {
	return findOne[domain.DailyCondition](ctx, r.collection, bson.M{"userId": userID, "date": date})
}

// Update overwrites the metrics of an existing entry.
func (r *mongoDailyConditionRepository) Update(ctx context.Context, condition *domain.DailyCondition) error {
	update := bson.M{
		"$set": bson.M{
			"sleepHours":     condition.SleepHours,
			"sleepQuality":   condition.SleepQuality,
			"energyLevel":    condition.EnergyLevel,
			"stressLevel":    condition.StressLevel,
			"muscleSoreness": condition.MuscleSoreness,
			"notes":          condition.Notes,
			"updatedAt":      time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": condition.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByUser retrieves a user's entries dated within [from, to], oldest first.
func (r *mongoDailyConditionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.DailyCondition, error) {
	filter := bson.M{
		"userId": userID,
		"date":   bson.M{"$gte": from, "$lte": to},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return findAll[domain.DailyCondition](ctx, r.collection, filter, findOptions)
}

// EnsureDailyConditionIndexes creates necessary indexes. Call during startup.
func EnsureDailyConditionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
