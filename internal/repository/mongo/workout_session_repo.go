package mongo

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutSessionCollectionName = "workout_sessions"

// mongoWorkoutSessionRepository implements repository.WorkoutSessionRepository
type mongoWorkoutSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutSessionRepository creates a new WorkoutSession repository.
func NewMongoWorkoutSessionRepository(db *mongo.Database) repository.WorkoutSessionRepository {
	return &mongoWorkoutSessionRepository{
		collection: db.Collection(workoutSessionCollectionName),
	}
}

// CreateMany inserts a batch of sessions, assigning their IDs.
func (r *mongoWorkoutSessionRepository) CreateMany(ctx context.Context, sessions []*domain.WorkoutSession) error {
	if len(sessions) == 0 {
		return nil
	}
	// Assign IDs up front so callers can reference them after the insert
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(sessions))
	for _, s := range sessions {
		s.ID = primitive.NewObjectID()
		s.CreatedAt = now
		s.UpdatedAt = now
		docs = append(docs, s)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return writeErr(err)
}

// GetByID retrieves a single session by its ID.
func (r *mongoWorkoutSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	return findOne[domain.WorkoutSession](ctx, r.collection, bson.M{"_id": id})
}

// ListByPlan retrieves the sessions of a plan ordered by date.
func (r *mongoWorkoutSessionRepository) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return findAll[domain.WorkoutSession](ctx, r.collection, bson.M{"planId": planID}, findOptions)
}

// ListByPlansInRange retrieves sessions of the given plans dated within [from, to].
func (r *mongoWorkoutSessionRepository) ListByPlansInRange(ctx context.Context, planIDs []primitive.ObjectID, from, to time.Time) ([]domain.WorkoutSession, error) {
	if len(planIDs) == 0 {
		return []domain.WorkoutSession{}, nil // $in with an empty list matches nothing anyway
	}
	filter := bson.M{
		"planId": bson.M{"$in": planIDs},
		"date":   bson.M{"$gte": from, "$lte": to},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return findAll[domain.WorkoutSession](ctx, r.collection, filter, findOptions)
}

// UpdateStatus sets the session status.
func (r *mongoWorkoutSessionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	// Check if a document was actually found
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutSessionIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Plan views and range stats both filter by plan then date
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
