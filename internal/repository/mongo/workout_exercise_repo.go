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

const workoutExerciseCollectionName = "workout_exercises"

// mongoWorkoutExerciseRepository implements repository.WorkoutExerciseRepository
type mongoWorkoutExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutExerciseRepository creates a new WorkoutExercise repository.
func NewMongoWorkoutExerciseRepository(db *mongo.Database) repository.WorkoutExerciseRepository {
	return &mongoWorkoutExerciseRepository{
		collection: db.Collection(workoutExerciseCollectionName),
	}
}

// Create inserts a single workout exercise.
func (r *mongoWorkoutExerciseRepository) Create(ctx context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error) {
	if we.SessionID == primitive.NilObjectID || we.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout exercise requires sessionId and exerciseId")
	}
	we.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	we.CreatedAt = now
	we.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, we); err != nil {
		return primitive.NilObjectID, writeErr(err)
	}
	return we.ID, nil
}

// CreateMany inserts a batch of workout exercises, assigning their IDs.
func (r *mongoWorkoutExerciseRepository) CreateMany(ctx context.Context, wes []*domain.WorkoutExercise) error {
	if len(wes) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(wes))
	for _, we := range wes {
		we.ID = primitive.NewObjectID()
		we.CreatedAt = now
		we.UpdatedAt = now
		docs = append(docs, we)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return writeErr(err)
}

// GetByID retrieves a single workout exercise by its ID.
func (r *mongoWorkoutExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	return findOne[domain.WorkoutExercise](ctx, r.collection, bson.M{"_id": id})
}

// ListBySession retrieves the exercises of a session in display order.
func (r *mongoWorkoutExerciseRepository) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	return findAll[domain.WorkoutExercise](ctx, r.collection, bson.M{"sessionId": sessionID}, findOptions)
}

// ListBySessions retrieves the exercises of several sessions, grouped by session then order.
func (r *mongoWorkoutExerciseRepository) ListBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	if len(sessionIDs) == 0 {
		return []domain.WorkoutExercise{}, nil
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "sessionId", Value: 1}, {Key: "order", Value: 1}})
	return findAll[domain.WorkoutExercise](ctx, r.collection, bson.M{"sessionId": bson.M{"$in": sessionIDs}}, findOptions)
}

// Update writes the editable fields. Status and session are not touched here.
func (r *mongoWorkoutExerciseRepository) Update(ctx context.Context, we *domain.WorkoutExercise) error {
	if we.ID == primitive.NilObjectID {
		return errors.New("workout exercise ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"exerciseId":      we.ExerciseID,
			"order":           we.Order,
			"setsPlanned":     we.SetsPlanned,
			"repsPlanned":     we.RepsPlanned,
			"weightPlanned":   we.WeightPlanned,
			"durationPlanned": we.DurationPlanned,
			"restPeriod":      we.RestPeriod,
			"notes":           we.Notes,
			"updatedAt":       time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": we.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateStatus sets the exercise status.
func (r *mongoWorkoutExerciseRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ExerciseStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByExercise retrieves every planned instance of a catalog exercise.
func (r *mongoWorkoutExerciseRepository) ListByExercise(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "sessionId", Value: 1}, {Key: "order", Value: 1}})
	return findAll[domain.WorkoutExercise](ctx, r.collection, bson.M{"exerciseId": exerciseID}, findOptions)
}

// Delete removes a workout exercise. Its results are removed by the caller.
func (r *mongoWorkoutExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutExerciseIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
		{
			// Performance stats and catalog deletes look instances up by exercise
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
