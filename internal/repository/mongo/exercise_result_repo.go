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

const exerciseResultCollectionName = "exercise_results"

// mongoExerciseResultRepository implements repository.ExerciseResultRepository
type mongoExerciseResultRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseResultRepository creates a new ExerciseResult repository.
func NewMongoExerciseResultRepository(db *mongo.Database) repository.ExerciseResultRepository {
	return &mongoExerciseResultRepository{
		collection: db.Collection(exerciseResultCollectionName),
	}
}

// Create inserts a logged set.
func (r *mongoExerciseResultRepository) Create(ctx context.Context, result *domain.ExerciseResult) (primitive.ObjectID, error) {
	if result.WorkoutExerciseID == primitive.NilObjectID || result.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("result requires workoutExerciseId and userId")
	}
	result.ID = primitive.NewObjectID()
	result.CreatedAt = time.Now().UTC()
	if result.CompletedAt.IsZero() {
		result.CompletedAt = result.CreatedAt
	}

	if _, err := r.collection.InsertOne(ctx, result); err != nil {
		return primitive.NilObjectID, writeErr(err)
	}
	return result.ID, nil
}

// CountByWorkoutExercise counts the sets logged against a workout exercise.
func (r *mongoExerciseResultRepository) CountByWorkoutExercise(ctx context.Context, workoutExerciseID primitive.ObjectID) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"workoutExerciseId": workoutExerciseID})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ListByWorkoutExercise orders by set number, then completion time.
func (r *mongoExerciseResultRepository) ListByWorkoutExercise(ctx context.Context, workoutExerciseID primitive.ObjectID) ([]domain.ExerciseResult, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "setNumber", Value: 1}, {Key: "completedAt", Value: 1}})
	return findAll[domain.ExerciseResult](ctx, r.collection, bson.M{"workoutExerciseId": workoutExerciseID}, findOptions)
}

// ListByWorkoutExercises retrieves the results of several workout exercises.
func (r *mongoExerciseResultRepository) ListByWorkoutExercises(ctx context.Context, ids []primitive.ObjectID) ([]domain.ExerciseResult, error) {
	if len(ids) == 0 {
		return []domain.ExerciseResult{}, nil
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "setNumber", Value: 1}, {Key: "completedAt", Value: 1}})
	return findAll[domain.ExerciseResult](ctx, r.collection, bson.M{"workoutExerciseId": bson.M{"$in": ids}}, findOptions)
}

// ListByUser retrieves a user's result history, newest first.
func (r *mongoExerciseResultRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, filter repository.ResultFilter) ([]domain.ExerciseResult, error) {
	query := bson.M{"userId": userID}
	completedAt := bson.M{}
	if filter.From != nil {
		completedAt["$gte"] = *filter.From
	}
	if filter.To != nil {
		completedAt["$lte"] = *filter.To
	}
	if len(completedAt) > 0 {
		query["completedAt"] = completedAt
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	if filter.Offset > 0 {
		findOptions.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit))
	}
	return findAll[domain.ExerciseResult](ctx, r.collection, query, findOptions)
}

// DeleteByWorkoutExercise removes every result of a workout exercise.
func (r *mongoExerciseResultRepository) DeleteByWorkoutExercise(ctx context.Context, workoutExerciseID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"workoutExerciseId": workoutExerciseID})
	return err
}

// EnsureExerciseResultIndexes creates necessary indexes. Call during startup.
func EnsureExerciseResultIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutExerciseId", Value: 1}, {Key: "setNumber", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
