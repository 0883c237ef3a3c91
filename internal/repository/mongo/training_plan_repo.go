// internal/repository/mongo/training_plan_repo.go
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

const (
	trainingPlanCollectionName = "training_plans"
	activePlanIndexName        = "one_active_plan_per_user"
)

// mongoTrainingPlanRepository implements repository.TrainingPlanRepository
type mongoTrainingPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new TrainingPlan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.TrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		collection: db.Collection(trainingPlanCollectionName),
	}
}

// Create inserts a new training plan. The partial unique index turns a second
// Active plan for the same user into repository.ErrDuplicate.
func (r *mongoTrainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	// Basic validation, the rest belongs in the service layer
	if plan.UserID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires userId and name")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		// A duplicate key here means the user already has an Active plan
		return primitive.NilObjectID, writeErr(err)
	}
	return plan.ID, nil
}

// GetByID retrieves a single training plan by its ID.
func (r *mongoTrainingPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	return findOne[domain.TrainingPlan](ctx, r.collection, bson.M{"_id": id})
}

// ListByUser retrieves every plan of a user, newest first.
func (r *mongoTrainingPlanRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}, {Key: "createdAt", Value: -1}})
	return findAll[domain.TrainingPlan](ctx, r.collection, bson.M{"userId": userID}, findOptions)
}

// GetActiveByUser returns the user's Active plan or repository.ErrNotFound.
func (r *mongoTrainingPlanRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	return findOne[domain.TrainingPlan](ctx, r.collection, bson.M{"userId": userID, "status": domain.PlanActive})
}

// GetLatestTerminal returns the Completed or Archived plan with the latest end date.
func (r *mongoTrainingPlanRepository) GetLatestTerminal(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	filter := bson.M{
		"userId": userID,
		"status": bson.M{"$in": []domain.PlanStatus{domain.PlanCompleted, domain.PlanArchived}},
	}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "endDate", Value: -1}, {Key: "createdAt", Value: -1}})
	return findOne[domain.TrainingPlan](ctx, r.collection, filter, findOptions)
}

// ListActiveEndingBefore finds Active plans whose end date is strictly before date.
func (r *mongoTrainingPlanRepository) ListActiveEndingBefore(ctx context.Context, date time.Time) ([]domain.TrainingPlan, error) {
	filter := bson.M{
		"status":  domain.PlanActive,
		"endDate": bson.M{"$lt": date},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "endDate", Value: 1}})
	return findAll[domain.TrainingPlan](ctx, r.collection, filter, findOptions)
}

// UpdateStatus sets the plan status.
func (r *mongoTrainingPlanRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.PlanStatus) error {
	return r.set(ctx, id, bson.M{"status": status})
}

// MarkCustomized flags the plan as hand-edited by its owner.
func (r *mongoTrainingPlanRepository) MarkCustomized(ctx context.Context, id primitive.ObjectID) error {
	return r.set(ctx, id, bson.M{"isCustomized": true})
}

func (r *mongoTrainingPlanRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC() // Every write bumps updatedAt
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return writeErr(err)
	}
	// Check if a document was actually found
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountByStatus groups a user's plans ending in [from, to] by status.
func (r *mongoTrainingPlanRepository) CountByStatus(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (map[domain.PlanStatus]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"userId":  userID,
			"endDate": bson.M{"$gte": from, "$lte": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status domain.PlanStatus `bson:"_id"`
		Count  int               `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	// Statuses with no plans are absent from the map
	counts := make(map[domain.PlanStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// EnsureTrainingPlanIndexes creates necessary indexes. Call during startup.
func EnsureTrainingPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// At most one Active plan per user, enforced by the store
			Keys: bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().
				SetName(activePlanIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.PlanActive}),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "endDate", Value: -1}},
			Options: options.Index(),
		},
		{
			// Sweeper lookup
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "endDate", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
