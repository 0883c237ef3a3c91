//go:build integration

package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// startMongo runs a single-node replica set, which transactions require.
func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			Cmd:          []string{"--replSet", "rs0", "--bind_ip_all"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	initiate := `rs.initiate({_id: "rs0", members: [{_id: 0, host: "localhost:27017"}]});
while (!db.hello().isWritablePrimary) { sleep(100); }`
	code, out, err := container.Exec(ctx, []string{"mongosh", "--quiet", "--eval", initiate})
	require.NoError(t, err)
	if code != 0 {
		output, _ := io.ReadAll(out)
		t.Fatalf("rs.initiate failed: exit=%d output=%s", code, output)
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	client, err := ConnectDB(fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = DisconnectDB(client) })

	db := client.Database("fitness_coach_test")
	require.NoError(t, EnsureIndexes(ctx, db))
	return db
}

func newPlan(userID primitive.ObjectID, start time.Time, status domain.PlanStatus) *domain.TrainingPlan {
	return &domain.TrainingPlan{
		UserID:    userID,
		Name:      "Week",
		StartDate: start,
		EndDate:   domain.AddDays(start, 6),
		Status:    status,
	}
}

func TestMongoIntegration(t *testing.T) {
	db := startMongo(t)
	ctx := context.Background()
	plans := NewMongoTrainingPlanRepository(db)
	sessions := NewMongoWorkoutSessionRepository(db)
	conditions := NewMongoDailyConditionRepository(db)
	tx := NewMongoTransactor(db.Client())
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	t.Run("one active plan per user", func(t *testing.T) {
		userID := primitive.NewObjectID()
		_, err := plans.Create(ctx, newPlan(userID, start, domain.PlanActive))
		require.NoError(t, err)

		_, err = plans.Create(ctx, newPlan(userID, domain.AddDays(start, 7), domain.PlanActive))
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		_, err = plans.Create(ctx, newPlan(userID, domain.AddDays(start, -7), domain.PlanArchived))
		assert.NoError(t, err, "terminal plans are not constrained")
	})

	t.Run("one condition per user and day", func(t *testing.T) {
		userID := primitive.NewObjectID()
		energy := 3
		_, err := conditions.Create(ctx, &domain.DailyCondition{UserID: userID, Date: start, EnergyLevel: &energy})
		require.NoError(t, err)
		_, err = conditions.Create(ctx, &domain.DailyCondition{UserID: userID, Date: start})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("transaction rolls back", func(t *testing.T) {
		userID := primitive.NewObjectID()
		var planID primitive.ObjectID
		boom := errors.New("boom")

		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			id, err := plans.Create(ctx, newPlan(userID, start, domain.PlanActive))
			if err != nil {
				return err
			}
			planID = id
			if err := sessions.CreateMany(ctx, []*domain.WorkoutSession{
				{PlanID: id, Name: "Monday Workout", Date: start, Status: domain.SessionPlanned},
			}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = plans.GetByID(ctx, planID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		left, err := sessions.ListByPlan(ctx, planID)
		require.NoError(t, err)
		assert.Empty(t, left)
	})

	t.Run("overdue lookup and counts", func(t *testing.T) {
		userID := primitive.NewObjectID()
		overdue := newPlan(userID, start, domain.PlanActive)
		_, err := plans.Create(ctx, overdue)
		require.NoError(t, err)

		found, err := plans.ListActiveEndingBefore(ctx, domain.AddDays(start, 7))
		require.NoError(t, err)
		var ids []primitive.ObjectID
		for _, p := range found {
			ids = append(ids, p.ID)
		}
		assert.Contains(t, ids, overdue.ID)

		found, err = plans.ListActiveEndingBefore(ctx, domain.AddDays(start, 6))
		require.NoError(t, err)
		for _, p := range found {
			assert.NotEqual(t, overdue.ID, p.ID, "the end date itself is not overdue")
		}

		require.NoError(t, plans.UpdateStatus(ctx, overdue.ID, domain.PlanCompleted))
		counts, err := plans.CountByStatus(ctx, userID, start, domain.AddDays(start, 30))
		require.NoError(t, err)
		assert.Equal(t, 1, counts[domain.PlanCompleted])
	})
}
