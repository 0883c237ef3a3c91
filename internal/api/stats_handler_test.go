package api

import (
	"fmt"
	"net/http"
	"testing"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProgress(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "stats@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/conditions", token, gin.H{"date": "2025-03-10", "energyLevel": 4})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/stats/progress?startDate=2025-03-01&endDate=2025-03-31", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	progress := decode[service.Progress](t, w).Data
	assert.Equal(t, "2025-03-01", progress.From.Format(dateLayout))
	assert.Equal(t, "2025-03-31", progress.To.Format(dateLayout))
	require.NotNil(t, progress.Summary)
	require.NotNil(t, progress.Summary.Condition.EnergyLevel)
	assert.InDelta(t, 4.0, *progress.Summary.Condition.EnergyLevel, 0.001)

	w = s.do(t, http.MethodGet, "/api/v1/stats/progress", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, "defaults to the last thirty days")

	w = s.do(t, http.MethodGet, "/api/v1/stats/progress?endDate=2025-02-30", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeasurements(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "measure@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/stats/measurements", token, gin.H{"date": "2025-03-10", "notes": "nothing"})
	require.Equal(t, http.StatusBadRequest, w.Code, "weight or height is required")
	assert.Contains(t, string(decode[any](t, w).Error), "weight")

	w = s.do(t, http.MethodPost, "/api/v1/stats/measurements", token, gin.H{"date": "10/03/2025", "weight": 70})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, body := range []gin.H{
		{"date": "2025-03-10", "weight": 71.2},
		{"date": "2025-02-01", "weight": 73.0, "height": 181},
	} {
		w = s.do(t, http.MethodPost, "/api/v1/stats/measurements", token, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/v1/stats/measurements", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]domain.UserMeasurement](t, w).Data
	require.Len(t, all, 2)
	assert.Equal(t, "2025-02-01", all[0].Date.Format(dateLayout), "oldest first")
	assert.InDelta(t, 181.0, *all[0].Height, 0.001)
	assert.Nil(t, all[1].Height)

	w = s.do(t, http.MethodGet, "/api/v1/stats/measurements?startDate=2025-03-01", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.UserMeasurement](t, w).Data, 1)

	other := s.signUp(t, "measure-other@example.com")
	w = s.do(t, http.MethodGet, "/api/v1/stats/measurements", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestSessionStats(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "sessions@example.com")
	plan := s.generatePlan(t, token)
	window := fmt.Sprintf("startDate=%s&endDate=%s", plan.StartDate.Format(dateLayout), plan.EndDate.Format(dateLayout))

	total := func(points []service.SessionPoint) (sessions, planned int) {
		for _, p := range points {
			sessions += p.Total
			planned += p.Planned
		}
		return sessions, planned
	}

	w := s.do(t, http.MethodGet, "/api/v1/stats/sessions?"+window, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sessions, planned := total(decode[[]service.SessionPoint](t, w).Data)
	assert.Equal(t, 7, sessions)
	assert.Equal(t, 7, planned)

	w = s.do(t, http.MethodGet, "/api/v1/stats/sessions?groupBy=day&status=Completed&"+window, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	for _, query := range []string{"status=Started", "groupBy=fortnight", "startDate=tomorrow"} {
		w = s.do(t, http.MethodGet, "/api/v1/stats/sessions?"+query, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestConditionStats(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "condstats@example.com")
	for _, body := range []gin.H{
		{"date": "2025-03-10", "sleepHours": 6, "energyLevel": 2},
		{"date": "2025-03-11", "sleepHours": 8},
	} {
		w := s.do(t, http.MethodPost, "/api/v1/conditions", token, body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.do(t, http.MethodGet, "/api/v1/stats/daily-conditions?startDate=2025-03-01&endDate=2025-03-31&groupBy=month", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	points := decode[[]service.ConditionPoint](t, w).Data
	require.Len(t, points, 1)
	assert.Equal(t, "2025-03-01", points[0].Period.Format(dateLayout))
	assert.Equal(t, 2, points[0].Entries)
	assert.InDelta(t, 7.0, *points[0].SleepHours, 0.001)
	assert.InDelta(t, 2.0, *points[0].EnergyLevel, 0.001)

	w = s.do(t, http.MethodGet, "/api/v1/stats/daily-conditions?startDate=2025-03-01&endDate=2025-03-31", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]service.ConditionPoint](t, w).Data, 2, "daily by default")
}

func TestExercisePerformance(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "perf@example.com")
	plan := s.generatePlan(t, token)
	pushUp := sessionNamed(t, plan, "Full Body A").Exercises[0]

	for set, weight := range []float64{0, 10} {
		w := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/workout-exercises/%s/results", pushUp.ID.Hex()), token,
			gin.H{"setNumber": set + 1, "repsCompleted": 10, "weightUsed": weight})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, "/api/v1/stats/performance/exercise/"+pushUp.ExerciseID.Hex()+"?groupBy=year", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	points := decode[[]service.PerformancePoint](t, w).Data
	require.Len(t, points, 1)
	assert.Equal(t, 2, points[0].TotalSets)
	assert.InDelta(t, 10.0, *points[0].MaxWeight, 0.001)
	assert.InDelta(t, 100.0, points[0].TotalVolume, 0.001)

	other := s.signUp(t, "perf-other@example.com")
	w = s.do(t, http.MethodGet, "/api/v1/stats/performance/exercise/"+pushUp.ExerciseID.Hex(), other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`, "only the caller's sets count")

	w = s.do(t, http.MethodGet, "/api/v1/stats/performance/exercise/"+primitive.NewObjectID().Hex(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/stats/performance/exercise/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanCompletion(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "completion@example.com")
	plan := s.generatePlan(t, token)

	w := s.do(t, http.MethodGet, "/api/v1/stats/completion/plans?endDate="+plan.EndDate.Format(dateLayout), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[domain.PlanStatus]int{domain.PlanActive: 1}, decode[map[domain.PlanStatus]int](t, w).Data)
}
