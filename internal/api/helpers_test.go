package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/generation"
	"alcyxob/fitness-coach/internal/observability"
	"alcyxob/fitness-coach/internal/repository/memory"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	runs   int
	report service.SweepReport
}

func (f *fakeSweeper) Run(context.Context) service.SweepReport {
	f.runs++
	return f.report
}

type testServer struct {
	router  *gin.Engine
	repos   service.Repositories
	auth    service.AuthService
	sweeper *fakeSweeper
}

type apiResponse[T any] struct {
	Message string          `json:"message"`
	Data    T               `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithGenerator(t, generation.NewStaticGenerator())
}

func newTestServerWithGenerator(t *testing.T, generator generation.PlanGenerator) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	repos := service.Repositories{
		Users:            store.Users(),
		Exercises:        store.Exercises(),
		Plans:            store.Plans(),
		Sessions:         store.Sessions(),
		WorkoutExercises: store.WorkoutExercises(),
		Results:          store.Results(),
		Conditions:       store.Conditions(),
		Measurements:     store.Measurements(),
		Tx:               store,
	}
	tables, err := config.DefaultPlanningTables()
	require.NoError(t, err)

	log := observability.Discard()
	auth := service.NewAuthService(repos.Users, "test-secret", time.Hour, service.SystemClock)
	catalog := service.NewCatalogService(repos.Exercises, repos.WorkoutExercises, nil)
	analyzer := service.NewAnalyzer(repos)
	cascade := service.NewCascadeEngine(repos, service.SystemClock, log)
	sweeper := &fakeSweeper{report: service.SweepReport{Processed: 2, Completed: 1, Archived: 1}}

	_, err = catalog.Seed(context.Background(), []domain.Exercise{
		{Name: "push-up", Equipment: "body weight", BodyPart: "chest"},
		{Name: "dumbbell goblet squat", Equipment: "dumbbell", BodyPart: "upper legs"},
		{Name: "dumbbell bent over row", Equipment: "dumbbell", BodyPart: "back"},
		{Name: "glute bridge", Equipment: "body weight", BodyPart: "upper legs"},
		{Name: "barbell bench press", Equipment: "barbell", BodyPart: "chest"},
	})
	require.NoError(t, err)

	router := gin.New()
	SetupRoutes(router, Services{
		Auth:             auth,
		Catalog:          catalog,
		Plans:            service.NewPlanService(repos),
		Synthesizer:      service.NewSynthesizer(repos, analyzer, generator, tables, 5*time.Second, service.SystemClock, log),
		Cascade:          cascade,
		WorkoutExercises: service.NewWorkoutExerciseService(repos, cascade),
		Results:          service.NewResultService(repos),
		Conditions:       service.NewConditionService(repos),
		Stats:            service.NewStatsService(repos, analyzer, service.SystemClock),
		Sweeper:          sweeper,
	}, log)

	return &testServer{router: router, repos: repos, auth: auth, sweeper: sweeper}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doWithHeader(t *testing.T, method, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", authorization)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) apiResponse[T] {
	t.Helper()
	var out apiResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signUp registers through the API and returns a bearer token.
func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Alex",
		"email":    email,
		"password": "correct-horse",
		"profile":  gin.H{"goal": "General Fitness", "trainingLocation": "home", "activityLevel": "Moderately Active"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[LoginResponse](t, w).Data.Token
}

// adminToken creates an admin directly through the service, as the seed command does.
func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	_, err := s.auth.Register(context.Background(), service.RegisterInput{
		Name: "Admin", Email: "admin@example.com", Password: "admin-password", Role: domain.RoleAdmin,
	})
	require.NoError(t, err)
	token, _, err := s.auth.Login(context.Background(), "admin@example.com", "admin-password")
	require.NoError(t, err)
	return token
}
