package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutExerciseHandler covers the exercise instances inside sessions and
// the sets logged against them.
type WorkoutExerciseHandler struct {
	exercises *service.WorkoutExerciseService
	cascade   *service.CascadeEngine
	results   *service.ResultService
	log       *slog.Logger
}

func NewWorkoutExerciseHandler(exercises *service.WorkoutExerciseService, cascade *service.CascadeEngine, results *service.ResultService, log *slog.Logger) *WorkoutExerciseHandler {
	return &WorkoutExerciseHandler{exercises: exercises, cascade: cascade, results: results, log: log}
}

type WorkoutExerciseRequest struct {
	ExerciseID      string   `json:"exerciseId"`
	Order           *int     `json:"order"`
	SetsPlanned     *int     `json:"setsPlanned"`
	RepsPlanned     *int     `json:"repsPlanned"`
	WeightPlanned   *float64 `json:"weightPlanned"`
	DurationPlanned *int     `json:"durationPlanned"`
	RestPeriod      *int     `json:"restPeriod"`
	Notes           string   `json:"notes"`
}

func (r WorkoutExerciseRequest) toInput() (service.WorkoutExerciseInput, error) {
	in := service.WorkoutExerciseInput{
		Order:           r.Order,
		SetsPlanned:     r.SetsPlanned,
		RepsPlanned:     r.RepsPlanned,
		WeightPlanned:   r.WeightPlanned,
		DurationPlanned: r.DurationPlanned,
		RestPeriod:      r.RestPeriod,
		Notes:           r.Notes,
	}
	if r.ExerciseID != "" {
		id, err := primitive.ObjectIDFromHex(r.ExerciseID)
		if err != nil {
			return in, errors.New("Invalid exerciseId format")
		}
		in.ExerciseID = id
	}
	return in, nil
}

type SwapRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

type ExerciseStatusRequest struct {
	Status domain.ExerciseStatus `json:"status" binding:"required,oneof=Completed Skipped"`
}

type ResultRequest struct {
	SetNumber         int        `json:"setNumber" binding:"required"`
	RepsCompleted     *int       `json:"repsCompleted"`
	WeightUsed        *float64   `json:"weightUsed"`
	DurationCompleted *int       `json:"durationCompleted"`
	Rating            *int       `json:"rating"`
	Notes             string     `json:"notes"`
	CompletedAt       *time.Time `json:"completedAt"`
}

// AddExercise godoc
// @Summary Add an exercise to a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param exercise body WorkoutExerciseRequest true "Exercise"
// @Success 201 {object} domain.WorkoutExercise
// @Security BearerAuth
// @Router /sessions/{sessionId}/exercises [post]
func (h *WorkoutExerciseHandler) AddExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}
	in, ok := bindWorkoutExercise(c)
	if !ok {
		return
	}
	we, err := h.exercises.AddExercise(c.Request.Context(), sessionID, userID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Exercise added to session", we)
}

// UpdateExercise godoc
// @Summary Change planned values, order or notes
// @Tags WorkoutExercises
// @Accept json
// @Produce json
// @Param id path string true "Workout exercise ID"
// @Param exercise body WorkoutExerciseRequest true "Planned values"
// @Success 200 {object} domain.WorkoutExercise
// @Security BearerAuth
// @Router /workout-exercises/{id} [put]
func (h *WorkoutExerciseHandler) UpdateExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := bindWorkoutExercise(c)
	if !ok {
		return
	}
	we, err := h.exercises.UpdateExercise(c.Request.Context(), id, userID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Exercise updated", we)
}

// SwapExercise godoc
// @Summary Replace the catalog exercise, keeping logged sets
// @Tags WorkoutExercises
// @Accept json
// @Produce json
// @Param id path string true "Workout exercise ID"
// @Param swap body SwapRequest true "New catalog exercise"
// @Success 200 {object} domain.WorkoutExercise
// @Security BearerAuth
// @Router /workout-exercises/{id}/swap [patch]
func (h *WorkoutExerciseHandler) SwapExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	// The replacement must be a catalog entry ID
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
		return
	}
	// Planned values and logged results stay with the instance
	we, err := h.exercises.SwapExercise(c.Request.Context(), id, userID, exerciseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Exercise swapped", we)
}

// DeleteExercise godoc
// @Summary Remove an exercise and its logged sets from a session
// @Tags WorkoutExercises
// @Param id path string true "Workout exercise ID"
// @Success 204
// @Security BearerAuth
// @Router /workout-exercises/{id} [delete]
func (h *WorkoutExerciseHandler) DeleteExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.exercises.DeleteExercise(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetExerciseStatus godoc
// @Summary Complete or skip an exercise by hand
// @Tags WorkoutExercises
// @Accept json
// @Produce json
// @Param id path string true "Workout exercise ID"
// @Param status body ExerciseStatusRequest true "Target status"
// @Success 200 {object} domain.WorkoutExercise
// @Security BearerAuth
// @Router /workout-exercises/{id}/status [patch]
func (h *WorkoutExerciseHandler) SetExerciseStatus(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ExerciseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	we, err := h.cascade.SetExerciseStatus(c.Request.Context(), id, userID, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Exercise status updated", we)
}

// RecordResult godoc
// @Summary Log one set
// @Description Logging the last planned set completes the exercise and may complete its session and plan.
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Workout exercise ID"
// @Param result body ResultRequest true "Set"
// @Success 201 {object} domain.ExerciseResult
// @Security BearerAuth
// @Router /workout-exercises/{id}/results [post]
func (h *WorkoutExerciseHandler) RecordResult(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	// Recording may start or complete the exercise, its session and its plan
	result, err := h.cascade.RecordResult(c.Request.Context(), id, userID, service.ResultInput{
		SetNumber:         req.SetNumber,
		RepsCompleted:     req.RepsCompleted,
		WeightUsed:        req.WeightUsed,
		DurationCompleted: req.DurationCompleted,
		Rating:            req.Rating,
		Notes:             req.Notes,
		CompletedAt:       req.CompletedAt,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Result recorded", result)
}

// ListResults godoc
// @Summary Sets logged against one exercise
// @Tags Results
// @Produce json
// @Param id path string true "Workout exercise ID"
// @Success 200 {array} domain.ExerciseResult
// @Security BearerAuth
// @Router /workout-exercises/{id}/results [get]
func (h *WorkoutExerciseHandler) ListResults(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	results, err := h.results.ListForWorkoutExercise(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Results retrieved", nonNil(results))
}

// ListUserResults godoc
// @Summary The user's result history, newest first
// @Tags Results
// @Produce json
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} domain.ExerciseResult
// @Security BearerAuth
// @Router /results [get]
func (h *WorkoutExerciseHandler) ListUserResults(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	// Build the filter from optional query parameters
	var filter repository.ResultFilter
	from, to, ok := queryDateRange(c)
	if !ok {
		return
	}
	if !from.IsZero() {
		filter.From = &from
	}
	if !to.IsZero() {
		// endDate is inclusive of the whole day.
		end := domain.AddDays(to, 1).Add(-time.Nanosecond)
		filter.To = &end
	}
	// Paging bounds are clamped in the service
	if filter.Limit, ok = queryInt(c, "limit"); !ok {
		return
	}
	if filter.Offset, ok = queryInt(c, "offset"); !ok {
		return
	}
	results, err := h.results.ListForUser(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Results retrieved", nonNil(results))
}

func bindWorkoutExercise(c *gin.Context) (service.WorkoutExerciseInput, bool) {
	var req WorkoutExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return service.WorkoutExerciseInput{}, false
	}
	in, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return in, false
	}
	return in, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s: must be an integer", name))
		return 0, false
	}
	return v, true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
