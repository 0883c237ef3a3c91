package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// StatsHandler serves aggregated history and body measurements.
type StatsHandler struct {
	stats *service.StatsService
	log   *slog.Logger
}

func NewStatsHandler(stats *service.StatsService, log *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, log: log}
}

type MeasurementRequest struct {
	Date   string   `json:"date" binding:"required"` // YYYY-MM-DD
	Weight *float64 `json:"weight"`                  // kilograms
	Height *float64 `json:"height"`                  // centimeters
	Notes  string   `json:"notes"`
}

// statsQuery reads the date range and groupBy query parameters.
func statsQuery(c *gin.Context, fallback service.GroupBy) (service.StatsQuery, bool) {
	from, to, ok := queryDateRange(c)
	if !ok {
		return service.StatsQuery{}, false
	}
	groupBy, err := service.ParseGroupBy(c.Query("groupBy"), fallback)
	if err != nil {
		respondError(c, nil, err)
		return service.StatsQuery{}, false
	}
	return service.StatsQuery{From: from, To: to, GroupBy: groupBy}, true
}

// Progress godoc
// @Summary Training and condition summary over a date range
// @Tags Stats
// @Produce json
// @Param startDate query string false "YYYY-MM-DD (default 30 days before endDate)"
// @Param endDate query string false "YYYY-MM-DD (default today)"
// @Success 200 {object} service.Progress
// @Security BearerAuth
// @Router /stats/progress [get]
func (h *StatsHandler) Progress(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	from, to, ok := queryDateRange(c)
	if !ok {
		return
	}
	progress, err := h.stats.Progress(c.Request.Context(), userID, from, to)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Progress retrieved", progress)
}

// ExercisePerformance godoc
// @Summary Logged sets of one exercise, grouped by period
// @Tags Stats
// @Produce json
// @Param exerciseId path string true "Exercise ID"
// @Param groupBy query string false "day (default), week, month or year"
// @Success 200 {array} service.PerformancePoint
// @Security BearerAuth
// @Router /stats/performance/exercise/{exerciseId} [get]
func (h *StatsHandler) ExercisePerformance(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	q, ok := statsQuery(c, service.GroupByDay)
	if !ok {
		return
	}
	points, err := h.stats.ExercisePerformance(c.Request.Context(), userID, exerciseID, q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Exercise performance retrieved", points)
}

// SessionStats godoc
// @Summary Session counts by status, grouped by period
// @Tags Stats
// @Produce json
// @Param groupBy query string false "day, week (default), month or year"
// @Param status query string false "Planned, Completed or Skipped"
// @Success 200 {array} service.SessionPoint
// @Security BearerAuth
// @Router /stats/sessions [get]
func (h *StatsHandler) SessionStats(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	q, ok := statsQuery(c, service.GroupByWeek)
	if !ok {
		return
	}
	points, err := h.stats.SessionStats(c.Request.Context(), userID, q, domain.SessionStatus(c.Query("status")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Session stats retrieved", points)
}

// ConditionStats godoc
// @Summary Daily condition averages, grouped by period
// @Tags Stats
// @Produce json
// @Param groupBy query string false "day (default), week, month or year"
// @Success 200 {array} service.ConditionPoint
// @Security BearerAuth
// @Router /stats/daily-conditions [get]
func (h *StatsHandler) ConditionStats(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	q, ok := statsQuery(c, service.GroupByDay)
	if !ok {
		return
	}
	points, err := h.stats.ConditionStats(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Condition stats retrieved", points)
}

// PlanCompletion godoc
// @Summary Plan counts by status over plan end dates
// @Tags Stats
// @Produce json
// @Success 200 {object} map[string]int
// @Security BearerAuth
// @Router /stats/completion/plans [get]
func (h *StatsHandler) PlanCompletion(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	from, to, ok := queryDateRange(c)
	if !ok {
		return
	}
	counts, err := h.stats.PlanCompletion(c.Request.Context(), userID, service.StatsQuery{From: from, To: to})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Plan completion retrieved", counts)
}

// CreateMeasurement godoc
// @Summary Record a body measurement
// @Tags Stats
// @Accept json
// @Produce json
// @Param measurement body MeasurementRequest true "Measurement"
// @Success 201 {object} domain.UserMeasurement
// @Failure 400 {object} gin.H "Neither weight nor height"
// @Security BearerAuth
// @Router /stats/measurements [post]
func (h *StatsHandler) CreateMeasurement(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req MeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date: expected YYYY-MM-DD")
		return
	}
	m, err := h.stats.RecordMeasurement(c.Request.Context(), userID, service.MeasurementInput{
		Date:   date,
		Weight: req.Weight,
		Height: req.Height,
		Notes:  req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Measurement recorded", m)
}

// ListMeasurements godoc
// @Summary Body measurement history, oldest first
// @Tags Stats
// @Produce json
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {array} domain.UserMeasurement
// @Security BearerAuth
// @Router /stats/measurements [get]
func (h *StatsHandler) ListMeasurements(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	from, to, ok := queryDateRange(c)
	if !ok {
		return
	}
	// Unlike the other series, an omitted bound leaves the history open
	var fromPtr, toPtr *time.Time
	if !from.IsZero() {
		fromPtr = &from
	}
	if !to.IsZero() {
		toPtr = &to
	}
	measurements, err := h.stats.MeasurementHistory(c.Request.Context(), userID, fromPtr, toPtr)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Measurements retrieved", nonNil(measurements))
}
