package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// ConditionHandler serves daily condition entries.
type ConditionHandler struct {
	conditions *service.ConditionService
	log        *slog.Logger
}

func NewConditionHandler(conditions *service.ConditionService, log *slog.Logger) *ConditionHandler {
	return &ConditionHandler{conditions: conditions, log: log}
}

type ConditionRequest struct {
	SleepHours     *float64 `json:"sleepHours"`
	SleepQuality   *int     `json:"sleepQuality"`
	EnergyLevel    *int     `json:"energyLevel"`
	StressLevel    *int     `json:"stressLevel"`
	MuscleSoreness *int     `json:"muscleSoreness"`
	Notes          *string  `json:"notes"`
}

func (r ConditionRequest) toInput() service.ConditionInput {
	return service.ConditionInput{
		SleepHours:     r.SleepHours,
		SleepQuality:   r.SleepQuality,
		EnergyLevel:    r.EnergyLevel,
		StressLevel:    r.StressLevel,
		MuscleSoreness: r.MuscleSoreness,
		Notes:          r.Notes,
	}
}

type CreateConditionRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
	ConditionRequest
}

// CreateCondition godoc
// @Summary Log today's (or another day's) condition
// @Tags Conditions
// @Accept json
// @Produce json
// @Param condition body CreateConditionRequest true "Condition"
// @Success 201 {object} domain.DailyCondition
// @Failure 409 {object} gin.H "Already logged for that date"
// @Security BearerAuth
// @Router /conditions [post]
func (h *ConditionHandler) CreateCondition(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CreateConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date: expected YYYY-MM-DD")
		return
	}
	condition, err := h.conditions.Create(c.Request.Context(), userID, date, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Condition logged", condition)
}

// ListConditions godoc
// @Summary Condition entries, most recent first
// @Tags Conditions
// @Produce json
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {array} domain.DailyCondition
// @Security BearerAuth
// @Router /conditions [get]
func (h *ConditionHandler) ListConditions(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	from, to, ok := queryDateRange(c)
	if !ok {
		return
	}
	conditions, err := h.conditions.List(c.Request.Context(), userID, from, to)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Conditions retrieved", nonNil(conditions))
}

// UpdateCondition godoc
// @Summary Change the entry for a date
// @Tags Conditions
// @Accept json
// @Produce json
// @Param date path string true "YYYY-MM-DD"
// @Param condition body ConditionRequest true "Fields to change"
// @Success 200 {object} domain.DailyCondition
// @Failure 404 {object} gin.H
// @Security BearerAuth
// @Router /conditions/{date} [put]
func (h *ConditionHandler) UpdateCondition(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	date, err := parseDate(c.Param("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date: expected YYYY-MM-DD")
		return
	}
	var req ConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	condition, err := h.conditions.Update(c.Request.Context(), userID, date, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Condition updated", condition)
}
