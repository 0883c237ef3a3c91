package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler serves training plans and their sessions.
type PlanHandler struct {
	plans       *service.PlanService
	synthesizer *service.Synthesizer
	cascade     *service.CascadeEngine
	log         *slog.Logger
}

func NewPlanHandler(plans *service.PlanService, synthesizer *service.Synthesizer, cascade *service.CascadeEngine, log *slog.Logger) *PlanHandler {
	return &PlanHandler{plans: plans, synthesizer: synthesizer, cascade: cascade, log: log}
}

type PlanStatusRequest struct {
	Status domain.PlanStatus `json:"status" binding:"required,oneof=Active Paused Completed Archived"`
}

type SessionStatusRequest struct {
	Status domain.SessionStatus `json:"status" binding:"required,oneof=Completed Skipped"`
}

// GeneratePlan godoc
// @Summary Generate next week's training plan
// @Description Builds a prompt from the profile, the catalog and the last finished plan, and stores the generated week.
// @Tags Plans
// @Produce json
// @Success 201 {object} domain.TrainingPlan
// @Failure 409 {object} gin.H "An active plan already exists"
// @Failure 502 {object} gin.H "Generation failed"
// @Security BearerAuth
// @Router /plans/generate [post]
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	plan, err := h.synthesizer.GeneratePlan(c.Request.Context(), userID)
	if err != nil {
		// Generation failures map to 502 with a fixed summary
		respondError(c, h.log, err)
		return
	}

	// Return the nested view so the client can render the week at once
	detail, err := h.plans.GetPlan(c.Request.Context(), plan.ID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Training plan generated", detail)
}

// ListPlans godoc
// @Summary List the user's plans, newest first
// @Tags Plans
// @Produce json
// @Success 200 {array} domain.TrainingPlan
// @Security BearerAuth
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	plans, err := h.plans.ListPlans(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if plans == nil {
		plans = []domain.TrainingPlan{} // Return empty JSON array, not null
	}
	respond(c, http.StatusOK, "Plans retrieved", plans)
}

// GetPlan godoc
// @Summary Plan with sessions, exercises and results
// @Tags Plans
// @Produce json
// @Param planId path string true "Plan ID"
// @Success 200 {object} service.PlanDetail
// @Failure 403 {object} gin.H
// @Failure 404 {object} gin.H
// @Security BearerAuth
// @Router /plans/{planId} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	detail, err := h.plans.GetPlan(c.Request.Context(), planID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Plan retrieved", detail)
}

// SetPlanStatus godoc
// @Summary Pause, resume, complete or archive a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param planId path string true "Plan ID"
// @Param status body PlanStatusRequest true "Target status"
// @Success 200 {object} domain.TrainingPlan
// @Failure 409 {object} gin.H "Transition not allowed"
// @Security BearerAuth
// @Router /plans/{planId}/status [patch]
func (h *PlanHandler) SetPlanStatus(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	// Bind and validate the target status
	var req PlanStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	plan, err := h.cascade.SetPlanStatus(c.Request.Context(), planID, userID, req.Status)
	if err != nil {
		// Disallowed transitions come back as conflicts
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Plan status updated", plan)
}

// GetSession godoc
// @Summary Session with its exercises and results
// @Tags Sessions
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} service.SessionDetail
// @Security BearerAuth
// @Router /sessions/{sessionId} [get]
func (h *PlanHandler) GetSession(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}
	detail, err := h.plans.GetSession(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Session retrieved", detail)
}

// SetSessionStatus godoc
// @Summary Complete or skip a session by hand
// @Description Remaining open exercises of the session take the same status.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param status body SessionStatusRequest true "Target status"
// @Success 200 {object} domain.WorkoutSession
// @Failure 409 {object} gin.H "Session already finished"
// @Security BearerAuth
// @Router /sessions/{sessionId}/status [patch]
func (h *PlanHandler) SetSessionStatus(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}
	// Only Completed and Skipped can be set by hand
	var req SessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	session, err := h.cascade.SetSessionStatus(c.Request.Context(), sessionID, userID, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Session status updated", session)
}
