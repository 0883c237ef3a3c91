package api

import (
	"context"
	"log/slog"
	"net/http"

	"alcyxob/fitness-coach/internal/observability"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// SweepRunner runs one overdue-plan sweep.
type SweepRunner interface {
	Run(ctx context.Context) service.SweepReport
}

// AdminHandler exposes maintenance jobs to admins.
type AdminHandler struct {
	sweeper SweepRunner
	log     *slog.Logger
}

func NewAdminHandler(sweeper SweepRunner, log *slog.Logger) *AdminHandler {
	return &AdminHandler{sweeper: sweeper, log: log}
}

// RunSweep godoc
// @Summary Run the overdue plan sweep now
// @Tags Admin
// @Produce json
// @Success 200 {object} service.SweepReport
// @Failure 403 {object} gin.H
// @Security BearerAuth
// @Router /admin/sweeps [post]
func (h *AdminHandler) RunSweep(c *gin.Context) {
	report := h.sweeper.Run(c.Request.Context())
	observability.LoggerFromContext(c.Request.Context(), h.log).Info("manual sweep finished",
		"processed", report.Processed, "failed", report.Failed)
	respond(c, http.StatusOK, "Sweep finished", report)
}
