package service

import (
	"context"
	"log/slog"
	"time"

	"alcyxob/fitness-coach/internal/domain"
)

// SweepReport counts what one sweeper run did.
type SweepReport struct {
	Processed int `json:"processed"`
	Completed int `json:"completed"`
	Archived  int `json:"archived"`
	Skipped   int `json:"skipped"` // no longer Active when its transaction ran
	Failed    int `json:"failed"`
}

// Sweeper closes Active plans whose week has already ended.
type Sweeper struct {
	repos Repositories
	now   Clock
	log   *slog.Logger
}

func NewSweeper(repos Repositories, now Clock, log *slog.Logger) *Sweeper {
	return &Sweeper{repos: repos, now: now, log: log}
}

// Run reconciles every overdue plan in its own transaction. A failing plan is
// rolled back, logged and counted; the rest are still processed.
func (s *Sweeper) Run(ctx context.Context) SweepReport {
	var report SweepReport
	today := domain.DateOnly(s.now())

	plans, err := s.repos.Plans.ListActiveEndingBefore(ctx, today)
	if err != nil {
		s.log.Error("sweeper could not list overdue plans", "error", err)
		return report
	}

	for i := range plans {
		if ctx.Err() != nil {
			s.log.Warn("sweeper stopped early", "error", ctx.Err(), "remaining", len(plans)-i)
			break
		}
		plan := &plans[i]
		report.Processed++

		status, err := s.reconcile(ctx, plan, today)
		if err != nil {
			report.Failed++
			s.log.Error("sweeper failed to reconcile plan",
				"plan_id", plan.ID.Hex(), "user_id", plan.UserID.Hex(), "error", err)
			continue
		}
		switch status {
		case domain.PlanCompleted:
			report.Completed++
		case domain.PlanArchived:
			report.Archived++
		default:
			report.Skipped++
			s.log.Info("sweeper skipped plan that is no longer active", "plan_id", plan.ID.Hex())
			continue
		}
		s.log.Info("sweeper closed plan", "plan_id", plan.ID.Hex(), "status", status)
	}

	s.log.Info("sweeper run finished",
		"processed", report.Processed,
		"completed", report.Completed,
		"archived", report.Archived,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report
}

// reconcile skips the open sessions dated before today and closes the plan.
// It returns an empty status when the plan left Active after it was listed.
func (s *Sweeper) reconcile(ctx context.Context, plan *domain.TrainingPlan, today time.Time) (domain.PlanStatus, error) {
	var final domain.PlanStatus
	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		// The user may have paused or closed the plan since the listing
		current, err := s.repos.Plans.GetByID(ctx, plan.ID)
		if err != nil {
			return err
		}
		if current.Status != domain.PlanActive {
			return nil
		}

		sessions, err := s.repos.Sessions.ListByPlan(ctx, plan.ID)
		if err != nil {
			return err
		}

		for i := range sessions {
			session := &sessions[i]
			if session.Status.IsTerminal() || !session.Date.Before(today) {
				continue
			}
			exercises, err := s.repos.WorkoutExercises.ListBySession(ctx, session.ID)
			if err != nil {
				return err
			}
			for _, we := range exercises {
				if we.Status.IsTerminal() {
					continue
				}
				if err := s.repos.WorkoutExercises.UpdateStatus(ctx, we.ID, domain.ExerciseSkipped); err != nil {
					return err
				}
			}
			if err := s.repos.Sessions.UpdateStatus(ctx, session.ID, domain.SessionSkipped); err != nil {
				return err
			}
			session.Status = domain.SessionSkipped
		}

		status := domain.PlanArchived
		if len(sessions) > 0 && allSessionsTerminal(sessions) {
			status = domain.PlanCompleted
		}
		if err := s.repos.Plans.UpdateStatus(ctx, plan.ID, status); err != nil {
			return err
		}
		final = status
		return nil
	})
	if err != nil {
		return "", err
	}
	return final, nil
}
