package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	conditionRatingMin = 1
	conditionRatingMax = 5
)

// ConditionInput is a daily wellness entry. Nil fields are not reported on
// create and left untouched on update.
type ConditionInput struct {
	SleepHours     *float64
	SleepQuality   *int
	EnergyLevel    *int
	StressLevel    *int
	MuscleSoreness *int
	Notes          *string
}

func (in ConditionInput) validate() error {
	verr := &ValidationError{}
	if in.SleepHours != nil && (*in.SleepHours < 0 || *in.SleepHours > 24) {
		verr.Add("sleepHours", "must be between 0 and 24")
	}
	for _, r := range []struct {
		field string
		value *int
	}{
		{"sleepQuality", in.SleepQuality},
		{"energyLevel", in.EnergyLevel},
		{"stressLevel", in.StressLevel},
		{"muscleSoreness", in.MuscleSoreness},
	} {
		if r.value != nil && (*r.value < conditionRatingMin || *r.value > conditionRatingMax) {
			verr.Add(r.field, "must be between 1 and 5")
		}
	}
	return verr.OrNil()
}

func (in ConditionInput) applyTo(c *domain.DailyCondition) {
	if in.SleepHours != nil {
		c.SleepHours = in.SleepHours
	}
	if in.SleepQuality != nil {
		c.SleepQuality = in.SleepQuality
	}
	if in.EnergyLevel != nil {
		c.EnergyLevel = in.EnergyLevel
	}
	if in.StressLevel != nil {
		c.StressLevel = in.StressLevel
	}
	if in.MuscleSoreness != nil {
		c.MuscleSoreness = in.MuscleSoreness
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
}

// ConditionService records the user's daily wellness entries.
type ConditionService struct {
	conditions repository.DailyConditionRepository
}

func NewConditionService(repos Repositories) *ConditionService {
	return &ConditionService{conditions: repos.Conditions}
}

// Create logs the entry for date. A second entry for the same date is a conflict.
func (s *ConditionService) Create(ctx context.Context, userID primitive.ObjectID, date time.Time, in ConditionInput) (*domain.DailyCondition, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &domain.DailyCondition{UserID: userID, Date: domain.DateOnly(date)}
	in.applyTo(c)
	if _, err := s.conditions.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConditionAlreadyLogged
		}
		return nil, err
	}
	return c, nil
}

// List returns entries within [from, to], most recent first. Zero bounds are open.
func (s *ConditionService) List(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.DailyCondition, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, invalid("endDate", "must not be before startDate")
	}
	if to.IsZero() {
		to = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	out, err := s.conditions.ListByUser(ctx, userID, domain.DateOnly(from), domain.DateOnly(to))
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// Update changes the fields present in the input of the entry for date.
func (s *ConditionService) Update(ctx context.Context, userID primitive.ObjectID, date time.Time, in ConditionInput) (*domain.DailyCondition, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.conditions.GetByUserAndDate(ctx, userID, domain.DateOnly(date))
	if err != nil {
		return nil, mapRepoErr(err, "daily condition")
	}
	in.applyTo(c)
	if err := s.conditions.Update(ctx, c); err != nil {
		return nil, mapRepoErr(err, "daily condition")
	}
	return c, nil
}
