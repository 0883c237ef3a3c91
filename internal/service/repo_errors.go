package service

import (
	"errors"

	"alcyxob/fitness-coach/internal/repository"
)

// mapRepoErr translates repository errors into service error kinds.
func mapRepoErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound(entity)
	case errors.Is(err, repository.ErrDuplicate) && entity == "training plan":
		return ErrActivePlanExists
	case errors.Is(err, repository.ErrDuplicate):
		return conflictf("%s already exists", entity)
	default:
		return err
	}
}
