package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by a service wraps exactly one of these,
// so callers can branch with errors.Is.
var (
	ErrNotFound                  = errors.New("not found")
	ErrForbidden                 = errors.New("forbidden")
	ErrConflict                  = errors.New("conflict")
	ErrValidation                = errors.New("validation failed")
	ErrGenerationFailed          = errors.New("plan generation failed")
	ErrInvalidGeneratedStructure = errors.New("generated plan has an invalid structure")
	ErrNoExercisesAvailable      = errors.New("no exercises available for the selected training location")
)

// Specific conditions, reported to the user as-is.
var (
	ErrActivePlanExists       = fmt.Errorf("%w: an active plan already exists", ErrConflict)
	ErrSessionTerminal        = fmt.Errorf("%w: session is already completed or skipped", ErrConflict)
	ErrExerciseTerminal       = fmt.Errorf("%w: exercise is already completed or skipped", ErrConflict)
	ErrConditionAlreadyLogged = fmt.Errorf("%w: condition already logged for this date", ErrConflict)
)

func notFound(entity string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, entity)
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// FieldError is one field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level problems with an input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records a problem with field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns e when it holds at least one problem.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalid(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
