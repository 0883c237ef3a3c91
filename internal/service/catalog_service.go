package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrMediaUnavailable is returned when no object storage is configured.
var ErrMediaUnavailable = errors.New("media storage is not configured")

// CatalogService reads and curates the exercise catalog.
type CatalogService interface {
	List(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	CreateCustom(ctx context.Context, userID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	Update(ctx context.Context, id primitive.ObjectID, caller TokenClaims, in ExerciseUpdate) (*domain.Exercise, error)
	Delete(ctx context.Context, id primitive.ObjectID, caller TokenClaims) error
	MediaUploadURL(ctx context.Context, id primitive.ObjectID, caller TokenClaims, contentType string) (url, key string, err error)
	MediaURL(ctx context.Context, id primitive.ObjectID) (string, error)
	// Seed inserts the exercises whose names are not in the catalog yet and
	// returns how many were added.
	Seed(ctx context.Context, exercises []domain.Exercise) (int, error)
}

type ExerciseInput struct {
	Name             string
	TargetMuscle     string
	BodyPart         string
	Equipment        string
	SecondaryMuscles []string
	Description      string
}

func (in ExerciseInput) validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "is required")
	}
	if strings.TrimSpace(in.Equipment) == "" {
		verr.Add("equipment", "is required")
	}
	return verr.OrNil()
}

// ExerciseUpdate is a partial edit of a custom exercise. Nil fields are kept.
type ExerciseUpdate struct {
	Name             *string
	TargetMuscle     *string
	BodyPart         *string
	Equipment        *string
	SecondaryMuscles []string
	Description      *string
}

func (u ExerciseUpdate) empty() bool {
	return u.Name == nil && u.TargetMuscle == nil && u.BodyPart == nil &&
		u.Equipment == nil && u.SecondaryMuscles == nil && u.Description == nil
}

type catalogService struct {
	exerciseRepo        repository.ExerciseRepository
	workoutExerciseRepo repository.WorkoutExerciseRepository
	files               storage.FileStorage // nil disables media
	urlExpiry           time.Duration
}

func NewCatalogService(
	exerciseRepo repository.ExerciseRepository,
	workoutExerciseRepo repository.WorkoutExerciseRepository,
	files storage.FileStorage,
) CatalogService {
	return &catalogService{
		exerciseRepo:        exerciseRepo,
		workoutExerciseRepo: workoutExerciseRepo,
		files:               files,
		urlExpiry:           storage.DefaultPresignedURLExpiry,
	}
}

// canEdit reports whether caller may change the exercise. Admins may edit any
// entry, users only the custom ones they created.
func canEdit(exercise *domain.Exercise, caller TokenClaims) bool {
	if caller.Role == domain.RoleAdmin {
		return true
	}
	return exercise.IsCustom && exercise.CreatedBy != nil && *exercise.CreatedBy == caller.UserID
}

func (s *catalogService) List(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	return s.exerciseRepo.List(ctx, filter)
}

func (s *catalogService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "exercise")
	}
	return exercise, nil
}

// CreateCustom adds a user-defined exercise to the shared catalog.
func (s *catalogService) CreateCustom(ctx context.Context, userID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	exercise := &domain.Exercise{
		Name:             strings.TrimSpace(in.Name),
		TargetMuscle:     strings.ToLower(strings.TrimSpace(in.TargetMuscle)),
		BodyPart:         strings.ToLower(strings.TrimSpace(in.BodyPart)),
		Equipment:        strings.ToLower(strings.TrimSpace(in.Equipment)),
		SecondaryMuscles: in.SecondaryMuscles,
		Description:      in.Description,
		IsCustom:         true,
		CreatedBy:        &userID,
	}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, mapRepoErr(err, "exercise")
	}
	return exercise, nil
}

// Update applies a partial edit to an exercise the caller may edit.
func (s *catalogService) Update(ctx context.Context, id primitive.ObjectID, caller TokenClaims, in ExerciseUpdate) (*domain.Exercise, error) {
	if in.empty() {
		return nil, invalid("body", "no fields to update")
	}
	exercise, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEdit(exercise, caller) {
		return nil, ErrForbidden
	}

	// Apply only the fields that were sent
	if in.Name != nil {
		exercise.Name = strings.TrimSpace(*in.Name)
	}
	if in.TargetMuscle != nil {
		exercise.TargetMuscle = strings.ToLower(strings.TrimSpace(*in.TargetMuscle))
	}
	if in.BodyPart != nil {
		exercise.BodyPart = strings.ToLower(strings.TrimSpace(*in.BodyPart))
	}
	if in.Equipment != nil {
		exercise.Equipment = strings.ToLower(strings.TrimSpace(*in.Equipment))
	}
	if in.SecondaryMuscles != nil {
		exercise.SecondaryMuscles = in.SecondaryMuscles
	}
	if in.Description != nil {
		exercise.Description = *in.Description
	}

	verr := &ValidationError{}
	if exercise.Name == "" {
		verr.Add("name", "must not be empty")
	}
	if exercise.Equipment == "" {
		verr.Add("equipment", "must not be empty")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, mapRepoErr(err, "exercise")
	}
	return exercise, nil
}

// Delete removes an exercise the caller may edit. Entries still referenced by
// a workout exercise are kept and reported as a conflict.
func (s *catalogService) Delete(ctx context.Context, id primitive.ObjectID, caller TokenClaims) error {
	exercise, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canEdit(exercise, caller) {
		return ErrForbidden
	}

	used, err := s.workoutExerciseRepo.ListByExercise(ctx, id)
	if err != nil {
		return err
	}
	if len(used) > 0 {
		return conflictf("exercise is used by %d workout exercises", len(used))
	}

	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		return mapRepoErr(err, "exercise")
	}
	if exercise.MediaKey != "" && s.files != nil {
		// Best effort, like replacing media
		_ = s.files.DeleteObject(ctx, exercise.MediaKey)
	}
	return nil
}

// MediaUploadURL reserves a new object key for the exercise and returns a
// presigned PUT URL for it. Admins may attach media to any exercise, users
// only to the ones they created.
func (s *catalogService) MediaUploadURL(ctx context.Context, id primitive.ObjectID, caller TokenClaims, contentType string) (string, string, error) {
	if s.files == nil {
		return "", "", ErrMediaUnavailable
	}
	exercise, err := s.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	if !canEdit(exercise, caller) {
		return "", "", ErrForbidden
	}

	key, err := storage.MediaKey(id.Hex(), contentType)
	if err != nil {
		return "", "", invalid("contentType", err.Error())
	}
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, s.urlExpiry)
	if err != nil {
		return "", "", fmt.Errorf("presign upload: %w", err)
	}

	previous := exercise.MediaKey
	exercise.MediaKey = key
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return "", "", mapRepoErr(err, "exercise")
	}
	if previous != "" {
		// Best effort; a stale object only costs storage.
		_ = s.files.DeleteObject(ctx, previous)
	}
	return url, key, nil
}

// MediaURL returns a presigned GET URL for the exercise's media.
func (s *catalogService) MediaURL(ctx context.Context, id primitive.ObjectID) (string, error) {
	if s.files == nil {
		return "", ErrMediaUnavailable
	}
	exercise, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if exercise.MediaKey == "" {
		return "", notFound("exercise media")
	}
	return s.files.GeneratePresignedDownloadURL(ctx, exercise.MediaKey, s.urlExpiry)
}

func (s *catalogService) Seed(ctx context.Context, exercises []domain.Exercise) (int, error) {
	existing, err := s.exerciseRepo.List(ctx, repository.ExerciseFilter{})
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, ex := range existing {
		known[strings.ToLower(ex.Name)] = true
	}

	added := 0
	for i := range exercises {
		ex := exercises[i]
		key := strings.ToLower(strings.TrimSpace(ex.Name))
		if key == "" || known[key] {
			continue
		}
		ex.IsCustom = false
		if _, err := s.exerciseRepo.Create(ctx, &ex); err != nil {
			return added, fmt.Errorf("seed %q: %w", ex.Name, err)
		}
		known[key] = true
		added++
	}
	return added, nil
}
