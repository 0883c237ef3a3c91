package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the catalog service dependency.
type ExerciseHandler struct {
	catalog service.CatalogService
	log     *slog.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(catalog service.CatalogService, log *slog.Logger) *ExerciseHandler {
	return &ExerciseHandler{catalog: catalog, log: log}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name             string   `json:"name" binding:"required"`
	TargetMuscle     string   `json:"targetMuscle"`
	BodyPart         string   `json:"bodyPart"`
	Equipment        string   `json:"equipment" binding:"required"` // e.g. "body weight", "dumbbell"
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Description      string   `json:"description"`
}

// UpdateExerciseRequest is a partial edit; omitted fields are kept.
type UpdateExerciseRequest struct {
	Name             *string  `json:"name"`
	TargetMuscle     *string  `json:"targetMuscle"`
	BodyPart         *string  `json:"bodyPart"`
	Equipment        *string  `json:"equipment"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Description      *string  `json:"description"`
}

type MediaUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type MediaUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// ExerciseResponse is the DTO for returning catalog entries.
type ExerciseResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	TargetMuscle     string    `json:"targetMuscle,omitempty"`
	BodyPart         string    `json:"bodyPart,omitempty"`
	Equipment        string    `json:"equipment,omitempty"`
	SecondaryMuscles []string  `json:"secondaryMuscles,omitempty"`
	Description      string    `json:"description,omitempty"`
	IsCustom         bool      `json:"isCustom"`
	HasMedia         bool      `json:"hasMedia"`
	CreatedBy        string    `json:"createdBy,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	resp := ExerciseResponse{
		ID:               ex.ID.Hex(),
		Name:             ex.Name,
		TargetMuscle:     ex.TargetMuscle,
		BodyPart:         ex.BodyPart,
		Equipment:        ex.Equipment,
		SecondaryMuscles: ex.SecondaryMuscles,
		Description:      ex.Description,
		IsCustom:         ex.IsCustom,
		HasMedia:         ex.MediaKey != "",
		CreatedAt:        ex.CreatedAt,
	}
	if ex.CreatedBy != nil {
		resp.CreatedBy = ex.CreatedBy.Hex()
	}
	return resp
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// --- Handler Methods ---

// ListExercises godoc
// @Summary Browse the exercise catalog
// @Tags Exercises
// @Produce json
// @Param equipment query string false "Comma-separated equipment tags"
// @Param bodyPart query string false "Body part"
// @Param search query string false "Name contains"
// @Success 200 {array} ExerciseResponse
// @Security BearerAuth
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	filter := repository.ExerciseFilter{
		BodyPart: strings.ToLower(strings.TrimSpace(c.Query("bodyPart"))),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("equipment"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				filter.Equipment = append(filter.Equipment, tag)
			}
		}
	}
	exercises, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Exercises retrieved", MapExercisesToResponse(exercises))
}

// GetExercise godoc
// @Summary One catalog entry
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 404 {object} gin.H
// @Security BearerAuth
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Exercise retrieved", MapExerciseToResponse(exercise))
}

// CreateExercise godoc
// @Summary Add a custom exercise to the catalog
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exercise, err := h.catalog.CreateCustom(c.Request.Context(), userID, service.ExerciseInput{
		Name:             req.Name,
		TargetMuscle:     req.TargetMuscle,
		BodyPart:         req.BodyPart,
		Equipment:        req.Equipment,
		SecondaryMuscles: req.SecondaryMuscles,
		Description:      req.Description,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Exercise created", MapExerciseToResponse(exercise))
}

// MediaUploadURL godoc
// @Summary Presigned URL for uploading exercise media
// @Description Only admins and the creator of a custom exercise may upload.
// @Tags Exercises
// @Accept json
// @Produce json
// @Param id path string true "Exercise ID"
// @Param media body MediaUploadRequest true "Content type of the upload"
// @Success 200 {object} MediaUploadResponse
// @Failure 403 {object} gin.H
// @Failure 503 {object} gin.H "Media storage not configured"
// @Security BearerAuth
// @Router /exercises/{id}/media-upload-url [post]
func (h *ExerciseHandler) MediaUploadURL(c *gin.Context) {
	caller, ok := mustClaims(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req MediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	url, key, err := h.catalog.MediaUploadURL(c.Request.Context(), id, caller, req.ContentType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Upload URL generated", MediaUploadResponse{UploadURL: url, ObjectKey: key})
}

// UpdateExercise godoc
// @Summary Edit a custom exercise
// @Description Users may edit the custom exercises they created, admins any entry.
// @Tags Exercises
// @Accept json
// @Produce json
// @Param id path string true "Exercise ID"
// @Param exercise body UpdateExerciseRequest true "Fields to change"
// @Success 200 {object} ExerciseResponse
// @Failure 403 {object} gin.H "Not the creator"
// @Security BearerAuth
// @Router /exercises/{id} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	caller, ok := mustClaims(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.catalog.Update(c.Request.Context(), id, caller, service.ExerciseUpdate{
		Name:             req.Name,
		TargetMuscle:     req.TargetMuscle,
		BodyPart:         req.BodyPart,
		Equipment:        req.Equipment,
		SecondaryMuscles: req.SecondaryMuscles,
		Description:      req.Description,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Exercise updated", MapExerciseToResponse(exercise))
}

// DeleteExercise godoc
// @Summary Delete a custom exercise that no plan uses
// @Tags Exercises
// @Param id path string true "Exercise ID"
// @Success 204
// @Failure 409 {object} gin.H "Still referenced by a workout exercise"
// @Security BearerAuth
// @Router /exercises/{id} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	caller, ok := mustClaims(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id, caller); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MediaURL godoc
// @Summary Presigned URL for viewing exercise media
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} gin.H
// @Failure 404 {object} gin.H "No media attached"
// @Security BearerAuth
// @Router /exercises/{id}/media-url [get]
func (h *ExerciseHandler) MediaURL(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	url, err := h.catalog.MediaURL(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Media URL generated", gin.H{"url": url})
}
