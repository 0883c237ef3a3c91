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

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
	log         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// --- Request/Response Structs ---

type ProfileRequest struct {
	Goal                  string   `json:"goal"`
	Experience            string   `json:"experience" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	ActivityLevel         string   `json:"activityLevel"`
	TrainingLocation      string   `json:"trainingLocation"`
	PreferredTrainingDays []string `json:"preferredTrainingDays"`
	WeightKg              *float64 `json:"weightKg"`
	HeightCm              *float64 `json:"heightCm"`
	WantsPreWorkoutInfo   bool     `json:"wantsPreWorkoutInfo"`
}

func (r ProfileRequest) toDomain() domain.Profile {
	return domain.Profile{
		Goal:                  r.Goal,
		Experience:            r.Experience,
		ActivityLevel:         r.ActivityLevel,
		TrainingLocation:      r.TrainingLocation,
		PreferredTrainingDays: r.PreferredTrainingDays,
		WeightKg:              r.WeightKg,
		HeightCm:              r.HeightCm,
		WantsPreWorkoutInfo:   r.WantsPreWorkoutInfo,
	}
}

type RegisterRequest struct {
	Name     string         `json:"name" binding:"required"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=8"`
	Profile  ProfileRequest `json:"profile"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      domain.Role    `json:"role"`
	Profile   domain.Profile `json:"profile"`
	CreatedAt time.Time      `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new user
// @Description Creates a new user account with an optional training profile.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} UserResponse "User created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	// Bind request body and validate
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	// Self-registration always creates a regular user; admins come from the seed command.
	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.RoleUser,
		Profile:  req.Profile.toDomain(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, "User registered", MapUserToResponse(user))
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	// Bind request body and validate
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password both map to 401
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// GetProfile godoc
// @Summary Current user's profile
// @Tags Profile
// @Produce json
// @Success 200 {object} UserResponse
// @Security BearerAuth
// @Router /me/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	user, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Profile retrieved", MapUserToResponse(user))
}

// UpdateProfile godoc
// @Summary Replace the current user's training profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param profile body ProfileRequest true "Profile"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Security BearerAuth
// @Router /me/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	// The whole profile is replaced, omitted fields are cleared
	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, req.toDomain())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated", MapUserToResponse(user))
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
// Crucially excludes PasswordHash and converts ObjectIDs to strings.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Profile:   user.Profile,
		CreatedAt: user.CreatedAt,
	}
}
