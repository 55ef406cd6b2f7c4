package api

import (
	"alcyxob/coach-hub/internal/config"
	"alcyxob/coach-hub/internal/domain"
	"alcyxob/coach-hub/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthHandler struct {
	authService service.AuthService
	app         config.AppConfig
}

func NewAuthHandler(authService service.AuthService, app config.AppConfig) *AuthHandler {
	return &AuthHandler{authService: authService, app: app}
}

// --- DTOs ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	Role               domain.Role        `json:"role"`
	MustChangePassword bool               `json:"mustChangePassword"`
	BlockReason        domain.BlockReason `json:"blockReason"`
}

type RegisterTraineeRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	TempPassword string `json:"tempPassword" binding:"required,min=6"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type ResetPasswordRequest struct {
	TempPassword string `json:"tempPassword" binding:"required,min=6"`
}

func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:                 user.ID.Hex(),
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
		BlockReason:        user.BlockReason,
	}
}

// --- Handlers ---

// Login authenticates a user and issues a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "login failed")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: MapUserToResponse(user)})
}

// RegisterTrainee provisions a trainee account with a temporary password.
// Coach-only (enforced by route middleware and the service).
func (h *AuthHandler) RegisterTrainee(c *gin.Context) {
	var req RegisterTraineeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	user, err := h.authService.RegisterTrainee(c.Request.Context(), identity, req.Name, req.Email, req.TempPassword)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		respondServiceError(c, h.app, identity, err)
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// ChangePassword is the only operation a must-change-password session may
// perform; it clears the flag, so the caller must log in again to obtain
// a token without the pwdChange claim.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), identity, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			abortWithError(c, http.StatusForbidden, err.Error())
			return
		}
		respondServiceError(c, h.app, identity, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed; please log in again"})
}

// ResetPassword sets a temporary password on a trainee account.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format.")
		return
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), identity, traineeID, req.TempPassword); err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "temporary password set"})
}
