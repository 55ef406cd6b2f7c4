package api

import (
	"alcyxob/coach-hub/internal/config"
	"alcyxob/coach-hub/internal/domain"
	"alcyxob/coach-hub/internal/service"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context key for the resolved caller identity
const ContextIdentityKey = "identity"

// AuthMiddleware resolves the bearer token into a domain.Identity and
// stores it in the request context. An absent or invalid token is the
// Unauthenticated case: the caller is redirected to the login page.
func AuthMiddleware(jwtSecret string, app config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			redirectTo(c, app.LoginPath)
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			redirectTo(c, app.LoginPath)
			return
		}

		claims := &service.JWTClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid || claims.UserID == "" || claims.Role == "" {
			redirectTo(c, app.LoginPath)
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			redirectTo(c, app.LoginPath)
			return
		}

		c.Set(ContextIdentityKey, domain.Identity{
			UserID:             userID,
			Role:               claims.Role,
			MustChangePassword: claims.MustChangePassword,
		})
		c.Next()
	}
}

// ChangePasswordGate short-circuits every authenticated request of a
// must-change-password session to the password change operation. Must run
// after AuthMiddleware. exemptPath is the change-password route itself.
func ChangePasswordGate(app config.AppConfig, exemptPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromContext(c)
		if err != nil {
			redirectTo(c, app.LoginPath)
			return
		}
		if identity.MustChangePassword && c.FullPath() != exemptPath {
			redirectTo(c, app.ChangePasswordPath)
			return
		}
		c.Next()
	}
}

// RequireCoach gates coach-only routes. The denial is asymmetric on
// purpose: an authenticated trainee lands on the trainee home, anything
// else goes back to login. Must run after AuthMiddleware.
func RequireCoach(app config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromContext(c)
		if err != nil {
			redirectTo(c, app.LoginPath)
			return
		}
		if !identity.IsCoach() {
			if identity.IsTrainee() {
				redirectTo(c, app.TraineeHomePath)
			} else {
				redirectTo(c, app.LoginPath)
			}
			return
		}
		c.Next()
	}
}

// RequireTrainee mirrors RequireCoach for trainee-only routes.
func RequireTrainee(app config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromContext(c)
		if err != nil {
			redirectTo(c, app.LoginPath)
			return
		}
		if !identity.IsTrainee() {
			if identity.IsCoach() {
				redirectTo(c, app.CoachHomePath)
			} else {
				redirectTo(c, app.LoginPath)
			}
			return
		}
		c.Next()
	}
}

// redirectTo aborts the request with a 303 to target.
func redirectTo(c *gin.Context, target string) {
	c.Redirect(http.StatusSeeOther, target)
	c.Abort()
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// identityFromContext returns the Identity set by AuthMiddleware.
func identityFromContext(c *gin.Context) (domain.Identity, error) {
	raw, exists := c.Get(ContextIdentityKey)
	if !exists {
		return domain.Identity{}, errors.New("identity not found in context")
	}
	identity, ok := raw.(domain.Identity)
	if !ok {
		return domain.Identity{}, errors.New("invalid identity type in context")
	}
	return identity, nil
}

// respondServiceError translates the service error taxonomy into the
// boundary contract: Forbidden keeps the asymmetric redirect, a blocked
// account gets a blocking screen naming the reason, the rest map to
// conventional status codes.
func respondServiceError(c *gin.Context, app config.AppConfig, identity domain.Identity, err error) {
	var blocked *service.AccountBlockedError
	switch {
	case errors.As(err, &blocked):
		c.AbortWithStatusJSON(http.StatusLocked, gin.H{
			"error":  "account blocked",
			"reason": blocked.Reason,
		})
	case errors.Is(err, service.ErrForbidden):
		if identity.IsTrainee() {
			redirectTo(c, app.TraineeHomePath)
		} else if identity.IsCoach() {
			redirectTo(c, app.CoachHomePath)
		} else {
			redirectTo(c, app.LoginPath)
		}
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrTraineeNotFound),
		errors.Is(err, service.ErrDocumentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidTarget):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptyRecipients),
		errors.Is(err, service.ErrInvalidBlockReason),
		errors.Is(err, service.ErrNotATrainee):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSlugTaken):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTemplateAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "internal server error")
	}
}
