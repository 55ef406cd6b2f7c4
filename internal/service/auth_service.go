package service

import (
	"alcyxob/coach-hub/internal/domain"
	"alcyxob/coach-hub/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrWrongPassword        = errors.New("current password does not match")
)

// AuthService owns the identity boundary: login, token issuance, and the
// credential operations around the must-change-password flag. User
// provisioning is coach-initiated (trainees never self-register).
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// RegisterTrainee provisions a trainee account with a temporary
	// password; the trainee must change it on first login.
	RegisterTrainee(ctx context.Context, identity domain.Identity, name, email, tempPassword string) (*domain.User, error)
	// ChangePassword is the one operation a must-change-password session
	// may perform besides logging out.
	ChangePassword(ctx context.Context, identity domain.Identity, currentPassword, newPassword string) error
	// ResetPassword sets a temporary password on a trainee's account and
	// raises the must-change flag. Coach-only.
	ResetPassword(ctx context.Context, identity domain.Identity, traineeID primitive.ObjectID, tempPassword string) error
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	auditRepo     repository.AuditRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, auditRepo repository.AuditRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 12 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		auditRepo:     auditRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	if email == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed // User not found maps to auth failure
			return
		}
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		err = ErrAuthenticationFailed
		user = nil
		return
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// RegisterTrainee provisions a new trainee account. Coach-only.
func (s *authService) RegisterTrainee(ctx context.Context, identity domain.Identity, name, email, tempPassword string) (*domain.User, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}
	if name == "" || email == "" || tempPassword == "" {
		return nil, errors.New("name, email, and temporary password cannot be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:               name,
		Email:              email,
		PasswordHash:       string(hashed),
		Role:               domain.RoleTrainee,
		MustChangePassword: true,
		BlockReason:        domain.BlockNone,
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID

	user.PasswordHash = ""
	return user, nil
}

// ChangePassword verifies the current password, stores the new hash, and
// clears the must-change flag. Audit-logged.
func (s *authService) ChangePassword(ctx context.Context, identity domain.Identity, currentPassword, newPassword string) error {
	if newPassword == "" {
		return errors.New("new password cannot be empty")
	}

	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}

	if err := s.userRepo.SetPassword(ctx, user.ID, string(hashed), false); err != nil {
		return err
	}

	actor := identity.UserID
	_, err = s.auditRepo.Create(ctx, &domain.AuditEntry{
		ActorID: &actor,
		Action:  domain.AuditPasswordChanged,
		Detail:  fmt.Sprintf("user %s changed their password", user.ID.Hex()),
	})
	return err
}

// ResetPassword issues a temporary password for a trainee. Coach-only.
func (s *authService) ResetPassword(ctx context.Context, identity domain.Identity, traineeID primitive.ObjectID, tempPassword string) error {
	if err := assertCoach(identity); err != nil {
		return err
	}
	if tempPassword == "" {
		return errors.New("temporary password cannot be empty")
	}

	user, err := s.userRepo.GetByID(ctx, traineeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !user.IsTrainee() {
		return ErrForbidden
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}

	if err := s.userRepo.SetPassword(ctx, traineeID, string(hashed), true); err != nil {
		return err
	}

	actor := identity.UserID
	_, err = s.auditRepo.Create(ctx, &domain.AuditEntry{
		ActorID: &actor,
		Action:  domain.AuditPasswordReset,
		Detail:  fmt.Sprintf("password reset for trainee %s", traineeID.Hex()),
	})
	return err
}

// --- JWT Helper ---

// JWTClaims defines the structure of the JWT payload. The pwdChange claim
// lets the boundary route a first-login session to the password change
// screen without a user lookup.
type JWTClaims struct {
	UserID             string      `json:"uid"`
	Role               domain.Role `json:"role"`
	MustChangePassword bool        `json:"pwdChange"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &JWTClaims{
		UserID:             user.ID.Hex(),
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "coach-hub",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication.
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
