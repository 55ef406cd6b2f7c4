package service

import (
	"alcyxob/coach-hub/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(env *testEnv) AuthService {
	return NewAuthService(env.users, env.audit, "test-secret", time.Hour)
}

func TestLogin(t *testing.T) {
	env := newTestEnv()
	auth := newAuthService(env)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = env.users.Create(ctx, &domain.User{
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleTrainee,
	})
	require.NoError(t, err)

	token, user, err := auth.Login(ctx, "ana@example.com", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Empty(t, user.PasswordHash)

	claims := &JWTClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleTrainee, claims.Role)
	assert.False(t, claims.MustChangePassword)

	_, _, err = auth.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = auth.Login(ctx, "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestRegisterTrainee(t *testing.T) {
	env := newTestEnv()
	auth := newAuthService(env)
	ctx := context.Background()
	coach := env.seedUser("Coach", domain.RoleCoach)

	user, err := auth.RegisterTrainee(ctx, coach, "Ana", "ana@example.com", "temp123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrainee, user.Role)
	assert.True(t, user.MustChangePassword)
	assert.Equal(t, domain.BlockNone, user.BlockReason)
	assert.Empty(t, user.PasswordHash)

	// Provisioned sessions carry the must-change flag in the token.
	token, _, err := auth.Login(ctx, "ana@example.com", "temp123")
	require.NoError(t, err)
	claims := &JWTClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, claims.MustChangePassword)

	_, err = auth.RegisterTrainee(ctx, coach, "Ana Again", "ana@example.com", "temp456")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	trainee := domain.Identity{UserID: user.ID, Role: domain.RoleTrainee}
	_, err = auth.RegisterTrainee(ctx, trainee, "Eve", "eve@example.com", "temp789")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestChangePassword_ClearsMustChangeFlag(t *testing.T) {
	env := newTestEnv()
	auth := newAuthService(env)
	ctx := context.Background()
	coach := env.seedUser("Coach", domain.RoleCoach)

	user, err := auth.RegisterTrainee(ctx, coach, "Ana", "ana@example.com", "temp123")
	require.NoError(t, err)
	identity := domain.Identity{UserID: user.ID, Role: domain.RoleTrainee, MustChangePassword: true}

	err = auth.ChangePassword(ctx, identity, "wrong", "newpass1")
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = auth.ChangePassword(ctx, identity, "temp123", "newpass1")
	require.NoError(t, err)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.MustChangePassword)

	// Old password no longer works, new one does.
	_, _, err = auth.Login(ctx, "ana@example.com", "temp123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = auth.Login(ctx, "ana@example.com", "newpass1")
	require.NoError(t, err)

	assert.Len(t, env.audit.byAction(domain.AuditPasswordChanged), 1)
}

func TestResetPassword(t *testing.T) {
	env := newTestEnv()
	auth := newAuthService(env)
	ctx := context.Background()
	coach := env.seedUser("Coach", domain.RoleCoach)
	trainee := env.seedUser("Ana", domain.RoleTrainee)

	err := auth.ResetPassword(ctx, coach, trainee.UserID, "temp999")
	require.NoError(t, err)

	stored, err := env.users.GetByID(ctx, trainee.UserID)
	require.NoError(t, err)
	assert.True(t, stored.MustChangePassword)
	_, _, err = auth.Login(ctx, "ana@example.com", "temp999")
	require.NoError(t, err)

	assert.Len(t, env.audit.byAction(domain.AuditPasswordReset), 1)

	// Only trainees can be reset, and only by a coach.
	err = auth.ResetPassword(ctx, coach, coach.UserID, "temp999")
	assert.ErrorIs(t, err, ErrForbidden)
	err = auth.ResetPassword(ctx, trainee, trainee.UserID, "temp999")
	assert.ErrorIs(t, err, ErrForbidden)
}
