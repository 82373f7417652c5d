package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"feldbeleg/internal/config"
	"feldbeleg/internal/domain"
	"feldbeleg/mocks"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "feldbeleg-test",
	}
}

func testUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           uuid.New(),
		Email:        "worker@example.com",
		PasswordHash: string(hash),
		FullName:     "Test Worker",
		Role:         domain.RoleMember,
		IsActive:     true,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	user := testUser(t, "correct-password")

	repo := new(mocks.MockUserRepo)
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	svc := NewAuthService(repo, testJWTConfig())

	pair, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "correct-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, domain.RoleMember, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	user := testUser(t, "correct-password")

	repo := new(mocks.MockUserRepo)
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	svc := NewAuthService(repo, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrNotFound)

	svc := NewAuthService(repo, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthServiceLoginInactiveUser(t *testing.T) {
	user := testUser(t, "correct-password")
	user.IsActive = false

	repo := new(mocks.MockUserRepo)
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	svc := NewAuthService(repo, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "correct-password"})
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestAuthServiceRefreshRejectsAccessToken(t *testing.T) {
	user := testUser(t, "correct-password")

	repo := new(mocks.MockUserRepo)
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	svc := NewAuthService(repo, testJWTConfig())

	pair, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "correct-password"})
	require.NoError(t, err)

	// Access tokens must not be usable for refresh.
	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc := NewAuthService(new(mocks.MockUserRepo), testJWTConfig())

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
