package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/finvisor/finvisor_app/internal/core/services"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/finvisor/finvisor_app/internal/platform/config"
	"github.com/finvisor/finvisor_app/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFirmRepo struct {
	saved []domain.Firm
}

func (f *fakeFirmRepo) SaveFirm(ctx context.Context, firm domain.Firm) error {
	f.saved = append(f.saved, firm)
	return nil
}

func (f *fakeFirmRepo) FindFirmByID(ctx context.Context, firmID string) (*domain.Firm, error) {
	return nil, apperrors.ErrNotFound
}

func (f *fakeFirmRepo) UpdateFirm(ctx context.Context, firm domain.Firm) error { return nil }

func authTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:                  "test-secret",
		JWTExpiryDuration:          time.Hour,
		JWTIssuer:                  "finvisor-test",
		RefreshTokenExpiryDuration: 24 * time.Hour,
	}
}

func seededUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &domain.User{
		UserID:       "user-1",
		FirmID:       "firm-1",
		Name:         "Alex",
		Email:        "alex@example.com",
		PasswordHash: hash,
		Role:         domain.RoleMember,
	}
}

func TestLogin_IssuesFirmScopedTokenPair(t *testing.T) {
	user := seededUser(t, "password123")
	var storedHash string
	userRepo := &fakeUserRepo{
		FindUserByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return user, nil
		},
		UpdateRefreshTokenFn: func(ctx context.Context, userID string, refreshTokenHash string, expiry time.Time) error {
			storedHash = refreshTokenHash
			return nil
		},
	}
	svc := services.NewAuthService(authTestConfig(), services.NewUserService(userRepo), &fakeFirmRepo{})

	gotUser, pair, err := svc.Login(context.Background(), dto.LoginRequest{Email: "alex@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", gotUser.UserID)

	claims, err := utils.ParseAndValidateJWT(pair.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "firm-1", claims.FirmID)

	assert.Equal(t, utils.HashRefreshToken(pair.RefreshToken), storedHash, "stored hash must cover the issued token")
	assert.Contains(t, pair.RefreshToken, "user-1.", "token embeds the user id")
}

func TestLogin_WrongPassword(t *testing.T) {
	user := seededUser(t, "password123")
	userRepo := &fakeUserRepo{
		FindUserByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return user, nil
		},
	}
	svc := services.NewAuthService(authTestConfig(), services.NewUserService(userRepo), &fakeFirmRepo{})

	_, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "alex@example.com", Password: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_UnknownEmailIndistinguishable(t *testing.T) {
	svc := services.NewAuthService(authTestConfig(), services.NewUserService(&fakeUserRepo{}), &fakeFirmRepo{})

	_, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefresh_RotatesToken(t *testing.T) {
	user := seededUser(t, "password123")
	token := "user-1.abcdef0123456789"
	hash := utils.HashRefreshToken(token)
	expiry := time.Now().Add(time.Hour)
	user.RefreshTokenHash = &hash
	user.RefreshTokenExpiry = &expiry

	var newHash string
	userRepo := &fakeUserRepo{
		FindUserByIDFn: func(ctx context.Context, userID string) (*domain.User, error) {
			if userID == "user-1" {
				return user, nil
			}
			return nil, apperrors.ErrNotFound
		},
		UpdateRefreshTokenFn: func(ctx context.Context, userID string, refreshTokenHash string, e time.Time) error {
			newHash = refreshTokenHash
			return nil
		},
	}
	svc := services.NewAuthService(authTestConfig(), services.NewUserService(userRepo), &fakeFirmRepo{})

	_, pair, err := svc.Refresh(context.Background(), token)
	require.NoError(t, err)
	assert.NotEqual(t, token, pair.RefreshToken)
	assert.Equal(t, utils.HashRefreshToken(pair.RefreshToken), newHash)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	user := seededUser(t, "password123")
	token := "user-1.abcdef0123456789"
	hash := utils.HashRefreshToken(token)
	expiry := time.Now().Add(-time.Minute)
	user.RefreshTokenHash = &hash
	user.RefreshTokenExpiry = &expiry

	userRepo := &fakeUserRepo{
		FindUserByIDFn: func(ctx context.Context, userID string) (*domain.User, error) {
			return user, nil
		},
	}
	svc := services.NewAuthService(authTestConfig(), services.NewUserService(userRepo), &fakeFirmRepo{})

	_, _, err := svc.Refresh(context.Background(), token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefresh_MalformedToken(t *testing.T) {
	svc := services.NewAuthService(authTestConfig(), services.NewUserService(&fakeUserRepo{}), &fakeFirmRepo{})

	_, _, err := svc.Refresh(context.Background(), "no-separator-here")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRegisterFirm_CreatesFirmWithAdmin(t *testing.T) {
	firmRepo := &fakeFirmRepo{}
	var savedUser domain.User
	userRepo := &fakeUserRepo{
		SaveUserFn: func(ctx context.Context, user domain.User) error {
			savedUser = user
			return nil
		},
	}
	svc := services.NewAuthService(authTestConfig(), services.NewUserService(userRepo), firmRepo)

	user, pair, err := svc.RegisterFirm(context.Background(), dto.RegisterFirmRequest{
		FirmName: "Cabinet Durand",
		Name:     "Marie",
		Email:    "marie@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	require.Len(t, firmRepo.saved, 1)
	assert.Equal(t, "Cabinet Durand", firmRepo.saved[0].Name)
	assert.Equal(t, firmRepo.saved[0].FirmID, savedUser.FirmID)
	assert.Equal(t, domain.RoleAdmin, savedUser.Role)
	assert.NotEqual(t, "password123", savedUser.PasswordHash)

	claims, err := utils.ParseAndValidateJWT(pair.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, claims.Subject)
	assert.Equal(t, firmRepo.saved[0].FirmID, claims.FirmID)
}
