package services

import (
	"context"
	"time"

	"github.com/finvisor/finvisor_app/internal/core/domain"
	"github.com/finvisor/finvisor_app/internal/dto"
)

// TokenPair is an access token plus the refresh token that renews it.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthSvcFacade issues and rotates tokens for authenticated users.
type AuthSvcFacade interface {
	// Login authenticates the credentials and issues a token pair.
	Login(ctx context.Context, req dto.LoginRequest) (*domain.User, *TokenPair, error)

	// RegisterFirm creates a firm with its first admin and logs them in.
	RegisterFirm(ctx context.Context, req dto.RegisterFirmRequest) (*domain.User, *TokenPair, error)

	// Refresh rotates a valid refresh token into a fresh pair.
	Refresh(ctx context.Context, refreshToken string) (*domain.User, *TokenPair, error)

	// Logout invalidates the user's refresh token.
	Logout(ctx context.Context, userID string) error
}
