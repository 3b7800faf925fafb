package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/finvisor/finvisor_app/internal/middleware"
	"github.com/finvisor/finvisor_app/internal/platform/config"
	"github.com/finvisor/finvisor_app/internal/utils"
	"github.com/google/uuid"
)

type authService struct {
	cfg      *config.Config
	userSvc  portssvc.UserSvcFacade
	firmRepo portsrepo.FirmRepositoryFacade
}

// NewAuthService creates the authentication service.
func NewAuthService(cfg *config.Config, userSvc portssvc.UserSvcFacade, firmRepo portsrepo.FirmRepositoryFacade) portssvc.AuthSvcFacade {
	return &authService{cfg: cfg, userSvc: userSvc, firmRepo: firmRepo}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*domain.User, *portssvc.TokenPair, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userSvc.AuthenticateUser(ctx, req.Email, req.Password)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in", slog.String("login_user_id", user.UserID))
	return user, pair, nil
}

func (s *authService) RegisterFirm(ctx context.Context, req dto.RegisterFirmRequest) (*domain.User, *portssvc.TokenPair, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	firm := domain.Firm{
		FirmID: uuid.NewString(),
		Name:   req.FirmName,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	if err := s.firmRepo.SaveFirm(ctx, firm); err != nil {
		logger.Error("Failed to save firm", slog.String("error", err.Error()))
		return nil, nil, err
	}

	user, err := s.userSvc.CreateUser(ctx, firm.FirmID, dto.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     string(domain.RoleAdmin),
	}, firm.FirmID)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Firm registered", slog.String("new_firm_id", firm.FirmID), slog.String("admin_user_id", user.UserID))
	return user, pair, nil
}

// Refresh rotates a refresh token. The opaque token embeds the user id
// (userID.random) so validation needs no extra lookup index; the stored
// hash still covers the whole string.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *portssvc.TokenPair, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	userID, _, ok := strings.Cut(refreshToken, ".")
	if !ok || userID == "" {
		return nil, nil, apperrors.ErrUnauthorized
	}

	user, err := s.userSvc.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrUnauthorized
		}
		return nil, nil, err
	}

	if user.RefreshTokenHash == nil || user.RefreshTokenExpiry == nil {
		return nil, nil, apperrors.ErrUnauthorized
	}
	if time.Now().After(*user.RefreshTokenExpiry) {
		return nil, nil, apperrors.ErrUnauthorized
	}
	if !utils.CompareRefreshTokenHash(refreshToken, *user.RefreshTokenHash) {
		logger.Warn("Refresh token hash mismatch", slog.String("refresh_user_id", userID))
		return nil, nil, apperrors.ErrUnauthorized
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.userSvc.ClearRefreshToken(ctx, userID); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to clear refresh token", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// issueTokenPair creates an access token plus a rotated refresh token and
// persists the refresh token hash.
func (s *authService) issueTokenPair(ctx context.Context, user *domain.User) (*portssvc.TokenPair, error) {
	accessExpiry := time.Now().Add(s.cfg.JWTExpiryDuration)
	accessToken, err := utils.GenerateJWT(user.UserID, user.FirmID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	random, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshToken := user.UserID + "." + random
	refreshExpiry := time.Now().Add(s.cfg.RefreshTokenExpiryDuration)

	if err := s.userSvc.UpdateRefreshToken(ctx, user.UserID, utils.HashRefreshToken(refreshToken), refreshExpiry); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &portssvc.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}
