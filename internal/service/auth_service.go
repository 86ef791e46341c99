package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vardast/ops-dashboard/internal/auth"
	"github.com/vardast/ops-dashboard/internal/config"
	"github.com/vardast/ops-dashboard/internal/repository"
	apperrors "github.com/vardast/ops-dashboard/pkg/util/errorutil"
)

// AuthService implements the shared app password gate. With no password
// configured every caller is authenticated as auth.DefaultSession.
type AuthService struct {
	sessions     repository.SessionRepository
	tokenMgr     *auth.TokenManager
	passwordHash string
	logger       *zap.Logger
}

// NewAuthService hashes the configured password once at startup.
func NewAuthService(cfg config.AuthConfig, sessions repository.SessionRepository, logger *zap.Logger) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{
		sessions: sessions,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL()),
		logger:   logger,
	}
	if cfg.AppPassword == "" {
		return s, nil
	}
	hash, err := auth.HashPassword(cfg.AppPassword, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	s.passwordHash = hash
	return s, nil
}

// Enabled reports whether a password is required.
func (s *AuthService) Enabled() bool {
	return s.passwordHash != ""
}

// Login checks password and opens a new session.
func (s *AuthService) Login(ctx context.Context, password string) (string, time.Time, error) {
	if !s.Enabled() {
		token, exp, err := s.tokenMgr.GenerateToken(auth.DefaultSession)
		if err != nil {
			return "", time.Time{}, apperrors.NewInternalError(err)
		}
		return token, exp, nil
	}
	if err := auth.ComparePassword(s.passwordHash, password); err != nil {
		s.logger.Info("login rejected")
		return "", time.Time{}, apperrors.NewUnauthorized("invalid password")
	}

	sessionID := uuid.NewString()
	if err := s.sessions.MarkAuthenticated(ctx, sessionID, s.tokenMgr.TTL()); err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	token, exp, err := s.tokenMgr.GenerateToken(sessionID)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("session opened", zap.String("session", sessionID))
	return token, exp, nil
}

// Authenticate resolves a bearer token to a live session id.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	if !s.Enabled() {
		return auth.DefaultSession, nil
	}
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return "", apperrors.NewUnauthorized("invalid token")
	}
	ok, err := s.sessions.IsAuthenticated(ctx, claims.SessionID)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if !ok {
		return "", apperrors.NewUnauthorized("session expired")
	}
	return claims.SessionID, nil
}

// Logout forgets the session flag.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if !s.Enabled() || sessionID == auth.DefaultSession {
		return nil
	}
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}
