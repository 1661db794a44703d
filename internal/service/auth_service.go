package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-portal/internal/auth"
	"github.com/spec-kit/incident-portal/internal/crm"
	"github.com/spec-kit/incident-portal/internal/domain"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

// AuthService exchanges CRM credentials for portal tokens.
type AuthService struct {
	backend crm.Backend
	tokens  *auth.TokenManager
	revoked auth.RevocationStore
	logger  *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(backend crm.Backend, tokens *auth.TokenManager, revoked auth.RevocationStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{backend: backend, tokens: tokens, revoked: revoked, logger: logger}
}

// LoginResult is a signed token for the identity the CRM returned.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  domain.Identity
}

// Login checks credentials against the CRM and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	identity, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, mapCRMError(crm.OpLogin, err)
	}
	if identity.ID == "" {
		return nil, apperrors.NewUnauthorized("invalid email or password")
	}
	if _, err := domain.ParseRole(string(identity.Role)); err != nil {
		s.logger.Warn("login returned unknown role", zap.String("user_id", identity.ID), zap.String("role", string(identity.Role)))
		return nil, apperrors.NewForbidden("account has no portal role")
	}

	issued, err := s.tokens.GenerateToken(*identity)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: issued.Token, ExpiresAt: issued.ExpiresAt, Identity: *identity}, nil
}

// Logout revokes the caller's token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil || s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}
