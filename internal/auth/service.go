package auth

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	tokens  *Tokens
	revoked RevocationStore
	logger  *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *Tokens, revoked RevocationStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, revoked: revoked, logger: logger}
}

// Login validates email/password credentials and mints an access token.
// Unknown emails and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if shared.ErrorCode(err) == "INTERNAL" {
			s.logger.Error("auth: lookup user", slog.Any("error", err))
		}
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	p := user.Principal()
	if err := p.Validate(); err != nil {
		s.logger.Warn("auth: user breaks principal invariant", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, shared.ErrInvalidCredentials
	}
	token, exp, err := s.tokens.Issue(p)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, TokenType: "Bearer", ExpiresAt: exp, User: user.View()}, nil
}

// Verify turns a bearer token into a principal.
func (s *Service) Verify(ctx context.Context, token string) (rbac.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return rbac.Principal{}, err
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return rbac.Principal{}, fmt.Errorf("auth: revocation lookup: %w", err)
		}
		if revoked {
			return rbac.Principal{}, fmt.Errorf("%w: token revoked", shared.ErrUnauthenticated)
		}
	}
	return claims.Principal, nil
}

// Logout revokes token until its natural expiry.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	if s.revoked == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}
