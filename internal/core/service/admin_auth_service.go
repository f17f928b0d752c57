package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
	"github.com/motlupets/storefront/internal/pkg/credential"
)

// AdminAuthService authenticates the single configured admin identity. No
// refresh hash is stored; changing ADMIN_PANEL_EMAIL revokes every
// outstanding admin token.
type AdminAuthService struct {
	issuer   ports.TokenIssuer
	email    string
	password string
	log      zerolog.Logger
}

func NewAdminAuthService(issuer ports.TokenIssuer, email, password string, log zerolog.Logger) *AdminAuthService {
	return &AdminAuthService{
		issuer:   issuer,
		email:    normalizeEmail(email),
		password: password,
		log:      log.With().Str("component", "admin_auth").Logger(),
	}
}

func (s *AdminAuthService) Login(_ context.Context, email, password string) (credential.Pair, error) {
	if s.email == "" || s.password == "" {
		return credential.Pair{}, domain.ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(s.email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !emailOK || !passOK {
		s.log.Warn().Msg("admin login rejected")
		return credential.Pair{}, domain.ErrInvalidCredentials
	}

	pair, err := s.issuer.IssuePair(s.identity())
	if err != nil {
		return credential.Pair{}, fmt.Errorf("admin login: %w", err)
	}
	return pair, nil
}

// Rotate re-issues the admin pair while the refresh token still names the
// configured admin.
func (s *AdminAuthService) Rotate(_ context.Context, refreshToken string) (credential.Pair, credential.Identity, error) {
	id, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return credential.Pair{}, credential.Identity{}, domain.ErrRefreshInvalid
	}
	if id.Role != domain.RoleAdmin || !strings.EqualFold(id.Email, s.email) || s.email == "" {
		return credential.Pair{}, credential.Identity{}, domain.ErrRefreshInvalid
	}

	next := s.identity()
	pair, err := s.issuer.IssuePair(next)
	if err != nil {
		return credential.Pair{}, credential.Identity{}, fmt.Errorf("admin rotate: %w", err)
	}
	return pair, next, nil
}

func (s *AdminAuthService) identity() credential.Identity {
	return credential.Identity{Email: s.email, Role: domain.RoleAdmin}
}
