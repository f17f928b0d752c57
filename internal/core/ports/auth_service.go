package ports

import (
	"context"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/pkg/credential"
)

// TokenIssuer mints and verifies credential pairs.
type TokenIssuer interface {
	IssuePair(id credential.Identity) (credential.Pair, error)
	VerifyAccess(token string) (credential.Identity, error)
	VerifyRefresh(token string) (credential.Identity, error)
}

// RegisterInput carries a new account's details.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	User domain.User
	Pair credential.Pair
}

// AuthService covers customer accounts and their credentials.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Rotate exchanges a refresh token for a new pair. The presented token
	// is single-use.
	Rotate(ctx context.Context, refreshToken string) (credential.Pair, credential.Identity, error)
	Logout(ctx context.Context, refreshToken string) error
}

// AdminAuthService covers the admin panel's configured identity.
type AdminAuthService interface {
	Login(ctx context.Context, email, password string) (credential.Pair, error)
	Rotate(ctx context.Context, refreshToken string) (credential.Pair, credential.Identity, error)
}
