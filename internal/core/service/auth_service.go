package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
	"github.com/motlupets/storefront/internal/pkg/credential"
)

const passwordCost = 10

// AuthService implements customer registration, login and token rotation.
type AuthService struct {
	users    ports.UserRepository
	issuer   ports.TokenIssuer
	limiter  ports.LoginLimiter
	notifier ports.Notifier
	tasks    ports.TaskRunner
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	issuer ports.TokenIssuer,
	limiter ports.LoginLimiter,
	notifier ports.Notifier,
	tasks ports.TaskRunner,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		issuer:   issuer,
		limiter:  limiter,
		notifier: notifier,
		tasks:    tasks,
		log:      log.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

// Register creates an unverified account, or refreshes the details of one
// that was never verified, and mails a one-time code.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) error {
	email := normalizeEmail(in.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordCost)
	if err != nil {
		return fmt.Errorf("register: hash password: %w", err)
	}
	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: string(hash),
		OTP:          otp,
		OTPExpiresAt: now.Add(domain.OTPTTL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		if _, err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("register: %w", err)
		}
	case err != nil:
		return fmt.Errorf("register: %w", err)
	case existing.Verified:
		return domain.ErrAlreadyVerified
	default:
		user.ID = existing.ID
		if err := s.users.UpdateRegistration(ctx, user); err != nil {
			return fmt.Errorf("register: %w", err)
		}
	}

	s.sendOTP(user.Name, email, otp)
	return nil
}

// VerifyOTP marks the account verified when otp matches and is unexpired.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if err := user.CheckOTP(otp, s.now()); err != nil {
		return err
	}
	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("verify otp: %w", err)
	}
	return nil
}

// ResendOTP replaces the pending code of an unverified account.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user.Verified {
		return domain.NewError(domain.ErrValidation, "user already verified")
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("resend otp: %w", err)
	}
	if err := s.users.SetOTP(ctx, user.ID, otp, s.now().UTC().Add(domain.OTPTTL)); err != nil {
		return fmt.Errorf("resend otp: %w", err)
	}

	s.sendOTP(user.Name, user.Email, otp)
	return nil
}

// Login checks the password of a verified account and issues a new pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
	} else if !allowed {
		return nil, domain.ErrLoginLocked
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.Verified {
		return nil, domain.ErrEmailNotVerified
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if err := s.limiter.Failure(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to record login failure")
		}
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login limiter")
	}

	pair, err := s.issuer.IssuePair(identityOf(user))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	hash, err := credential.HashRefresh(pair.Refresh.Value)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.users.SetRefreshHash(ctx, user.ID, hash); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{User: *user, Pair: pair}, nil
}

// Rotate verifies refreshToken against the stored hash and replaces it with
// a new pair. The swap is conditional on the hash read here, so a token
// that was superseded concurrently is rejected.
func (s *AuthService) Rotate(ctx context.Context, refreshToken string) (credential.Pair, credential.Identity, error) {
	id, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return credential.Pair{}, credential.Identity{}, domain.ErrRefreshInvalid
	}

	user, err := s.users.FindByID(ctx, id.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return credential.Pair{}, credential.Identity{}, domain.ErrRefreshInvalid
		}
		return credential.Pair{}, credential.Identity{}, fmt.Errorf("rotate: %w", err)
	}
	if !credential.CompareRefresh(refreshToken, user.RefreshTokenHash) {
		return credential.Pair{}, credential.Identity{}, domain.ErrRefreshInvalid
	}

	next := identityOf(user)
	pair, err := s.issuer.IssuePair(next)
	if err != nil {
		return credential.Pair{}, credential.Identity{}, fmt.Errorf("rotate: %w", err)
	}
	hash, err := credential.HashRefresh(pair.Refresh.Value)
	if err != nil {
		return credential.Pair{}, credential.Identity{}, fmt.Errorf("rotate: %w", err)
	}
	if err := s.users.SwapRefreshHash(ctx, user.ID, user.RefreshTokenHash, hash); err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return credential.Pair{}, credential.Identity{}, domain.ErrRefreshInvalid
		}
		return credential.Pair{}, credential.Identity{}, fmt.Errorf("rotate: %w", err)
	}

	return pair, next, nil
}

// Logout forgets the stored refresh hash when refreshToken still verifies.
// It never fails on a bad token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	id, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil
	}
	if err := s.users.SetRefreshHash(ctx, id.Subject, ""); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) sendOTP(name, email, otp string) {
	s.tasks.Submit(ports.Task{
		Name: "otp-email",
		Key:  email,
		Run: func(ctx context.Context) error {
			return s.notifier.SendOTP(ctx, name, email, otp)
		},
	})
}

func identityOf(u *domain.User) credential.Identity {
	return credential.Identity{Subject: u.ID, Email: u.Email, Role: domain.RoleUser}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", domain.OTPLength, n.Int64()), nil
}
