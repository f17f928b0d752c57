// Package credential issues and verifies the access/refresh token pair used by
// the storefront and the admin panel.
//
// Access and refresh tokens are HS256 JWTs signed with distinct keys, so a
// token minted for one purpose never verifies for the other. Refresh tokens
// carry a random jti, which makes every issuance unique.
package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	AdminRefreshTTL   = 24 * time.Hour
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrBadSignature   = errors.New("token signature invalid")
)

// Identity is the subject a token speaks for.
type Identity struct {
	Subject string
	Email   string
	Role    string
}

// IssuedToken is a signed token and the instant it stops verifying.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Pair is an access token and the refresh token that can replace it.
type Pair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

type claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies token pairs.
type Issuer struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Issuer)

// WithTTL overrides the access and refresh lifetimes.
func WithTTL(access, refresh time.Duration) Option {
	return func(i *Issuer) {
		i.accessTTL = access
		i.refreshTTL = refresh
	}
}

// WithClock replaces time.Now for issuance and verification.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer returns an Issuer signing access tokens with accessKey and
// refresh tokens with refreshKey.
func NewIssuer(accessKey, refreshKey string, opts ...Option) (*Issuer, error) {
	if accessKey == "" || refreshKey == "" {
		return nil, errors.New("credential: signing keys must not be empty")
	}
	if accessKey == refreshKey {
		return nil, errors.New("credential: access and refresh keys must differ")
	}

	i := &Issuer{
		accessKey:  []byte(accessKey),
		refreshKey: []byte(refreshKey),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}

	if i.accessTTL <= 0 || i.accessTTL >= i.refreshTTL {
		return nil, fmt.Errorf("credential: access ttl %s must be positive and shorter than refresh ttl %s", i.accessTTL, i.refreshTTL)
	}
	return i, nil
}

// IssueAccess signs a short-lived access token for id.
func (i *Issuer) IssueAccess(id Identity) (IssuedToken, error) {
	return i.sign(i.accessKey, id, i.now(), i.accessTTL, "")
}

// IssueRefresh signs a refresh token for id with a fresh nonce.
func (i *Issuer) IssueRefresh(id Identity) (IssuedToken, error) {
	return i.sign(i.refreshKey, id, i.now(), i.refreshTTL, uuid.NewString())
}

// IssuePair signs an access and a refresh token at the same instant.
func (i *Issuer) IssuePair(id Identity) (Pair, error) {
	now := i.now()

	access, err := i.sign(i.accessKey, id, now, i.accessTTL, "")
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(i.refreshKey, id, now, i.refreshTTL, uuid.NewString())
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// VerifyAccess returns the identity carried by an access token.
func (i *Issuer) VerifyAccess(token string) (Identity, error) {
	return i.verify(token, i.accessKey)
}

// VerifyRefresh returns the identity carried by a refresh token.
func (i *Issuer) VerifyRefresh(token string) (Identity, error) {
	return i.verify(token, i.refreshKey)
}

// RefreshTTL is the lifetime of refresh tokens from this issuer.
func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

func (i *Issuer) sign(key []byte, id Identity, now time.Time, ttl time.Duration, nonce string) (IssuedToken, error) {
	exp := now.Add(ttl)
	c := claims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			ID:        nonce,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(key)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return IssuedToken{Value: signed, ExpiresAt: exp}, nil
}

func (i *Issuer) verify(token string, key []byte) (Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return key, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Identity{}, ErrBadSignature
	default:
		return Identity{}, ErrTokenMalformed
	}

	return Identity{Subject: c.Subject, Email: c.Email, Role: c.Role}, nil
}
