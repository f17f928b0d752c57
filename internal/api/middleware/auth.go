package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/motlupets/storefront/internal/api/metrics"
	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/pkg/credential"
)

// Context keys set by Gate for the handlers downstream.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// Realms label the two credential domains.
const (
	RealmUser  = "user"
	RealmAdmin = "admin"
)

// AccessVerifier checks access tokens.
type AccessVerifier interface {
	VerifyAccess(token string) (credential.Identity, error)
}

// Rotator exchanges a refresh token for a new pair. The presented token
// must not be accepted again afterwards.
type Rotator interface {
	Rotate(ctx context.Context, refreshToken string) (credential.Pair, credential.Identity, error)
}

// GateConfig configures one auth gate.
type GateConfig struct {
	Realm    string
	Verifier AccessVerifier
	Rotator  Rotator
	// Role, when set, must be carried by the identity.
	Role    string
	Cookies CookieConfig
}

// Gate admits requests carrying a valid access cookie. When the access
// token fails, the refresh cookie is rotated and the new pair is written
// back before the request proceeds.
func Gate(cfg GateConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			access := cookieValue(c, AccessCookie)
			if access == "" {
				return domain.ErrAccessTokenMissing
			}

			if id, err := cfg.Verifier.VerifyAccess(access); err == nil && cfg.admits(id) {
				setIdentity(c, id)
				return next(c)
			}

			refresh := cookieValue(c, RefreshCookie)
			if refresh == "" {
				return domain.ErrBothTokensMissing
			}

			pair, id, err := cfg.Rotator.Rotate(c.Request().Context(), refresh)
			if err != nil || !cfg.admits(id) {
				metrics.TokenRotationsTotal.WithLabelValues(cfg.Realm, "rejected").Inc()
				return domain.ErrRefreshInvalid
			}
			metrics.TokenRotationsTotal.WithLabelValues(cfg.Realm, "ok").Inc()

			SetCredentialCookies(c, pair, cfg.Cookies)
			setIdentity(c, id)
			return next(c)
		}
	}
}

func (cfg GateConfig) admits(id credential.Identity) bool {
	return cfg.Role == "" || id.Role == cfg.Role
}

func setIdentity(c echo.Context, id credential.Identity) {
	c.Set(CtxUserID, id.Subject)
	c.Set(CtxEmail, id.Email)
	c.Set(CtxRole, id.Role)
}

// UserID returns the subject set by Gate.
func UserID(c echo.Context) string {
	id, _ := c.Get(CtxUserID).(string)
	return id
}
