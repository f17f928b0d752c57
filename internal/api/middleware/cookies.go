package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/motlupets/storefront/internal/pkg/credential"
)

// Cookie names carrying the credential pair.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// CookieConfig controls the attributes of credential cookies.
type CookieConfig struct {
	// Secure marks cookies Secure with SameSite=None, for a cross-site
	// frontend served over TLS. Otherwise SameSite=Lax is used.
	Secure bool
}

// SetCredentialCookies writes both tokens of pair as HttpOnly cookies.
func SetCredentialCookies(c echo.Context, pair credential.Pair, cfg CookieConfig) {
	c.SetCookie(cfg.cookie(AccessCookie, pair.Access.Value, pair.Access.ExpiresAt))
	c.SetCookie(cfg.cookie(RefreshCookie, pair.Refresh.Value, pair.Refresh.ExpiresAt))
}

// ClearCredentialCookies expires both credential cookies.
func ClearCredentialCookies(c echo.Context, cfg CookieConfig) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		ck := cfg.cookie(name, "", time.Unix(0, 0))
		ck.MaxAge = -1
		c.SetCookie(ck)
	}
}

func (cfg CookieConfig) cookie(name, value string, expires time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.Secure {
		ck.Secure = true
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}

func cookieValue(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
