package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/motlupets/storefront/internal/api/metrics"
	"github.com/motlupets/storefront/internal/api/middleware"
	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

// AdminAuthHandler serves the admin panel's sessions.
type AdminAuthHandler struct {
	authService ports.AdminAuthService
	cookies     middleware.CookieConfig
}

func NewAdminAuthHandler(authService ports.AdminAuthService, cookies middleware.CookieConfig) *AdminAuthHandler {
	return &AdminAuthHandler{authService: authService, cookies: cookies}
}

// Login checks the configured admin credentials.
//
// @Summary      Admin login
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        body  body      adminLoginRequest  true  "Admin credentials"
// @Success      200   {object}  envelope
// @Failure      400   {object}  failureResponse
// @Failure      401   {object}  failureResponse
// @Router       /api/admin/login [post]
func (h *AdminAuthHandler) Login(c echo.Context) error {
	var req adminLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(middleware.RealmAdmin, "rejected").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues(middleware.RealmAdmin, "ok").Inc()

	middleware.SetCredentialCookies(c, pair, h.cookies)
	return ok(c, "Successfully Logged In.", nil)
}

// RefreshToken rotates the admin credential pair.
//
// @Summary      Rotate admin credentials
// @Tags         admin-auth
// @Produce      json
// @Success      200  {object}  envelope
// @Failure      401  {object}  failureResponse
// @Router       /api/admin/refresh-token [post]
func (h *AdminAuthHandler) RefreshToken(c echo.Context) error {
	refresh := refreshCookie(c)
	if refresh == "" {
		return domain.NewError(domain.ErrUnauthenticated, "refresh token not provided")
	}

	pair, _, err := h.authService.Rotate(c.Request().Context(), refresh)
	if err != nil {
		metrics.TokenRotationsTotal.WithLabelValues(middleware.RealmAdmin, "rejected").Inc()
		return err
	}
	metrics.TokenRotationsTotal.WithLabelValues(middleware.RealmAdmin, "ok").Inc()

	middleware.SetCredentialCookies(c, pair, h.cookies)
	return ok(c, "Tokens refreshed successfully", nil)
}

// Logout clears the admin cookies. Admin refresh tokens are not stored.
//
// @Summary      Admin logout
// @Tags         admin-auth
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /api/admin/logout [post]
func (h *AdminAuthHandler) Logout(c echo.Context) error {
	middleware.ClearCredentialCookies(c, h.cookies)
	return ok(c, "Successfully logged out", nil)
}
