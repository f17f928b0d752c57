package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/motlupets/storefront/internal/api/metrics"
	"github.com/motlupets/storefront/internal/api/middleware"
	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

// AuthHandler serves customer registration and sessions.
type AuthHandler struct {
	authService ports.AuthService
	cookies     middleware.CookieConfig
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, cookies middleware.CookieConfig, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, log: log}
}

// Register creates an unverified account and mails a verification code.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  envelope{data=emailResponse}
// @Failure      400   {object}  failureResponse
// @Failure      500   {object}  failureResponse
// @Router       /api/users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return created(c,
		"Registration initiated! Please check your email for the verification code. The code will expire in 3 minutes.",
		emailResponse{Email: req.Email})
}

// VerifyOTP marks an account verified.
//
// @Summary      Verify the emailed one-time code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "Email and code"
// @Success      200   {object}  envelope
// @Failure      400   {object}  failureResponse
// @Failure      404   {object}  failureResponse
// @Router       /api/users/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.VerifyOTP(c.Request().Context(), req.Email, req.OTP); err != nil {
		return err
	}
	return ok(c, "Email verified successfully! You can now login to your account.", nil)
}

// ResendOTP mails a fresh code to an unverified account.
//
// @Summary      Resend the verification code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resendOTPRequest  true  "Email"
// @Success      200   {object}  envelope{data=emailResponse}
// @Failure      400   {object}  failureResponse
// @Failure      404   {object}  failureResponse
// @Router       /api/users/resend-otp [post]
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req resendOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.ResendOTP(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return ok(c,
		"New verification code sent! Please check your email. The code will expire in 3 minutes.",
		emailResponse{Email: req.Email})
}

// Login authenticates a customer and sets the credential cookies.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope{data=sessionResponse}
// @Failure      400   {object}  failureResponse
// @Failure      401   {object}  failureResponse
// @Failure      404   {object}  failureResponse
// @Failure      429   {object}  failureResponse
// @Router       /api/users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(middleware.RealmUser, loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues(middleware.RealmUser, "ok").Inc()

	middleware.SetCredentialCookies(c, res.Pair, h.cookies)
	return ok(c, "Successfully Logged In.", sessionResponse{
		Name:   res.User.Name,
		UserID: res.User.ID,
		Email:  res.User.Email,
	})
}

// RefreshToken rotates the refresh cookie into a new credential pair.
//
// @Summary      Rotate credentials
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope{data=sessionResponse}
// @Failure      401  {object}  failureResponse
// @Router       /api/users/refresh-token [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	refresh := refreshCookie(c)
	if refresh == "" {
		return domain.NewError(domain.ErrUnauthenticated, "refresh token not provided")
	}

	pair, id, err := h.authService.Rotate(c.Request().Context(), refresh)
	if err != nil {
		metrics.TokenRotationsTotal.WithLabelValues(middleware.RealmUser, "rejected").Inc()
		return err
	}
	metrics.TokenRotationsTotal.WithLabelValues(middleware.RealmUser, "ok").Inc()

	middleware.SetCredentialCookies(c, pair, h.cookies)
	return ok(c, "Tokens refreshed successfully", sessionResponse{UserID: id.Subject, Email: id.Email})
}

// Logout forgets the stored refresh token and clears the cookies. It
// succeeds even without a session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /api/users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), refreshCookie(c)); err != nil {
		h.log.Warn().Err(err).Msg("logout failed to clear stored refresh token")
	}
	middleware.ClearCredentialCookies(c, h.cookies)
	return ok(c, "Successfully logged out", nil)
}

func refreshCookie(c echo.Context) string {
	ck, err := c.Cookie(middleware.RefreshCookie)
	if err != nil {
		return ""
	}
	return ck.Value
}

func loginResult(err error) string {
	if errors.Is(err, domain.ErrTooManyRequests) {
		return "locked"
	}
	return "rejected"
}
