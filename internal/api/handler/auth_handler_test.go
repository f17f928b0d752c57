package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/motlupets/storefront/internal/api/middleware"
	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
	"github.com/motlupets/storefront/internal/pkg/credential"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) error
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	rotateFn   func(ctx context.Context, refreshToken string) (credential.Pair, credential.Identity, error)
	logoutFn   func(ctx context.Context, refreshToken string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) error {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) VerifyOTP(ctx context.Context, email, otp string) error { return nil }

func (s *stubAuthService) ResendOTP(ctx context.Context, email string) error { return nil }

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Rotate(ctx context.Context, refreshToken string) (credential.Pair, credential.Identity, error) {
	return s.rotateFn(ctx, refreshToken)
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.logoutFn(ctx, refreshToken)
}

// newTestEcho returns an Echo wired with the handler validator.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func testPair() credential.Pair {
	return credential.Pair{
		Access:  credential.IssuedToken{Value: "access-1", ExpiresAt: time.Now().Add(15 * time.Minute)},
		Refresh: credential.IssuedToken{Value: "refresh-1", ExpiresAt: time.Now().Add(7 * 24 * time.Hour)},
	}
}

func setCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range (&http.Response{Header: rec.Header()}).Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) error {
			if in.Name != "Alice" || in.Email != "alice@example.com" || in.Password != "secret-pass" {
				t.Fatalf("unexpected args: %+v", in)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/api/users/register", `{"name":"Alice","email":"alice@example.com","password":"secret-pass"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if resp["status"] != "success" {
		t.Fatalf("expected success envelope, got %+v", resp)
	}
	data, ok := resp["data"].(map[string]any)
	if !ok || data["email"] != "alice@example.com" {
		t.Fatalf("unexpected data payload: %+v", resp["data"])
	}
}

func TestAuthHandler_Register_AlreadyVerified(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) error {
			return domain.ErrAlreadyVerified
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/api/users/register", `{"name":"Bob","email":"bob@example.com","password":"secret-pass"}`)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.Register(c); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected already verified, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	cases := map[string]string{
		"not json":       "not-json",
		"short password": `{"name":"Bob","email":"bob@example.com","password":"short"}`,
		"bad email":      `{"name":"Bob","email":"bob","password":"secret-pass"}`,
		"short name":     `{"name":"Bo","email":"bob@example.com","password":"secret-pass"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubAuthService{
				registerFn: func(ctx context.Context, in ports.RegisterInput) error {
					t.Fatalf("should not be called")
					return nil
				},
			}
			h := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

			c := e.NewContext(jsonRequest(http.MethodPost, "/api/users/register", body), httptest.NewRecorder())

			if err := h.Register(c); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Login_SetsCookies(t *testing.T) {
	e := newTestEcho()
	pair := testPair()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			if email != "alice@example.com" || password != "secret-pass" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.LoginResult{
				User: domain.User{ID: "u1", Name: "Alice", Email: email},
				Pair: pair,
			}, nil
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/api/users/login", `{"email":"alice@example.com","password":"secret-pass"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["userID"] != "u1" || data["name"] != "Alice" {
		t.Fatalf("unexpected data payload: %+v", data)
	}
	if strings.Contains(rec.Body.String(), pair.Refresh.Value) {
		t.Fatalf("tokens must only travel in cookies")
	}

	cookies := setCookies(rec)
	if cookies[middleware.AccessCookie] == nil || cookies[middleware.AccessCookie].Value != pair.Access.Value {
		t.Fatalf("access cookie missing")
	}
	if cookies[middleware.RefreshCookie] == nil || !cookies[middleware.RefreshCookie].HttpOnly {
		t.Fatalf("refresh cookie missing or not http-only")
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	for _, want := range []error{domain.ErrUserNotFound, domain.ErrEmailNotVerified, domain.ErrInvalidCredentials, domain.ErrLoginLocked} {
		e := newTestEcho()
		stub := &stubAuthService{
			loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
				return nil, want
			},
		}
		h := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/users/login", `{"email":"a@example.com","password":"secret-pass"}`), rec)

		if err := h.Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		if len(setCookies(rec)) != 0 {
			t.Fatalf("no cookies expected on failed login")
		}
	}
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	e := newTestEcho()
	pair := testPair()
	stub := &stubAuthService{
		rotateFn: func(ctx context.Context, refreshToken string) (credential.Pair, credential.Identity, error) {
			if refreshToken != "old-refresh" {
				t.Fatalf("unexpected refresh token %q", refreshToken)
			}
			return pair, credential.Identity{Subject: "u1", Email: "a@example.com", Role: domain.RoleUser}, nil
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshCookie, Value: "old-refresh"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.RefreshToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if setCookies(rec)[middleware.RefreshCookie].Value != pair.Refresh.Value {
		t.Fatalf("refresh cookie not rotated")
	}
}

func TestAuthHandler_RefreshToken_MissingCookie(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, middleware.CookieConfig{}, zerolog.Nop())

	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/users/refresh-token", nil), httptest.NewRecorder())

	if err := h.RefreshToken(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestAuthHandler_Logout_AlwaysSucceeds(t *testing.T) {
	e := newTestEcho()
	var got string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, refreshToken string) error {
			got = refreshToken
			return errors.New("mongo down")
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshCookie, Value: "r1"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != "r1" {
		t.Fatalf("expected refresh token forwarded, got %q", got)
	}
	if ck := setCookies(rec)[middleware.AccessCookie]; ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("access cookie not cleared")
	}
}
