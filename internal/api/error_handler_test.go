package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/motlupets/storefront/internal/core/domain"
)

func runErrorHandler(t *testing.T, err error, exposeDetail bool) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop(), exposeDetail)(err, c)

	var body map[string]any
	if jsonErr := json.Unmarshal(rec.Body.Bytes(), &body); jsonErr != nil {
		t.Fatalf("invalid json: %v", jsonErr)
	}
	return rec.Code, body
}

func TestErrorHandler_DomainKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found", domain.ErrOrderNotFound, http.StatusNotFound, "order not found"},
		{"forbidden", domain.ErrNotOrderOwner, http.StatusForbidden, "you can only cancel your own orders"},
		{"unauthenticated", domain.ErrBothTokensMissing, http.StatusUnauthorized, "both tokens missing"},
		{"precondition", domain.Errorf(domain.ErrPrecondition, "cannot cancel order with status: %s", "shipped"), http.StatusBadRequest, "cannot cancel order with status: shipped"},
		{"signature", domain.ErrPaymentSignature, http.StatusBadRequest, "invalid payment signature"},
		{"conflict", domain.ErrProductExists, http.StatusConflict, "product already exists"},
		{"locked", domain.ErrLoginLocked, http.StatusTooManyRequests, "too many failed login attempts, try again later"},
		{"wrapped", fmt.Errorf("cancel order: %w", domain.ErrOrderChanged), http.StatusBadRequest, "order was modified concurrently, retry"},
		{"bare kind", fmt.Errorf("lookup: %w", domain.ErrNotFound), http.StatusNotFound, "not found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := runErrorHandler(t, tc.err, false)
			if code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, code)
			}
			if body["status"] != "failure" {
				t.Fatalf("expected failure status, got %v", body["status"])
			}
			if body["message"] != tc.msg {
				t.Fatalf("expected message %q, got %v", tc.msg, body["message"])
			}
		})
	}
}

func TestErrorHandler_UpstreamDetailGated(t *testing.T) {
	err := domain.Wrap(domain.ErrUpstream, "failed to create payment order", errors.New("gateway: 502"))

	code, body := runErrorHandler(t, err, false)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("detail leaked in production: %v", body)
	}

	_, body = runErrorHandler(t, err, true)
	if body["error"] != "gateway: 502" {
		t.Fatalf("expected detail, got %v", body["error"])
	}
	if body["message"] != "failed to create payment order" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestErrorHandler_UnexpectedErrorIsGeneric(t *testing.T) {
	code, body := runErrorHandler(t, errors.New("mongo: connection reset"), true)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if body["message"] != "internal server error" {
		t.Fatalf("unexpected message %v", body["message"])
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("unexpected detail: %v", body)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	code, body := runErrorHandler(t, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large"), false)
	if code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", code)
	}
	if body["message"] != "image too large" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}
