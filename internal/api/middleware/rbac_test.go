package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/motlupets/storefront/internal/core/domain"
)

func selfOnlyContext(subject, param string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(param)
	if subject != "" {
		c.Set(CtxUserID, subject)
	}
	return c, rec
}

func TestSelfOnly_Allows(t *testing.T) {
	c, rec := selfOnlyContext("u1", "u1")

	called := false
	handler := SelfOnly("id")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSelfOnly_Forbids(t *testing.T) {
	cases := map[string][2]string{
		"other user": {"u1", "u2"},
		"no subject": {"", "u2"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := selfOnlyContext(tc[0], tc[1])
			handler := SelfOnly("id")(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})

			if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
				t.Fatalf("expected forbidden, got %v", err)
			}
		})
	}
}
