package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/motlupets/storefront/internal/api/middleware"
	"github.com/motlupets/storefront/internal/core/domain"
)

// subject returns the user id injected by the auth gate. Its presence
// proves the gate ran.
func subject(c echo.Context) (string, error) {
	id := middleware.UserID(c)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

// bindAndValidate decodes the request body into req and runs its validate
// tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewError(domain.ErrValidation, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return domain.NewError(domain.ErrValidation, err.Error())
	}
	return nil
}
