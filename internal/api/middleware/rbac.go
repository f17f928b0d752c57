package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/motlupets/storefront/internal/core/domain"
)

// SelfOnly restricts a route to the user named by the param path segment.
// It must run after Gate.
func SelfOnly(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject := UserID(c)
			if subject == "" || c.Param(param) != subject {
				return domain.ErrAccessDenied
			}
			return next(c)
		}
	}
}
