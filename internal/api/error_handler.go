package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/motlupets/storefront/internal/core/domain"
)

// errorResponse is the envelope of every failed request.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// kindStatus maps each domain error kind to its HTTP status.
var kindStatus = []struct {
	kind   error
	status int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrPrecondition, http.StatusBadRequest},
	{domain.ErrSignatureInvalid, http.StatusBadRequest},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrTooManyRequests, http.StatusTooManyRequests},
	{domain.ErrUpstream, http.StatusInternalServerError},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs unexpected errors without leaking them to the client.
//   - Adds the underlying cause of a domain error only when exposeDetail is set.
func NewHTTPErrorHandler(log zerolog.Logger, exposeDetail bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, exposeDetail, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, exposeDetail bool, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, failure(fmt.Sprintf("%v", he.Message))
	}

	var de *domain.Error
	if errors.As(err, &de) {
		code := statusOf(de.Kind)
		body := failure(de.Message)
		if de.Cause != nil {
			if exposeDetail {
				body.Error = de.Cause.Error()
			}
			if code >= http.StatusInternalServerError {
				logUnhandled(log, c, err)
			}
		}
		return code, body
	}

	for _, ks := range kindStatus {
		if errors.Is(err, ks.kind) {
			return ks.status, failure(ks.kind.Error())
		}
	}

	logUnhandled(log, c, err)
	return http.StatusInternalServerError, failure("internal server error")
}

func statusOf(kind error) int {
	for _, ks := range kindStatus {
		if errors.Is(kind, ks.kind) {
			return ks.status
		}
	}
	return http.StatusInternalServerError
}

func failure(msg string) errorResponse {
	return errorResponse{Status: "failure", Message: msg}
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
