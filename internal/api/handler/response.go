package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// envelope wraps every successful response body.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// failureResponse documents the error body rendered by the API error handler.
type failureResponse struct {
	Status  string `json:"status"  example:"failure"`
	Message string `json:"message" example:"product not found"`
	Error   string `json:"error,omitempty"`
}

func ok(c echo.Context, msg string, data any) error {
	return c.JSON(http.StatusOK, envelope{Status: "success", Message: msg, Data: data})
}

func created(c echo.Context, msg string, data any) error {
	return c.JSON(http.StatusCreated, envelope{Status: "success", Message: msg, Data: data})
}
