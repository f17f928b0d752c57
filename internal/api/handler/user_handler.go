package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/motlupets/storefront/internal/core/ports"
)

// UserHandler serves the admin's view of customer accounts.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/admin/users.
//
// @Summary      List customers
// @Tags         admin
// @Produce      json
// @Success      200  {object}  envelope{data=[]domain.User}
// @Failure      401  {object}  failureResponse
// @Router       /api/admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return ok(c, "User collection is empty!", users)
	}
	return ok(c, "Successfully fetched user datas.", users)
}

// Get handles GET /api/admin/users/:id.
//
// @Summary      Get a customer
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope{data=domain.User}
// @Failure      404  {object}  failureResponse
// @Router       /api/admin/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, "Successfully fetched user data.", user)
}
