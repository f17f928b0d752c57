package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/motlupets/storefront/internal/core/ports"
)

type productRefRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type quantityChangeRequest struct {
	ProductID      string `json:"productId"      validate:"required"`
	QuantityChange int    `json:"quantityChange" validate:"required,ne=0"`
}

// CartHandler serves the cart and wishlist of the authenticated user.
type CartHandler struct {
	service ports.CartService
}

func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// Cart handles GET /api/users/:id/cart.
//
// @Summary      Show the cart
// @Tags         cart
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope{data=[]domain.CartLine}
// @Failure      401  {object}  failureResponse
// @Failure      403  {object}  failureResponse
// @Failure      404  {object}  failureResponse
// @Router       /api/users/{id}/cart [get]
func (h *CartHandler) Cart(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	lines, err := h.service.Cart(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ok(c, "Successfully fetched cart items.", nonNil(lines))
}

// AddToCart handles POST /api/users/:id/cart. Adding a product already in
// the cart leaves its quantity unchanged.
//
// @Summary      Add a product to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      productRefRequest  true  "Product"
// @Success      200   {object}  envelope
// @Failure      404   {object}  failureResponse
// @Router       /api/users/{id}/cart [post]
func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	var req productRefRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.AddToCart(c.Request().Context(), userID, req.ProductID); err != nil {
		return err
	}
	return ok(c, "Product added to cart", nil)
}

// UpdateQuantity handles PUT /api/users/:id/cart.
//
// @Summary      Change a cart line's quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "User id"
// @Param        body  body      quantityChangeRequest  true  "Quantity delta"
// @Success      200   {object}  envelope{data=[]domain.CartLine}
// @Failure      400   {object}  failureResponse
// @Failure      404   {object}  failureResponse
// @Router       /api/users/{id}/cart [put]
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	var req quantityChangeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.service.UpdateQuantity(ctx, userID, req.ProductID, req.QuantityChange); err != nil {
		return err
	}
	lines, err := h.service.Cart(ctx, userID)
	if err != nil {
		return err
	}
	return ok(c, "Cart item quantity updated", nonNil(lines))
}

// RemoveFromCart handles DELETE /api/users/:id/cart/:productId.
//
// @Summary      Remove a product from the cart
// @Tags         cart
// @Produce      json
// @Param        id         path      string  true  "User id"
// @Param        productId  path      string  true  "Product id"
// @Success      200        {object}  envelope
// @Failure      404        {object}  failureResponse
// @Router       /api/users/{id}/cart/{productId} [delete]
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	if err := h.service.RemoveFromCart(c.Request().Context(), userID, c.Param("productId")); err != nil {
		return err
	}
	return ok(c, "Successfully removed from cart", nil)
}

// Wishlist handles GET /api/users/:id/wishlist.
//
// @Summary      Show the wishlist
// @Tags         wishlist
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope{data=[]domain.Product}
// @Failure      404  {object}  failureResponse
// @Router       /api/users/{id}/wishlist [get]
func (h *CartHandler) Wishlist(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	products, err := h.service.Wishlist(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ok(c, "Successfully fetched wishlist.", nonNil(products))
}

// AddToWishlist handles POST /api/users/:id/wishlist.
//
// @Summary      Add a product to the wishlist
// @Tags         wishlist
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      productRefRequest  true  "Product"
// @Success      200   {object}  envelope{data=[]domain.Product}
// @Failure      404   {object}  failureResponse
// @Router       /api/users/{id}/wishlist [post]
func (h *CartHandler) AddToWishlist(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	var req productRefRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.service.AddToWishlist(ctx, userID, req.ProductID); err != nil {
		return err
	}
	products, err := h.service.Wishlist(ctx, userID)
	if err != nil {
		return err
	}
	return ok(c, "Successfully added to wishlist", nonNil(products))
}

// RemoveFromWishlist handles DELETE /api/users/:id/wishlist/:productId.
//
// @Summary      Remove a product from the wishlist
// @Tags         wishlist
// @Produce      json
// @Param        id         path      string  true  "User id"
// @Param        productId  path      string  true  "Product id"
// @Success      200        {object}  envelope
// @Failure      404        {object}  failureResponse
// @Router       /api/users/{id}/wishlist/{productId} [delete]
func (h *CartHandler) RemoveFromWishlist(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	if err := h.service.RemoveFromWishlist(c.Request().Context(), userID, c.Param("productId")); err != nil {
		return err
	}
	return ok(c, "Successfully removed from wishlist", nil)
}
