package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/motlupets/storefront/internal/api/metrics"
	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

// OrderHandler serves order history, cancellation and the admin order desk.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// ListMine handles GET /api/users/:id/orders.
//
// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope{data=[]orderView}
// @Failure      403  {object}  failureResponse
// @Failure      404  {object}  failureResponse
// @Router       /api/users/{id}/orders [get]
func (h *OrderHandler) ListMine(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ok(c, "Successfully fetched order details.", toOrderViews(orders))
}

// Cancel handles PUT /api/users/:id/orders/:orderId/cancel.
//
// @Summary      Cancel one of my orders
// @Tags         orders
// @Produce      json
// @Param        id       path      string  true  "User id"
// @Param        orderId  path      string  true  "Order id"
// @Success      200      {object}  envelope{data=cancelResponse}
// @Failure      400      {object}  failureResponse
// @Failure      403      {object}  failureResponse
// @Failure      404      {object}  failureResponse
// @Router       /api/users/{id}/orders/{orderId}/cancel [put]
func (h *OrderHandler) Cancel(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	order, err := h.service.Cancel(c.Request().Context(), userID, c.Param("orderId"))
	if err != nil {
		return err
	}
	metrics.OrderCancellationsTotal.WithLabelValues("customer").Inc()

	return ok(c, "Order cancelled successfully", cancelResponse{
		OrderID:      order.ID,
		Status:       string(order.Status),
		CancelledAt:  order.CancelledAt,
		RefundStatus: refundStatus(*order),
	})
}

// ListAll handles GET /api/admin/orders.
//
// @Summary      List all orders
// @Tags         admin
// @Produce      json
// @Success      200  {object}  envelope{data=[]orderView}
// @Failure      401  {object}  failureResponse
// @Router       /api/admin/orders [get]
func (h *OrderHandler) ListAll(c echo.Context) error {
	orders, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return ok(c, "No Orders", []orderView{})
	}
	return ok(c, "Successfully fetched order details.", toOrderViews(orders))
}

// UpdateStatus handles PUT /api/admin/orders/:id.
//
// @Summary      Set an order's status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Order id"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  envelope{data=orderView}
// @Failure      400   {object}  failureResponse
// @Failure      404   {object}  failureResponse
// @Router       /api/admin/orders/{id} [put]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	status := domain.OrderStatus(req.Status)
	order, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return err
	}
	if status == domain.OrderCancelled {
		metrics.OrderCancellationsTotal.WithLabelValues("admin").Inc()
	}
	return ok(c, "Order status updated successfully.", toOrderView(*order))
}

// Stats handles GET /api/admin/stats.
//
// @Summary      Dashboard counters
// @Tags         admin
// @Produce      json
// @Success      200  {object}  envelope{data=statsView}
// @Failure      401  {object}  failureResponse
// @Router       /api/admin/stats [get]
func (h *OrderHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, "Successfully fetched stats.", toStatsView(*stats))
}
