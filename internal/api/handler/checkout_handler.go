package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/motlupets/storefront/internal/api/metrics"
	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

// CheckoutHandler serves both payment paths.
type CheckoutHandler struct {
	service ports.CheckoutService
}

func NewCheckoutHandler(service ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// CreatePayment handles POST /api/users/:id/payment. The cart is priced and
// reserved; the client opens the gateway checkout with the returned order.
//
// @Summary      Start an online payment
// @Tags         checkout
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope{data=paymentIntentResponse}
// @Failure      404  {object}  failureResponse
// @Failure      500  {object}  failureResponse
// @Router       /api/users/{id}/payment [post]
func (h *CheckoutHandler) CreatePayment(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}

	intent, err := h.service.CreateIntent(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ok(c, "Razorpay order created successfully", paymentIntentResponse{
		OrderID:     intent.GatewayOrderID,
		Amount:      intent.AmountMinor,
		Currency:    intent.Currency,
		Key:         intent.KeyID,
		Subtotal:    intent.Totals.Subtotal,
		DeliveryFee: intent.Totals.DeliveryFee,
		Total:       intent.Totals.Total,
	})
}

// VerifyPayment handles POST /api/users/:id/payment/verify.
//
// @Summary      Confirm an online payment
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "User id"
// @Param        body  body      verifyPaymentRequest  true  "Gateway callback and shipping details"
// @Success      200   {object}  envelope{data=orderPlacedResponse}
// @Failure      400   {object}  failureResponse
// @Failure      403   {object}  failureResponse
// @Failure      404   {object}  failureResponse
// @Router       /api/users/{id}/payment/verify [post]
func (h *CheckoutHandler) VerifyPayment(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	var req verifyPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.service.VerifyPayment(c.Request().Context(), userID, ports.VerifyPaymentInput{
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
		Shipping:       shippingDetails(req.ShippingAddress, req.PhoneNumber, req.SpecialInstructions),
	})
	metrics.PaymentVerificationsTotal.WithLabelValues(verificationResult(err)).Inc()
	if err != nil {
		return err
	}
	metrics.OrdersCreatedTotal.WithLabelValues(string(domain.PaymentOnline)).Inc()

	return ok(c, "Payment verified successfully", orderPlacedResponse{OrderID: order.OrderID})
}

// CreateCODOrder handles POST /api/users/:id/cod-order.
//
// @Summary      Place a cash-on-delivery order
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "User id"
// @Param        body  body      codOrderRequest  true  "Shipping details"
// @Success      200   {object}  envelope{data=orderPlacedResponse}
// @Failure      400   {object}  failureResponse
// @Failure      404   {object}  failureResponse
// @Router       /api/users/{id}/cod-order [post]
func (h *CheckoutHandler) CreateCODOrder(c echo.Context) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	var req codOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.service.CreateCODOrder(c.Request().Context(), userID,
		shippingDetails(req.ShippingAddress, req.PhoneNumber, req.SpecialInstructions))
	if err != nil {
		return err
	}
	metrics.OrdersCreatedTotal.WithLabelValues(string(domain.PaymentCOD)).Inc()

	return ok(c, "COD order placed successfully", orderPlacedResponse{OrderID: order.OrderID})
}

// PaymentSuccess handles GET /api/users/payment/success, the gateway's
// return URL.
//
// @Summary      Payment success landing
// @Tags         checkout
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /api/users/payment/success [get]
func (h *CheckoutHandler) PaymentSuccess(c echo.Context) error {
	return ok(c, "Payment was successful", nil)
}

// PaymentCancel handles POST /api/users/payment/cancel.
//
// @Summary      Payment cancelled landing
// @Tags         checkout
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /api/users/payment/cancel [post]
func (h *CheckoutHandler) PaymentCancel(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope{Status: "failure", Message: "Payment was cancelled"})
}

func verificationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
