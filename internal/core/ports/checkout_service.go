package ports

import (
	"context"

	"github.com/motlupets/storefront/internal/core/domain"
)

// PaymentIntent is what the client needs to open the gateway checkout.
type PaymentIntent struct {
	GatewayOrderID string
	AmountMinor    int64
	Currency       string
	KeyID          string
	Totals         domain.Totals
}

// VerifyPaymentInput is the gateway callback forwarded by the client.
type VerifyPaymentInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
	Shipping       domain.ShippingDetails
}

// CheckoutService covers both payment paths.
type CheckoutService interface {
	CreateIntent(ctx context.Context, userID string) (*PaymentIntent, error)
	VerifyPayment(ctx context.Context, userID string, in VerifyPaymentInput) (*domain.Order, error)
	CreateCODOrder(ctx context.Context, userID string, ship domain.ShippingDetails) (*domain.Order, error)
}
