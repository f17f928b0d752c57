package ports

import "context"

// GatewayOrderRequest asks the gateway for a new order.
type GatewayOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// GatewayOrder is the gateway's view of a created order.
type GatewayOrder struct {
	ID          string
	AmountMinor int64
	Currency    string
}

// GatewayPayment is the gateway's view of a captured payment.
type GatewayPayment struct {
	ID          string
	OrderID     string
	Status      string
	AmountMinor int64
	Notes       map[string]string
}

// PaymentGateway is the online payment provider.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
}
