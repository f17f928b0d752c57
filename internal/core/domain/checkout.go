package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"time"
)

const (
	// FreeDeliveryThreshold is the subtotal at which delivery becomes free.
	FreeDeliveryThreshold int64 = 999
	// StandardDeliveryFee is charged below FreeDeliveryThreshold.
	StandardDeliveryFee int64 = 99

	Currency = "INR"
)

// DeliveryFee is the step function applied to a cart subtotal.
func DeliveryFee(subtotal int64) int64 {
	if subtotal < FreeDeliveryThreshold {
		return StandardDeliveryFee
	}
	return 0
}

// Totals is the price breakdown of a set of line items.
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Total       int64 `json:"total"`
}

// ComputeTotals sums items and applies the delivery fee.
func ComputeTotals(items []LineItem) Totals {
	var subtotal int64
	for _, it := range items {
		subtotal += it.Amount()
	}
	fee := DeliveryFee(subtotal)
	return Totals{Subtotal: subtotal, DeliveryFee: fee, Total: subtotal + fee}
}

// MinorUnits converts whole rupees to paise.
func MinorUnits(amount int64) int64 {
	return amount * 100
}

// PaymentSignature is the hex HMAC-SHA256 of "orderID|paymentID".
func PaymentSignature(gatewayOrderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature compares signature against the expected digest in
// constant time.
func VerifyPaymentSignature(gatewayOrderID, paymentID, signature, secret string) bool {
	expected := PaymentSignature(gatewayOrderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Reservation is the pending order draft held between payment intent and
// payment confirmation. Item prices are fixed when it is created.
type Reservation struct {
	GatewayOrderID string     `json:"gateway_order_id"`
	UserID         string     `json:"user_id"`
	Items          []LineItem `json:"items"`
	Totals         Totals     `json:"totals"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewReservation snapshots items under gatewayOrderID.
func NewReservation(gatewayOrderID, userID string, items []LineItem, now time.Time) Reservation {
	snapshot := slices.Clone(items)
	return Reservation{
		GatewayOrderID: gatewayOrderID,
		UserID:         userID,
		Items:          snapshot,
		Totals:         ComputeTotals(snapshot),
		CreatedAt:      now,
	}
}

// Confirm promotes the reservation into a paid online order.
func (r Reservation) Confirm(paymentID string, ship ShippingDetails, now time.Time) Order {
	return Order{
		OrderID:             r.GatewayOrderID,
		UserID:              r.UserID,
		Items:               slices.Clone(r.Items),
		Subtotal:            r.Totals.Subtotal,
		DeliveryFee:         r.Totals.DeliveryFee,
		TotalAmount:         r.Totals.Total,
		Status:              OrderPending,
		PaymentStatus:       PaymentCompleted,
		PaymentMethod:       PaymentOnline,
		PaymentID:           paymentID,
		Shipping:            ship.Address.withDefaults(),
		PhoneNumber:         ship.PhoneNumber,
		SpecialInstructions: ship.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// NewCODOrder builds a cash-on-delivery order straight from cart items.
func NewCODOrder(orderID, userID string, items []LineItem, ship ShippingDetails, now time.Time) Order {
	snapshot := slices.Clone(items)
	totals := ComputeTotals(snapshot)
	return Order{
		OrderID:             orderID,
		UserID:              userID,
		Items:               snapshot,
		Subtotal:            totals.Subtotal,
		DeliveryFee:         totals.DeliveryFee,
		TotalAmount:         totals.Total,
		Status:              OrderPending,
		PaymentStatus:       PaymentPending,
		PaymentMethod:       PaymentCOD,
		Shipping:            ship.Address.withDefaults(),
		PhoneNumber:         ship.PhoneNumber,
		SpecialInstructions: ship.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func (a ShippingAddress) withDefaults() ShippingAddress {
	if a.Country == "" {
		a.Country = "India"
	}
	return a
}
