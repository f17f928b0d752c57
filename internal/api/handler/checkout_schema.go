package handler

import "github.com/motlupets/storefront/internal/core/domain"

type shippingAddressRequest struct {
	FullName      string `json:"fullName"      validate:"required"`
	PhoneNumber   string `json:"phoneNumber"`
	Email         string `json:"email"         validate:"omitempty,email"`
	StreetAddress string `json:"streetAddress" validate:"required"`
	City          string `json:"city"          validate:"required"`
	State         string `json:"state"         validate:"required"`
	Pincode       string `json:"pincode"       validate:"required,numeric,len=6"`
	Country       string `json:"country"`
}

type codOrderRequest struct {
	ShippingAddress     shippingAddressRequest `json:"shippingAddress"     validate:"required"`
	PhoneNumber         string                 `json:"phoneNumber"         validate:"required"`
	SpecialInstructions string                 `json:"specialInstructions" validate:"max=500"`
}

type verifyPaymentRequest struct {
	GatewayOrderID      string                 `json:"razorpay_order_id"   validate:"required"`
	PaymentID           string                 `json:"razorpay_payment_id" validate:"required"`
	Signature           string                 `json:"razorpay_signature"  validate:"required"`
	ShippingAddress     shippingAddressRequest `json:"shippingAddress"     validate:"required"`
	PhoneNumber         string                 `json:"phoneNumber"         validate:"required"`
	SpecialInstructions string                 `json:"specialInstructions" validate:"max=500"`
}

type paymentIntentResponse struct {
	OrderID     string `json:"orderId"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Key         string `json:"key"`
	Subtotal    int64  `json:"subtotal"`
	DeliveryFee int64  `json:"deliveryFee"`
	Total       int64  `json:"total"`
}

type orderPlacedResponse struct {
	OrderID string `json:"orderId"`
}

func (r shippingAddressRequest) toDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		FullName:      r.FullName,
		PhoneNumber:   r.PhoneNumber,
		Email:         r.Email,
		StreetAddress: r.StreetAddress,
		City:          r.City,
		State:         r.State,
		Pincode:       r.Pincode,
		Country:       r.Country,
	}
}

func shippingDetails(addr shippingAddressRequest, phone, instructions string) domain.ShippingDetails {
	return domain.ShippingDetails{
		Address:             addr.toDomain(),
		PhoneNumber:         phone,
		SpecialInstructions: instructions,
	}
}
