package domain

import (
	"strings"
	"time"
)

// OrderStatus represents the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderProcessing     OrderStatus = "processing"
	OrderShipped        OrderStatus = "shipped"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
	OrderReturned       OrderStatus = "returned"
)

// OrderStatuses lists every status an admin may set.
var OrderStatuses = []OrderStatus{
	OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
	OrderOutForDelivery, OrderDelivered, OrderCancelled, OrderReturned,
}

// customerCancellable are the statuses from which a customer may cancel.
var customerCancellable = map[OrderStatus]bool{
	OrderPending:    true,
	OrderConfirmed:  true,
	OrderProcessing: true,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CustomerCancellable reports whether a customer may cancel from s.
func (s OrderStatus) CustomerCancellable() bool {
	return customerCancellable[s]
}

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentCompleted     PaymentStatus = "completed"
	PaymentFailed        PaymentStatus = "failed"
	PaymentRefunded      PaymentStatus = "refunded"
	PaymentRefundPending PaymentStatus = "refund_pending"
)

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
)

const (
	ReasonCancelledByCustomer = "Cancelled by customer"
	ReasonCancelledByAdmin    = "Cancelled by admin"
)

// LineItem is a product snapshot inside an order or reservation.
type LineItem struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"price"`
}

// Amount is UnitPrice times Quantity.
func (l LineItem) Amount() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// ShippingAddress is the delivery snapshot captured at checkout.
type ShippingAddress struct {
	FullName      string `json:"fullName"`
	PhoneNumber   string `json:"phoneNumber"`
	Email         string `json:"email"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	Pincode       string `json:"pincode"`
	Country       string `json:"country"`
}

// ShippingDetails is what the customer submits with a checkout.
type ShippingDetails struct {
	Address             ShippingAddress
	PhoneNumber         string
	SpecialInstructions string
}

// Order is the durable record of a purchase.
type Order struct {
	ID                  string          `json:"id"`
	OrderID             string          `json:"order_id"`
	UserID              string          `json:"user_id,omitempty"`
	Items               []LineItem      `json:"products"`
	Subtotal            int64           `json:"subtotal"`
	DeliveryFee         int64           `json:"delivery_fee"`
	TotalAmount         int64           `json:"total_amount"`
	Status              OrderStatus     `json:"status"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
	PaymentMethod       PaymentMethod   `json:"payment_method"`
	PaymentID           string          `json:"payment_id,omitempty"`
	Shipping            ShippingAddress `json:"shipping_address"`
	PhoneNumber         string          `json:"phone_number"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	CancelledAt         *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason  string          `json:"cancellation_reason,omitempty"`
	RefundInitiatedAt   *time.Time      `json:"refund_initiated,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// OrderNumber is the short customer-facing reference, e.g. DH-4F2A9C.
func (o Order) OrderNumber() string {
	id := o.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return "DH-" + strings.ToUpper(id)
}

// CancelByCustomer returns the order cancelled on the customer's behalf.
// Online orders that were already paid move to refund_pending.
func (o Order) CancelByCustomer(now time.Time) (Order, error) {
	if !o.Status.CustomerCancellable() {
		return o, Errorf(ErrPrecondition,
			"cannot cancel order with status: %s, orders can only be cancelled when pending, confirmed or processing", o.Status)
	}

	out := o
	out.Status = OrderCancelled
	out.CancelledAt = &now
	out.CancellationReason = ReasonCancelledByCustomer
	out.UpdatedAt = now

	if o.PaymentMethod != PaymentCOD && o.PaymentStatus == PaymentCompleted {
		out.PaymentStatus = PaymentRefundPending
		out.RefundInitiatedAt = &now
	}
	return out, nil
}

// SetStatusByAdmin returns the order moved to status. Admins may set any
// known status.
func (o Order) SetStatusByAdmin(status OrderStatus, now time.Time) (Order, error) {
	if !status.Valid() {
		return o, Errorf(ErrValidation, "invalid status: %s", status)
	}

	out := o
	out.Status = status
	out.UpdatedAt = now
	if status == OrderCancelled {
		out.CancelledAt = &now
		out.CancellationReason = ReasonCancelledByAdmin
	}
	return out, nil
}

// OrderStats summarises all orders for the admin dashboard.
type OrderStats struct {
	TotalOrders       int64   `json:"totalOrders"`
	TotalProductsSold int64   `json:"totalProductsSold"`
	TotalRevenue      int64   `json:"totalRevenue"`
	PendingOrders     int64   `json:"pendingOrders"`
	CompletedOrders   int64   `json:"completedOrders"`
	CODOrders         int64   `json:"codOrders"`
	OnlineOrders      int64   `json:"onlineOrders"`
	RecentOrders      []Order `json:"recentOrders"`
}
