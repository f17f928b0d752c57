package handler

import (
	"time"

	"github.com/motlupets/storefront/internal/core/domain"
)

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed processing shipped out_for_delivery delivered cancelled returned"`
}

// orderView adds the customer-facing order number to an order.
type orderView struct {
	domain.Order
	OrderNumber string `json:"orderNumber"`
}

type statsView struct {
	domain.OrderStats
	RecentOrders []orderView `json:"recentOrders"`
}

type cancelResponse struct {
	OrderID      string     `json:"orderId"`
	Status       string     `json:"status"`
	CancelledAt  *time.Time `json:"cancelledAt"`
	RefundStatus string     `json:"refundStatus"`
}

func toOrderView(o domain.Order) orderView {
	return orderView{Order: o, OrderNumber: o.OrderNumber()}
}

func toOrderViews(orders []*domain.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(*o))
	}
	return out
}

func toStatsView(s domain.OrderStats) statsView {
	recent := make([]orderView, 0, len(s.RecentOrders))
	for _, o := range s.RecentOrders {
		recent = append(recent, toOrderView(o))
	}
	return statsView{OrderStats: s, RecentOrders: recent}
}

func refundStatus(o domain.Order) string {
	switch {
	case o.PaymentMethod == domain.PaymentCOD:
		return "No payment was collected"
	case o.PaymentStatus == domain.PaymentRefundPending:
		return "Refund will be processed within 3-5 business days"
	default:
		return "No refund required"
	}
}
