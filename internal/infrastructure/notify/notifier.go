// Package notify sends transactional email over SMTP or to the log.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

// Message is one rendered email.
type Message struct {
	To      string
	Subject string
	Body    *template.Template
	Data    any
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier renders storefront emails and hands them to a Sender.
type Notifier struct {
	sender     Sender
	adminEmail string
	log        zerolog.Logger
}

// NewNotifier returns a Notifier. An empty adminEmail skips the admin copy
// of order confirmations.
func NewNotifier(sender Sender, adminEmail string, log zerolog.Logger) *Notifier {
	return &Notifier{
		sender:     sender,
		adminEmail: adminEmail,
		log:        log.With().Str("component", "notify").Logger(),
	}
}

// SendOrderConfirmation emails the customer and the admin concurrently. One
// failed recipient does not stop the other; every outcome is reported.
func (n *Notifier) SendOrderConfirmation(ctx context.Context, msg ports.OrderNotification) ([]ports.Delivery, error) {
	base := orderView{
		OrderNumber:   msg.Order.OrderNumber(),
		PlacedAt:      msg.Order.CreatedAt.Format("02 Jan 2006, 15:04"),
		CustomerName:  msg.CustomerName,
		CustomerEmail: msg.CustomerEmail,
		Order:         toOrderData(msg.Order),
	}

	messages := []Message{{
		To:      msg.CustomerEmail,
		Subject: "Order Confirmation - " + base.OrderNumber,
		Body:    orderConfirmationTmpl,
		Data:    base,
	}}
	if n.adminEmail != "" {
		admin := base
		admin.ForAdmin = true
		messages = append(messages, Message{
			To:      n.adminEmail,
			Subject: "New Order Received - " + base.OrderNumber,
			Body:    orderConfirmationTmpl,
			Data:    admin,
		})
	}

	deliveries := make([]ports.Delivery, len(messages))
	var g errgroup.Group
	for i, m := range messages {
		g.Go(func() error {
			err := n.sender.Send(ctx, m)
			deliveries[i] = ports.Delivery{Recipient: m.To, Delivered: err == nil, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, d := range deliveries {
		if d.Err != nil {
			n.log.Error().Err(d.Err).Str("order_id", msg.Order.OrderID).Msg("order confirmation not delivered")
			errs = append(errs, fmt.Errorf("%s: %w", d.Recipient, d.Err))
		}
	}
	return deliveries, errors.Join(errs...)
}

func (n *Notifier) SendOTP(ctx context.Context, name, email, otp string) error {
	err := n.sender.Send(ctx, Message{
		To:      email,
		Subject: "Verify your email",
		Body:    otpTmpl,
		Data:    otpView{Name: name, OTP: otp, ValidFor: minutes(domain.OTPTTL.Minutes())},
	})
	if err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func toOrderData(o domain.Order) orderData {
	lines := make([]lineView, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, lineView{Title: it.Title, Quantity: it.Quantity, Amount: it.Amount()})
	}
	return orderData{
		Items:         lines,
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: string(o.PaymentMethod),
		PaymentID:     o.PaymentID,
		Shipping: shippingView{
			FullName:      o.Shipping.FullName,
			StreetAddress: o.Shipping.StreetAddress,
			City:          o.Shipping.City,
			State:         o.Shipping.State,
			Pincode:       o.Shipping.Pincode,
			Country:       o.Shipping.Country,
		},
		PhoneNumber:         o.PhoneNumber,
		SpecialInstructions: o.SpecialInstructions,
	}
}

// formatAmount renders whole rupees with Indian digit grouping, e.g. 1,23,456.
func formatAmount(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		s = strings.Join(parts, ",") + "," + tail
	}
	if neg {
		s = "-" + s
	}
	return s
}

func minutes(m float64) string {
	if m == 1 {
		return "1 minute"
	}
	return strconv.FormatFloat(m, 'f', -1, 64) + " minutes"
}
