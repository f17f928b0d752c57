package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

type recordingSender struct {
	mu     sync.Mutex
	bodies map[string]string
	failTo string
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	if msg.To == s.failTo {
		return errors.New("550 mailbox unavailable")
	}
	var buf bytes.Buffer
	if err := msg.Body.Execute(&buf, msg.Data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[msg.To] = buf.String()
	return nil
}

func sampleNotification() ports.OrderNotification {
	return ports.OrderNotification{
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Order: domain.Order{
			ID:      "65f1c2d3e4f5a6b7c8d9e0af",
			OrderID: "order_KpZ8aB1cD2eF3g",
			Items: []domain.LineItem{
				{Title: "Dog Kibble <Large>", Quantity: 3, UnitPrice: 499},
			},
			Subtotal:      1497,
			TotalAmount:   1497,
			PaymentMethod: domain.PaymentOnline,
			PaymentID:     "pay_1",
			CreatedAt:     time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestNotifier_SendOrderConfirmation(t *testing.T) {
	sender := &recordingSender{bodies: make(map[string]string)}
	n := NewNotifier(sender, "admin@example.com", zerolog.Nop())

	deliveries, err := n.SendOrderConfirmation(context.Background(), sampleNotification())
	require.NoError(t, err)
	require.Len(t, deliveries, 2)

	customer := sender.bodies["alice@example.com"]
	assert.Contains(t, customer, "DH-D9E0AF")
	assert.Contains(t, customer, "₹1,497")
	assert.Contains(t, customer, "FREE")
	assert.Contains(t, customer, "Dog Kibble &lt;Large&gt;")
	assert.NotContains(t, customer, "New order received")

	assert.Contains(t, sender.bodies["admin@example.com"], "New order received")
}

func TestNotifier_SendOrderConfirmation_PartialFailure(t *testing.T) {
	sender := &recordingSender{bodies: make(map[string]string), failTo: "admin@example.com"}
	n := NewNotifier(sender, "admin@example.com", zerolog.Nop())

	deliveries, err := n.SendOrderConfirmation(context.Background(), sampleNotification())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "admin@example.com"))

	byRecipient := map[string]ports.Delivery{}
	for _, d := range deliveries {
		byRecipient[d.Recipient] = d
	}
	assert.True(t, byRecipient["alice@example.com"].Delivered)
	assert.False(t, byRecipient["admin@example.com"].Delivered)
}

func TestNotifier_SendOrderConfirmation_NoAdmin(t *testing.T) {
	sender := &recordingSender{bodies: make(map[string]string)}
	n := NewNotifier(sender, "", zerolog.Nop())

	deliveries, err := n.SendOrderConfirmation(context.Background(), sampleNotification())
	require.NoError(t, err)
	assert.Len(t, deliveries, 1)
}

func TestNotifier_SendOTP(t *testing.T) {
	sender := &recordingSender{bodies: make(map[string]string)}
	n := NewNotifier(sender, "", zerolog.Nop())

	require.NoError(t, n.SendOTP(context.Background(), "Bob", "bob@example.com", "042917"))
	body := sender.bodies["bob@example.com"]
	assert.Contains(t, body, "042917")
	assert.Contains(t, body, "3 minutes")
}

func TestLogSender_RendersTemplate(t *testing.T) {
	s := NewLogSender(zerolog.Nop())
	err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "x", Body: otpTmpl, Data: otpView{OTP: "1"}})
	assert.NoError(t, err)
}

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		123456:  "1,23,456",
		1234567: "12,34,567",
		-5000:   "-5,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatAmount(in), "formatAmount(%d)", in)
	}
}
