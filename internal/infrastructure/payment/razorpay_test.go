package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motlupets/storefront/internal/core/ports"
)

type fakeAPI struct {
	orderData map[string]interface{}
	order     map[string]interface{}
	payment   map[string]interface{}
	err       error
	delay     time.Duration
}

func (f *fakeAPI) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	time.Sleep(f.delay)
	f.orderData = data
	return f.order, f.err
}

func (f *fakeAPI) FetchPayment(string) (map[string]interface{}, error) {
	time.Sleep(f.delay)
	return f.payment, f.err
}

func TestRazorpayGateway_CreateOrder(t *testing.T) {
	api := &fakeAPI{order: map[string]interface{}{"id": "order_KpZ8aB1cD2eF3g", "amount": float64(84800), "currency": "INR"}}
	g := &RazorpayGateway{api: api, timeout: time.Second}

	o, err := g.CreateOrder(context.Background(), ports.GatewayOrderRequest{
		AmountMinor: 84800, Currency: "INR", Receipt: "order_1", Notes: map[string]string{"userId": "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_KpZ8aB1cD2eF3g", o.ID)
	assert.Equal(t, int64(84800), o.AmountMinor)
	assert.Equal(t, int64(84800), api.orderData["amount"])
	assert.Equal(t, map[string]interface{}{"userId": "u1"}, api.orderData["notes"])
}

func TestRazorpayGateway_CreateOrder_Errors(t *testing.T) {
	g := &RazorpayGateway{api: &fakeAPI{err: errors.New("BAD_REQUEST_ERROR")}, timeout: time.Second}
	_, err := g.CreateOrder(context.Background(), ports.GatewayOrderRequest{})
	assert.ErrorContains(t, err, "BAD_REQUEST_ERROR")

	g = &RazorpayGateway{api: &fakeAPI{order: map[string]interface{}{}}, timeout: time.Second}
	_, err = g.CreateOrder(context.Background(), ports.GatewayOrderRequest{})
	assert.ErrorContains(t, err, "no id")
}

func TestRazorpayGateway_FetchPayment(t *testing.T) {
	api := &fakeAPI{payment: map[string]interface{}{
		"id": "pay_1", "order_id": "order_1", "status": "captured", "amount": float64(84800),
		"notes": map[string]interface{}{"userId": "u1", "items": float64(2)},
	}}
	g := &RazorpayGateway{api: api, timeout: time.Second}

	p, err := g.FetchPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "order_1", p.OrderID)
	assert.Equal(t, int64(84800), p.AmountMinor)
	assert.Equal(t, "u1", p.Notes["userId"])
	assert.Equal(t, "2", p.Notes["items"])
}

func TestRazorpayGateway_FetchPayment_EmptyNotesArray(t *testing.T) {
	api := &fakeAPI{payment: map[string]interface{}{"id": "pay_1", "notes": []interface{}{}}}
	g := &RazorpayGateway{api: api, timeout: time.Second}

	p, err := g.FetchPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Empty(t, p.Notes)
}

func TestRazorpayGateway_Timeout(t *testing.T) {
	g := &RazorpayGateway{api: &fakeAPI{delay: 200 * time.Millisecond}, timeout: 10 * time.Millisecond}

	_, err := g.FetchPayment(context.Background(), "pay_1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
