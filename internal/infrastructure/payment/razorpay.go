// Package payment adapts the Razorpay API to ports.PaymentGateway.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/motlupets/storefront/internal/core/ports"
)

const defaultTimeout = 30 * time.Second

// razorpayAPI is the subset of the SDK client the gateway calls.
type razorpayAPI interface {
	CreateOrder(data map[string]interface{}) (map[string]interface{}, error)
	FetchPayment(id string) (map[string]interface{}, error)
}

type sdkClient struct {
	c *razorpay.Client
}

func (s sdkClient) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return s.c.Order.Create(data, nil)
}

func (s sdkClient) FetchPayment(id string) (map[string]interface{}, error) {
	return s.c.Payment.Fetch(id, nil, nil)
}

// RazorpayGateway implements ports.PaymentGateway.
type RazorpayGateway struct {
	api     razorpayAPI
	timeout time.Duration
}

// NewRazorpayGateway builds a gateway for the given key pair. The SDK has no
// context support, so every call is bounded by timeout instead.
func NewRazorpayGateway(keyID, keySecret string, timeout time.Duration) *RazorpayGateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RazorpayGateway{api: sdkClient{c: razorpay.NewClient(keyID, keySecret)}, timeout: timeout}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req ports.GatewayOrderRequest) (*ports.GatewayOrder, error) {
	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	data := map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	}

	body, err := call(ctx, g.timeout, func() (map[string]interface{}, error) { return g.api.CreateOrder(data) })
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	id := str(body, "id")
	if id == "" {
		return nil, errors.New("razorpay create order: response has no id")
	}
	return &ports.GatewayOrder{
		ID:          id,
		AmountMinor: num(body, "amount"),
		Currency:    str(body, "currency"),
	}, nil
}

func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*ports.GatewayPayment, error) {
	body, err := call(ctx, g.timeout, func() (map[string]interface{}, error) { return g.api.FetchPayment(paymentID) })
	if err != nil {
		return nil, fmt.Errorf("razorpay fetch payment: %w", err)
	}
	return &ports.GatewayPayment{
		ID:          str(body, "id"),
		OrderID:     str(body, "order_id"),
		Status:      str(body, "status"),
		AmountMinor: num(body, "amount"),
		Notes:       notesOf(body),
	}, nil
}

type result struct {
	body map[string]interface{}
	err  error
}

// call runs fn and gives up when ctx is done or timeout passes. fn keeps
// running in the background after a give-up; its result is dropped.
func call(ctx context.Context, timeout time.Duration, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		body, err := fn()
		ch <- result{body: body, err: err}
	}()

	select {
	case r := <-ch:
		return r.body, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func str(body map[string]interface{}, key string) string {
	s, _ := body[key].(string)
	return s
}

// num reads a JSON number, which the SDK decodes as float64.
func num(body map[string]interface{}, key string) int64 {
	switch v := body[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// notesOf flattens the notes object. Razorpay returns an empty array when a
// resource has no notes.
func notesOf(body map[string]interface{}) map[string]string {
	out := make(map[string]string)
	raw, ok := body["notes"].(map[string]interface{})
	if !ok {
		return out
	}
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}
