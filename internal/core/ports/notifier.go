package ports

import (
	"context"

	"github.com/motlupets/storefront/internal/core/domain"
)

// OrderNotification is everything an order confirmation email needs.
type OrderNotification struct {
	Order         domain.Order
	CustomerName  string
	CustomerEmail string
}

// Delivery reports the outcome for one recipient.
type Delivery struct {
	Recipient string
	Delivered bool
	Err       error
}

// Notifier sends transactional email.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, n OrderNotification) ([]Delivery, error)
	SendOTP(ctx context.Context, name, email, otp string) error
}

// Task is a unit of background work. Key groups tasks that must run in
// submission order.
type Task struct {
	Name string
	Key  string
	Run  func(ctx context.Context) error
}

// TaskRunner executes tasks in the background. Submit never blocks on the
// task and its outcome never reaches the submitter.
type TaskRunner interface {
	Submit(task Task)
}
