package ports

import (
	"context"

	"github.com/motlupets/storefront/internal/core/domain"
)

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Create inserts o and returns it with its document id set.
	Create(ctx context.Context, o *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ExistsByOrderID(ctx context.Context, gatewayOrderID string) (bool, error)
	// ListByIDs returns the given orders, newest first.
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Order, error)
	// ListAll returns every order, newest first.
	ListAll(ctx context.Context) ([]*domain.Order, error)
	// UpdateLifecycle persists the status, payment status and cancellation
	// fields of o, provided the stored status still equals expected.
	// Otherwise it returns domain.ErrOrderChanged.
	UpdateLifecycle(ctx context.Context, o *domain.Order, expected domain.OrderStatus) error
	Stats(ctx context.Context, recent int64) (*domain.OrderStats, error)
}
