package ports

import (
	"context"

	"github.com/motlupets/storefront/internal/core/domain"
)

// OrderService covers the order lifecycle after creation.
type OrderService interface {
	ListForUser(ctx context.Context, userID string) ([]*domain.Order, error)
	Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error)

	ListAll(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
	Stats(ctx context.Context) (*domain.OrderStats, error)
}

// UserService is the admin's read-only view of customers.
type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}
