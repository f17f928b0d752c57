package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

const recentOrdersLimit = 5

// OrderService implements the order lifecycle after creation.
type OrderService struct {
	users  ports.UserRepository
	orders ports.OrderRepository
	log    zerolog.Logger
	now    func() time.Time
}

func NewOrderService(users ports.UserRepository, orders ports.OrderRepository, log zerolog.Logger) *OrderService {
	return &OrderService{
		users:  users,
		orders: orders,
		log:    log.With().Str("component", "orders").Logger(),
		now:    time.Now,
	}
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Orders) == 0 {
		return nil, domain.ErrNoOrders
	}

	orders, err := s.orders.ListByIDs(ctx, user.Orders)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, domain.ErrNoOrders
	}
	return orders, nil
}

// Cancel cancels orderID on behalf of userID. Ownership is checked before
// the order's status.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !user.OwnsOrder(order.ID) {
		s.log.Warn().Str("user_id", userID).Str("order_id", orderID).Msg("cancel attempt on foreign order")
		return nil, domain.ErrNotOrderOwner
	}

	cancelled, err := order.CancelByCustomer(s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateLifecycle(ctx, &cancelled, order.Status); err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	s.log.Info().
		Str("order_id", cancelled.OrderID).
		Str("previous_status", string(order.Status)).
		Str("payment_status", string(cancelled.PaymentStatus)).
		Msg("order cancelled by customer")

	return &cancelled, nil
}

// ListAll returns every order, newest first.
func (s *OrderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets any known status on behalf of the admin.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.Errorf(domain.ErrValidation, "invalid status: %s", status)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	updated, err := order.SetStatusByAdmin(status, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateLifecycle(ctx, &updated, order.Status); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	s.log.Info().
		Str("order_id", updated.OrderID).
		Str("from", string(order.Status)).
		Str("to", string(status)).
		Msg("order status updated by admin")

	return &updated, nil
}

// Stats aggregates the dashboard counters.
func (s *OrderService) Stats(ctx context.Context) (*domain.OrderStats, error) {
	stats, err := s.orders.Stats(ctx, recentOrdersLimit)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	return stats, nil
}

// UserService is the admin's view of customer accounts.
type UserService struct {
	users ports.UserRepository
}

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}
