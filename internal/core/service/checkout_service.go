package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

// CheckoutConfig holds the gateway credentials and checkout switches.
type CheckoutConfig struct {
	KeyID     string
	KeySecret string
	// CartFallback rebuilds a lost reservation from the customer's current
	// cart when the captured amount still matches.
	CartFallback bool
}

// CheckoutService implements payment intents, payment verification and
// cash-on-delivery orders.
type CheckoutService struct {
	users        ports.UserRepository
	products     ports.ProductRepository
	orders       ports.OrderRepository
	reservations ports.ReservationStore
	gateway      ports.PaymentGateway
	notifier     ports.Notifier
	tasks        ports.TaskRunner
	cfg          CheckoutConfig
	log          zerolog.Logger
	now          func() time.Time
}

func NewCheckoutService(
	users ports.UserRepository,
	products ports.ProductRepository,
	orders ports.OrderRepository,
	reservations ports.ReservationStore,
	gateway ports.PaymentGateway,
	notifier ports.Notifier,
	tasks ports.TaskRunner,
	cfg CheckoutConfig,
	log zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		users:        users,
		products:     products,
		orders:       orders,
		reservations: reservations,
		gateway:      gateway,
		notifier:     notifier,
		tasks:        tasks,
		cfg:          cfg,
		log:          log.With().Str("component", "checkout").Logger(),
		now:          time.Now,
	}
}

// CreateIntent opens a gateway order for the customer's cart and reserves
// the cart contents at their current prices.
func (s *CheckoutService) CreateIntent(ctx context.Context, userID string) (*ports.PaymentIntent, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.cartItems(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create intent: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrCartEmpty
	}

	now := s.now().UTC()
	totals := domain.ComputeTotals(items)
	order, err := s.gateway.CreateOrder(ctx, ports.GatewayOrderRequest{
		AmountMinor: domain.MinorUnits(totals.Total),
		Currency:    domain.Currency,
		Receipt:     "order_" + strconv.FormatInt(now.UnixMilli(), 10),
		Notes: map[string]string{
			"userId": user.ID,
			"items":  strconv.Itoa(len(items)),
		},
	})
	if err != nil {
		return nil, domain.Wrap(domain.ErrUpstream, "failed to create payment order", err)
	}

	r := domain.NewReservation(order.ID, user.ID, items, now)
	if err := s.reservations.Put(ctx, r); err != nil {
		return nil, fmt.Errorf("create intent: store reservation: %w", err)
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("gateway_order_id", order.ID).
		Int64("total", totals.Total).
		Msg("payment intent created")

	return &ports.PaymentIntent{
		GatewayOrderID: order.ID,
		AmountMinor:    domain.MinorUnits(totals.Total),
		Currency:       domain.Currency,
		KeyID:          s.cfg.KeyID,
		Totals:         totals,
	}, nil
}

// VerifyPayment checks the gateway signature and promotes the matching
// reservation into a durable order. A reservation is consumed at most once.
func (s *CheckoutService) VerifyPayment(ctx context.Context, userID string, in ports.VerifyPaymentInput) (*domain.Order, error) {
	if !domain.VerifyPaymentSignature(in.GatewayOrderID, in.PaymentID, in.Signature, s.cfg.KeySecret) {
		s.log.Warn().Str("gateway_order_id", in.GatewayOrderID).Msg("payment signature mismatch")
		return nil, domain.ErrPaymentSignature
	}

	r, fromStore, err := s.claimReservation(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := r.Confirm(in.PaymentID, in.Shipping, now)

	created, err := s.orders.Create(ctx, &order)
	if err != nil {
		// A concurrent confirmation already persisted this order.
		if errors.Is(err, domain.ErrOrderExists) {
			return nil, domain.ErrReservationNotFound
		}
		if fromStore {
			if putErr := s.reservations.Put(ctx, r); putErr != nil {
				s.log.Error().Err(putErr).Str("gateway_order_id", r.GatewayOrderID).Msg("failed to restore reservation")
			}
		}
		return nil, fmt.Errorf("verify payment: create order: %w", err)
	}

	if err := s.finalize(ctx, created); err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}

	s.log.Info().
		Str("user_id", created.UserID).
		Str("order_id", created.OrderID).
		Str("payment_id", created.PaymentID).
		Bool("reconstructed", !fromStore).
		Msg("online order confirmed")

	return created, nil
}

// CreateCODOrder places a cash-on-delivery order straight from the live cart.
func (s *CheckoutService) CreateCODOrder(ctx context.Context, userID string, ship domain.ShippingDetails) (*domain.Order, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.cartItems(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create cod order: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrCartEmpty
	}

	now := s.now().UTC()
	orderID := fmt.Sprintf("COD_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
	order := domain.NewCODOrder(orderID, user.ID, items, ship, now)

	created, err := s.orders.Create(ctx, &order)
	if err != nil {
		return nil, fmt.Errorf("create cod order: %w", err)
	}
	if err := s.finalize(ctx, created); err != nil {
		return nil, fmt.Errorf("create cod order: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("order_id", orderID).Msg("cod order placed")
	return created, nil
}

// claimReservation consumes the stored reservation, falling back to a
// rebuild from the current cart when none is stored.
func (s *CheckoutService) claimReservation(ctx context.Context, userID string, in ports.VerifyPaymentInput) (domain.Reservation, bool, error) {
	r, err := s.reservations.Get(ctx, in.GatewayOrderID)
	switch {
	case err == nil:
		if r.UserID != userID {
			return domain.Reservation{}, false, domain.ErrAccessDenied
		}
		r, err = s.reservations.Consume(ctx, in.GatewayOrderID)
		if err == nil {
			return r, true, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Reservation{}, false, fmt.Errorf("verify payment: consume reservation: %w", err)
		}
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Reservation{}, false, fmt.Errorf("verify payment: load reservation: %w", err)
	}

	if !s.cfg.CartFallback {
		return domain.Reservation{}, false, domain.ErrReservationNotFound
	}
	r, err = s.reconstruct(ctx, userID, in)
	if err != nil {
		return domain.Reservation{}, false, err
	}
	return r, false, nil
}

// reconstruct rebuilds a reservation from gateway metadata and the current
// cart. The rebuilt total must equal what the gateway captured.
func (s *CheckoutService) reconstruct(ctx context.Context, userID string, in ports.VerifyPaymentInput) (domain.Reservation, error) {
	log := s.log.With().Str("gateway_order_id", in.GatewayOrderID).Logger()

	exists, err := s.orders.ExistsByOrderID(ctx, in.GatewayOrderID)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("verify payment: %w", err)
	}
	if exists {
		log.Warn().Msg("order already confirmed, rejecting replay")
		return domain.Reservation{}, domain.ErrReservationNotFound
	}

	payment, err := s.gateway.FetchPayment(ctx, in.PaymentID)
	if err != nil {
		log.Warn().Err(err).Msg("fallback: fetch payment failed")
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	if payment.OrderID != "" && payment.OrderID != in.GatewayOrderID {
		log.Warn().Str("payment_order_id", payment.OrderID).Msg("fallback: payment belongs to another order")
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	owner := payment.Notes["userId"]
	if owner == "" || owner != userID {
		log.Warn().Msg("fallback: payment notes do not name the caller")
		return domain.Reservation{}, domain.ErrReservationNotFound
	}

	user, err := s.users.FindByID(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("verify payment: %w", err)
	}
	items, err := s.cartItems(ctx, user)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("verify payment: %w", err)
	}
	if len(items) == 0 {
		log.Warn().Msg("fallback: cart is empty")
		return domain.Reservation{}, domain.ErrReservationNotFound
	}

	r := domain.NewReservation(in.GatewayOrderID, owner, items, s.now().UTC())
	if payment.AmountMinor != domain.MinorUnits(r.Totals.Total) {
		log.Warn().
			Int64("captured", payment.AmountMinor).
			Int64("rebuilt", domain.MinorUnits(r.Totals.Total)).
			Msg("fallback: cart total no longer matches captured amount")
		return domain.Reservation{}, domain.ErrReservationNotFound
	}

	log.Info().Msg("reservation rebuilt from current cart")
	return r, nil
}

// finalize links the order to its owner, clears the cart and queues the
// confirmation email.
func (s *CheckoutService) finalize(ctx context.Context, order *domain.Order) error {
	if err := s.users.AppendOrder(ctx, order.UserID, order.ID); err != nil {
		return fmt.Errorf("link order: %w", err)
	}
	if err := s.users.ClearCart(ctx, order.UserID); err != nil {
		s.log.Error().Err(err).Str("user_id", order.UserID).Msg("failed to clear cart")
	}

	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		s.log.Warn().Err(err).Str("order_id", order.OrderID).Msg("skipping confirmation email")
		return nil
	}

	n := ports.OrderNotification{Order: *order, CustomerName: user.Name, CustomerEmail: user.Email}
	s.tasks.Submit(ports.Task{
		Name: "order-confirmation",
		Key:  order.OrderID,
		Run: func(ctx context.Context) error {
			_, err := s.notifier.SendOrderConfirmation(ctx, n)
			return err
		},
	})
	return nil
}

// cartItems resolves the cart against the catalog, dropping products that
// no longer exist.
func (s *CheckoutService) cartItems(ctx context.Context, user *domain.User) ([]domain.LineItem, error) {
	lines, err := resolveCart(ctx, s.products, user.Cart)
	if err != nil {
		return nil, err
	}
	items := make([]domain.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.LineItem())
	}
	return items, nil
}

func resolveCart(ctx context.Context, products ports.ProductRepository, cart []domain.CartItem) ([]domain.CartLine, error) {
	if len(cart) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(cart))
	for _, it := range cart {
		ids = append(ids, it.ProductID)
	}
	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve cart: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(cart))
	for _, it := range cart {
		p, ok := found[it.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, domain.CartLine{Product: p, Quantity: it.Quantity})
	}
	return lines, nil
}
