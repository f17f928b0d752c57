package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	nextID  int
	findErr error // if set, FindByID returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Cart = slices.Clone(u.Cart)
	c.Wishlist = slices.Clone(u.Wishlist)
	c.Orders = slices.Clone(u.Orders)
	return &c
}

// seed stores u as-is and returns its id.
func (r *stubUserRepo) seed(u domain.User) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.nextID++
		u.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	r.users[u.ID] = cloneUser(&u)
	return u.ID
}

func (r *stubUserRepo) get(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	return cloneUser(u)
}

func (r *stubUserRepo) mutate(id string, fn func(u *domain.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	return fn(u)
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	id := r.seed(*user)
	return r.get(id), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u := r.get(id); u != nil {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) UpdateRegistration(_ context.Context, user *domain.User) error {
	return r.mutate(user.ID, func(u *domain.User) error {
		u.Name, u.PasswordHash, u.OTP, u.OTPExpiresAt = user.Name, user.PasswordHash, user.OTP, user.OTPExpiresAt
		return nil
	})
}

func (r *stubUserRepo) SetOTP(_ context.Context, id, otp string, exp time.Time) error {
	return r.mutate(id, func(u *domain.User) error {
		u.OTP, u.OTPExpiresAt = otp, exp
		return nil
	})
}

func (r *stubUserRepo) MarkVerified(_ context.Context, id string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.Verified, u.OTP = true, ""
		return nil
	})
}

func (r *stubUserRepo) SetRefreshHash(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.RefreshTokenHash = hash
		return nil
	})
}

func (r *stubUserRepo) SwapRefreshHash(_ context.Context, id, oldHash, newHash string) error {
	return r.mutate(id, func(u *domain.User) error {
		if u.RefreshTokenHash != oldHash {
			return domain.ErrRefreshInvalid
		}
		u.RefreshTokenHash = newHash
		return nil
	})
}

func (r *stubUserRepo) AddCartItem(_ context.Context, id, productID string) error {
	return r.mutate(id, func(u *domain.User) error {
		if _, ok := u.CartQuantity(productID); !ok {
			u.Cart = append(u.Cart, domain.CartItem{ProductID: productID, Quantity: 1})
		}
		return nil
	})
}

func (r *stubUserRepo) SetCartQuantity(_ context.Context, id, productID string, qty int) error {
	return r.mutate(id, func(u *domain.User) error {
		for i := range u.Cart {
			if u.Cart[i].ProductID == productID {
				u.Cart[i].Quantity = qty
				return nil
			}
		}
		return domain.ErrCartItemNotFound
	})
}

func (r *stubUserRepo) RemoveCartItem(_ context.Context, id, productID string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.Cart = slices.DeleteFunc(u.Cart, func(it domain.CartItem) bool { return it.ProductID == productID })
		return nil
	})
}

func (r *stubUserRepo) ClearCart(_ context.Context, id string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.Cart = nil
		return nil
	})
}

func (r *stubUserRepo) AddWishlistItem(_ context.Context, id, productID string) error {
	return r.mutate(id, func(u *domain.User) error {
		if !slices.Contains(u.Wishlist, productID) {
			u.Wishlist = append(u.Wishlist, productID)
		}
		return nil
	})
}

func (r *stubUserRepo) RemoveWishlistItem(_ context.Context, id, productID string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.Wishlist = slices.DeleteFunc(u.Wishlist, func(p string) bool { return p == productID })
		return nil
	})
}

func (r *stubUserRepo) AppendOrder(_ context.Context, id, orderID string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.Orders = append(u.Orders, orderID)
		return nil
	})
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	products map[string]domain.Product
}

func newStubProductRepo(ps ...domain.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[string]domain.Product)}
	for _, p := range ps {
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	c := *p
	if c.ID == "" {
		c.ID = fmt.Sprintf("prod-%d", len(r.products)+1)
	}
	r.products[c.ID] = c
	return &c, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product)
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *stubProductRepo) List(_ context.Context, f ports.ProductFilter) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range r.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		c := p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if _, ok := r.products[p.ID]; !ok {
		return nil, domain.ErrProductNotFound
	}
	r.products[p.ID] = *p
	c := *p
	return &c, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	delete(r.products, id)
	return &p, nil
}

func (r *stubProductRepo) UpsertByTitle(_ context.Context, p *domain.Product) (bool, error) {
	for id, existing := range r.products {
		if existing.Title == p.Title {
			c := *p
			c.ID = id
			r.products[id] = c
			return false, nil
		}
	}
	_, err := r.Create(context.Background(), p)
	return true, err
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	nextID    int
	createErr error
	updates   int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]*domain.Order)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	return &c
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.orders {
		if existing.OrderID == o.OrderID {
			return nil, errors.New("duplicate key: order_id")
		}
	}
	r.nextID++
	c := cloneOrder(o)
	c.ID = fmt.Sprintf("65f1c2d3e4f5a6b7c8d9%04x", r.nextID)
	r.orders[c.ID] = c
	return cloneOrder(c), nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) ExistsByOrderID(_ context.Context, gatewayOrderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderID == gatewayOrderID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubOrderRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, id := range ids {
		if o, ok := r.orders[id]; ok {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubOrderRepo) ListAll(ctx context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.orders))
	for id := range r.orders {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	return r.ListByIDs(ctx, ids)
}

func (r *stubOrderRepo) UpdateLifecycle(_ context.Context, o *domain.Order, expected domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok || stored.Status != expected {
		return domain.ErrOrderChanged
	}
	r.orders[o.ID] = cloneOrder(o)
	r.updates++
	return nil
}

func (r *stubOrderRepo) Stats(_ context.Context, recent int64) (*domain.OrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.OrderStats{}
	for _, o := range r.orders {
		stats.TotalOrders++
		stats.TotalRevenue += o.TotalAmount
	}
	return stats, nil
}

func (r *stubOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// ---------------------------------------------------------------------------
// Reservations
// ---------------------------------------------------------------------------

type stubReservations struct {
	mu      sync.Mutex
	entries map[string]domain.Reservation
	putErr  error
}

func newStubReservations() *stubReservations {
	return &stubReservations{entries: make(map[string]domain.Reservation)}
}

func (s *stubReservations) Get(_ context.Context, id string) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.entries[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return r, nil
}

func (s *stubReservations) Put(_ context.Context, r domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.entries[r.GatewayOrderID] = r
	return nil
}

func (s *stubReservations) Consume(_ context.Context, id string) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.entries[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	delete(s.entries, id)
	return r, nil
}

func (s *stubReservations) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// ---------------------------------------------------------------------------
// Gateway, notifier, tasks, limiter
// ---------------------------------------------------------------------------

type stubGateway struct {
	created   []ports.GatewayOrderRequest
	createErr error
	nextID    string
	payments  map[string]*ports.GatewayPayment
}

func (g *stubGateway) CreateOrder(_ context.Context, req ports.GatewayOrderRequest) (*ports.GatewayOrder, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, req)
	id := g.nextID
	if id == "" {
		id = fmt.Sprintf("order_test%d", len(g.created))
	}
	return &ports.GatewayOrder{ID: id, AmountMinor: req.AmountMinor, Currency: req.Currency}, nil
}

func (g *stubGateway) FetchPayment(_ context.Context, id string) (*ports.GatewayPayment, error) {
	p, ok := g.payments[id]
	if !ok {
		return nil, errors.New("payment not found")
	}
	return p, nil
}

type stubNotifier struct {
	mu        sync.Mutex
	confirmed []ports.OrderNotification
	otps      []string
	err       error
}

func (n *stubNotifier) SendOrderConfirmation(_ context.Context, msg ports.OrderNotification) ([]ports.Delivery, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, msg)
	if n.err != nil {
		return []ports.Delivery{{Recipient: msg.CustomerEmail, Err: n.err}}, n.err
	}
	return []ports.Delivery{{Recipient: msg.CustomerEmail, Delivered: true}}, nil
}

func (n *stubNotifier) SendOTP(_ context.Context, _, email, otp string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.otps = append(n.otps, email+":"+otp)
	return n.err
}

// inlineTasks runs each task synchronously and records its outcome.
type inlineTasks struct {
	names []string
	errs  []error
}

func (r *inlineTasks) Submit(t ports.Task) {
	r.names = append(r.names, t.Name)
	if err := t.Run(context.Background()); err != nil {
		r.errs = append(r.errs, err)
	}
}

type stubLimiter struct {
	blocked  bool
	failures map[string]int
	resets   int
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: make(map[string]int)}
}

func (l *stubLimiter) Allow(_ context.Context, _ string) (bool, error) { return !l.blocked, nil }

func (l *stubLimiter) Failure(_ context.Context, key string) error {
	l.failures[key]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, _ string) error {
	l.resets++
	return nil
}
