package ports

import (
	"context"
	"time"

	"github.com/motlupets/storefront/internal/core/domain"
)

// UserRepository defines persistence operations for customers.
//
// Not-found lookups return domain.ErrUserNotFound. Cart, wishlist and order
// list mutations are single-document atomic updates.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)

	// UpdateRegistration overwrites name, password hash and OTP of an
	// unverified account.
	UpdateRegistration(ctx context.Context, user *domain.User) error
	SetOTP(ctx context.Context, userID, otp string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, userID string) error

	// SetRefreshHash stores hash unconditionally; an empty hash clears it.
	SetRefreshHash(ctx context.Context, userID, hash string) error
	// SwapRefreshHash replaces oldHash with newHash only if oldHash is still
	// the stored value, else it returns domain.ErrRefreshInvalid.
	SwapRefreshHash(ctx context.Context, userID, oldHash, newHash string) error

	// AddCartItem adds productID with quantity 1 unless it is already present.
	AddCartItem(ctx context.Context, userID, productID string) error
	SetCartQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error

	AddWishlistItem(ctx context.Context, userID, productID string) error
	RemoveWishlistItem(ctx context.Context, userID, productID string) error

	AppendOrder(ctx context.Context, userID, orderID string) error
}
