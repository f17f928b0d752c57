package ports

import (
	"context"

	"github.com/motlupets/storefront/internal/core/domain"
)

// CartService covers the cart and wishlist of a customer.
type CartService interface {
	Cart(ctx context.Context, userID string) ([]domain.CartLine, error)
	AddToCart(ctx context.Context, userID, productID string) error
	// UpdateQuantity applies delta to the line's quantity, never below 1.
	UpdateQuantity(ctx context.Context, userID, productID string, delta int) error
	RemoveFromCart(ctx context.Context, userID, productID string) error

	Wishlist(ctx context.Context, userID string) ([]domain.Product, error)
	AddToWishlist(ctx context.Context, userID, productID string) error
	RemoveFromWishlist(ctx context.Context, userID, productID string) error
}
