package service

import (
	"context"
	"fmt"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

// CartService implements the cart and wishlist.
type CartService struct {
	users    ports.UserRepository
	products ports.ProductRepository
}

func NewCartService(users ports.UserRepository, products ports.ProductRepository) *CartService {
	return &CartService{users: users, products: products}
}

// Cart returns the cart resolved against the catalog. Lines whose product
// was deleted are left out.
func (s *CartService) Cart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return resolveCart(ctx, s.products, user.Cart)
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return err
	}
	if err := s.users.AddCartItem(ctx, userID, productID); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, delta int) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	qty, ok := user.CartQuantity(productID)
	if !ok {
		return domain.ErrCartItemNotFound
	}

	qty += delta
	if qty < 1 {
		qty = 1
	}
	if err := s.users.SetCartQuantity(ctx, userID, productID, qty); err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	return nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.RemoveCartItem(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}
	return nil
}

// Wishlist returns the wishlisted products that still exist.
func (s *CartService) Wishlist(ctx context.Context, userID string) ([]domain.Product, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Wishlist) == 0 {
		return []domain.Product{}, nil
	}

	found, err := s.products.FindByIDs(ctx, user.Wishlist)
	if err != nil {
		return nil, fmt.Errorf("wishlist: %w", err)
	}
	out := make([]domain.Product, 0, len(user.Wishlist))
	for _, id := range user.Wishlist {
		if p, ok := found[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CartService) AddToWishlist(ctx context.Context, userID, productID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return err
	}
	if err := s.users.AddWishlistItem(ctx, userID, productID); err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}
	return nil
}

func (s *CartService) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.RemoveWishlistItem(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}
