package ports

import (
	"context"
	"io"

	"github.com/motlupets/storefront/internal/core/domain"
)

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	Title         string
	Description   string
	Price         int64
	Category      string
	Weight        string
	Image         string
	ImagePublicID string
}

// CatalogService covers product reads and admin product management.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	TopSelling(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Product, error)

	CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	UploadImage(ctx context.Context, r io.Reader, filename string) (*UploadedImage, error)
}
