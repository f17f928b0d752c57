package ports

import (
	"context"

	"github.com/motlupets/storefront/internal/core/domain"
)

// ProductFilter narrows a catalog listing. Zero values mean no filter.
type ProductFilter struct {
	Category string
	Limit    int64
}

// ProductRepository defines persistence operations for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// FindByIDs returns the products that still exist, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) (*domain.Product, error)
	// UpsertByTitle inserts p or updates the product with the same title.
	UpsertByTitle(ctx context.Context, p *domain.Product) (inserted bool, err error)
}
