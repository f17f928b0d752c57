package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

const topSellingPerCategory = 4

// topSellingCategories are featured on the storefront home page.
var topSellingCategories = []string{"Dog", "Cat"}

// CatalogService implements product reads and admin product management.
type CatalogService struct {
	products ports.ProductRepository
	images   ports.ImageStore
	log      zerolog.Logger
	now      func() time.Time
}

func NewCatalogService(products ports.ProductRepository, images ports.ImageStore, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		images:   images,
		log:      log.With().Str("component", "catalog").Logger(),
		now:      time.Now,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.list(ctx, ports.ProductFilter{})
}

// TopSelling returns the featured products of each home-page category.
func (s *CatalogService) TopSelling(ctx context.Context) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, category := range topSellingCategories {
		ps, err := s.list(ctx, ports.ProductFilter{Category: category, Limit: topSellingPerCategory})
		if err != nil {
			return nil, err
		}
		out = append(out, ps...)
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return s.list(ctx, ports.ProductFilter{Category: category})
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	now := s.now().UTC()
	p := productFromInput(in)
	p.CreatedAt = now
	p.UpdatedAt = now

	created, err := s.products.Create(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info().Str("product_id", created.ID).Str("title", created.Title).Msg("product created")
	return created, nil
}

// UpdateProduct replaces the editable fields of a product. A replaced image
// is removed from the blob store once the update is stored.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ports.ProductInput) (*domain.Product, error) {
	current, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p := productFromInput(in)
	p.ID = current.ID
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = s.now().UTC()

	updated, err := s.products.Update(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if current.ImagePublicID != "" && current.ImagePublicID != updated.ImagePublicID {
		s.deleteImage(ctx, current.ImagePublicID)
	}
	return updated, nil
}

// DeleteProduct removes a product and its image.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted.ImagePublicID != "" {
		s.deleteImage(ctx, deleted.ImagePublicID)
	}
	s.log.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (s *CatalogService) UploadImage(ctx context.Context, r io.Reader, filename string) (*ports.UploadedImage, error) {
	img, err := s.images.Upload(ctx, r, filename)
	if err != nil {
		return nil, domain.Wrap(domain.ErrUpstream, "failed to upload image", err)
	}
	return img, nil
}

func (s *CatalogService) list(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, error) {
	ps, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return ps, nil
}

// deleteImage logs blob store failures instead of returning them.
func (s *CatalogService) deleteImage(ctx context.Context, publicID string) {
	if err := s.images.Delete(ctx, publicID); err != nil {
		s.log.Warn().Err(err).Str("public_id", publicID).Msg("failed to delete product image")
	}
}

func productFromInput(in ports.ProductInput) domain.Product {
	weight := in.Weight
	if weight == "" {
		weight = domain.DefaultWeight
	}
	return domain.Product{
		Title:         in.Title,
		Description:   in.Description,
		Price:         in.Price,
		Category:      in.Category,
		Weight:        weight,
		Image:         in.Image,
		ImagePublicID: in.ImagePublicID,
	}
}
