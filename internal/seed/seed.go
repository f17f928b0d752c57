// Package seed loads catalog products from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/motlupets/storefront/internal/core/domain"
)

// ProductUpserter inserts a product or updates the one with the same title.
type ProductUpserter interface {
	UpsertByTitle(ctx context.Context, p *domain.Product) (inserted bool, err error)
}

// File is the document layout of a seed file.
type File struct {
	Products []Product `yaml:"products"`
}

type Product struct {
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	Price         int64  `yaml:"price"`
	Category      string `yaml:"category"`
	Weight        string `yaml:"weight"`
	Image         string `yaml:"image"`
	ImagePublicID string `yaml:"cloudinary_public_id"`
}

// Result counts what a seed run changed.
type Result struct {
	Inserted int
	Updated  int
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Validate returns every problem found in the file.
func (f *File) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(f.Products))
	for i, p := range f.Products {
		title := strings.TrimSpace(p.Title)
		switch {
		case len(title) < 3:
			errs = append(errs, fmt.Errorf("products[%d]: title must be at least 3 characters", i))
		case seen[title]:
			errs = append(errs, fmt.Errorf("products[%d]: duplicate title %q", i, title))
		}
		seen[title] = true

		if p.Price < 1 {
			errs = append(errs, fmt.Errorf("products[%d]: price must be at least 1", i))
		}
		if c := strings.TrimSpace(p.Category); len(c) < 3 || len(c) > 20 {
			errs = append(errs, fmt.Errorf("products[%d]: category must be 3-20 characters", i))
		}
		if p.Weight != "" && !slices.Contains(domain.ProductWeights, p.Weight) {
			errs = append(errs, fmt.Errorf("products[%d]: unknown weight %q", i, p.Weight))
		}
		if p.Image == "" {
			errs = append(errs, fmt.Errorf("products[%d]: image is required", i))
		}
	}
	return errors.Join(errs...)
}

func (p Product) toDomain(now time.Time) *domain.Product {
	weight := p.Weight
	if weight == "" {
		weight = domain.DefaultWeight
	}
	return &domain.Product{
		Title:         strings.TrimSpace(p.Title),
		Description:   strings.TrimSpace(p.Description),
		Price:         p.Price,
		Category:      strings.TrimSpace(p.Category),
		Weight:        weight,
		Image:         p.Image,
		ImagePublicID: p.ImagePublicID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Loader upserts seed products into the catalog.
type Loader struct {
	products ProductUpserter
	log      zerolog.Logger
	now      func() time.Time
}

func NewLoader(products ProductUpserter, log zerolog.Logger) *Loader {
	return &Loader{
		products: products,
		log:      log.With().Str("component", "seed").Logger(),
		now:      time.Now,
	}
}

// LoadFile reads path and applies it with Apply.
func (l *Loader) LoadFile(ctx context.Context, path string) (Result, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open seed file: %w", err)
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return Result{}, err
	}
	return l.Apply(ctx, f)
}

// Apply validates f and upserts every product by title. Nothing is written
// when validation fails.
func (l *Loader) Apply(ctx context.Context, f *File) (Result, error) {
	var res Result
	if err := f.Validate(); err != nil {
		return res, fmt.Errorf("invalid seed file: %w", err)
	}

	now := l.now()
	for _, p := range f.Products {
		inserted, err := l.products.UpsertByTitle(ctx, p.toDomain(now))
		if err != nil {
			return res, err
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
		l.log.Debug().Str("title", p.Title).Bool("inserted", inserted).Msg("product seeded")
	}
	return res, nil
}
