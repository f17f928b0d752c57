package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
)

type stubImages struct {
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (s *stubImages) Upload(_ context.Context, r io.Reader, filename string) (*ports.UploadedImage, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	s.uploaded = append(s.uploaded, filename)
	return &ports.UploadedImage{URL: "https://img.example.com/" + filename, PublicID: "products/" + filename}, nil
}

func (s *stubImages) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return s.deleteErr
}

func TestCatalogService_TopSelling(t *testing.T) {
	var ps []domain.Product
	for i, category := range []string{"Dog", "Dog", "Dog", "Dog", "Dog", "Cat", "Cat", "Bird"} {
		ps = append(ps, domain.Product{ID: string(rune('a' + i)), Category: category})
	}
	svc := NewCatalogService(newStubProductRepo(ps...), &stubImages{}, discardLogger)

	got, err := svc.TopSelling(context.Background())
	if err != nil {
		t.Fatalf("TopSelling returned error: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 4 dog and 2 cat products, got %d", len(got))
	}
	for _, p := range got {
		if p.Category == "Bird" {
			t.Fatal("non-featured category returned")
		}
	}
}

func TestCatalogService_CreateProduct_DefaultsWeight(t *testing.T) {
	svc := NewCatalogService(newStubProductRepo(), &stubImages{}, discardLogger)

	p, err := svc.CreateProduct(context.Background(), ports.ProductInput{Title: "Cat Tree", Price: 2999, Category: "Cat"})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if p.Weight != domain.DefaultWeight || p.CreatedAt.IsZero() {
		t.Fatalf("unexpected product: %+v", p)
	}
}

func TestCatalogService_UpdateProduct_DeletesReplacedImage(t *testing.T) {
	images := &stubImages{}
	repo := newStubProductRepo(domain.Product{ID: "p1", Title: "Old", ImagePublicID: "products/old"})
	svc := NewCatalogService(repo, images, discardLogger)

	_, err := svc.UpdateProduct(context.Background(), "p1", ports.ProductInput{Title: "New", ImagePublicID: "products/new"})
	if err != nil {
		t.Fatalf("UpdateProduct returned error: %v", err)
	}
	if len(images.deleted) != 1 || images.deleted[0] != "products/old" {
		t.Fatalf("old image not deleted: %v", images.deleted)
	}
}

func TestCatalogService_DeleteProduct_ImageFailureIgnored(t *testing.T) {
	images := &stubImages{deleteErr: errors.New("cloudinary: 500")}
	repo := newStubProductRepo(domain.Product{ID: "p1", ImagePublicID: "products/p1"})
	svc := NewCatalogService(repo, images, discardLogger)

	if err := svc.DeleteProduct(context.Background(), "p1"); err != nil {
		t.Fatalf("DeleteProduct returned error: %v", err)
	}
	if _, err := svc.GetProduct(context.Background(), "p1"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogService_UploadImage_UpstreamFailure(t *testing.T) {
	svc := NewCatalogService(newStubProductRepo(), &stubImages{uploadErr: errors.New("timeout")}, discardLogger)

	_, err := svc.UploadImage(context.Background(), strings.NewReader("png"), "kibble.png")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
}
