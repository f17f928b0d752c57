// Package blob stores product images in Cloudinary.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/motlupets/storefront/internal/core/ports"
)

const defaultFolder = "products"

// Config holds Cloudinary credentials.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStore implements ports.ImageStore.
type CloudinaryStore struct {
	api    uploadAPI
	folder string
}

func NewCloudinaryStore(cfg Config) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	folder := cfg.Folder
	if folder == "" {
		folder = defaultFolder
	}
	return &CloudinaryStore{api: &cld.Upload, folder: folder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader, filename string) (*ports.UploadedImage, error) {
	res, err := s.api.Upload(ctx, r, uploader.UploadParams{Folder: s.folder})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload %s: %w", filename, err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return nil, errors.New("cloudinary upload: empty url")
	}
	return &ports.UploadedImage{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Delete removes the image. A missing image is not an error.
func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	res, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	return nil
}
