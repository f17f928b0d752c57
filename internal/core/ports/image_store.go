package ports

import (
	"context"
	"io"
)

// UploadedImage locates an image held by the blob store.
type UploadedImage struct {
	URL      string
	PublicID string
}

// ImageStore uploads and deletes product images.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, filename string) (*UploadedImage, error)
	Delete(ctx context.Context, publicID string) error
}
