package blob

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	params    uploader.UploadParams
	destroyed string
	upload    *uploader.UploadResult
	err       error
}

func (f *fakeUploader) Upload(_ context.Context, _ interface{}, p uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = p
	return f.upload, f.err
}

func (f *fakeUploader) Destroy(_ context.Context, p uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = p.PublicID
	return &uploader.DestroyResult{Result: "ok"}, f.err
}

func TestCloudinaryStore_Upload(t *testing.T) {
	api := &fakeUploader{upload: &uploader.UploadResult{
		SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/products/abc.png",
		PublicID:  "products/abc",
	}}
	s := &CloudinaryStore{api: api, folder: "products"}

	img, err := s.Upload(context.Background(), strings.NewReader("png"), "kibble.png")
	require.NoError(t, err)
	assert.Equal(t, "products/abc", img.PublicID)
	assert.Equal(t, "products", api.params.Folder)
}

func TestCloudinaryStore_UploadFailure(t *testing.T) {
	s := &CloudinaryStore{api: &fakeUploader{err: errors.New("401 invalid signature")}}

	_, err := s.Upload(context.Background(), strings.NewReader("png"), "kibble.png")
	assert.ErrorContains(t, err, "kibble.png")

	s = &CloudinaryStore{api: &fakeUploader{upload: &uploader.UploadResult{}}}
	_, err = s.Upload(context.Background(), strings.NewReader("png"), "kibble.png")
	assert.ErrorContains(t, err, "empty url")
}

func TestCloudinaryStore_Delete(t *testing.T) {
	api := &fakeUploader{}
	s := &CloudinaryStore{api: api}

	require.NoError(t, s.Delete(context.Background(), "products/abc"))
	assert.Equal(t, "products/abc", api.destroyed)
}
