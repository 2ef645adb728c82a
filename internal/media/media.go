package media

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"social-service/internal/shared/apperr"

	"github.com/google/uuid"
)

const (
	PathPrefix = "/media/"
	keyPrefix  = "posts/"
	presignTTL = 15 * time.Minute
)

var (
	ErrNotImage     = apperr.Validation("invalid_image", "Only images (jpeg, jpg, png) are allowed!")
	ErrTooLarge     = apperr.Validation("image_too_large", "File too large")
	ErrDisabled     = apperr.Validation("uploads_disabled", "Image uploads are not configured")
	ErrUnknownImage = apperr.NotFound("image_not_found", "Image not found")
)

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// BlobStore is implemented by s3.Storage.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Remove(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (*url.URL, error)
}

type Service struct {
	store    BlobStore
	maxBytes int64
}

func NewService(store BlobStore, maxBytes int64) *Service {
	return &Service{store: store, maxBytes: maxBytes}
}

func (s *Service) Enabled() bool { return s != nil && s.store != nil }

func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Check accepts a file only when both its extension and its sniffed content
// are jpeg or png. It returns the content type to store the blob with.
func Check(filename string, head []byte, size, maxBytes int64) (string, error) {
	if maxBytes > 0 && size > maxBytes {
		return "", ErrTooLarge
	}
	want, ok := allowedExt[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", ErrNotImage
	}
	if got := http.DetectContentType(head); got != want {
		return "", ErrNotImage
	}
	return want, nil
}

// SaveImage stores an uploaded image and returns the path posts refer to it
// by.
func (s *Service) SaveImage(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	head = head[:n]
	contentType, err := Check(filename, head, size, s.maxBytes)
	if err != nil {
		return "", err
	}
	key := keyPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	body := io.MultiReader(bytes.NewReader(head), r)
	if err := s.store.Put(ctx, key, contentType, body, size); err != nil {
		return "", err
	}
	return PathPrefix + key, nil
}

// Remove deletes the blob behind an image path. Paths this service did not
// issue are ignored.
func (s *Service) Remove(ctx context.Context, imagePath string) error {
	key, ok := KeyFromPath(imagePath)
	if !ok || !s.Enabled() {
		return nil
	}
	return s.store.Remove(ctx, key)
}

func (s *Service) URL(ctx context.Context, key string) (*url.URL, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if !strings.HasPrefix(key, keyPrefix) || strings.Contains(key, "..") {
		return nil, ErrUnknownImage
	}
	return s.store.PresignGet(ctx, key, presignTTL)
}

func KeyFromPath(imagePath string) (string, bool) {
	if !strings.HasPrefix(imagePath, PathPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(imagePath, PathPrefix)
	return key, strings.HasPrefix(key, keyPrefix)
}
