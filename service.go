package photowall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ObjectStore is the narrow view of the object-storage gateway the
// service needs. Implementations must map their backend's "no such key"
// condition to ErrNotFound.
//
// All methods accept a context for cancellation and timeout control.
type ObjectStore interface {
	// PresignPut returns a time-limited URL authorizing a single PUT of
	// the given content type to the given key. No object is created until
	// the client performs the transfer.
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)

	// List enumerates every object in the bucket, including zero-size
	// placeholder entries. Callers are expected to filter.
	List(ctx context.Context) ([]ObjectEntry, error)

	// Delete removes the object at key. Deleting an absent key returns
	// ErrNotFound.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the deterministic public read address for a key.
	PublicURL(key string) string
}

// CacheInvalidator evicts a set of public paths from an edge cache.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, paths []string) error
}

// GalleryService orchestrates the upload-and-ownership workflow on the
// server side: issuing upload authorizations, listing the gallery, and
// deleting photos.
type GalleryService struct {
	store         ObjectStore
	cdn           CacheInvalidator
	presignExpiry time.Duration
	log           *slog.Logger
}

// ServiceConfig holds configuration options for GalleryService.
type ServiceConfig struct {
	// PresignExpiry bounds how long an issued upload URL stays usable
	// (default: 60s).
	PresignExpiry time.Duration

	// CDN is optional; when nil, deletes skip cache invalidation.
	CDN CacheInvalidator

	Logger *slog.Logger
}

func NewGalleryService(store ObjectStore, cfg ServiceConfig) (*GalleryService, error) {
	if store == nil {
		return nil, errors.New("new gallery service: object store is required")
	}

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 60 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &GalleryService{
		store:         store,
		cdn:           cfg.CDN,
		presignExpiry: expiry,
		log:           log,
	}, nil
}

// IssueUploadURL validates the request, derives a fresh unique key from
// the sanitized filename, and asks the gateway for a presigned PUT URL
// scoped to that key and content type.
//
// Error types returned:
//   - ErrInvalidInput: missing filename or content type
//   - ErrInternal: gateway refused to presign (no key or URL is leaked)
func (s *GalleryService) IssueUploadURL(ctx context.Context, req CreateUpload) (UploadAuthorization, error) {
	if err := ctx.Err(); err != nil {
		return UploadAuthorization{}, fmt.Errorf("issue upload url: %w", err)
	}

	if req.Filename == "" {
		return UploadAuthorization{}, fmt.Errorf("issue upload url: %w: filename is required", ErrInvalidInput)
	}
	if req.ContentType == "" {
		return UploadAuthorization{}, fmt.Errorf("issue upload url: %w: content type is required", ErrInvalidInput)
	}

	key := NewObjectKey(req.Filename)

	uploadURL, err := s.store.PresignPut(ctx, key, req.ContentType, s.presignExpiry)
	if err != nil {
		s.log.Error("presign failed", "err", err)
		return UploadAuthorization{}, fmt.Errorf("issue upload url: %w", ErrInternal)
	}

	return UploadAuthorization{
		UploadURL: uploadURL,
		Key:       key,
		ExpiresAt: time.Now().Add(s.presignExpiry),
	}, nil
}

// ListPhotos enumerates the bucket and maps each real object to a Photo
// with its public URL. Zero-size placeholder and folder entries are
// excluded. A gateway failure returns ErrInternal so callers can
// distinguish it from an empty gallery.
func (s *GalleryService) ListPhotos(ctx context.Context) ([]Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	entries, err := s.store.List(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Photo{}, nil
		}
		s.log.Error("bucket listing failed", "err", err)
		return nil, fmt.Errorf("list photos: %w", ErrInternal)
	}

	photos := make([]Photo, 0, len(entries))
	for _, e := range entries {
		if e.Size <= 0 {
			continue
		}
		photos = append(photos, Photo{
			Key:        e.Key,
			URL:        s.store.PublicURL(e.Key),
			Size:       e.Size,
			UploadedAt: e.LastModified,
		})
	}

	return photos, nil
}

// DeletePhoto removes the object at key from the bucket, then issues a
// best-effort cache invalidation for its public path. The invalidation is
// an independent secondary step: its failure is logged and swallowed,
// never propagated, since the authoritative copy is already gone and only
// bounded edge-cache staleness remains.
//
// A key absent from the bucket is treated as already deleted. Note that
// no ownership check happens here; the per-device ledger is a display
// hint only.
func (s *GalleryService) DeletePhoto(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}

	if key == "" {
		return fmt.Errorf("delete photo: %w: key is required", ErrInvalidInput)
	}
	if !IsValidKey(key) {
		return fmt.Errorf("delete photo %q: %w", key, ErrInvalidInput)
	}

	if err := s.store.Delete(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.Info("delete of absent key treated as satisfied", "key", key)
			return nil
		}
		s.log.Error("delete failed", "key", key, "err", err)
		return fmt.Errorf("delete photo %q: %w", key, ErrInternal)
	}

	if s.cdn != nil {
		if err := s.cdn.Invalidate(ctx, []string{"/" + key}); err != nil {
			s.log.Warn("cdn invalidation failed, stale copy may linger", "key", key, "err", err)
		}
	}

	return nil
}
