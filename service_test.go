package photowall

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectStore is a mock implementation of ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expires)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) List(ctx context.Context) ([]ObjectEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ObjectEntry), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStore) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockInvalidator is a mock implementation of CacheInvalidator
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, paths []string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}

func newService(t *testing.T, store ObjectStore, cfg ServiceConfig) *GalleryService {
	t.Helper()
	svc, err := NewGalleryService(store, cfg)
	require.NoError(t, err)
	return svc
}

func TestNewGalleryService_RequiresStore(t *testing.T) {
	_, err := NewGalleryService(nil, ServiceConfig{})
	assert.Error(t, err)
}

func TestIssueUploadURL(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("PresignPut", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasSuffix(key, "-beach.png")
		}), "image/png", 60*time.Second).Return("https://bucket.example/put", nil)

		svc := newService(t, store, ServiceConfig{})

		auth, err := svc.IssueUploadURL(context.Background(), CreateUpload{
			Filename:    "beach.png",
			ContentType: "image/png",
		})

		require.NoError(t, err)
		assert.Equal(t, "https://bucket.example/put", auth.UploadURL)
		assert.True(t, strings.HasSuffix(auth.Key, "-beach.png"))
		assert.WithinDuration(t, time.Now().Add(60*time.Second), auth.ExpiresAt, 5*time.Second)
		store.AssertExpectations(t)
	})

	t.Run("missing filename", func(t *testing.T) {
		store := new(MockObjectStore)
		svc := newService(t, store, ServiceConfig{})

		_, err := svc.IssueUploadURL(context.Background(), CreateUpload{ContentType: "image/png"})

		assert.ErrorIs(t, err, ErrInvalidInput)
		store.AssertNotCalled(t, "PresignPut")
	})

	t.Run("missing content type", func(t *testing.T) {
		store := new(MockObjectStore)
		svc := newService(t, store, ServiceConfig{})

		_, err := svc.IssueUploadURL(context.Background(), CreateUpload{Filename: "beach.png"})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("gateway failure leaks nothing", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("PresignPut", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("aws is down"))

		svc := newService(t, store, ServiceConfig{})

		auth, err := svc.IssueUploadURL(context.Background(), CreateUpload{
			Filename:    "beach.png",
			ContentType: "image/png",
		})

		assert.ErrorIs(t, err, ErrInternal)
		assert.NotContains(t, err.Error(), "aws is down")
		assert.Empty(t, auth.Key)
		assert.Empty(t, auth.UploadURL)
	})

	t.Run("custom expiry", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("PresignPut", mock.Anything, mock.Anything, mock.Anything, 5*time.Minute).
			Return("https://bucket.example/put", nil)

		svc := newService(t, store, ServiceConfig{PresignExpiry: 5 * time.Minute})

		_, err := svc.IssueUploadURL(context.Background(), CreateUpload{
			Filename:    "beach.png",
			ContentType: "image/png",
		})

		require.NoError(t, err)
		store.AssertExpectations(t)
	})
}

func TestListPhotos(t *testing.T) {
	t.Run("filters zero-size entries", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("List", mock.Anything).Return([]ObjectEntry{
			{Key: "a.jpg", Size: 10},
			{Key: "folder/", Size: 0},
		}, nil)
		store.On("PublicURL", "a.jpg").Return("https://cdn.example/a.jpg")

		svc := newService(t, store, ServiceConfig{})

		photos, err := svc.ListPhotos(context.Background())

		require.NoError(t, err)
		require.Len(t, photos, 1)
		assert.Equal(t, "a.jpg", photos[0].Key)
		assert.Equal(t, "https://cdn.example/a.jpg", photos[0].URL)
	})

	t.Run("empty bucket is not an error", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("List", mock.Anything).Return([]ObjectEntry{}, nil)

		svc := newService(t, store, ServiceConfig{})

		photos, err := svc.ListPhotos(context.Background())

		require.NoError(t, err)
		assert.Empty(t, photos)
	})

	t.Run("gateway failure is distinguishable", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("List", mock.Anything).Return(nil, errors.New("connection refused"))

		svc := newService(t, store, ServiceConfig{})

		_, err := svc.ListPhotos(context.Background())

		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestDeletePhoto(t *testing.T) {
	t.Run("deletes and invalidates", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("Delete", mock.Anything, "abc-a.jpg").Return(nil)
		cdn := new(MockInvalidator)
		cdn.On("Invalidate", mock.Anything, []string{"/abc-a.jpg"}).Return(nil)

		svc := newService(t, store, ServiceConfig{CDN: cdn})

		err := svc.DeletePhoto(context.Background(), "abc-a.jpg")

		require.NoError(t, err)
		store.AssertExpectations(t)
		cdn.AssertExpectations(t)
	})

	t.Run("missing key", func(t *testing.T) {
		store := new(MockObjectStore)
		svc := newService(t, store, ServiceConfig{})

		err := svc.DeletePhoto(context.Background(), "")

		assert.ErrorIs(t, err, ErrInvalidInput)
		store.AssertNotCalled(t, "Delete")
	})

	t.Run("control character rejected", func(t *testing.T) {
		store := new(MockObjectStore)
		svc := newService(t, store, ServiceConfig{})

		err := svc.DeletePhoto(context.Background(), "a\x00.jpg")

		assert.ErrorIs(t, err, ErrInvalidInput)
		store.AssertNotCalled(t, "Delete")
	})

	t.Run("every listed key is deletable", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("List", mock.Anything).Return([]ObjectEntry{
			{Key: "2024/beach.jpg", Size: 10},
		}, nil)
		store.On("PublicURL", "2024/beach.jpg").Return("https://cdn.example/2024/beach.jpg")
		store.On("Delete", mock.Anything, "2024/beach.jpg").Return(nil)

		svc := newService(t, store, ServiceConfig{})

		photos, err := svc.ListPhotos(context.Background())
		require.NoError(t, err)
		require.Len(t, photos, 1)

		require.NoError(t, svc.DeletePhoto(context.Background(), photos[0].Key))
		store.AssertExpectations(t)
	})

	t.Run("absent key already satisfied", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("Delete", mock.Anything, "gone.jpg").Return(ErrNotFound)

		svc := newService(t, store, ServiceConfig{})

		assert.NoError(t, svc.DeletePhoto(context.Background(), "gone.jpg"))
	})

	t.Run("invalidation failure is swallowed", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("Delete", mock.Anything, "a.jpg").Return(nil)
		cdn := new(MockInvalidator)
		cdn.On("Invalidate", mock.Anything, mock.Anything).Return(errors.New("cloudfront timeout"))

		svc := newService(t, store, ServiceConfig{CDN: cdn})

		assert.NoError(t, svc.DeletePhoto(context.Background(), "a.jpg"))
	})

	t.Run("primary delete failure surfaces", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("Delete", mock.Anything, "a.jpg").Return(errors.New("access denied"))

		svc := newService(t, store, ServiceConfig{})

		err := svc.DeletePhoto(context.Background(), "a.jpg")

		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("no cdn configured", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("Delete", mock.Anything, "a.jpg").Return(nil)

		svc := newService(t, store, ServiceConfig{})

		assert.NoError(t, svc.DeletePhoto(context.Background(), "a.jpg"))
	})
}
