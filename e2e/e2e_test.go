package e2e_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photowall/photowall"
	"github.com/photowall/photowall/guest"
	pwhttp "github.com/photowall/photowall/http"
)

// memoryGateway is an in-process stand-in for the bucket: it implements
// photowall.ObjectStore for the server side and accepts the direct PUTs
// the presigned URLs point at.
type memoryGateway struct {
	mu      sync.Mutex
	objects map[string][]byte

	// set once the httptest server is up
	baseURL string
}

func newMemoryGateway() *memoryGateway {
	return &memoryGateway{objects: make(map[string][]byte)}
}

func (g *memoryGateway) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return g.baseURL + "/bucket/" + key + "?sig=test", nil
}

func (g *memoryGateway) List(_ context.Context) ([]photowall.ObjectEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entries := make([]photowall.ObjectEntry, 0, len(g.objects))
	for key, body := range g.objects {
		entries = append(entries, photowall.ObjectEntry{Key: key, Size: int64(len(body))})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (g *memoryGateway) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.objects[key]; !ok {
		return photowall.ErrNotFound
	}
	delete(g.objects, key)
	return nil
}

func (g *memoryGateway) PublicURL(key string) string {
	return g.baseURL + "/bucket/" + key
}

func (g *memoryGateway) putHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	g.mu.Lock()
	g.objects[r.PathValue("key")] = body
	g.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

// startStack wires the real service, router, and guest client around an
// in-memory gateway. One httptest server fronts both the API and the
// bucket endpoint, the way a reverse proxy would in a small deployment.
func startStack(t *testing.T) (*guest.Client, *guest.Ledger, *memoryGateway) {
	t.Helper()

	gateway := newMemoryGateway()

	service, err := photowall.NewGalleryService(gateway, photowall.ServiceConfig{
		PresignExpiry: 60 * time.Second,
	})
	require.NoError(t, err)

	handler := pwhttp.NewHandler(&pwhttp.HandlerConfig{}, service)

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /bucket/{key}", gateway.putHandler)
	mux.Handle("/", handler.Router())

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	gateway.baseURL = srv.URL

	ledger := guest.OpenLedger(filepath.Join(t.TempDir(), "ledger.db"))
	t.Cleanup(func() { _ = ledger.Close() })

	client, err := guest.New(srv.URL, guest.WithLedger(ledger))
	require.NoError(t, err)

	return client, ledger, gateway
}

func writePhoto(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o600))
	return path
}

// TestWorkflow_UploadListDelete walks the full guest journey: authorize,
// transfer, see the photo in the gallery, delete it, see it gone.
func TestWorkflow_UploadListDelete(t *testing.T) {
	client, ledger, gateway := startStack(t)
	ctx := context.Background()

	photoPath := writePhoto(t, "beach.png", 100)

	var key string

	t.Run("upload lands in the bucket", func(t *testing.T) {
		result, err := client.Upload(ctx, photoPath, nil)
		require.NoError(t, err)

		key = result.Key
		assert.True(t, strings.HasSuffix(key, "-beach.png"), "key %q should end with the sanitized filename", key)
		assert.NotEqual(t, "beach.png", key, "key must carry a unique prefix")

		gateway.mu.Lock()
		assert.Len(t, gateway.objects[key], 100)
		gateway.mu.Unlock()
	})

	t.Run("gallery lists the photo with a public URL", func(t *testing.T) {
		photos, err := client.Gallery(ctx)
		require.NoError(t, err)

		require.Len(t, photos, 1)
		assert.Equal(t, key, photos[0].Key)
		assert.Equal(t, gateway.PublicURL(key), photos[0].URL)
	})

	t.Run("ledger remembers the upload", func(t *testing.T) {
		assert.True(t, ledger.Owns(ctx, key))
	})

	t.Run("delete empties the gallery and the ledger", func(t *testing.T) {
		require.NoError(t, client.Delete(ctx, key))

		photos, err := client.Gallery(ctx)
		require.NoError(t, err)
		assert.Empty(t, photos)

		assert.False(t, ledger.Owns(ctx, key))
	})
}

// TestWorkflow_DeleteIsIdempotent verifies a repeated delete of the same
// key still reports success.
func TestWorkflow_DeleteIsIdempotent(t *testing.T) {
	client, _, _ := startStack(t)
	ctx := context.Background()

	result, err := client.Upload(ctx, writePhoto(t, "cake.jpg", 50), nil)
	require.NoError(t, err)

	require.NoError(t, client.Delete(ctx, result.Key))
	require.NoError(t, client.Delete(ctx, result.Key), "second delete of an absent key must succeed")
}

// TestWorkflow_ParallelGuests uploads from several clients at once and
// checks every photo reaches the shared wall exactly once.
func TestWorkflow_ParallelGuests(t *testing.T) {
	client, _, _ := startStack(t)
	ctx := context.Background()

	paths := make([]string, 8)
	for i := range paths {
		paths[i] = writePhoto(t, "party.jpg", 10+i)
	}

	tasks, err := client.UploadAll(ctx, paths, nil)
	require.NoError(t, err)

	keys := make(map[string]bool)
	for _, task := range tasks {
		assert.Equal(t, guest.TaskSucceeded, task.State)
		keys[task.Key] = true
	}
	assert.Len(t, keys, 8, "identical filenames must still yield distinct keys")

	photos, err := client.Gallery(ctx)
	require.NoError(t, err)
	assert.Len(t, photos, 8)
}

// TestWorkflow_ZeroByteNeverReachesTheWall rejects empty files end to end.
func TestWorkflow_ZeroByteNeverReachesTheWall(t *testing.T) {
	client, _, gateway := startStack(t)
	ctx := context.Background()

	_, err := client.Upload(ctx, writePhoto(t, "empty.png", 0), nil)
	assert.ErrorIs(t, err, guest.ErrEmptyFile)

	photos, err := client.Gallery(ctx)
	require.NoError(t, err)
	assert.Empty(t, photos)

	gateway.mu.Lock()
	assert.Empty(t, gateway.objects)
	gateway.mu.Unlock()
}
