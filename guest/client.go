package guest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/photowall/photowall"
)

// DefaultTimeout is the default HTTP client timeout. Uploads get no
// client-side timeout of their own; the presigned URL's expiry is the
// only deadline on a slow transfer.
const DefaultTimeout = 30 * time.Second

// Client performs the guest workflow against a photowall server and the
// object-storage gateway it fronts.
type Client struct {
	endpoint   string
	httpClient *http.Client
	ledger     *Ledger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLedger attaches an ownership ledger; successful uploads and
// deletes keep it current. Without one the client works but records no
// ownership.
func WithLedger(ledger *Ledger) Option {
	return func(c *Client) {
		c.ledger = ledger
	}
}

// New creates a new Client for the given server endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}

	c := &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// RequestUploadAuthorization asks the server for a presigned PUT URL for
// one file.
func (c *Client) RequestUploadAuthorization(ctx context.Context, filename, contentType string) (photowall.UploadAuthorization, error) {
	body, err := json.Marshal(photowall.CreateUpload{Filename: filename, ContentType: contentType})
	if err != nil {
		return photowall.UploadAuthorization{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/upload-authorization", bytes.NewReader(body))
	if err != nil {
		return photowall.UploadAuthorization{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return photowall.UploadAuthorization{}, fmt.Errorf("request authorization: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return photowall.UploadAuthorization{}, parseServerError(resp)
	}

	var auth photowall.UploadAuthorization
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return photowall.UploadAuthorization{}, fmt.Errorf("parse response: %w", err)
	}

	return auth, nil
}

// UploadResult describes one completed transfer.
type UploadResult struct {
	LocalPath string
	Key       string
	Size      int64
}

// Upload transfers one local file: zero-byte files are rejected before
// any network call, then an authorization is requested and the raw bytes
// are PUT directly to the gateway with the declared content type.
// Failure is terminal; there is no retry. On success the key is recorded
// in the ledger, if one is attached.
func (c *Client) Upload(ctx context.Context, localPath string, onProgress ProgressFunc) (UploadResult, error) {
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat file: %w", err)
	}
	if info.Size() == 0 {
		return UploadResult{}, fmt.Errorf("upload %s: %w", localPath, ErrEmptyFile)
	}

	contentType := detectContentType(localPath)

	auth, err := c.RequestUploadAuthorization(ctx, filepath.Base(localPath), contentType)
	if err != nil {
		return UploadResult{}, err
	}

	if err := c.transfer(ctx, auth.UploadURL, contentType, file, info.Size(), onProgress); err != nil {
		return UploadResult{}, err
	}

	if c.ledger != nil {
		// The upload itself succeeded; a failed hint write only hides
		// the delete button.
		_ = c.ledger.RecordUpload(ctx, auth.Key)
	}

	return UploadResult{LocalPath: localPath, Key: auth.Key, Size: info.Size()}, nil
}

// transfer performs the direct PUT of the raw bytes to the gateway.
func (c *Client) transfer(ctx context.Context, uploadURL, contentType string, content io.Reader, size int64, onProgress ProgressFunc) error {
	body := newProgressReader(content, size, onProgress)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("transfer: gateway returned %s", resp.Status)
	}

	return nil
}

// UploadAll uploads a batch of files in parallel, one task per file.
// onUpdate, when non-nil, receives a task copy after every state or
// progress change. The returned slice reflects final task states in
// input order; per-file failures are recorded on the task, not returned.
func (c *Client) UploadAll(ctx context.Context, paths []string, onUpdate func(UploadTask)) ([]UploadTask, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	tracker := newTaskTracker()
	notify := func(id uuid.UUID) {
		if onUpdate == nil {
			return
		}
		if task, ok := tracker.get(id); ok {
			onUpdate(task)
		}
	}

	var wg sync.WaitGroup
	for _, path := range paths {
		id := tracker.add(path)
		notify(id)

		wg.Add(1)
		go func(id uuid.UUID, path string) {
			defer wg.Done()

			tracker.start(id)
			notify(id)

			result, err := c.Upload(ctx, path, func(pct int) {
				tracker.setProgress(id, pct)
				notify(id)
			})
			if err != nil {
				tracker.fail(id, err)
			} else {
				tracker.succeed(id, result.Key, result.Size)
			}
			notify(id)
		}(id, path)
	}
	wg.Wait()

	return tracker.snapshot(), nil
}

// Gallery fetches the current photo listing from the server.
func (c *Client) Gallery(ctx context.Context) ([]photowall.Photo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/photos", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch gallery: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp)
	}

	var photos []photowall.Photo
	if err := json.NewDecoder(resp.Body).Decode(&photos); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return photos, nil
}

// Delete asks the server to remove a photo by key and drops the key from
// the ledger on success. The server accepts deletes for any key; the
// ledger gates nothing but UI affordances.
func (c *Client) Delete(ctx context.Context, key string) error {
	body, err := json.Marshal(map[string]string{"key": key})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint+"/photos", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return parseServerError(resp)
	}

	if c.ledger != nil {
		_ = c.ledger.RemoveUpload(ctx, key)
	}

	return nil
}

// parseServerError extracts the {"error": ...} body of a failed request.
func parseServerError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server returned %s: %s", resp.Status, body.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}

// detectContentType maps a filename to a MIME type by extension.
func detectContentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
