package photowall

import "time"

// Photo is one object in the gallery bucket as seen by viewers.
type Photo struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Size       int64     `json:"-"`
	UploadedAt time.Time `json:"uploadedAt,omitzero"`
}

// ObjectEntry is a raw bucket listing entry before gallery filtering.
type ObjectEntry struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// CreateUpload is a request for a new upload authorization.
type CreateUpload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// UploadAuthorization is a time-limited write grant for one object key.
// No object exists until the client completes the PUT to UploadURL.
type UploadAuthorization struct {
	UploadURL string    `json:"uploadUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}
