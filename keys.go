package photowall

import (
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	repeatedDots   = regexp.MustCompile(`\.{2,}`)
)

// SanitizeFilename reduces a client-supplied filename to a single safe
// path segment: the base name with whitespace and anything outside
// [A-Za-z0-9._-] replaced by underscores and dot runs collapsed, so no
// traversal sequence can survive. Returns "" if nothing usable remains.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "/" || name == "." {
		return ""
	}

	name = unsafeKeyChars.ReplaceAllString(name, "_")
	name = repeatedDots.ReplaceAllString(name, ".")
	name = strings.Trim(name, "._")

	return name
}

// NewObjectKey generates a globally-unique object key for an upload by
// prefixing the sanitized filename with a fresh UUID. Identical filenames
// yield distinct keys on every call.
func NewObjectKey(filename string) string {
	safe := SanitizeFilename(filename)
	if safe == "" {
		safe = "photo"
	}
	return uuid.NewString() + "-" + safe
}

// IsValidKey reports whether a client-supplied key is addressable in the
// bucket: non-empty, within the bucket's key length limit, and free of
// control characters. Bucket keys are opaque strings, not filesystem
// paths, so slashes and dots are fine; anything the gallery can list
// must pass. Keys issued by NewObjectKey always pass.
func IsValidKey(key string) bool {
	if key == "" || len(key) > 1024 {
		return false
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
