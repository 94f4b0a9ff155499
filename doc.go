// Package photowall contains the domain logic for a small wedding
// photo-sharing service: guests receive short-lived presigned URLs and
// upload photos straight to an object-storage bucket, a gallery endpoint
// lists the bucket, and a delete endpoint removes objects (with a
// best-effort CDN invalidation).
//
// The package defines the domain types, the sentinel error taxonomy, and
// GalleryService, which orchestrates an ObjectStore and an optional
// CacheInvalidator. Concrete adapters live in subpackages:
//
//   - s3store: AWS S3 gateway and CloudFront invalidator
//   - http: chi-based HTTP API
//   - guest: client-side upload workflow and ownership ledger
//   - config: process configuration
package photowall
