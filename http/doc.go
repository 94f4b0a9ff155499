// Package http exposes the photo-sharing workflow over a chi router:
// upload-authorization issuance, gallery listing, and photo deletion.
// Handler-level errors never escape; they are mapped to a structured
// {"error": ...} body with the status implied by the domain sentinel.
package http
