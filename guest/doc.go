// Package guest implements the guest-side upload workflow: requesting an
// upload authorization from the photowall server, streaming the file
// straight to the object-storage gateway with progress reporting, and
// maintaining the per-device ownership ledger that gates the delete
// affordance in guest UIs.
//
// The ledger is a display hint only. It is client-spoofable by design and
// the server never consults it; real authorization would need
// server-issued ownership tokens, which this project does not have.
package guest
