package common

// RemovedMarker is the plaintext stored in place of a destination URL after
// a takedown. Resolving a link whose plaintext equals the marker renders the
// removal notice instead of redirecting.
const RemovedMarker = "__ABUSE_WARNING__"

// RequestIDHeaderName carries the per-request correlation id.
const RequestIDHeaderName = "X-Request-ID"
