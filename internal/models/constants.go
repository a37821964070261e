package models

const (
	// DefaultPageSize caps every booking and request listing.
	DefaultPageSize = 10

	// UserIDHeader carries the caller identity. It is trusted as-is.
	UserIDHeader = "X-Sharer-User-Id"

	// DateTimeLayout is the wire format of every timestamp.
	DateTimeLayout = "2006-01-02T15:04:05"

	// RateLimitRequests is the default number of gateway requests per window.
	RateLimitRequests = 100

	// RateLimitWindow is the default gateway rate-limit window in seconds.
	RateLimitWindow = 60
)
