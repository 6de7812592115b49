// Package api retrieves Open Graph metadata for links through a chain of
// relay endpoints and caches the results.
package api

// ErrorCode defines error types for API operations
type ErrorCode string

const (
	// ErrInvalidURL represents input that is not an absolute http(s) URL
	ErrInvalidURL ErrorCode = "InvalidURL"

	// ErrRelayTransport represents network failures and timeouts talking to a relay
	ErrRelayTransport ErrorCode = "RelayTransport"

	// ErrRelayStatus represents a non-2xx response from a relay
	ErrRelayStatus ErrorCode = "RelayStatus"

	// ErrEnvelopeDecode represents an envelope response that could not be decoded
	ErrEnvelopeDecode ErrorCode = "EnvelopeDecode"

	// ErrNoMetadata represents a page without an Open Graph image
	ErrNoMetadata ErrorCode = "NoMetadata"

	// ErrExhausted represents running out of relays and attempts
	ErrExhausted ErrorCode = "Exhausted"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
