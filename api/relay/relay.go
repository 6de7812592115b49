// Package relay holds the ordered list of third-party relay endpoints used to
// reach target pages that cannot be fetched directly.
package relay

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/morikuni/failure/v2"
)

// ErrorCode defines error types for relay definitions
type ErrorCode string

const (
	// ErrUnknownFormat represents a relay format name that is not recognized
	ErrUnknownFormat ErrorCode = "UnknownRelayFormat"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Format describes how a relay returns the target page.
type Format int

const (
	// FormatRawBody relays forward the target body verbatim.
	FormatRawBody Format = iota
	// FormatEnvelope relays wrap the target body in a JSON object {"contents": "..."}.
	FormatEnvelope
)

func (f Format) String() string {
	switch f {
	case FormatEnvelope:
		return "envelope"
	default:
		return "raw"
	}
}

// ParseFormat converts a configuration value into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw", "rawbody", "raw_body":
		return FormatRawBody, nil
	case "envelope", "json":
		return FormatEnvelope, nil
	default:
		return FormatRawBody, failure.New(ErrUnknownFormat,
			failure.Message("Unknown relay format"),
			failure.Context{"format": s},
		)
	}
}

// Endpoint is a single relay service.
type Endpoint struct {
	Name string
	// Template is the request URL prefix; the percent-encoded target is appended to it.
	Template string
	Format   Format
}

// Registry is an immutable, priority-ordered list of relay endpoints.
type Registry struct {
	endpoints []Endpoint
}

// New creates a registry. The order of endpoints is the order they are tried in.
func New(endpoints ...Endpoint) *Registry {
	eps := make([]Endpoint, len(endpoints))
	copy(eps, endpoints)
	return &Registry{endpoints: eps}
}

// DefaultEndpoints are the public relays used when nothing is configured.
var DefaultEndpoints = []Endpoint{
	{Name: "allorigins", Template: "https://api.allorigins.win/get?url=", Format: FormatEnvelope},
	{Name: "codetabs", Template: "https://api.codetabs.com/v1/proxy?quest=", Format: FormatRawBody},
	{Name: "corsproxy", Template: "https://corsproxy.org/?", Format: FormatRawBody},
}

// Default returns a registry of DefaultEndpoints.
func Default() *Registry {
	return New(DefaultEndpoints...)
}

// Count returns the number of relays.
func (r *Registry) Count() int {
	return len(r.endpoints)
}

// Endpoint returns the relay at index. It panics when index is out of range.
func (r *Registry) Endpoint(index int) Endpoint {
	r.mustIndex(index)
	return r.endpoints[index]
}

// Endpoints returns a copy of all relays in priority order.
func (r *Registry) Endpoints() []Endpoint {
	eps := make([]Endpoint, len(r.endpoints))
	copy(eps, r.endpoints)
	return eps
}

// UsesEnvelope reports whether the relay at index wraps responses in an envelope.
func (r *Registry) UsesEnvelope(index int) bool {
	return r.Endpoint(index).Format == FormatEnvelope
}

// BuildURL embeds the percent-encoded target into the relay template at index.
func (r *Registry) BuildURL(target string, index int) string {
	return r.Endpoint(index).Template + EncodeComponent(target)
}

func (r *Registry) mustIndex(index int) {
	if index < 0 || index >= len(r.endpoints) {
		panic(fmt.Sprintf("relay: index %d out of range [0,%d)", index, len(r.endpoints)))
	}
}

// EncodeComponent percent-encodes s the way browsers encode a URI component:
// everything except A-Z a-z 0-9 and -_.!~*'() is escaped, spaces become %20.
func EncodeComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	for enc, raw := range componentUnescapes {
		escaped = strings.ReplaceAll(escaped, enc, raw)
	}
	return escaped
}

var componentUnescapes = map[string]string{
	"%21": "!",
	"%27": "'",
	"%28": "(",
	"%29": ")",
	"%2A": "*",
}
