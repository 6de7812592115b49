package api

import (
	"github.com/ka2n/ogrelay/api/links"
	"github.com/ka2n/ogrelay/api/metadata"
	"github.com/morikuni/failure/v2"
)

const (
	// MessageInvalidURL is the failure reason for input that is not an http(s) URL
	MessageInvalidURL = "invalid URL"
	// MessageExhausted is the failure reason when no relay produced metadata
	MessageExhausted = "failed to retrieve metadata"
)

// FetchResult is the outcome of a metadata fetch. Either Success is true and
// Data is set, or Success is false and Error carries the reason.
type FetchResult struct {
	Success   bool               `json:"success"`
	Data      *metadata.Metadata `json:"data,omitempty"`
	FromCache bool               `json:"fromCache,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Err returns nil for a successful result. Otherwise it returns an error coded
// ErrInvalidURL or ErrExhausted carrying the failure reason as its message.
func (r FetchResult) Err() error {
	if r.Success {
		return nil
	}
	code := ErrExhausted
	if r.Error == MessageInvalidURL {
		code = ErrInvalidURL
	}
	return failure.New(code, failure.Message(r.Error))
}

func success(data metadata.Metadata, fromCache bool) FetchResult {
	return FetchResult{
		Success:   true,
		Data:      &data,
		FromCache: fromCache,
	}
}

func failed(reason string) FetchResult {
	return FetchResult{Error: reason}
}

// LinkPreview pairs a document link with its fetch outcome
type LinkPreview struct {
	Link   links.Link  `json:"link"`
	Result FetchResult `json:"result"`
}
