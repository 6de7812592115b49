package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ka2n/ogrelay/api/cache"
	"github.com/ka2n/ogrelay/api/metadata"
	"github.com/ka2n/ogrelay/api/relay"
	"github.com/ka2n/ogrelay/log"
	"github.com/morikuni/failure/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/singleflight"
)

// AcceptHeader is sent with every relay request
const AcceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// maxBodyBytes bounds how much of a relay response is read
const maxBodyBytes = 5 << 20

// FetchConfig controls timeouts and retries of relay requests
type FetchConfig struct {
	// Timeout bounds a single relay request
	Timeout time.Duration
	// RetryAttempts is the number of extra tries per relay
	RetryAttempts int
	// RetryDelay is the wait after a failed try before retrying the same relay
	RetryDelay time.Duration
}

// DefaultFetchConfig is used when no FetchConfig is supplied
var DefaultFetchConfig = FetchConfig{
	Timeout:       15 * time.Second,
	RetryAttempts: 1,
	RetryDelay:    2 * time.Second,
}

// Fetcher resolves URLs to Open Graph metadata through relays, caching
// successful results. It is safe for concurrent use.
type Fetcher struct {
	registry *relay.Registry
	config   FetchConfig
	cache    *cache.Store[metadata.Metadata]
	parser   metadata.Parser
	client   *http.Client
	sleep    func(ctx context.Context, d time.Duration) error

	coalesce bool
	inflight singleflight.Group
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithRegistry sets the relays to try
func WithRegistry(r *relay.Registry) FetcherOption {
	return func(f *Fetcher) { f.registry = r }
}

// WithFetchConfig sets timeout and retry behaviour. A non-positive Timeout
// falls back to DefaultFetchConfig.Timeout so every request stays bounded.
func WithFetchConfig(c FetchConfig) FetcherOption {
	return func(f *Fetcher) {
		if c.RetryAttempts < 0 {
			c.RetryAttempts = 0
		}
		if c.Timeout <= 0 {
			c.Timeout = DefaultFetchConfig.Timeout
		}
		f.config = c
	}
}

// WithCache sets the metadata cache
func WithCache(c *cache.Store[metadata.Metadata]) FetcherOption {
	return func(f *Fetcher) { f.cache = c }
}

// WithParser sets the metadata parser
func WithParser(p metadata.Parser) FetcherOption {
	return func(f *Fetcher) { f.parser = p }
}

// WithHTTPClient sets the client used for relay requests
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithCoalescing makes concurrent fetches of the same URL share one relay sequence
func WithCoalescing() FetcherOption {
	return func(f *Fetcher) { f.coalesce = true }
}

// NewFetcher creates a Fetcher. Unset options default to the public relays,
// DefaultFetchConfig, a fresh cache and PatternParser.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		registry: relay.Default(),
		config:   DefaultFetchConfig,
		parser:   metadata.PatternParser{},
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.cache == nil {
		f.cache = cache.New[metadata.Metadata]()
	}
	if f.client == nil {
		f.client = log.HTTPClient()
	}
	return f
}

// Registry returns the relays this Fetcher tries
func (f *Fetcher) Registry() *relay.Registry {
	return f.registry
}

// Cache returns the metadata cache
func (f *Fetcher) Cache() *cache.Store[metadata.Metadata] {
	return f.cache
}

// ClearCache drops every cached result
func (f *Fetcher) ClearCache() {
	f.cache.Clear()
	log.Debug("metadata cache cleared")
}

// FetchMetadata returns the Open Graph metadata of rawURL. It never returns
// an error; failures are reported in the result.
func (f *Fetcher) FetchMetadata(ctx context.Context, rawURL string) FetchResult {
	return f.fetch(ctx, rawURL, true)
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, useCache bool) FetchResult {
	if !IsValidURL(rawURL) {
		log.Debug("rejecting url", "error", failure.New(ErrInvalidURL,
			failure.Message("URL must be absolute http or https"),
			failure.Context{"url": rawURL},
		))
		return failed(MessageInvalidURL)
	}

	if useCache {
		if data, ok := f.cache.Get(rawURL); ok {
			log.Debug("metadata cache hit", "url", rawURL)
			return success(data, true)
		}
	}

	if !f.coalesce {
		return f.resolve(ctx, rawURL, useCache)
	}

	key := rawURL
	if !useCache {
		key = "nocache:" + rawURL
	}
	// The shared sequence outlives any single caller; each caller stops
	// waiting on its own context instead.
	ch := f.inflight.DoChan(key, func() (any, error) {
		return f.resolve(context.WithoutCancel(ctx), rawURL, useCache), nil
	})
	select {
	case res := <-ch:
		if res.Shared {
			log.Debug("shared in-flight fetch", "url", rawURL)
		}
		return res.Val.(FetchResult)
	case <-ctx.Done():
		log.Warn("metadata fetch cancelled", "url", rawURL, "error", ctx.Err())
		return failed(MessageExhausted)
	}
}

// resolve walks the relays in order, trying each up to RetryAttempts+1 times.
func (f *Fetcher) resolve(ctx context.Context, rawURL string, useCache bool) FetchResult {
	for i := 0; i < f.registry.Count(); i++ {
		endpoint := f.registry.Endpoint(i)

		for attempt := 0; attempt <= f.config.RetryAttempts; attempt++ {
			if ctx.Err() != nil {
				log.Warn("metadata fetch cancelled", "url", rawURL, "error", ctx.Err())
				return failed(MessageExhausted)
			}

			logger := log.Logger.With("url", rawURL, "relay", endpoint.Name, "attempt", attempt+1)

			data, err := f.attempt(ctx, rawURL, i)
			if err == nil {
				if useCache {
					f.cache.Put(rawURL, data)
				}
				logger.Debug("metadata found", "image", data.ImageURL)
				return success(data, false)
			}

			if failure.Is(err, ErrNoMetadata) {
				logger.Debug("no open graph image in response")
				continue
			}

			logger.Warn("relay attempt failed", "error", err)
			if attempt < f.config.RetryAttempts {
				if err := f.sleep(ctx, f.config.RetryDelay); err != nil {
					return failed(MessageExhausted)
				}
			}
		}
	}

	log.Info("metadata not available from any relay", "url", rawURL,
		"error", failure.New(ErrExhausted, failure.Context{"relays": strconv.Itoa(f.registry.Count())}))
	return failed(MessageExhausted)
}

// attempt performs one relay request and parses the result.
func (f *Fetcher) attempt(ctx context.Context, target string, index int) (metadata.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	reqURL := f.registry.BuildURL(target, index)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return metadata.Metadata{}, failure.Wrap(err, failure.WithCode(ErrRelayTransport),
			failure.Message("Failed to build relay request"),
			failure.Context{"url": reqURL})
	}
	req.Header.Set("Accept", AcceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return metadata.Metadata{}, failure.Wrap(err, failure.WithCode(ErrRelayTransport),
			failure.Message("Relay request failed"),
			failure.Context{"url": reqURL})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return metadata.Metadata{}, failure.New(ErrRelayStatus,
			failure.Message("Relay responded with an error status"),
			failure.Context{"url": reqURL, "status": resp.Status})
	}

	body, err := readBody(resp, f.registry.UsesEnvelope(index))
	if err != nil {
		return metadata.Metadata{}, err
	}

	data := f.parser.Parse(body)
	if !data.Found() {
		return data, failure.New(ErrNoMetadata, failure.Context{"url": reqURL})
	}
	return data, nil
}

// envelope is the JSON wrapper returned by envelope relays
type envelope struct {
	Contents *string `json:"contents"`
}

// readBody returns the target page carried by resp.
func readBody(resp *http.Response, useEnvelope bool) (string, error) {
	r := io.LimitReader(resp.Body, maxBodyBytes)

	if useEnvelope {
		var env envelope
		if err := json.NewDecoder(r).Decode(&env); err != nil {
			return "", failure.Wrap(err, failure.WithCode(ErrEnvelopeDecode),
				failure.Message("Failed to decode relay envelope"))
		}
		if env.Contents == nil {
			return "", failure.New(ErrEnvelopeDecode,
				failure.Message("Relay envelope has no contents"))
		}
		return *env.Contents, nil
	}

	utf8Reader, err := charset.NewReader(r, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", failure.Wrap(err, failure.WithCode(ErrRelayTransport),
			failure.Message("Unsupported response encoding"))
	}
	raw, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", failure.Wrap(err, failure.WithCode(ErrRelayTransport),
			failure.Message("Failed to read relay response"))
	}
	return string(raw), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
