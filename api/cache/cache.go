package cache

import (
	"container/list"
	"sync"
	"time"
)

var (
	// DefaultTTL is the default time-to-live for cached entries
	DefaultTTL = 30 * time.Minute

	// DefaultMaxEntries is the default number of live entries a store holds
	DefaultMaxEntries = 100
)

// Entry represents a cached item
type Entry[T any] struct {
	Key       string
	Value     T
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is a bounded in-memory cache whose entries expire after a fixed TTL.
// When full, the entry inserted first is evicted. Expired entries are removed
// lazily on lookup.
type Store[T any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	order   *list.List // of *Entry[T], oldest insertion at front
	entries map[string]*list.Element
}

// Option configures a Store
type Option func(*options)

type options struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// WithTTL sets the entry lifetime
func WithTTL(d time.Duration) Option {
	return func(o *options) { o.ttl = d }
}

// WithMaxEntries sets the capacity. Values below 1 are ignored.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates an empty store
func New[T any](opts ...Option) *Store[T] {
	o := options{
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		ttl:        o.ttl,
		maxEntries: o.maxEntries,
		now:        o.now,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// Get returns the value for key if present and not expired.
// An expired entry is deleted and reported as a miss.
func (c *Store[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	entry := el.Value.(*Entry[T])
	if c.now().After(entry.ExpiresAt) {
		c.remove(el)
		return zero, false
	}
	return entry.Value, true
}

// Put stores value under key. A new key inserted into a full store evicts the
// oldest-inserted entry first. An existing key is replaced and becomes the
// newest insertion.
func (c *Store[T]) Put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
	if c.order.Len() >= c.maxEntries {
		if oldest := c.order.Front(); oldest != nil {
			c.remove(oldest)
		}
	}

	now := c.now()
	entry := &Entry[T]{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.entries[key] = c.order.PushBack(entry)
}

// Clear removes all cached entries
func (c *Store[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

// Len returns the number of stored entries, including expired ones not yet
// looked up.
func (c *Store[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Entries returns a snapshot of stored entries in insertion order.
func (c *Store[T]) Entries() []Entry[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry[T], 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value.(*Entry[T]))
	}
	return out
}

// TTL returns the configured time-to-live
func (c *Store[T]) TTL() time.Duration {
	return c.ttl
}

func (c *Store[T]) remove(el *list.Element) {
	entry := c.order.Remove(el).(*Entry[T])
	delete(c.entries, entry.Key)
}
