// Package cache provides an in-memory, single-flight result cache for the
// analysis pipeline. Every engine result is keyed by a stable string (e.g.
// "volatility:internal/foo.go") and lives only for the process's lifetime:
// nothing here touches disk. This is a deliberate departure from the
// teacher's blake3-addressed JSON-on-disk cache -- the pipeline's workload is
// a short-lived MCP server process answering repeated queries about the same
// few hot files in one working tree, not a build cache meant to survive
// across invocations, so TTL+LRU in memory is the right shape and
// singleflight.Group lets concurrent requests for the same key share one
// computation instead of racing duplicate git subprocesses.
package cache

import (
	"container/list"
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/singleflight"
)

// HashContent returns a hex-encoded BLAKE3 hash of data, for building cache
// keys that fold in a file's current content -- an edit invalidates the
// entry immediately rather than waiting out the TTL, the same role the
// teacher's on-disk cache uses BLAKE3 for when addressing cache entries by
// content rather than path.
func HashContent(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultTTL is how long an entry stays valid after it's written.
const DefaultTTL = 5 * time.Minute

// DefaultMaxEntries bounds how many distinct keys the cache holds at once.
const DefaultMaxEntries = 100

// Cache is a TTL+LRU store with single-flight loading, safe for concurrent
// use. The entry map is a sync.Map, whose lock-free reads mean a Get for one
// key never waits on a Get or Set for a different key. The LRU order list is
// the one piece of shared mutable state every operation touches, so it lives
// behind its own dedicated mutex (orderMu) rather than sharing a lock with
// the map -- that mutex is only ever held for an O(1) list splice, never for
// the duration of a load, so it does not reintroduce cross-key blocking.
// singleflight.Group.Do is itself keyed per string, so concurrent loads for
// distinct keys already run independently of each other.
type Cache struct {
	ttl        time.Duration
	maxEntries int
	entries    sync.Map // string -> *list.Element (Value is *entry)

	orderMu sync.Mutex
	order   *list.List // front = most recently used

	group singleflight.Group
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithMaxEntries overrides DefaultMaxEntries.
func WithMaxEntries(n int) Option {
	return func(c *Cache) { c.maxEntries = n }
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		order:      list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a cached value. The second return is false on a miss or an
// expired entry, in which case the entry is evicted.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	elem := v.(*list.Element)
	ent := elem.Value.(*entry)

	if time.Now().After(ent.expiresAt) {
		c.removeElement(elem)
		return nil, false
	}

	c.orderMu.Lock()
	c.order.MoveToFront(elem)
	c.orderMu.Unlock()
	return ent.value, true
}

// Set stores value under key, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *Cache) Set(key string, value any) {
	if v, ok := c.entries.Load(key); ok {
		elem := v.(*list.Element)
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiresAt = time.Now().Add(c.ttl)
		c.orderMu.Lock()
		c.order.MoveToFront(elem)
		c.orderMu.Unlock()
		return
	}

	ent := &entry{key: key, value: value, expiresAt: time.Now().Add(c.ttl)}

	c.orderMu.Lock()
	elem := c.order.PushFront(ent)
	c.orderMu.Unlock()

	c.entries.Store(key, elem)

	for {
		c.orderMu.Lock()
		over := c.order.Len() > c.maxEntries
		var oldest *list.Element
		if over {
			oldest = c.order.Back()
		}
		c.orderMu.Unlock()
		if !over || oldest == nil {
			break
		}
		c.removeElement(oldest)
	}
}

// removeElement drops elem from both the order list and the entry map. It
// tolerates being called twice on the same element (a racing evict and a
// racing expiry-on-read), since list.Remove and sync.Map.Delete are each
// idempotent no-ops on an already-removed element.
func (c *Cache) removeElement(elem *list.Element) {
	c.orderMu.Lock()
	c.order.Remove(elem)
	c.orderMu.Unlock()
	c.entries.Delete(elem.Value.(*entry).key)
}

// GetOrLoad returns the cached value for key, or calls load to compute it.
// Concurrent callers for the same key share one in-flight load via
// singleflight; only the winner's result is stored.
func (c *Cache) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		result, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, result)
		return result, nil
	})
	return v, err
}

// Invalidate removes every entry whose key has the given prefix. An empty
// prefix matches every key, i.e. it behaves like Clear.
func (c *Cache) Invalidate(prefix string) {
	var toRemove []*list.Element
	c.entries.Range(func(key, v any) bool {
		if prefix == "" || hasPrefix(key.(string), prefix) {
			toRemove = append(toRemove, v.(*list.Element))
		}
		return true
	})
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
}

// Clear empties the cache entirely.
func (c *Cache) Clear() {
	c.Invalidate("")
}

// Len returns the number of live entries, including ones that have expired
// but not yet been touched.
func (c *Cache) Len() int {
	c.orderMu.Lock()
	defer c.orderMu.Unlock()
	return c.order.Len()
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
