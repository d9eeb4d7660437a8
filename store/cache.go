package store

import (
	"container/list"
	"context"
	"sync"
	"time"

	ai "github.com/spetersoncode/maildraft"
)

// Profile cache defaults.
const (
	DefaultCacheTTL  = 5 * time.Minute
	DefaultCacheSize = 256
)

// ProfileReadWriter is the profile store a ProfileCache wraps.
type ProfileReadWriter interface {
	Get(ctx context.Context, userID string) (ai.Profile, error)
	Update(ctx context.Context, userID string, u ai.ProfileUpdate) (ai.Profile, error)
}

type cacheEntry struct {
	userID  string
	profile ai.Profile
	expires time.Time
}

// ProfileCache is a bounded TTL cache in front of a profile store. The
// least recently used profile is evicted when the cache is full. Updates
// through the cache invalidate the user's entry, and a load that overlaps
// an invalidation is not cached.
type ProfileCache struct {
	next ProfileReadWriter
	ttl  time.Duration
	size int
	now  func() time.Time

	mu    sync.Mutex
	order *list.List
	items map[string]*list.Element
	gen   uint64 // bumped by Invalidate
}

// NewProfileCache wraps next. Non-positive ttl or size use the defaults.
func NewProfileCache(next ProfileReadWriter, ttl time.Duration, size int) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &ProfileCache{
		next:  next,
		ttl:   ttl,
		size:  size,
		now:   time.Now,
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

// Get returns the cached profile of userID, loading it on a miss.
func (c *ProfileCache) Get(ctx context.Context, userID string) (ai.Profile, error) {
	p, gen, ok := c.lookup(userID)
	if ok {
		return p, nil
	}
	p, err := c.next.Get(ctx, userID)
	if err != nil {
		return ai.Profile{}, err
	}
	c.store(userID, p, gen)
	return p, nil
}

// Update writes through to the store and drops the cached entry.
func (c *ProfileCache) Update(ctx context.Context, userID string, u ai.ProfileUpdate) (ai.Profile, error) {
	p, err := c.next.Update(ctx, userID, u)
	c.Invalidate(userID)
	return p, err
}

// Invalidate drops the cached profile of userID.
func (c *ProfileCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if el, ok := c.items[userID]; ok {
		c.order.Remove(el)
		delete(c.items, userID)
	}
}

// Len returns the number of cached profiles, expired ones included.
func (c *ProfileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// lookup returns the live entry of userID and the invalidation
// generation observed with it.
func (c *ProfileCache) lookup(userID string) (ai.Profile, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[userID]
	if !ok {
		return ai.Profile{}, c.gen, false
	}
	e := el.Value.(*cacheEntry)
	if !c.now().Before(e.expires) {
		c.order.Remove(el)
		delete(c.items, userID)
		return ai.Profile{}, c.gen, false
	}
	c.order.MoveToFront(el)
	return e.profile, c.gen, true
}

// store caches p unless an invalidation happened since generation gen.
func (c *ProfileCache) store(userID string, p ai.Profile, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	expires := c.now().Add(c.ttl)
	if el, ok := c.items[userID]; ok {
		el.Value = &cacheEntry{userID: userID, profile: p, expires: expires}
		c.order.MoveToFront(el)
		return
	}
	c.items[userID] = c.order.PushFront(&cacheEntry{userID: userID, profile: p, expires: expires})
	for c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).userID)
	}
}
