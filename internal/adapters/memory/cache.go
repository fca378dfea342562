package memory

import (
	"bytes"
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
)

type cacheEntry struct {
	code      string
	result    domain.Result
	expiresAt time.Time
}

// ResultCache is a bounded TTL cache. When full, the oldest inserted entry
// is evicted.
type ResultCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	order    *list.List
	entries  map[string]*list.Element
	now      func() time.Time
}

// NewResultCache builds a cache holding at most capacity entries for ttl
// each. A nil now uses time.Now.
func NewResultCache(ttl time.Duration, capacity int, now func() time.Time) *ResultCache {
	if now == nil {
		now = time.Now
	}
	return &ResultCache{
		ttl:      ttl,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
		now:      now,
	}
}

func (c *ResultCache) Get(_ context.Context, code string) (*domain.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[code]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if !c.now().Before(entry.expiresAt) {
		c.removeElement(el)
		return nil, false
	}
	res := entry.result
	res.ResultData = bytes.Clone(entry.result.ResultData)
	return &res, true
}

func (c *ResultCache) Set(_ context.Context, code string, result *domain.Result) {
	if c.capacity <= 0 || result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[code]; ok {
		c.removeElement(el)
	}
	for c.order.Len() >= c.capacity {
		c.removeElement(c.order.Front())
	}

	stored := *result
	stored.ResultData = bytes.Clone(result.ResultData)
	el := c.order.PushBack(&cacheEntry{
		code:      code,
		result:    stored,
		expiresAt: c.now().Add(c.ttl),
	})
	c.entries[code] = el
}

func (c *ResultCache) Evict(_ context.Context, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[code]; ok {
		c.removeElement(el)
	}
}

// Sweep removes expired entries and reports how many were removed.
func (c *ResultCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if !now.Before(el.Value.(*cacheEntry).expiresAt) {
			c.removeElement(el)
			removed++
		}
		el = next
	}
	return removed
}

func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *ResultCache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).code)
}
