package apiclient

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Snapshot is the observable state of one cache key.
type Snapshot struct {
	Data      any
	IsLoading bool
	Err       error
	UpdatedAt time.Time
}

type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	data      any
	err       error
	updatedAt time.Time
	inflight  int
	stale     bool
	// gen is bumped by every invalidation so that a fetch started before it
	// cannot mark the entry fresh again.
	gen uint64
}

// QueryCache memoizes reads by key for a stale time. Concurrent fetches of
// one key share a single call.
type QueryCache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	now     func() time.Time
}

func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		ttl:     ttl,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (c *QueryCache) lookup(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

func (c *QueryCache) fresh(e *entry) bool {
	return !e.updatedAt.IsZero() && !e.stale && e.err == nil && c.now().Sub(e.updatedAt) < c.ttl
}

// Fetch returns the cached value for key while it is fresh and otherwise
// calls fn. A failed fetch keeps the previous data and records the error.
func (c *QueryCache) Fetch(ctx context.Context, key string, fn FetchFunc) (any, error) {
	c.mu.Lock()
	if e := c.lookup(key); c.fresh(e) {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	ch := c.group.DoChan(key, func() (any, error) {
		c.mu.Lock()
		e := c.lookup(key)
		e.inflight++
		gen := e.gen
		c.mu.Unlock()

		data, err := fn(context.WithoutCancel(ctx))

		c.mu.Lock()
		defer c.mu.Unlock()
		e.inflight--
		if e.gen != gen {
			// invalidated mid-flight; leave the entry stale
			return data, err
		}
		if err != nil {
			e.err = err
			return nil, err
		}
		e.data, e.err, e.stale, e.updatedAt = data, nil, false, c.now()
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *QueryCache) Snapshot(key string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Snapshot{}
	}
	return Snapshot{
		Data:      e.data,
		IsLoading: e.inflight > 0,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
	}
}

// Invalidate marks every key equal to prefix or nested under it ("/" or "?")
// as stale and returns how many keys matched.
func (c *QueryCache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.entries {
		if !matches(key, prefix) {
			continue
		}
		e.stale = true
		e.gen++
		c.group.Forget(key)
		n++
	}
	return n
}

func matches(key, prefix string) bool {
	if key == prefix {
		return true
	}
	rest, ok := strings.CutPrefix(key, prefix)
	return ok && (rest[0] == '/' || rest[0] == '?')
}
