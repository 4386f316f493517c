package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache used by tests and local development.
// Expiry is evaluated lazily on access.
type MemoryCache struct {
	mu      sync.Mutex
	values  map[string]memoryEntry
	sets    map[string]map[string]struct{}
	zsets   map[string]map[string]float64
	expires map[string]time.Time
}

type memoryEntry struct {
	value string
}

// NewMemoryCache builds an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		values:  make(map[string]memoryEntry),
		sets:    make(map[string]map[string]struct{}),
		zsets:   make(map[string]map[string]float64),
		expires: make(map[string]time.Time),
	}
}

var _ Cache = (*MemoryCache)(nil)

func (c *MemoryCache) expired(key string) bool {
	deadline, ok := c.expires[key]
	if !ok {
		return false
	}
	if time.Now().Before(deadline) {
		return false
	}
	delete(c.values, key)
	delete(c.sets, key)
	delete(c.zsets, key)
	delete(c.expires, key)
	return true
}

func (c *MemoryCache) setExpiry(key string, ttl time.Duration) {
	if ttl > 0 {
		c.expires[key] = time.Now().Add(ttl)
	} else {
		delete(c.expires, key)
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired(key) {
		return "", ErrCacheMiss
	}
	entry, ok := c.values[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = memoryEntry{value: value}
	c.setExpiry(key, ttl)
	return nil
}

func (c *MemoryCache) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.expired(key) {
		if _, ok := c.values[key]; ok {
			return false, nil
		}
	}
	c.values[key] = memoryEntry{value: value}
	c.setExpiry(key, ttl)
	return true, nil
}

func (c *MemoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expired(key)
	var current int64
	if entry, ok := c.values[key]; ok {
		parsed, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, err
		}
		current = parsed
	}
	current++
	c.values[key] = memoryEntry{value: strconv.FormatInt(current, 10)}
	return current, nil
}

func (c *MemoryCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.values, key)
		delete(c.sets, key)
		delete(c.zsets, key)
		delete(c.expires, key)
	}
	return nil
}

func (c *MemoryCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setExpiry(key, ttl)
	return nil
}

func (c *MemoryCache) SAdd(_ context.Context, key string, members ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expired(key)
	set, ok := c.sets[key]
	if !ok {
		set = make(map[string]struct{})
		c.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

func (c *MemoryCache) SRem(_ context.Context, key string, members ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired(key) {
		return nil
	}
	set, ok := c.sets[key]
	if !ok {
		return nil
	}
	for _, m := range members {
		delete(set, m)
	}
	return nil
}

func (c *MemoryCache) SMembers(_ context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired(key) {
		return nil, nil
	}
	set := c.sets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	sort.Strings(members)
	return members, nil
}

func (c *MemoryCache) ZAdd(_ context.Context, key, member string, score float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expired(key)
	zset, ok := c.zsets[key]
	if !ok {
		zset = make(map[string]float64)
		c.zsets[key] = zset
	}
	zset[member] = score
	return nil
}

func (c *MemoryCache) ZRevRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired(key) {
		return nil, nil
	}
	zset := c.zsets[key]
	members := make([]string, 0, len(zset))
	for m := range zset {
		members = append(members, m)
	}
	// score desc, ties by member desc, matching ZREVRANGE.
	sort.Slice(members, func(i, j int) bool {
		si, sj := zset[members[i]], zset[members[j]]
		if si != sj {
			return si > sj
		}
		return members[i] > members[j]
	})
	if start < 0 || start >= int64(len(members)) {
		return nil, nil
	}
	if stop < 0 || stop >= int64(len(members)) {
		stop = int64(len(members)) - 1
	}
	return members[start : stop+1], nil
}

func (c *MemoryCache) ScanPrefix(_ context.Context, prefix string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []string
	for key := range c.values {
		if strings.HasPrefix(key, prefix) && !c.expired(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Close() error { return nil }
