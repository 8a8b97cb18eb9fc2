package cache

import (
	"hash/fnv"
	"strings"
	"sync"
	"time"
)

const shardCount = 16

// Store is an in-memory key/value cache with per-entry expiration and lazy
// eviction: expired entries are treated as absent and removed on the read
// that finds them, so no background sweeper competes for the locks. Keys
// are spread across shards so unrelated tools never contend on one mutex.
//
// The cache is a pure accelerator. Dropping every entry at any moment
// changes latency and downstream call counts, never results.
type Store struct {
	shards [shardCount]*shard
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	value     any
	expiresAt time.Time
}

func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]entry)}
	}
	return s
}

func (s *Store) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%shardCount]
}

// Get returns the cached value when the entry exists and has not expired.
// An expired entry is evicted and reported as a miss.
func (s *Store) Get(key string) (any, bool) {
	now := time.Now()
	sh := s.shardFor(key)

	sh.mu.RLock()
	e, ok := sh.entries[key]
	sh.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if now.Before(e.expiresAt) {
		return e.value, true
	}

	sh.mu.Lock()
	// Recheck: a concurrent Put may have replaced the entry.
	if cur, ok := sh.entries[key]; ok && !now.Before(cur.expiresAt) {
		delete(sh.entries, key)
	}
	sh.mu.Unlock()
	return nil, false
}

// Put stores the value, replacing any existing entry. A non-positive TTL
// means "do not cache" and leaves the store untouched.
func (s *Store) Put(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	sh.mu.Unlock()
}

// Delete removes a single entry if present.
func (s *Store) Delete(key string) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	delete(sh.entries, key)
	sh.mu.Unlock()
}

// Clear drops every entry and returns how many were removed.
func (s *Store) Clear() int {
	var count int
	for _, sh := range s.shards {
		sh.mu.Lock()
		count += len(sh.entries)
		sh.entries = make(map[string]entry)
		sh.mu.Unlock()
	}
	return count
}

// ClearPattern removes entries whose key contains the substring and
// returns how many were removed.
func (s *Store) ClearPattern(pattern string) int {
	var count int
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key := range sh.entries {
			if strings.Contains(key, pattern) {
				delete(sh.entries, key)
				count++
			}
		}
		sh.mu.Unlock()
	}
	return count
}

// Size returns the number of entries currently held, expired or not.
func (s *Store) Size() int {
	var count int
	for _, sh := range s.shards {
		sh.mu.RLock()
		count += len(sh.entries)
		sh.mu.RUnlock()
	}
	return count
}
