package badge

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"nova/models"
	"nova/rdx"
)

// DefaultTTL bounds how stale the in-memory index may go relative to
// out-of-band badge reassignments (other kiosks). The store fallback in the
// resolver covers the window.
const DefaultTTL = 10 * time.Minute

const indexKey = "badge:index"

// Cache is the persistence surface behind the index: a single TTL-wrapped
// JSON blob. The Redis-backed implementation is the production one; tests
// inject in-memory fakes.
type Cache interface {
	Get(key string) (string, error)
	Set(key, value string, ttl time.Duration) error
}

// RedisCache persists the index snapshot through the shared Redis client.
type RedisCache struct{}

func (RedisCache) Get(key string) (string, error) { return rdx.RdxGet(key) }
func (RedisCache) Set(key, value string, ttl time.Duration) error {
	return rdx.SetWithExpiry(key, value, ttl)
}

type snapshot struct {
	CachedAt time.Time   `json:"cachedAt"`
	Entries  [][2]string `json:"entries"`
}

// Index maps normalized badge codes to member ids. It is a performance
// optimization only; the document store stays the source of truth. Injected
// where needed rather than held as package state so tests can assert
// zero-read behavior on isolated instances.
type Index struct {
	mu       sync.Mutex
	entries  map[string]string
	cache    Cache
	ttl      time.Duration
	loadedAt time.Time
	now      func() time.Time
}

// NewIndex builds an index persisted through cache. A nil cache gives a
// purely in-memory index.
func NewIndex(cache Cache) *Index {
	return &Index{
		entries: make(map[string]string),
		cache:   cache,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
}

// Normalize strips everything but digits; the result is the canonical key
// form used everywhere. Returns false when nothing remains.
func Normalize(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

// numericAlias drops leading zeros so "00123" and "123" resolve alike.
func numericAlias(code string) string {
	trimmed := strings.TrimLeft(code, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// Prime loads mappings for a whole member pool. Idempotent overwrite; safe
// to call on every bulk member load.
func (ix *Index) Prime(members []models.Member) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.ensureLoaded()
	for i := range members {
		ix.insert(members[i].BadgeCode(), members[i].UserID)
	}
	ix.persist()
}

// Update records a single badge (re)assignment and persists immediately.
func (ix *Index) Update(memberID, badgeCode string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.ensureLoaded()
	ix.insert(badgeCode, memberID)
	ix.persist()
}

// Lookup resolves a badge code to a member id from memory alone.
func (ix *Index) Lookup(badgeCode string) (string, bool) {
	code, ok := Normalize(badgeCode)
	if !ok {
		return "", false
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.ensureLoaded()
	if id, ok := ix.entries[code]; ok {
		return id, true
	}
	id, ok := ix.entries[numericAlias(code)]
	return id, ok
}

// Clear empties the index and persists the empty state. Diagnostic use only.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = make(map[string]string)
	ix.loadedAt = ix.now()
	ix.persist()
}

// insert adds the normalized code and its leading-zero-tolerant alias.
// Caller holds the lock.
func (ix *Index) insert(rawCode, memberID string) {
	code, ok := Normalize(rawCode)
	if !ok || memberID == "" {
		return
	}
	ix.entries[code] = memberID
	ix.entries[numericAlias(code)] = memberID
}

// ensureLoaded lazily reads the persisted snapshot back in, at most once per
// TTL window. A snapshot older than the TTL is discarded. Caller holds the
// lock.
func (ix *Index) ensureLoaded() {
	if ix.cache == nil {
		return
	}
	now := ix.now()
	if !ix.loadedAt.IsZero() && now.Sub(ix.loadedAt) < ix.ttl {
		return
	}
	ix.loadedAt = now

	raw, err := ix.cache.Get(indexKey)
	if err != nil || raw == "" {
		return
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Println("badge index: discarding unreadable snapshot:", err)
		return
	}
	if now.Sub(snap.CachedAt) > ix.ttl {
		return
	}
	for _, e := range snap.Entries {
		if e[0] != "" && e[1] != "" {
			ix.entries[e[0]] = e[1]
		}
	}
}

// persist writes the current map out, best effort. Caller holds the lock.
func (ix *Index) persist() {
	if ix.cache == nil {
		return
	}
	snap := snapshot{CachedAt: ix.now(), Entries: make([][2]string, 0, len(ix.entries))}
	for code, id := range ix.entries {
		snap.Entries = append(snap.Entries, [2]string{code, id})
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Println("badge index: marshal failed:", err)
		return
	}
	if err := ix.cache.Set(indexKey, string(data), ix.ttl); err != nil {
		log.Println("badge index: persist failed:", err)
	}
}
