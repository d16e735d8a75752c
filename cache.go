package reviewcms

import (
	"database/sql"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested review or image does not exist.
var ErrNotFound = sql.ErrNoRows

// CacheTagReviews is the revalidation tag covering the review snapshot.
const CacheTagReviews = "reviews"

// RecordSource supplies the full review collection.
type RecordSource interface {
	ListReviews() ([]Review, error)
}

// RecordCache holds an immutable snapshot of all reviews with a TTL. A reload
// swaps in a new slice; slices already handed out are never modified, so a
// query that started on the old snapshot finishes on it.
type RecordCache struct {
	mu      sync.RWMutex
	records []Review
	fetched time.Time
	ttl     time.Duration
	source  RecordSource
	now     func() time.Time
}

// NewRecordCache creates a RecordCache backed by source.
func NewRecordCache(source RecordSource, ttl time.Duration) *RecordCache {
	return &RecordCache{source: source, ttl: ttl, now: time.Now}
}

func (c *RecordCache) valid() bool {
	return c.records != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *RecordCache) Invalidate() {
	c.mu.Lock()
	c.records = nil
	c.mu.Unlock()
}

// Revalidate invalidates the snapshot if tag covers it and reports whether
// anything was dropped.
func (c *RecordCache) Revalidate(tag string) bool {
	if tag != CacheTagReviews {
		return false
	}
	c.Invalidate()
	return true
}

func (c *RecordCache) load() error {
	if c.valid() {
		return nil
	}
	records, err := c.source.ListReviews()
	if err != nil {
		return err
	}
	if records == nil {
		records = []Review{}
	}
	c.records = records
	c.fetched = c.now()
	return nil
}

// Records returns the current snapshot, reloading it first if stale.
// It tries a read lock first; only takes a write lock if a reload is needed.
// Callers must treat the returned slice as read-only.
func (c *RecordCache) Records() ([]Review, error) {
	c.mu.RLock()
	if c.valid() {
		records := c.records
		c.mu.RUnlock()
		return records, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.records, nil
}

// Get returns a single review by slug from the snapshot.
func (c *RecordCache) Get(slug string) (Review, error) {
	records, err := c.Records()
	if err != nil {
		return Review{}, err
	}
	for _, r := range records {
		if r.Slug == slug {
			return r, nil
		}
	}
	return Review{}, ErrNotFound
}
