package timeentry

import (
	"sync"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
)

const defaultCacheTTL = 30 * time.Second

type dayKey struct {
	companyID  string
	employeeID string
	date       string
}

type cachedEntry struct {
	entry     timeentry.TimeEntry
	expiresAt time.Time
}

// entryCache mirrors recently written entries. It is only filled after a
// successful repository write or read, so it never holds unsaved state.
// Expired entries are dropped on lookup and by a sweep that runs at most once per ttl.
type entryCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
	byID      map[string]cachedEntry
	byDay     map[dayKey]string
}

func newEntryCache(ttl time.Duration, now func() time.Time) *entryCache {
	return &entryCache{
		ttl:   ttl,
		now:   now,
		byID:  make(map[string]cachedEntry),
		byDay: make(map[dayKey]string),
	}
}

func (c *entryCache) get(id, companyID string) (timeentry.TimeEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(id, companyID)
}

func (c *entryCache) getLocked(id, companyID string) (timeentry.TimeEntry, bool) {
	cached, ok := c.byID[id]
	if !ok {
		return timeentry.TimeEntry{}, false
	}
	if c.now().After(cached.expiresAt) {
		c.removeLocked(cached.entry)
		return timeentry.TimeEntry{}, false
	}
	if cached.entry.CompanyID != companyID {
		return timeentry.TimeEntry{}, false
	}
	return cached.entry.Clone(), true
}

func (c *entryCache) getDay(companyID, employeeID, date string) (timeentry.TimeEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.byDay[dayKey{companyID, employeeID, date}]
	if !ok {
		return timeentry.TimeEntry{}, false
	}
	return c.getLocked(id, companyID)
}

func (c *entryCache) put(entry timeentry.TimeEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) >= c.ttl {
		c.sweepLocked(now)
	}
	c.byID[entry.ID] = cachedEntry{entry: entry.Clone(), expiresAt: now.Add(c.ttl)}
	c.byDay[dayKey{entry.CompanyID, entry.EmployeeID, entry.Date}] = entry.ID
}

func (c *entryCache) remove(entry timeentry.TimeEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(entry)
}

func (c *entryCache) removeLocked(entry timeentry.TimeEntry) {
	delete(c.byID, entry.ID)
	key := dayKey{entry.CompanyID, entry.EmployeeID, entry.Date}
	if c.byDay[key] == entry.ID {
		delete(c.byDay, key)
	}
}

func (c *entryCache) sweepLocked(now time.Time) {
	for _, cached := range c.byID {
		if now.After(cached.expiresAt) {
			c.removeLocked(cached.entry)
		}
	}
	c.lastSweep = now
}

func (c *entryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byID)
}
