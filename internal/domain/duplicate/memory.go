package duplicate

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count     int
	expiresAt time.Time
}

type memoryChecker struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemory constructs an in-process checker. Entries expire lazily on the
// next access after their TTL elapses.
func NewMemory(cfg Config) Checker {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &memoryChecker{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (c *memoryChecker) Check(_ context.Context, fingerprint string) (Sighting, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fingerprint]
	if !ok {
		return Sighting{}, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, fingerprint)
		return Sighting{}, nil
	}
	return Sighting{
		Found:   true,
		Count:   entry.count,
		Penalty: penaltyFor(entry.count),
	}, nil
}

func (c *memoryChecker) Record(_ context.Context, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.entries[fingerprint]
	if entry.count > 0 && time.Now().After(entry.expiresAt) {
		entry = memoryEntry{}
	}
	entry.count++
	entry.expiresAt = time.Now().Add(c.ttl)
	c.entries[fingerprint] = entry
	return nil
}

func (c *memoryChecker) Stats(context.Context) (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]any{
		"type":  "memory",
		"total": len(c.entries),
		"ttl":   int(c.ttl.Seconds()),
	}, nil
}

func (c *memoryChecker) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}
