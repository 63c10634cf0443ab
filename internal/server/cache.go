package server

import (
	"context"
	"sync"
	"time"

	"github.com/mj1618/devicepilot/internal/model"
	"github.com/mj1618/devicepilot/internal/platform"
)

// TreeCache provides a TTL-based cache for the device element tree. The
// device shows one foreground screen, so there is a single entry.
type TreeCache struct {
	mu        sync.Mutex
	elements  []model.ScreenElement
	size      model.ScreenSize
	timestamp time.Time
	valid     bool
	ttl       time.Duration
	now       func() time.Time
}

// NewTreeCache creates a new cache. A ttl of 0 disables caching.
func NewTreeCache(ttl time.Duration) *TreeCache {
	return &TreeCache{ttl: ttl, now: time.Now}
}

// Read returns the cached tree if within TTL, otherwise reads fresh.
// The caller must hold the provider mutex.
func (c *TreeCache) Read(ctx context.Context, reader platform.Reader) ([]model.ScreenElement, model.ScreenSize, error) {
	if c.ttl > 0 {
		c.mu.Lock()
		if c.valid && c.now().Sub(c.timestamp) < c.ttl {
			elements, size := c.elements, c.size
			c.mu.Unlock()
			return elements, size, nil
		}
		c.mu.Unlock()
	}

	elements, err := reader.ReadScreen(ctx)
	if err != nil {
		return nil, model.ScreenSize{}, err
	}
	size, err := reader.ScreenSize(ctx)
	if err != nil {
		return nil, model.ScreenSize{}, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.elements, c.size, c.timestamp, c.valid = elements, size, c.now(), true
		c.mu.Unlock()
	}
	return elements, size, nil
}

// Invalidate drops the cached tree. Call it after anything that may change
// the screen.
func (c *TreeCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.elements = nil
}
