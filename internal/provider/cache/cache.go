package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"stockquote/internal/quote"
)

// entry stores one cached snapshot with expiry.
type entry struct {
	expiresAt time.Time
	q         *quote.Quote
}

// Provider caches snapshots per symbol for a TTL. Concurrent refreshes of
// the same symbol are coalesced into one upstream call. When the upstream
// fails and a stale snapshot exists, the stale snapshot is served instead.
type Provider struct {
	P        quote.Provider
	TTL      time.Duration
	MaxItems int

	mu    sync.RWMutex
	items map[string]entry

	sf singleflight.Group
}

func (c *Provider) Name() string { return c.P.Name() }

func (c *Provider) Fetch(ctx context.Context, symbol string) (*quote.Quote, error) {
	if c.TTL <= 0 {
		return c.P.Fetch(ctx, symbol)
	}

	now := time.Now()

	c.mu.RLock()
	e, ok := c.items[symbol]
	c.mu.RUnlock()
	if ok && now.Before(e.expiresAt) {
		return e.q, nil
	}

	v, err, _ := c.sf.Do(symbol, func() (any, error) {
		// Re-check: another caller may have refreshed while we waited.
		c.mu.RLock()
		e2, ok2 := c.items[symbol]
		c.mu.RUnlock()
		if ok2 && time.Now().Before(e2.expiresAt) {
			return e2.q, nil
		}

		// The outcome is shared across coalesced callers, so the refresh
		// must not die with the first caller's context.
		q, err := c.P.Fetch(context.WithoutCancel(ctx), symbol)
		if err != nil {
			return nil, err
		}
		c.store(symbol, q)
		return q, nil
	})
	if err != nil {
		// Serve stale rather than failing entirely.
		if ok {
			return e.q, nil
		}
		return nil, err
	}
	return v.(*quote.Quote), nil
}

func (c *Provider) store(symbol string, q *quote.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]entry)
	}
	c.items[symbol] = entry{expiresAt: time.Now().Add(c.TTL), q: q}

	// best-effort cap: drop expired entries first, then arbitrary ones
	if c.MaxItems > 0 && len(c.items) > c.MaxItems {
		now := time.Now()
		for k, v := range c.items {
			if k == symbol {
				continue
			}
			if now.After(v.expiresAt) {
				delete(c.items, k)
			}
			if len(c.items) <= c.MaxItems {
				return
			}
		}
		for k := range c.items {
			if k == symbol {
				continue
			}
			if len(c.items) <= c.MaxItems {
				return
			}
			delete(c.items, k)
		}
	}
}
