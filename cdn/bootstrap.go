package cdn

import "sync"

// Bootstrap is the Ribbit-discovered CDN configuration for one product: its
// ordered server list plus the path fragments every content URL is built
// from.
type Bootstrap struct {
	Servers []Server
	// CDNPath is the product's CDN path fragment (e.g. "tpr/wow"), never
	// hardcoded — always sourced from bootstrap discovery.
	CDNPath string
	// ConfigPath is the path ProductConfig URLs use directly in place of
	// CDNPath/subdir, typically "tpr/configs/data".
	ConfigPath string
	// MaxHosts caps how many servers from Servers a Pool will use, 0
	// meaning no cap.
	MaxHosts int
}

// ProductPathCache maps product name to its discovered Bootstrap, so the
// CDN path for a product is always looked up rather than assumed.
type ProductPathCache struct {
	mu   sync.RWMutex
	data map[string]Bootstrap
}

// NewProductPathCache returns an empty cache.
func NewProductPathCache() *ProductPathCache {
	return &ProductPathCache{data: make(map[string]Bootstrap)}
}

// Set records product's bootstrap configuration.
func (c *ProductPathCache) Set(product string, b Bootstrap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[product] = b
}

// Get returns product's bootstrap configuration, or false if it has not
// been discovered yet.
func (c *ProductPathCache) Get(product string) (Bootstrap, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.data[product]
	return b, ok
}
