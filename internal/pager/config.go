package pager

// Config holds the tunable knobs for a Pager, set via functional options
// the way the rest of litescan configures its components.
type Config struct {
	// CacheLimit bounds how many decoded pages the Pager keeps in memory
	// before evicting the least recently used one. Zero means unbounded.
	CacheLimit int
}

// Option configures a Pager at construction time.
type Option func(*Config)

// WithCacheLimit caps the number of pages kept in the Pager's cache.
func WithCacheLimit(n int) Option {
	return func(c *Config) {
		c.CacheLimit = n
	}
}

func defaultConfig() *Config {
	return &Config{CacheLimit: 0}
}
