// Package cache provides the bounded LRU used for composed shader programs.
//
// Evicted values are handed to an eviction callback so their GL objects can
// be queued for deferred deletion instead of leaking.
//
//	c := cache.New[string, *state.Program](64)
//	c.OnEvict(func(key string, p *state.Program) { p.Release() })
//	p := c.GetOrCreate(key, compose)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
