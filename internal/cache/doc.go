// Package cache provides a small generic LRU map.
//
// Cache[K, V] keeps at most Capacity entries and drops the least recently
// used one when a new key would exceed it. The text source keys its
// renderings by content:
//
//	c := cache.New[textKey, *render.Texture](8)
//	tex := c.GetOrCreate(key, func() *render.Texture { return rc.TextureFromText(...) })
//
// Dropped values are only unreferenced; anything still holding one keeps
// it alive.
package cache
