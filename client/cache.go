package client

import "sync"

// responseCache keeps response bodies by URL until one of their tags is
// revalidated.
type responseCache struct {
	mu     sync.Mutex
	bodies map[string][]byte
	tags   map[string]map[string]struct{}
}

func newResponseCache() *responseCache {
	return &responseCache{
		bodies: make(map[string][]byte),
		tags:   make(map[string]map[string]struct{}),
	}
}

func (c *responseCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.bodies[key]
	return body, ok
}

func (c *responseCache) put(key string, body []byte, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies[key] = body
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// revalidate drops the responses tagged with tag and reports how many.
func (c *responseCache) revalidate(tag string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := c.tags[tag]
	for key := range keys {
		delete(c.bodies, key)
	}
	delete(c.tags, tag)
	return len(keys)
}
