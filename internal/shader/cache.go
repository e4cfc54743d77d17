package shader

// ProgramCache deduplicates linked programs by content. It is created by the
// renderer at startup and passed to every NewProgram; there is no ambient
// package-level instance. Single rendering thread only.
//
// Ownership rule: the cache owns every native handle it maps. A program
// disposes a handle it holds only when the cache does not (see
// Program.Reload and Program.Release); Release tears the rest down at
// renderer shutdown.
type ProgramCache struct {
	enabled bool
	entries map[cacheKey]uint32
}

// cacheKey pairs the content hash with the total source byte length, which
// removes the cheapest hash-collision class (differing inputs of different
// sizes).
type cacheKey struct {
	hash uint32
	size int
}

func NewProgramCache(enabled bool) *ProgramCache {
	return &ProgramCache{
		enabled: enabled,
		entries: make(map[cacheKey]uint32),
	}
}

// Enabled reports whether lookups are consulted at all; a disabled cache
// forces a full recompile on every reload.
func (c *ProgramCache) Enabled() bool { return c.enabled }

// Find returns the native handle previously linked for this content, or 0.
func (c *ProgramCache) Find(hash uint32, size int) uint32 {
	if !c.enabled {
		return 0
	}
	return c.entries[cacheKey{hash, size}]
}

// Push registers a handle under a content key. It refuses the null handle
// and never displaces an existing entry; a false return tells the caller it
// still owns the handle it holds.
func (c *ProgramCache) Push(hash uint32, size int, id uint32) bool {
	if !c.enabled || id == 0 {
		return false
	}

	key := cacheKey{hash, size}
	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = id
	return true
}

// Holds reports whether the cache owns this native handle under any key.
func (c *ProgramCache) Holds(id uint32) bool {
	if id == 0 {
		return false
	}
	for _, cached := range c.entries {
		if cached == id {
			return true
		}
	}
	return false
}

// Release destroys every cached program. Call once at renderer shutdown,
// after all Program objects are released.
func (c *ProgramCache) Release(b Backend) {
	for key, id := range c.entries {
		b.DeleteProgram(id)
		delete(c.entries, key)
	}
}

func (c *ProgramCache) Len() int { return len(c.entries) }
