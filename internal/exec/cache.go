package exec

// EntryState distinguishes the three states a fingerprint can be in.
// A distinct pending state (rather than an overloaded nil) is what lets
// nested queries tell "fetch in flight" apart from "absent" and
// "present but empty".
type EntryState int

const (
	// EntryAbsent means no entry exists for the key.
	EntryAbsent EntryState = iota
	// EntryPending means a fetch for the key is in flight; the entry is a
	// placeholder, not a result.
	EntryPending
	// EntryMaterialized means the entry holds fetched rows (possibly an
	// empty list).
	EntryMaterialized
)

// Entry is the value side of a local cache lookup.
type Entry struct {
	State EntryState
	Rows  []any
}

type cacheSlot struct {
	key   *CacheKey
	entry Entry
}

type outputSlot struct {
	key   *CacheKey
	param any
}

// LocalCache is the session-local result cache: a mapping from CacheKey to
// pending or materialized results, plus a side table for output parameters
// captured from callable statements.
//
// Keys are bucketed by hash and disambiguated by full key equality, so hash
// collisions cannot alias entries. The cache enforces no placeholder
// discipline of its own; inserting, replacing, and removing placeholders is
// the executor's contract.
type LocalCache struct {
	slots   map[uint64][]cacheSlot
	outputs map[uint64][]outputSlot
}

// NewLocalCache creates an empty cache.
func NewLocalCache() *LocalCache {
	return &LocalCache{
		slots:   make(map[uint64][]cacheSlot),
		outputs: make(map[uint64][]outputSlot),
	}
}

// Get returns the entry for key. Absent lookups return a zero Entry; there
// are no side effects.
func (c *LocalCache) Get(key *CacheKey) Entry {
	for _, s := range c.slots[key.Hash()] {
		if s.key.Equals(key) {
			return s.entry
		}
	}
	return Entry{State: EntryAbsent}
}

// PutPlaceholder marks a fetch in flight for key, overwriting any existing
// entry.
func (c *LocalCache) PutPlaceholder(key *CacheKey) {
	c.put(key, Entry{State: EntryPending})
}

// Put stores materialized rows for key, overwriting any existing entry.
func (c *LocalCache) Put(key *CacheKey, rows []any) {
	c.put(key, Entry{State: EntryMaterialized, Rows: rows})
}

func (c *LocalCache) put(key *CacheKey, entry Entry) {
	bucket := c.slots[key.Hash()]
	for i, s := range bucket {
		if s.key.Equals(key) {
			bucket[i].entry = entry
			return
		}
	}
	c.slots[key.Hash()] = append(bucket, cacheSlot{key: key, entry: entry})
}

// Remove deletes the entry for key, if any.
func (c *LocalCache) Remove(key *CacheKey) {
	bucket := c.slots[key.Hash()]
	for i, s := range bucket {
		if s.key.Equals(key) {
			c.slots[key.Hash()] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

// Clear empties the cache and the output-parameter side table.
func (c *LocalCache) Clear() {
	c.slots = make(map[uint64][]cacheSlot)
	c.outputs = make(map[uint64][]outputSlot)
}

// Size returns the number of cached entries, pending ones included.
func (c *LocalCache) Size() int {
	n := 0
	for _, bucket := range c.slots {
		n += len(bucket)
	}
	return n
}

// PutOutput captures the parameter object that carried output values for a
// callable statement, keyed by the statement's fingerprint.
func (c *LocalCache) PutOutput(key *CacheKey, param any) {
	bucket := c.outputs[key.Hash()]
	for i, s := range bucket {
		if s.key.Equals(key) {
			bucket[i].param = param
			return
		}
	}
	c.outputs[key.Hash()] = append(bucket, outputSlot{key: key, param: param})
}

// Output returns the captured output-parameter object for key.
func (c *LocalCache) Output(key *CacheKey) (any, bool) {
	for _, s := range c.outputs[key.Hash()] {
		if s.key.Equals(key) {
			return s.param, true
		}
	}
	return nil, false
}
