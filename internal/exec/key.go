package exec

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"strings"
)

const (
	keyHashSeed       = 17
	keyHashMultiplier = 37

	// nilComponentHash is the fixed contribution of a nil part.
	nilComponentHash = 1
)

// CacheKey is an ordered, append-only composite fingerprint used as an
// exact-match cache lookup key.
//
// Two keys are equal iff the same sequence of values was appended in the
// same order. The hash is incremental (hash*37 + componentHash per append)
// and consistent with equality, but equality never trusts the hash alone:
// the full part sequence is compared pairwise to rule out collisions.
//
// A key is created fresh per logical request and must not be appended to
// once it has been used for a cache lookup or insert.
type CacheKey struct {
	hash     uint64
	checksum uint64
	parts    []any
}

// NewCacheKey creates a key and appends the given parts in order.
func NewCacheKey(parts ...any) *CacheKey {
	k := &CacheKey{hash: keyHashSeed}
	k.Append(parts...)
	return k
}

// Append folds one or more values into the fingerprint. Nil values are
// legal and contribute a fixed sentinel hash.
func (k *CacheKey) Append(parts ...any) {
	for _, p := range parts {
		ch := componentHash(p)
		k.checksum += ch
		k.hash = k.hash*keyHashMultiplier + ch
		k.parts = append(k.parts, p)
	}
}

// Count returns the number of appended parts.
func (k *CacheKey) Count() int { return len(k.parts) }

// Hash returns the running hash.
func (k *CacheKey) Hash() uint64 { return k.hash }

// Equals reports value equality: counts, hashes, checksums, and every part
// pairwise in order.
func (k *CacheKey) Equals(other *CacheKey) bool {
	if other == nil {
		return false
	}
	if k == other {
		return true
	}
	if k.hash != other.hash || k.checksum != other.checksum || len(k.parts) != len(other.parts) {
		return false
	}
	for i, p := range k.parts {
		if !partEqual(p, other.parts[i]) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy that can be appended to without
// affecting the original.
func (k *CacheKey) Clone() *CacheKey {
	return &CacheKey{
		hash:     k.hash,
		checksum: k.checksum,
		parts:    append([]any(nil), k.parts...),
	}
}

// String renders the key for logs: hash, checksum, then each part.
func (k *CacheKey) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d", k.hash, k.checksum)
	for _, p := range k.parts {
		fmt.Fprintf(&b, ":%v", p)
	}
	return b.String()
}

// componentHash hashes a single part. The hash covers the dynamic type and
// the formatted value, so 1 (int) and "1" (string) contribute differently.
func componentHash(p any) uint64 {
	if p == nil {
		return nilComponentHash
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%T\x00%v", p, p)
	return h.Sum64()
}

// partEqual compares two appended values. DeepEqual covers scalars, byte
// slices, and the occasional composite bind value uniformly.
func partEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}
