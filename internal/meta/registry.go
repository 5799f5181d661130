package meta

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Registry is the process-wide cache of TypeMeta, mapping struct types to
// their resolved property metadata.
//
// The registry is shared by every executor in the process and is safe for
// concurrent reads and lazy concurrent population. Two goroutines racing to
// build metadata for the same not-yet-cached type may build redundantly; the
// last completed store wins and both results are equivalent, so the race is
// benign rather than an error. The map itself is never corrupted.
//
// Lifecycle: initialized empty, optionally disabled, never torn down;
// entries live until process exit or an explicit Clear.
type Registry struct {
	cacheEnabled atomic.Bool
	types        sync.Map // reflect.Type -> *TypeMeta
}

// NewRegistry creates a registry with caching enabled.
func NewRegistry() *Registry {
	r := &Registry{}
	r.cacheEnabled.Store(true)
	return r
}

// CacheEnabled reports whether type metadata is memoized.
func (r *Registry) CacheEnabled() bool {
	return r.cacheEnabled.Load()
}

// SetCacheEnabled toggles memoization. Disabling does not drop existing
// entries; it only bypasses them.
func (r *Registry) SetCacheEnabled(enabled bool) {
	r.cacheEnabled.Store(enabled)
}

// FindForType returns the property metadata for a struct type, building it
// on first use. Pointer types are dereferenced; any other non-struct kind is
// an unsupported-type error.
func (r *Registry) FindForType(t reflect.Type) (*TypeMeta, error) {
	if t == nil {
		return nil, &MetaError{
			Code:    ErrCodeUnsupportedType,
			Message: "cannot build metadata for nil type",
		}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &MetaError{
			Code:    ErrCodeUnsupportedType,
			Message: "metadata requires a struct type, got " + t.Kind().String(),
			Type:    t.String(),
		}
	}
	if !r.cacheEnabled.Load() {
		return newTypeMeta(t)
	}
	if cached, ok := r.types.Load(t); ok {
		return cached.(*TypeMeta), nil
	}
	m, err := newTypeMeta(t)
	if err != nil {
		return nil, err
	}
	// Concurrent builders may both reach here; last store wins.
	r.types.Store(t, m)
	return m, nil
}

// Clear drops every memoized entry.
func (r *Registry) Clear() {
	r.types.Range(func(k, _ any) bool {
		r.types.Delete(k)
		return true
	})
}
