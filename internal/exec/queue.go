package exec

import (
	"fmt"
	"reflect"

	"github.com/roach88/remap/internal/meta"
)

// DeferredLoad captures a pending assignment of a lazily resolved value onto
// a target object's property. Loads are created while mapping nested
// associations; if the referenced data is already materialized they resolve
// immediately, otherwise they wait on the queue until the outermost query
// completes.
type DeferredLoad struct {
	target     *meta.Object
	property   string
	key        *CacheKey
	targetType reflect.Type
	cache      *LocalCache
}

// NewDeferredLoad creates a load bound to the given local cache.
func NewDeferredLoad(target *meta.Object, property string, key *CacheKey, targetType reflect.Type, cache *LocalCache) *DeferredLoad {
	return &DeferredLoad{
		target:     target,
		property:   property,
		key:        key,
		targetType: targetType,
		cache:      cache,
	}
}

// CanLoad reports whether the referenced data is materialized: not absent
// and not a pending placeholder.
func (l *DeferredLoad) CanLoad() bool {
	return l.cache.Get(l.key).State == EntryMaterialized
}

// Load extracts the value from the materialized cache entry per the target
// type and invokes the property setter. Callers must not invoke Load while
// the entry is still absent or pending.
func (l *DeferredLoad) Load() error {
	entry := l.cache.Get(l.key)
	value, err := extractResult(entry.Rows, l.targetType)
	if err != nil {
		return err
	}
	return l.target.Set(l.property, value)
}

// extractResult reduces cached rows to the shape the target type expects:
// slice-valued targets take the whole sequence, single-valued targets take
// the first row, or nil when empty.
func extractResult(rows []any, targetType reflect.Type) (any, error) {
	if targetType != nil && targetType.Kind() == reflect.Slice {
		elem := targetType.Elem()
		out := reflect.MakeSlice(targetType, 0, len(rows))
		for _, row := range rows {
			rv, err := sliceElem(row, elem)
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, rv)
		}
		return out.Interface(), nil
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func sliceElem(row any, elem reflect.Type) (reflect.Value, error) {
	if row == nil {
		return reflect.Zero(elem), nil
	}
	rv := reflect.ValueOf(row)
	if rv.Type().AssignableTo(elem) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(elem) {
		return rv.Convert(elem), nil
	}
	return reflect.Value{}, &ExecError{
		Code:    ErrCodeResultExtraction,
		Message: fmt.Sprintf("cannot use row of type %s in slice of %s", rv.Type(), elem),
	}
}

// DeferredQueue is the FIFO queue of pending loads owned by an executor.
// Loads belong to the queue until drained, then are discarded.
type DeferredQueue struct {
	loads []*DeferredLoad
}

// NewDeferredQueue creates an empty queue.
func NewDeferredQueue() *DeferredQueue {
	return &DeferredQueue{}
}

// Enqueue appends a load to the back of the queue.
func (q *DeferredQueue) Enqueue(load *DeferredLoad) {
	q.loads = append(q.loads, load)
}

// IsEmpty reports whether the queue holds no pending loads.
func (q *DeferredQueue) IsEmpty() bool { return len(q.loads) == 0 }

// Len returns the number of pending loads.
func (q *DeferredQueue) Len() int { return len(q.loads) }

// DrainAll resolves every pending load in enqueue order. The queue is
// emptied even when a load fails; the first failure is returned and the
// remaining loads are discarded with it.
func (q *DeferredQueue) DrainAll() error {
	loads := q.loads
	q.loads = nil
	for _, l := range loads {
		if err := l.Load(); err != nil {
			return err
		}
	}
	return nil
}
