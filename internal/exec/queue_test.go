package exec

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/remap/internal/meta"
)

type author struct {
	ID    int
	Bio   string
	Posts []string
}

func wrapTarget(t *testing.T, v any) *meta.Object {
	t.Helper()
	obj, err := meta.NewObject(v, meta.NewRegistry())
	require.NoError(t, err)
	return obj
}

func TestDeferredLoad_CanLoad(t *testing.T) {
	cache := NewLocalCache()
	key := NewCacheKey("stmt", 1)
	load := NewDeferredLoad(wrapTarget(t, &author{}), "Bio", key, reflect.TypeOf(""), cache)

	assert.False(t, load.CanLoad(), "absent entry is not loadable")

	cache.PutPlaceholder(key)
	assert.False(t, load.CanLoad(), "pending placeholder is not loadable")

	cache.Put(key, []any{"a bio"})
	assert.True(t, load.CanLoad())
}

func TestDeferredLoad_SingleValuedTarget(t *testing.T) {
	cache := NewLocalCache()
	key := NewCacheKey("stmt", 1)
	target := &author{}

	cache.Put(key, []any{"a bio"})
	load := NewDeferredLoad(wrapTarget(t, target), "Bio", key, reflect.TypeOf(""), cache)
	require.NoError(t, load.Load())
	assert.Equal(t, "a bio", target.Bio)
}

func TestDeferredLoad_EmptyResultYieldsZero(t *testing.T) {
	cache := NewLocalCache()
	key := NewCacheKey("stmt", 1)
	target := &author{Bio: "stale"}

	cache.Put(key, []any{})
	load := NewDeferredLoad(wrapTarget(t, target), "Bio", key, reflect.TypeOf(""), cache)
	require.NoError(t, load.Load())
	assert.Equal(t, "", target.Bio)
}

func TestDeferredLoad_SliceValuedTarget(t *testing.T) {
	cache := NewLocalCache()
	key := NewCacheKey("stmt", 1)
	target := &author{}

	cache.Put(key, []any{"first", "second"})
	load := NewDeferredLoad(wrapTarget(t, target), "Posts", key, reflect.TypeOf([]string{}), cache)
	require.NoError(t, load.Load())
	assert.Equal(t, []string{"first", "second"}, target.Posts)
}

func TestDeferredLoad_MultiRowSingleTargetTakesFirst(t *testing.T) {
	cache := NewLocalCache()
	key := NewCacheKey("stmt", 1)
	target := &author{}

	cache.Put(key, []any{"bio1", "bio2"})
	load := NewDeferredLoad(wrapTarget(t, target), "Bio", key, reflect.TypeOf(""), cache)
	require.NoError(t, load.Load())
	assert.Equal(t, "bio1", target.Bio, "single-valued target takes the first row")
}

func TestDeferredLoad_SliceElementMismatch(t *testing.T) {
	cache := NewLocalCache()
	key := NewCacheKey("stmt", 1)

	cache.Put(key, []any{struct{ X int }{1}})
	load := NewDeferredLoad(wrapTarget(t, &author{}), "Posts", key, reflect.TypeOf([]string{}), cache)
	err := load.Load()
	require.Error(t, err)
	var ee *ExecError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrCodeResultExtraction, ee.Code)
}

func TestDeferredQueue_DrainsInEnqueueOrder(t *testing.T) {
	cache := NewLocalCache()
	q := NewDeferredQueue()

	t1, t2 := &author{}, &author{}
	k1 := NewCacheKey("stmt", 1)
	k2 := NewCacheKey("stmt", 2)
	k3 := NewCacheKey("stmt", 3)
	cache.Put(k1, []any{"bio one"})
	cache.Put(k2, []any{"bio two"})
	cache.Put(k3, []any{"bio two revised"})

	q.Enqueue(NewDeferredLoad(wrapTarget(t, t1), "Bio", k1, reflect.TypeOf(""), cache))
	q.Enqueue(NewDeferredLoad(wrapTarget(t, t2), "Bio", k2, reflect.TypeOf(""), cache))
	// Same target and property as the second load: enqueue order decides
	// which write lands last.
	q.Enqueue(NewDeferredLoad(wrapTarget(t, t2), "Bio", k3, reflect.TypeOf(""), cache))

	require.Equal(t, 3, q.Len())
	require.NoError(t, q.DrainAll())

	assert.Equal(t, "bio one", t1.Bio)
	assert.Equal(t, "bio two revised", t2.Bio, "later load must overwrite earlier one")
	assert.True(t, q.IsEmpty())
}

func TestDeferredQueue_DrainEmptiesOnError(t *testing.T) {
	cache := NewLocalCache()
	q := NewDeferredQueue()

	bad := NewCacheKey("stmt", 1)
	cache.Put(bad, []any{struct{ X int }{1}}) // not convertible to string
	q.Enqueue(NewDeferredLoad(wrapTarget(t, &author{}), "Posts", bad, reflect.TypeOf([]string{}), cache))

	require.Error(t, q.DrainAll())
	assert.True(t, q.IsEmpty(), "a failed drain must not leave loads behind")
}
