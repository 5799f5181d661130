package meta

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CachesPerType(t *testing.T) {
	r := NewRegistry()

	first, err := r.FindForType(reflect.TypeOf(account{}))
	require.NoError(t, err)
	second, err := r.FindForType(reflect.TypeOf(account{}))
	require.NoError(t, err)

	assert.Same(t, first, second, "cached lookup must return the memoized entry")
}

func TestRegistry_PointerTypesShareEntry(t *testing.T) {
	r := NewRegistry()

	byValue, err := r.FindForType(reflect.TypeOf(account{}))
	require.NoError(t, err)
	byPointer, err := r.FindForType(reflect.TypeOf(&account{}))
	require.NoError(t, err)

	assert.Same(t, byValue, byPointer)
}

func TestRegistry_CacheDisabled(t *testing.T) {
	r := NewRegistry()
	r.SetCacheEnabled(false)
	assert.False(t, r.CacheEnabled())

	first, err := r.FindForType(reflect.TypeOf(account{}))
	require.NoError(t, err)
	second, err := r.FindForType(reflect.TypeOf(account{}))
	require.NoError(t, err)

	assert.NotSame(t, first, second, "disabled cache must build fresh metadata")
}

func TestRegistry_NonStructType(t *testing.T) {
	r := NewRegistry()

	_, err := r.FindForType(reflect.TypeOf(42))
	require.Error(t, err)
	var me *MetaError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeUnsupportedType, me.Code)
}

func TestRegistry_ConcurrentPopulation(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	results := make([]*TypeMeta, 16)
	for i := range results {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			tm, err := r.FindForType(reflect.TypeOf(account{}))
			assert.NoError(t, err)
			results[slot] = tm
		}(i)
	}
	wg.Wait()

	// All goroutines observe usable metadata; the retained entry is the
	// last completed build.
	final, err := r.FindForType(reflect.TypeOf(account{}))
	require.NoError(t, err)
	for _, tm := range results {
		require.NotNil(t, tm)
		assert.Equal(t, final.ReadableNames(), tm.ReadableNames())
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()

	first, err := r.FindForType(reflect.TypeOf(account{}))
	require.NoError(t, err)
	r.Clear()
	second, err := r.FindForType(reflect.TypeOf(account{}))
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}
