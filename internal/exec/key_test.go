package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey_Deterministic(t *testing.T) {
	k1 := NewCacheKey("stmt.findUser", 0, 50, "SELECT * FROM users WHERE id = ?", 7)
	k2 := NewCacheKey("stmt.findUser", 0, 50, "SELECT * FROM users WHERE id = ?", 7)

	assert.True(t, k1.Equals(k2))
	assert.Equal(t, k1.Hash(), k2.Hash())
	assert.Equal(t, k1.Count(), k2.Count())
}

func TestCacheKey_AnyDifferingValueChangesKey(t *testing.T) {
	base := []any{"stmt.findUser", 0, 50, "SELECT * FROM users WHERE id = ?", 7}
	variants := [][]any{
		{"stmt.findOrder", 0, 50, "SELECT * FROM users WHERE id = ?", 7},
		{"stmt.findUser", 10, 50, "SELECT * FROM users WHERE id = ?", 7},
		{"stmt.findUser", 0, 25, "SELECT * FROM users WHERE id = ?", 7},
		{"stmt.findUser", 0, 50, "SELECT * FROM users WHERE id = ? --", 7},
		{"stmt.findUser", 0, 50, "SELECT * FROM users WHERE id = ?", 8},
	}

	k := NewCacheKey(base...)
	for _, v := range variants {
		assert.False(t, k.Equals(NewCacheKey(v...)), "variant %v must not collide", v)
	}
}

func TestCacheKey_OrderMatters(t *testing.T) {
	k1 := NewCacheKey("a", "b")
	k2 := NewCacheKey("b", "a")

	assert.False(t, k1.Equals(k2))
}

func TestCacheKey_NilParts(t *testing.T) {
	k1 := NewCacheKey("stmt", nil, nil)
	k2 := NewCacheKey("stmt", nil, nil)
	k3 := NewCacheKey("stmt", nil)

	assert.True(t, k1.Equals(k2))
	assert.False(t, k1.Equals(k3), "counts differ")
}

func TestCacheKey_TypeDistinguishesParts(t *testing.T) {
	// 1 (int) and "1" (string) must contribute different components.
	k1 := NewCacheKey(1)
	k2 := NewCacheKey("1")

	assert.False(t, k1.Equals(k2))
}

func TestCacheKey_IncrementalAppend(t *testing.T) {
	k1 := NewCacheKey()
	k1.Append("a")
	k1.Append("b", "c")
	k2 := NewCacheKey("a", "b", "c")

	assert.True(t, k1.Equals(k2))
}

func TestCacheKey_Clone(t *testing.T) {
	k := NewCacheKey("a", "b")
	c := k.Clone()
	require.True(t, k.Equals(c))

	c.Append("d")
	assert.False(t, k.Equals(c))
	assert.Equal(t, 2, k.Count(), "clone append must not affect the original")
}

func TestCacheKey_EqualsNil(t *testing.T) {
	k := NewCacheKey("a")
	assert.False(t, k.Equals(nil))
}

func TestCacheKey_String(t *testing.T) {
	k := NewCacheKey("stmt", 1)
	s := k.String()
	assert.Contains(t, s, "stmt")
	assert.Contains(t, s, "1")
}
