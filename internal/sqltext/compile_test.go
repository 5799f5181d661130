package sqltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/remap/internal/mapping"
)

func TestCompile_NoMarkers(t *testing.T) {
	sql, mappings, err := Compile("SELECT * FROM users")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users", sql)
	assert.Empty(t, mappings)
}

func TestCompile_MarkersInOrder(t *testing.T) {
	sql, mappings, err := Compile("SELECT * FROM users WHERE name = #{name} AND age > #{minAge}")
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM users WHERE name = ? AND age > ?", sql)
	require.Len(t, mappings, 2)
	assert.Equal(t, mapping.ParameterMapping{Property: "name", Mode: mapping.ModeIn}, mappings[0])
	assert.Equal(t, mapping.ParameterMapping{Property: "minAge", Mode: mapping.ModeIn}, mappings[1])

	// Values are parameterized, never interpolated.
	assert.NotContains(t, sql, "#{")
}

func TestCompile_ModeAttribute(t *testing.T) {
	sql, mappings, err := Compile("CALL tally(#{id}, #{total, mode=OUT}, #{hint,mode=inout})")
	require.NoError(t, err)

	assert.Equal(t, "CALL tally(?, ?, ?)", sql)
	require.Len(t, mappings, 3)
	assert.Equal(t, mapping.ModeIn, mappings[0].Mode)
	assert.Equal(t, mapping.ModeOut, mappings[1].Mode)
	assert.Equal(t, mapping.ModeInOut, mappings[2].Mode)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{"unterminated marker", "SELECT #{id FROM t"},
		{"empty marker", "SELECT #{} FROM t"},
		{"bad mode", "SELECT #{id,mode=SIDEWAYS} FROM t"},
		{"unknown attribute", "SELECT #{id,typ=int} FROM t"},
		{"malformed attribute", "SELECT #{id,mode} FROM t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Compile(tt.template)
			assert.Error(t, err)
		})
	}
}
