package exec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/remap/internal/mapping"
	"github.com/roach88/remap/internal/meta"
)

func bindStatement(props ...string) *mapping.BoundSQL {
	mappings := make([]mapping.ParameterMapping, len(props))
	for i, p := range props {
		mappings[i] = mapping.ParameterMapping{Property: p, Mode: mapping.ModeIn}
	}
	return &mapping.BoundSQL{SQL: "irrelevant", Mappings: mappings}
}

func TestParameterValue_ResolutionOrder(t *testing.T) {
	registry := meta.NewRegistry()

	t.Run("additional parameter wins over everything", func(t *testing.T) {
		bound := bindStatement("id")
		bound.SetAdditionalParameter("id", 99)
		v, err := ParameterValue(bound, "id", map[string]any{"id": 1}, registry)
		require.NoError(t, err)
		assert.Equal(t, 99, v)
	})

	t.Run("nil parameter yields nil", func(t *testing.T) {
		v, err := ParameterValue(bindStatement("id"), "id", nil, registry)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("scalar parameter is the value itself", func(t *testing.T) {
		v, err := ParameterValue(bindStatement("id"), "id", 7, registry)
		require.NoError(t, err)
		assert.Equal(t, 7, v)

		now := time.Now()
		v, err = ParameterValue(bindStatement("at"), "at", now, registry)
		require.NoError(t, err)
		assert.Equal(t, now, v)
	})

	t.Run("map parameter resolves by key", func(t *testing.T) {
		v, err := ParameterValue(bindStatement("name"), "name",
			map[string]any{"name": "ada"}, registry)
		require.NoError(t, err)
		assert.Equal(t, "ada", v)
	})

	t.Run("struct parameter resolves by property", func(t *testing.T) {
		v, err := ParameterValue(bindStatement("bio"), "bio",
			&author{Bio: "a bio"}, registry)
		require.NoError(t, err)
		assert.Equal(t, "a bio", v)
	})

	t.Run("missing struct property is an error", func(t *testing.T) {
		_, err := ParameterValue(bindStatement("ghost"), "ghost",
			&author{}, registry)
		require.Error(t, err)
		assert.True(t, meta.IsPropertyNotFound(err))
	})
}

func TestBindArgs_SkipsOutParameters(t *testing.T) {
	registry := meta.NewRegistry()
	bound := &mapping.BoundSQL{
		SQL: "CALL tally(?, ?)",
		Mappings: []mapping.ParameterMapping{
			{Property: "id", Mode: mapping.ModeIn},
			{Property: "total", Mode: mapping.ModeOut},
			{Property: "hint", Mode: mapping.ModeInOut},
		},
	}

	args, err := BindArgs(bound, map[string]any{"id": 1, "total": 5, "hint": "h"}, registry)
	require.NoError(t, err)
	assert.Equal(t, []any{1, "h"}, args, "OUT parameters are never bound")
}
