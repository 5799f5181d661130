package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundSQL_AdditionalParametersAreCallLocal(t *testing.T) {
	st := &Statement{
		ID:       "s1",
		Kind:     KindSelect,
		SQL:      "SELECT 1 WHERE a = ?",
		Mappings: []ParameterMapping{{Property: "a", Mode: ModeIn}},
	}

	first := st.BoundSQL()
	first.SetAdditionalParameter("a", 42)
	require.True(t, first.HasAdditionalParameter("a"))
	assert.Equal(t, 42, first.AdditionalParameter("a"))

	second := st.BoundSQL()
	assert.False(t, second.HasAdditionalParameter("a"),
		"a fresh binding must not see another call's ad-hoc values")
	assert.Nil(t, second.AdditionalParameter("a"))
}

func TestDefaultRowBounds(t *testing.T) {
	bounds := DefaultRowBounds()
	assert.Equal(t, 0, bounds.Offset)
	assert.Equal(t, NoRowLimit, bounds.Limit)
}

func TestValidKindAndModeSets(t *testing.T) {
	assert.True(t, ValidStatementKinds[KindSelect])
	assert.False(t, ValidStatementKinds["upsert"])
	assert.True(t, ValidParameterModes[ModeInOut])
	assert.False(t, ValidParameterModes["SIDEWAYS"])
}
