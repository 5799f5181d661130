package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCacheScope(t *testing.T) {
	assert.NoError(t, ValidateCacheScope("session"))
	assert.NoError(t, ValidateCacheScope("statement"))
	assert.NoError(t, ValidateCacheScope(""), "empty defaults to session")
	assert.Error(t, ValidateCacheScope("global"))
}

func TestNormalizeCacheScope(t *testing.T) {
	assert.Equal(t, ScopeSession, NormalizeCacheScope(""))
	assert.Equal(t, ScopeSession, NormalizeCacheScope(ScopeSession))
	assert.Equal(t, ScopeStatement, NormalizeCacheScope(ScopeStatement))
}
