package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "cache_demo.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "cache_demo", s.Name)
	assert.Equal(t, "statements.yaml", s.Statements)
	assert.Len(t, s.Flow, 4)
	require.NotNil(t, s.Flow[0].ExpectRows)
	assert.Equal(t, 1, *s.Flow[0].ExpectRows)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing name", "statements: s.yaml\nflow:\n  - run: x\n"},
		{"missing statements", "name: s\nflow:\n  - run: x\n"},
		{"empty flow", "name: s\nstatements: s.yaml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenario.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o644))
			_, err := LoadScenario(path)
			assert.Error(t, err)
		})
	}
}

func TestRun_CacheDemo(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "cache_demo.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario, filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.Empty(t, result.Failures)
	require.Len(t, result.Trace, 4)

	assert.False(t, *result.Trace[0].Cached, "first read misses")
	assert.True(t, *result.Trace[1].Cached, "repeat read hits")
	assert.Equal(t, int64(1), *result.Trace[2].Affected)
	assert.False(t, *result.Trace[3].Cached, "write invalidates the cache")
}

func TestRun_ExpectationFailureIsRecorded(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "cache_demo.yaml"))
	require.NoError(t, err)

	wrong := 99
	scenario.Flow[0].ExpectRows = &wrong

	result, err := Run(scenario, filepath.Join("testdata", "scenarios"))
	require.NoError(t, err, "expectation mismatches are failures, not errors")
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "expected 99 row(s)")
}

func TestRun_UnknownStatementAborts(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "cache_demo.yaml"))
	require.NoError(t, err)
	scenario.Flow[0].Run = "users.ghost"

	_, err = Run(scenario, filepath.Join("testdata", "scenarios"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users.ghost")
}
