package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethodToProperty(t *testing.T) {
	tests := []struct {
		method string
		want   string
		ok     bool
	}{
		{"GetName", "name", true},
		{"SetName", "name", true},
		{"IsActive", "active", true},
		{"GetURL", "URL", true},
		{"GetID", "ID", true},
		{"GetX", "x", true},
		{"IsOK", "OK", true},
		{"Name", "", false},
		{"Get", "", false},
		{"Is", "", false},
		{"Set", "", false},
		{"Fetch", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got, ok := MethodToProperty(tt.method)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsGetterName(t *testing.T) {
	assert.True(t, IsGetterName("GetName"))
	assert.True(t, IsGetterName("IsActive"))
	assert.False(t, IsGetterName("Get"))
	assert.False(t, IsGetterName("Is"))
	assert.False(t, IsGetterName("SetName"))
	assert.False(t, IsGetterName("Fetch"))
}

func TestIsSetterName(t *testing.T) {
	assert.True(t, IsSetterName("SetName"))
	assert.False(t, IsSetterName("Set"))
	assert.False(t, IsSetterName("GetName"))
}
