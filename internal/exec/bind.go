package exec

import (
	"time"

	"github.com/roach88/remap/internal/mapping"
	"github.com/roach88/remap/internal/meta"
)

// ParameterValue resolves the bind value for one parameter property. Ad-hoc
// values on the bound SQL win, then a nil parameter object yields nil, then
// a scalar parameter object is itself the value, otherwise the value is read
// from the parameter object by property access (maps by key, structs through
// their metadata).
//
// The same resolution feeds both fingerprint construction and argument
// binding, so a fingerprint always covers exactly the values that would be
// bound.
func ParameterValue(bound *mapping.BoundSQL, property string, param any, registry *meta.Registry) (any, error) {
	switch {
	case bound.HasAdditionalParameter(property):
		return bound.AdditionalParameter(property), nil
	case param == nil:
		return nil, nil
	case isScalarParam(param):
		return param, nil
	}
	if m, ok := param.(map[string]any); ok {
		return m[property], nil
	}
	obj, err := meta.NewObject(param, registry)
	if err != nil {
		return nil, err
	}
	return obj.Get(property)
}

// BindArgs resolves every non-OUT parameter mapping in declaration order.
func BindArgs(bound *mapping.BoundSQL, param any, registry *meta.Registry) ([]any, error) {
	args := make([]any, 0, len(bound.Mappings))
	for _, pm := range bound.Mappings {
		if pm.Mode == mapping.ModeOut {
			continue
		}
		value, err := ParameterValue(bound, pm.Property, param, registry)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}
	return args, nil
}

// isScalarParam reports whether the parameter object is itself a bindable
// value rather than a bag of named properties.
func isScalarParam(param any) bool {
	switch param.(type) {
	case bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		string, []byte, time.Time:
		return true
	}
	return false
}
