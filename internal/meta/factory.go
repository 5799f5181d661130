package meta

import "reflect"

// ObjectFactory materializes result objects from their reflect type.
type ObjectFactory interface {
	// Create returns a freshly constructed, settable instance: a *T for a
	// struct type T, an empty slice or map for collection types.
	Create(t reflect.Type) (any, error)
}

// DefaultObjectFactory constructs objects via their zero value. Struct types
// yield a pointer so properties are settable; kinds with no meaningful
// default construction are construction-unsupported errors.
type DefaultObjectFactory struct{}

// Create implements ObjectFactory.
func (DefaultObjectFactory) Create(t reflect.Type) (any, error) {
	if t == nil {
		return nil, &MetaError{
			Code:    ErrCodeConstructionUnsupported,
			Message: "cannot construct a nil type",
		}
	}
	switch t.Kind() {
	case reflect.Pointer:
		inner, err := DefaultObjectFactory{}.Create(t.Elem())
		if err != nil {
			return nil, err
		}
		return inner, nil
	case reflect.Struct:
		return reflect.New(t).Interface(), nil
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0).Interface(), nil
	case reflect.Map:
		return reflect.MakeMap(t).Interface(), nil
	default:
		return nil, &MetaError{
			Code:    ErrCodeConstructionUnsupported,
			Message: "no default construction for kind " + t.Kind().String(),
			Type:    t.String(),
		}
	}
}
