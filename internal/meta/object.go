package meta

import "reflect"

// Object gives name-based property access over an arbitrary value-object,
// dispatching through its cached TypeMeta. Names resolve case-insensitively
// to their canonical property.
type Object struct {
	ptr  reflect.Value // non-nil pointer to the underlying struct
	meta *TypeMeta
}

// NewObject wraps a value for property access. The value must be a non-nil
// pointer to a struct; a plain struct value would not be settable.
func NewObject(value any, registry *Registry) (*Object, error) {
	v := reflect.ValueOf(value)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, &MetaError{
			Code:    ErrCodeUnsupportedType,
			Message: "property access requires a non-nil struct pointer",
		}
	}
	tm, err := registry.FindForType(v.Type())
	if err != nil {
		return nil, err
	}
	return &Object{ptr: v, meta: tm}, nil
}

// Meta returns the wrapped value's type metadata.
func (o *Object) Meta() *TypeMeta { return o.meta }

// Value returns the wrapped pointer.
func (o *Object) Value() any { return o.ptr.Interface() }

// Get reads the property for any case variant of name.
func (o *Object) Get(name string) (any, error) {
	canonical, ok := o.meta.FindPropertyName(name)
	if !ok {
		return nil, newPropertyNotFoundError(o.meta.Type().String(), name)
	}
	getter, err := o.meta.Getter(canonical)
	if err != nil {
		return nil, err
	}
	return getter.Get(o.ptr)
}

// Set writes the property for any case variant of name.
func (o *Object) Set(name string, value any) error {
	canonical, ok := o.meta.FindPropertyName(name)
	if !ok {
		return newPropertyNotFoundError(o.meta.Type().String(), name)
	}
	setter, err := o.meta.Setter(canonical)
	if err != nil {
		return err
	}
	return setter.Set(o.ptr, value)
}

// HasProperty reports whether any case variant of name resolves.
func (o *Object) HasProperty(name string) bool {
	_, ok := o.meta.FindPropertyName(name)
	return ok
}
