package meta

import (
	"fmt"
	"reflect"
)

// Getter reads one property from an instance. The target value passed to Get
// is always a non-nil pointer to the struct the metadata was built for.
type Getter interface {
	Get(target reflect.Value) (any, error)

	// Type is the declared type of the property value.
	Type() reflect.Type
}

// Setter writes one property on an instance. The target value passed to Set
// is always a non-nil pointer to the struct the metadata was built for.
type Setter interface {
	Set(target reflect.Value, value any) error

	// Type is the declared type of the property value.
	Type() reflect.Type
}

// methodGetter invokes a zero-argument accessor method with one return value.
type methodGetter struct {
	index int // method index on the pointer type
	typ   reflect.Type
}

func (g *methodGetter) Get(target reflect.Value) (any, error) {
	out := target.Method(g.index).Call(nil)
	return out[0].Interface(), nil
}

func (g *methodGetter) Type() reflect.Type { return g.typ }

// methodSetter invokes a single-argument accessor method.
type methodSetter struct {
	index int
	typ   reflect.Type
}

func (s *methodSetter) Set(target reflect.Value, value any) error {
	arg, err := coerce(value, s.typ)
	if err != nil {
		return err
	}
	target.Method(s.index).Call([]reflect.Value{arg})
	return nil
}

func (s *methodSetter) Type() reflect.Type { return s.typ }

// fieldAccessor reads and writes an exported struct field directly. The
// index path supports fields promoted from embedded structs.
type fieldAccessor struct {
	index []int
	typ   reflect.Type
}

func (f *fieldAccessor) Get(target reflect.Value) (any, error) {
	return target.Elem().FieldByIndex(f.index).Interface(), nil
}

func (f *fieldAccessor) Set(target reflect.Value, value any) error {
	fv := target.Elem().FieldByIndex(f.index)
	if !fv.CanSet() {
		return newAssignmentError(fmt.Sprintf("field at index %v of %s is not settable", f.index, target.Type()))
	}
	v, err := coerce(value, f.typ)
	if err != nil {
		return err
	}
	fv.Set(v)
	return nil
}

func (f *fieldAccessor) Type() reflect.Type { return f.typ }

// coerce adapts value to the declared property type. Nil maps to the zero
// value; otherwise assignability is tried first, then a lossless reflect
// conversion (covers the driver returning int64 for an int field and the
// like).
func coerce(value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(to), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(to) {
		return v, nil
	}
	if v.Type().ConvertibleTo(to) {
		return v.Convert(to), nil
	}
	return reflect.Value{}, newAssignmentError(fmt.Sprintf("cannot assign %s to property of type %s", v.Type(), to))
}
