package meta

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TypeMeta is the resolved property metadata for one struct type: which
// names are readable and writable, their declared types, and the accessor
// bound to each name. Built once per type, never mutated afterwards.
type TypeMeta struct {
	typ reflect.Type

	getters  map[string]Getter
	setters  map[string]Setter
	getTypes map[string]reflect.Type
	setTypes map[string]reflect.Type

	readable []string
	writable []string

	// caseIndex maps upper-cased names to canonical property names for
	// case-insensitive resolution.
	caseIndex map[string]string
}

// candidate is one accessor method competing for a property name.
type candidate struct {
	method reflect.Method
	typ    reflect.Type // result type for getters, parameter type for setters
}

// newTypeMeta builds metadata for a struct type. The type's own accessor
// methods, methods promoted from embedded structs, and exported fields all
// contribute properties; conflicts between accessors deriving the same name
// are resolved by type narrowing or rejected as metadata conflicts.
func newTypeMeta(t reflect.Type) (*TypeMeta, error) {
	m := &TypeMeta{
		typ:       t,
		getters:   make(map[string]Getter),
		setters:   make(map[string]Setter),
		getTypes:  make(map[string]reflect.Type),
		setTypes:  make(map[string]reflect.Type),
		caseIndex: make(map[string]string),
	}
	if err := m.addGetMethods(); err != nil {
		return nil, err
	}
	if err := m.addSetMethods(); err != nil {
		return nil, err
	}

	getterUpper := make(map[string]bool, len(m.getters))
	for name := range m.getters {
		getterUpper[upperName(name)] = true
	}
	setterUpper := make(map[string]bool, len(m.setters))
	for name := range m.setters {
		setterUpper[upperName(name)] = true
	}
	m.addFields(t, nil, map[string]bool{}, getterUpper, setterUpper)

	for name := range m.getters {
		m.readable = append(m.readable, name)
		m.caseIndex[upperName(name)] = name
	}
	for name := range m.setters {
		m.writable = append(m.writable, name)
		m.caseIndex[upperName(name)] = name
	}
	sort.Strings(m.readable)
	sort.Strings(m.writable)
	return m, nil
}

// addGetMethods collects getter candidates from the pointer method set and
// resolves conflicts. A getter takes no arguments and returns exactly one
// value; both GetX and IsX forms derive the same property name, which is how
// two candidates can compete for one name.
func (m *TypeMeta) addGetMethods() error {
	conflicting := make(map[string][]candidate)
	pt := reflect.PointerTo(m.typ)
	for i := 0; i < pt.NumMethod(); i++ {
		method := pt.Method(i)
		if !IsGetterName(method.Name) {
			continue
		}
		// NumIn includes the receiver.
		if method.Type.NumIn() != 1 || method.Type.NumOut() != 1 {
			continue
		}
		name, ok := MethodToProperty(method.Name)
		if !ok {
			continue
		}
		conflicting[name] = append(conflicting[name], candidate{
			method: method,
			typ:    method.Type.Out(0),
		})
	}
	return m.resolveGetterConflicts(conflicting)
}

// resolveGetterConflicts picks one getter per property name.
//
// Two candidates with the same result type are an unresolvable ambiguity.
// When one result type is assignable to the other, the more specific type
// wins; the chosen result type becomes the authoritative declared type used
// later to disambiguate setters.
func (m *TypeMeta) resolveGetterConflicts(conflicting map[string][]candidate) error {
	for name, cands := range conflicting {
		winner := cands[0]
		for _, c := range cands[1:] {
			switch {
			case c.typ == winner.typ:
				return newConflictError(m.typ.String(), name, fmt.Sprintf(
					"ambiguous getters %s and %s with identical type %s",
					winner.method.Name, c.method.Name, c.typ))
			case c.typ.AssignableTo(winner.typ):
				// Candidate is more specific.
				winner = c
			case winner.typ.AssignableTo(c.typ):
				// Current winner is more specific, keep it.
			default:
				return newConflictError(m.typ.String(), name, fmt.Sprintf(
					"ambiguous getters %s (%s) and %s (%s) with unrelated types",
					winner.method.Name, winner.typ, c.method.Name, c.typ))
			}
		}
		if isValidPropertyName(name) {
			m.getters[name] = &methodGetter{index: winner.method.Index, typ: winner.typ}
			m.getTypes[name] = winner.typ
		}
	}
	return nil
}

// addSetMethods collects setter candidates from the pointer method set and
// resolves conflicts. A setter takes exactly one argument and returns
// nothing.
func (m *TypeMeta) addSetMethods() error {
	conflicting := make(map[string][]candidate)
	pt := reflect.PointerTo(m.typ)
	for i := 0; i < pt.NumMethod(); i++ {
		method := pt.Method(i)
		if !IsSetterName(method.Name) {
			continue
		}
		if method.Type.NumIn() != 2 || method.Type.NumOut() != 0 {
			continue
		}
		name, ok := MethodToProperty(method.Name)
		if !ok {
			continue
		}
		conflicting[name] = append(conflicting[name], candidate{
			method: method,
			typ:    method.Type.In(1),
		})
	}
	return m.resolveSetterConflicts(conflicting)
}

// resolveSetterConflicts picks one setter per property name.
//
// A setter whose parameter type exactly matches the authoritative getter type
// is the best match. Failing that, the assignability narrowing rule applies;
// if no unambiguous winner exists the conflict is an error, unless a later
// exact match recovers it.
func (m *TypeMeta) resolveSetterConflicts(conflicting map[string][]candidate) error {
	for name, cands := range conflicting {
		getterType := m.getTypes[name]
		var match *candidate
		var matchErr error
		for i := range cands {
			c := cands[i]
			if getterType != nil && c.typ == getterType {
				match = &c
				break
			}
			if matchErr == nil {
				match, matchErr = m.pickBetterSetter(match, &c, name)
				if matchErr != nil {
					match = nil
				}
			}
		}
		if match == nil {
			return matchErr
		}
		if isValidPropertyName(name) {
			m.setters[name] = &methodSetter{index: match.method.Index, typ: match.typ}
			m.setTypes[name] = match.typ
		}
	}
	return nil
}

// pickBetterSetter prefers the setter with the more specific parameter type.
func (m *TypeMeta) pickBetterSetter(s1, s2 *candidate, name string) (*candidate, error) {
	if s1 == nil {
		return s2, nil
	}
	switch {
	case s2.typ.AssignableTo(s1.typ) && s1.typ != s2.typ:
		return s2, nil
	case s1.typ.AssignableTo(s2.typ) && s1.typ != s2.typ:
		return s1, nil
	}
	return nil, newConflictError(m.typ.String(), name, fmt.Sprintf(
		"ambiguous setters %s and %s with types %s and %s",
		s1.method.Name, s2.method.Name, s1.typ, s2.typ))
}

// addFields adds exported fields not shadowed by a resolved accessor as
// implicit get/set pairs. Direct fields are processed before embedded ones so
// an outer field shadows a promoted one; the seen set enforces that across
// recursion levels. Shadowing by accessor methods is checked
// case-insensitively because Go field names are upper-cased where accessor
// properties are not.
func (m *TypeMeta) addFields(t reflect.Type, prefix []int, seen, getterUpper, setterUpper map[string]bool) {
	var embedded []reflect.StructField
	var embeddedIdx [][]int
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		idx := append(append([]int(nil), prefix...), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			embedded = append(embedded, f)
			embeddedIdx = append(embeddedIdx, idx)
			continue
		}
		if !f.IsExported() || !isValidPropertyName(f.Name) {
			continue
		}
		upper := upperName(f.Name)
		if seen[upper] {
			continue
		}
		seen[upper] = true
		acc := &fieldAccessor{index: idx, typ: f.Type}
		if !setterUpper[upper] {
			m.setters[f.Name] = acc
			m.setTypes[f.Name] = f.Type
		}
		if !getterUpper[upper] {
			m.getters[f.Name] = acc
			m.getTypes[f.Name] = f.Type
		}
	}
	for i, f := range embedded {
		m.addFields(f.Type, embeddedIdx[i], seen, getterUpper, setterUpper)
	}
}

// Type returns the struct type the metadata was built for.
func (m *TypeMeta) Type() reflect.Type { return m.typ }

// HasGetter reports whether name resolves to a readable property.
func (m *TypeMeta) HasGetter(name string) bool {
	_, ok := m.getters[name]
	return ok
}

// HasSetter reports whether name resolves to a writable property.
func (m *TypeMeta) HasSetter(name string) bool {
	_, ok := m.setters[name]
	return ok
}

// Getter returns the accessor for a readable property.
func (m *TypeMeta) Getter(name string) (Getter, error) {
	g, ok := m.getters[name]
	if !ok {
		return nil, newPropertyNotFoundError(m.typ.String(), name)
	}
	return g, nil
}

// Setter returns the accessor for a writable property.
func (m *TypeMeta) Setter(name string) (Setter, error) {
	s, ok := m.setters[name]
	if !ok {
		return nil, newPropertyNotFoundError(m.typ.String(), name)
	}
	return s, nil
}

// GetterType returns the declared type of a readable property.
func (m *TypeMeta) GetterType(name string) (reflect.Type, error) {
	t, ok := m.getTypes[name]
	if !ok {
		return nil, newPropertyNotFoundError(m.typ.String(), name)
	}
	return t, nil
}

// SetterType returns the declared type of a writable property.
func (m *TypeMeta) SetterType(name string) (reflect.Type, error) {
	t, ok := m.setTypes[name]
	if !ok {
		return nil, newPropertyNotFoundError(m.typ.String(), name)
	}
	return t, nil
}

// ReadableNames returns the sorted readable property names.
func (m *TypeMeta) ReadableNames() []string {
	return append([]string(nil), m.readable...)
}

// WritableNames returns the sorted writable property names.
func (m *TypeMeta) WritableNames() []string {
	return append([]string(nil), m.writable...)
}

// FindPropertyName resolves any case variant of a property name to its
// canonical casing. Returns false if no readable or writable property
// matches.
func (m *TypeMeta) FindPropertyName(name string) (string, bool) {
	canonical, ok := m.caseIndex[upperName(name)]
	return canonical, ok
}

// isValidPropertyName rejects reserved and generated names: a leading
// underscore sentinel and the XXX_ prefix used by generated code.
func isValidPropertyName(name string) bool {
	return !strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "XXX_")
}

// upperName upper-cases a property name with English casing rules so the
// case-insensitive index is locale-stable.
func upperName(name string) string {
	return cases.Upper(language.English).String(name)
}
