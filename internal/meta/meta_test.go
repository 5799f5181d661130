package meta

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// account exercises the mix of accessor methods and implicit fields.
type account struct {
	ID      int
	Name    string
	balance int64
	XXX_raw []byte
}

func (a *account) GetName() string     { return a.Name }
func (a *account) SetName(name string) { a.Name = name }
func (a *account) GetURL() string      { return "https://example.test/" + a.Name }
func (a *account) Balance() int64      { return a.balance }

// ambiguousGetters has two getters deriving the same property name with the
// identical result type: an unresolvable conflict.
type ambiguousGetters struct{}

func (ambiguousGetters) GetValue() int { return 0 }
func (ambiguousGetters) IsValue() int  { return 0 }

// narrowedGetters has two getters for one property where one result type is
// assignable to the other; the more specific type must win.
type narrowedGetters struct{}

func (narrowedGetters) GetValue() any { return nil }
func (narrowedGetters) IsValue() int  { return 0 }

type timestamps struct {
	CreatedAt int64
	UpdatedAt int64
}

type embedded struct {
	timestamps
	CreatedAt string // shadows the promoted field
	Label     string
}

func buildMeta(t *testing.T, v any) *TypeMeta {
	t.Helper()
	tm, err := newTypeMeta(reflect.TypeOf(v))
	require.NoError(t, err)
	return tm
}

func TestTypeMeta_MethodsAndFields(t *testing.T) {
	tm := buildMeta(t, account{})

	// Accessor methods win over the fields they shadow.
	assert.True(t, tm.HasGetter("name"))
	assert.True(t, tm.HasSetter("name"))
	assert.False(t, tm.HasGetter("Name"), "field must be shadowed by GetName")

	// Unshadowed exported fields become implicit get/set pairs.
	assert.True(t, tm.HasGetter("ID"))
	assert.True(t, tm.HasSetter("ID"))

	// Unexported and generated-prefix fields never become properties.
	assert.False(t, tm.HasGetter("balance"))
	assert.False(t, tm.HasGetter("XXX_raw"))

	// Balance() has no accessor prefix, so it contributes nothing.
	assert.Equal(t, []string{"ID", "URL", "name"}, tm.ReadableNames())
	assert.Equal(t, []string{"ID", "name"}, tm.WritableNames())
}

func TestTypeMeta_InitialismCasePreserved(t *testing.T) {
	tm := buildMeta(t, account{})

	typ, err := tm.GetterType("URL")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(""), typ)

	// The getter is read-only: no SetURL method, no URL field.
	assert.False(t, tm.HasSetter("URL"))
}

func TestTypeMeta_CaseInsensitiveIndex(t *testing.T) {
	tm := buildMeta(t, account{})

	tests := []struct {
		lookup string
		want   string
	}{
		{"name", "name"},
		{"NAME", "name"},
		{"NaMe", "name"},
		{"url", "URL"},
		{"id", "ID"},
	}
	for _, tt := range tests {
		got, ok := tm.FindPropertyName(tt.lookup)
		require.True(t, ok, "lookup %q", tt.lookup)
		assert.Equal(t, tt.want, got)
	}

	_, ok := tm.FindPropertyName("missing")
	assert.False(t, ok)
}

func TestTypeMeta_AmbiguousGettersFail(t *testing.T) {
	_, err := newTypeMeta(reflect.TypeOf(ambiguousGetters{}))
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
	assert.Contains(t, err.Error(), "METADATA_CONFLICT")
}

func TestTypeMeta_NarrowedGetterWins(t *testing.T) {
	tm := buildMeta(t, narrowedGetters{})

	typ, err := tm.GetterType("value")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(0), typ, "the more specific result type wins")
}

func TestTypeMeta_EmbeddedFields(t *testing.T) {
	tm := buildMeta(t, embedded{})

	// Promoted field from the embedded struct.
	typ, err := tm.GetterType("UpdatedAt")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(int64(0)), typ)

	// The outer CreatedAt shadows the promoted one.
	typ, err = tm.GetterType("CreatedAt")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(""), typ)
}

func TestTypeMeta_SetterConflictResolution(t *testing.T) {
	// Setter conflicts cannot arise from a single Go method set, so drive
	// the resolution directly with synthetic candidate lists.
	intType := reflect.TypeOf(0)
	anyType := reflect.TypeOf((*any)(nil)).Elem()

	t.Run("exact match against getter type wins", func(t *testing.T) {
		m := &TypeMeta{
			typ:      reflect.TypeOf(struct{}{}),
			setters:  make(map[string]Setter),
			setTypes: make(map[string]reflect.Type),
			getTypes: map[string]reflect.Type{"value": intType},
		}
		err := m.resolveSetterConflicts(map[string][]candidate{
			"value": {{typ: anyType}, {typ: intType}},
		})
		require.NoError(t, err)
		assert.Equal(t, intType, m.setTypes["value"])
	})

	t.Run("assignability narrowing without a getter", func(t *testing.T) {
		m := &TypeMeta{
			typ:      reflect.TypeOf(struct{}{}),
			setters:  make(map[string]Setter),
			setTypes: make(map[string]reflect.Type),
			getTypes: map[string]reflect.Type{},
		}
		err := m.resolveSetterConflicts(map[string][]candidate{
			"value": {{typ: anyType}, {typ: intType}},
		})
		require.NoError(t, err)
		assert.Equal(t, intType, m.setTypes["value"])
	})

	t.Run("identical parameter types fail", func(t *testing.T) {
		m := &TypeMeta{
			typ:      reflect.TypeOf(struct{}{}),
			setters:  make(map[string]Setter),
			setTypes: make(map[string]reflect.Type),
			getTypes: map[string]reflect.Type{},
		}
		err := m.resolveSetterConflicts(map[string][]candidate{
			"value": {{typ: intType}, {typ: intType}},
		})
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
	})
}
