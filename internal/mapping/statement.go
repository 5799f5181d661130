package mapping

import (
	"reflect"
	"time"
)

// StatementKind identifies the SQL verb a statement performs.
// The kind drives cache behavior: every non-select kind flushes the
// session-local result cache before executing.
type StatementKind string

const (
	// KindSelect is a read statement eligible for local caching.
	KindSelect StatementKind = "select"
	// KindInsert is a write statement.
	KindInsert StatementKind = "insert"
	// KindUpdate is a write statement.
	KindUpdate StatementKind = "update"
	// KindDelete is a write statement.
	KindDelete StatementKind = "delete"
)

// ValidStatementKinds defines the allowed statement kinds.
var ValidStatementKinds = map[StatementKind]bool{
	KindSelect: true,
	KindInsert: true,
	KindUpdate: true,
	KindDelete: true,
}

// StatementType distinguishes plain prepared statements from procedure-like
// callable statements. Callable statements may carry output parameters, which
// the executor captures and replays on cache hits.
type StatementType string

const (
	// TypePrepared is a regular prepared statement.
	TypePrepared StatementType = "prepared"
	// TypeCallable is a procedure-like statement with possible OUT parameters.
	TypeCallable StatementType = "callable"
)

// ParameterMode describes the direction of a bound parameter.
type ParameterMode string

const (
	// ModeIn is a regular input parameter (the default).
	ModeIn ParameterMode = "IN"
	// ModeOut is an output-only parameter. OUT parameters never contribute
	// to cache fingerprints and are never bound as query arguments.
	ModeOut ParameterMode = "OUT"
	// ModeInOut is a parameter that is both bound and written back.
	ModeInOut ParameterMode = "INOUT"
)

// ValidParameterModes defines the allowed parameter modes.
var ValidParameterModes = map[ParameterMode]bool{
	ModeIn:    true,
	ModeOut:   true,
	ModeInOut: true,
}

// ParameterMapping names one bound parameter position: the property on the
// parameter object it is read from (or written to, for OUT parameters) and
// its direction.
type ParameterMapping struct {
	Property string
	Mode     ParameterMode
}

// Statement is an immutable, fully configured statement definition.
//
// The SQL field holds the resolved text with positional placeholders; the
// parameter markers from the configured template have already been compiled
// into Mappings in declaration order.
type Statement struct {
	// ID uniquely identifies the statement within a configuration.
	ID string
	// Kind is the SQL verb (select/insert/update/delete).
	Kind StatementKind
	// Type distinguishes prepared from callable statements.
	Type StatementType
	// SQL is the resolved text with positional placeholders.
	SQL string
	// Mappings are the bound parameter positions in declaration order.
	Mappings []ParameterMapping
	// FlushCache forces a local cache clear before an outermost execution
	// of this statement. Defaults to true for every non-select kind.
	FlushCache bool
	// ResultType, when non-nil, is the struct type rows are materialized
	// into. When nil, rows materialize as map[string]any.
	ResultType reflect.Type
	// Timeout bounds the statement runner call. Zero means no bound beyond
	// the caller's context.
	Timeout time.Duration
}

// BoundSQL returns a fresh per-call binding of the statement's SQL.
// Additional parameters set on the returned value are call-local and never
// mutate the statement.
func (s *Statement) BoundSQL() *BoundSQL {
	return &BoundSQL{
		SQL:      s.SQL,
		Mappings: s.Mappings,
	}
}

// BoundSQL is the per-call pairing of resolved SQL text, its ordered
// parameter mappings, and any ad-hoc parameter values supplied outside the
// parameter object.
type BoundSQL struct {
	SQL      string
	Mappings []ParameterMapping

	additional map[string]any
}

// SetAdditionalParameter records an ad-hoc value for a named property.
// Ad-hoc values take precedence over parameter-object property access during
// both fingerprinting and argument binding.
func (b *BoundSQL) SetAdditionalParameter(name string, value any) {
	if b.additional == nil {
		b.additional = make(map[string]any)
	}
	b.additional[name] = value
}

// HasAdditionalParameter reports whether an ad-hoc value exists for name.
func (b *BoundSQL) HasAdditionalParameter(name string) bool {
	_, ok := b.additional[name]
	return ok
}

// AdditionalParameter returns the ad-hoc value for name, or nil.
func (b *BoundSQL) AdditionalParameter(name string) any {
	return b.additional[name]
}

// BatchResult reports the outcome of one flushed batch statement.
type BatchResult struct {
	StatementID  string
	SQL          string
	UpdateCounts []int64
}

// ResultHandler receives rows one at a time during a streaming query.
// Queries driven by a handler bypass the local result cache entirely.
// Returning an error aborts the iteration.
type ResultHandler func(row any) error

// Environment identifies the active datasource configuration. The ID is
// folded into every cache fingerprint so identical statements against
// different environments never collide.
type Environment struct {
	ID  string
	DSN string
}
