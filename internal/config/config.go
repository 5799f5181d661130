// Package config loads statement-set documents: YAML files declaring the
// statements a session can execute, the cache scope policy, and the target
// environment.
//
// Documents are validated against an embedded CUE schema before any SQL
// template is compiled, so structural errors surface with schema paths
// rather than as downstream template or runtime failures.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"reflect"
	"sort"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/remap/internal/exec"
	"github.com/roach88/remap/internal/mapping"
	"github.com/roach88/remap/internal/sqltext"
)

//go:embed schema.cue
var schemaSource string

// Document is the YAML shape of a statement-set file.
type Document struct {
	Environment *EnvironmentConfig `yaml:"environment"`
	CacheScope  string             `yaml:"cache_scope"`
	Statements  []StatementConfig  `yaml:"statements"`
}

// EnvironmentConfig names the datasource a document targets.
type EnvironmentConfig struct {
	ID  string `yaml:"id"`
	DSN string `yaml:"dsn"`
}

// StatementConfig declares one statement: its SQL template with #{property}
// markers plus execution options.
type StatementConfig struct {
	ID         string `yaml:"id"`
	Kind       string `yaml:"kind"`
	Type       string `yaml:"type"`
	SQL        string `yaml:"sql"`
	FlushCache *bool  `yaml:"flush_cache"`
	ResultType string `yaml:"result_type"`
	TimeoutMS  int    `yaml:"timeout_ms"`
}

// Load reads and validates a statement-set document from a file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{
			Code:    ErrCodeInvalidYAML,
			Message: fmt.Sprintf("reading %s: %v", path, err),
			Err:     err,
		}
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates a statement-set document.
func LoadBytes(data []byte) (*Document, error) {
	// Decode untyped first: the CUE schema sees exactly what the author
	// wrote, including fields the typed form would silently drop.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{
			Code:    ErrCodeInvalidYAML,
			Message: fmt.Sprintf("parsing YAML: %v", err),
			Err:     err,
		}
	}
	if err := validateAgainstSchema(raw); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{
			Code:    ErrCodeInvalidYAML,
			Message: fmt.Sprintf("decoding document: %v", err),
			Err:     err,
		}
	}
	return &doc, nil
}

// validateAgainstSchema unifies the raw document with the embedded #Config
// definition and reports every violation CUE finds.
func validateAgainstSchema(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return &ConfigError{
			Code:    ErrCodeSchemaViolation,
			Message: fmt.Sprintf("compiling schema: %v", err),
			Err:     err,
		}
	}
	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(raw))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, e.Error())
		}
		return &ConfigError{
			Code:    ErrCodeSchemaViolation,
			Message: fmt.Sprintf("document does not satisfy schema: %v", msgs),
			Err:     err,
		}
	}
	return nil
}

// Set is a compiled statement set ready for execution.
type Set struct {
	Environment *mapping.Environment
	Scope       exec.CacheScope

	statements map[string]*mapping.Statement
}

// Build compiles the document's statement templates into an executable set.
// resultTypes maps the result_type names used in the document to the struct
// types rows materialize into; statements without a result_type yield
// map[string]any rows.
func (d *Document) Build(resultTypes map[string]reflect.Type) (*Set, error) {
	if err := exec.ValidateCacheScope(d.CacheScope); err != nil {
		return nil, &ConfigError{
			Code:    ErrCodeSchemaViolation,
			Message: err.Error(),
			Path:    "cache_scope",
			Err:     err,
		}
	}

	set := &Set{
		Scope:      exec.NormalizeCacheScope(exec.CacheScope(d.CacheScope)),
		statements: make(map[string]*mapping.Statement, len(d.Statements)),
	}
	if d.Environment != nil {
		set.Environment = &mapping.Environment{
			ID:  d.Environment.ID,
			DSN: d.Environment.DSN,
		}
	}

	for i, sc := range d.Statements {
		path := fmt.Sprintf("statements[%d]", i)
		if _, exists := set.statements[sc.ID]; exists {
			return nil, &ConfigError{
				Code:    ErrCodeDuplicateStatement,
				Message: fmt.Sprintf("duplicate statement id %q", sc.ID),
				Path:    path + ".id",
			}
		}
		st, err := sc.compile(resultTypes, path)
		if err != nil {
			return nil, err
		}
		set.statements[sc.ID] = st
	}
	return set, nil
}

func (sc *StatementConfig) compile(resultTypes map[string]reflect.Type, path string) (*mapping.Statement, error) {
	sql, mappings, err := sqltext.Compile(sc.SQL)
	if err != nil {
		return nil, &ConfigError{
			Code:    ErrCodeTemplate,
			Message: err.Error(),
			Path:    path + ".sql",
			Err:     err,
		}
	}

	kind := mapping.StatementKind(sc.Kind)
	flush := kind != mapping.KindSelect
	if sc.FlushCache != nil {
		flush = *sc.FlushCache
	}
	stType := mapping.StatementType(sc.Type)
	if stType == "" {
		stType = mapping.TypePrepared
	}

	var resultType reflect.Type
	if sc.ResultType != "" {
		rt, ok := resultTypes[sc.ResultType]
		if !ok {
			return nil, &ConfigError{
				Code:    ErrCodeUnknownResultType,
				Message: fmt.Sprintf("result type %q is not registered", sc.ResultType),
				Path:    path + ".result_type",
			}
		}
		resultType = rt
	}

	return &mapping.Statement{
		ID:         sc.ID,
		Kind:       kind,
		Type:       stType,
		SQL:        sql,
		Mappings:   mappings,
		FlushCache: flush,
		ResultType: resultType,
		Timeout:    time.Duration(sc.TimeoutMS) * time.Millisecond,
	}, nil
}

// Statement returns the compiled statement for id.
func (s *Set) Statement(id string) (*mapping.Statement, error) {
	st, ok := s.statements[id]
	if !ok {
		return nil, &ConfigError{
			Code:    ErrCodeUnknownStatement,
			Message: fmt.Sprintf("no statement with id %q", id),
		}
	}
	return st, nil
}

// IDs returns every statement ID in the set, sorted.
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.statements))
	for id := range s.statements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of statements in the set.
func (s *Set) Len() int { return len(s.statements) }
