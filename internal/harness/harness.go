// Package harness runs statement-flow scenarios against an in-memory
// database and records their observable behavior as a deterministic trace.
//
// Scenarios are YAML files pairing a statement set with a seeded schema and
// a flow of executions. The trace captures, per step, the rows or affected
// count and whether the session cache already held the result, so cache
// semantics can be asserted with golden files.
package harness

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/roach88/remap/internal/config"
	"github.com/roach88/remap/internal/exec"
	"github.com/roach88/remap/internal/mapping"
	"github.com/roach88/remap/internal/meta"
	"github.com/roach88/remap/internal/runner"
)

// TraceEvent records one flow step's observable outcome.
type TraceEvent struct {
	Seq       int            `json:"seq"`
	Statement string         `json:"statement"`
	Op        string         `json:"op"` // "query" or "exec"
	Args      map[string]any `json:"args,omitempty"`
	Cached    *bool          `json:"cached,omitempty"`
	Rows      []any          `json:"rows,omitempty"`
	Affected  *int64         `json:"affected,omitempty"`
}

// Result holds the trace and any expectation failures from a scenario run.
type Result struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	Failures     []string     `json:"failures,omitempty"`
}

// Run executes a scenario. baseDir is the directory the scenario file was
// loaded from; the statement-set path resolves relative to it.
//
// Expectation mismatches (expect_rows) land in Result.Failures; execution
// errors abort the run.
func Run(scenario *Scenario, baseDir string) (*Result, error) {
	ctx := context.Background()

	doc, err := config.Load(filepath.Join(baseDir, scenario.Statements))
	if err != nil {
		return nil, err
	}
	set, err := doc.Build(nil)
	if err != nil {
		return nil, err
	}

	store, err := runner.Open(":memory:")
	if err != nil {
		return nil, err
	}
	defer store.Close()

	for _, ddl := range scenario.Schema {
		if _, err := store.DB().Exec(ddl); err != nil {
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}
	for _, dml := range scenario.Seed {
		if _, err := store.DB().Exec(dml); err != nil {
			return nil, fmt.Errorf("seeding: %w", err)
		}
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	registry := meta.NewRegistry()
	executor := exec.NewExecutor(runner.New(tx, registry, nil), tx, exec.Options{
		Scope:       set.Scope,
		Environment: set.Environment,
		Registry:    registry,
	})
	defer executor.Close(ctx, false)

	result := &Result{ScenarioName: scenario.Name}
	for i, step := range scenario.Flow {
		event, failure, err := runStep(ctx, executor, set, i, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Run, err)
		}
		result.Trace = append(result.Trace, event)
		if failure != "" {
			result.Failures = append(result.Failures, failure)
		}
	}
	if err := executor.Commit(ctx, true); err != nil {
		return nil, err
	}
	return result, nil
}

func runStep(ctx context.Context, executor *exec.Executor, set *config.Set, seq int, step FlowStep) (TraceEvent, string, error) {
	st, err := set.Statement(step.Run)
	if err != nil {
		return TraceEvent{}, "", err
	}

	event := TraceEvent{
		Seq:       seq,
		Statement: step.Run,
		Args:      step.Args,
	}

	var param any
	if step.Args != nil {
		param = step.Args
	}

	if st.Kind == mapping.KindSelect {
		event.Op = "query"
		bounds := stepBounds(step)
		bound := st.BoundSQL()
		key, err := executor.CreateCacheKey(st, param, bounds, bound)
		if err != nil {
			return TraceEvent{}, "", err
		}
		cached := executor.IsCached(key)
		event.Cached = &cached

		rows, err := executor.QueryWithKey(ctx, st, param, bounds, nil, key, bound)
		if err != nil {
			return TraceEvent{}, "", err
		}
		event.Rows = rows

		if step.ExpectRows != nil && *step.ExpectRows != len(rows) {
			return event, fmt.Sprintf("step %d (%s): expected %d row(s), got %d",
				seq, step.Run, *step.ExpectRows, len(rows)), nil
		}
		return event, "", nil
	}

	event.Op = "exec"
	affected, err := executor.Update(ctx, st, param)
	if err != nil {
		return TraceEvent{}, "", err
	}
	event.Affected = &affected
	return event, "", nil
}

func stepBounds(step FlowStep) mapping.RowBounds {
	bounds := mapping.DefaultRowBounds()
	bounds.Offset = step.Offset
	if step.Limit > 0 {
		bounds.Limit = step.Limit
	}
	return bounds
}
