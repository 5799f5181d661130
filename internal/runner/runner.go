package runner

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/roach88/remap/internal/exec"
	"github.com/roach88/remap/internal/mapping"
	"github.com/roach88/remap/internal/meta"
)

// queryer is the minimal query surface the runner needs. Both *Tx and
// *sql.DB satisfy it.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Runner executes statements against SQLite. It implements the executor's
// statement-runner contract: argument binding follows parameter mapping
// declaration order, row bounds apply while scanning, and the statement
// timeout bounds each round-trip.
//
// This runner does not batch, so Flush has nothing to execute.
type Runner struct {
	q        queryer
	registry *meta.Registry
	factory  meta.ObjectFactory
	logger   *slog.Logger
}

// New creates a runner over a query target, usually the *Tx the session's
// executor owns.
func New(q queryer, registry *meta.Registry, logger *slog.Logger) *Runner {
	if registry == nil {
		registry = meta.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		q:        q,
		registry: registry,
		factory:  meta.DefaultObjectFactory{},
		logger:   logger,
	}
}

// RunQuery implements exec.StatementRunner.
func (r *Runner) RunQuery(ctx context.Context, st *mapping.Statement, param any, bounds mapping.RowBounds, handler mapping.ResultHandler, bound *mapping.BoundSQL) ([]any, error) {
	ctx, cancel := statementContext(ctx, st)
	defer cancel()

	rows, cols, err := r.query(ctx, st, param, bound)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	seen := 0
	kept := 0
	for rows.Next() {
		seen++
		if seen <= bounds.Offset {
			continue
		}
		if kept >= bounds.Limit {
			break
		}
		row, err := r.materializeNext(rows, cols, st.ResultType)
		if err != nil {
			return nil, err
		}
		kept++
		if handler != nil {
			if err := handler(row); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("statement %s: %w", st.ID, err)
	}
	r.logger.Debug("query executed",
		"statement", st.ID,
		"rows", kept,
	)
	if handler != nil {
		return nil, nil
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

// RunUpdate implements exec.StatementRunner.
func (r *Runner) RunUpdate(ctx context.Context, st *mapping.Statement, param any, bound *mapping.BoundSQL) (int64, error) {
	ctx, cancel := statementContext(ctx, st)
	defer cancel()

	args, err := exec.BindArgs(bound, param, r.registry)
	if err != nil {
		return 0, err
	}
	res, err := r.q.ExecContext(ctx, bound.SQL, args...)
	if err != nil {
		return 0, fmt.Errorf("statement %s: %w", st.ID, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("statement %s: %w", st.ID, err)
	}
	r.logger.Debug("update executed",
		"statement", st.ID,
		"affected", count,
	)
	return count, nil
}

// RunCursor implements exec.StatementRunner. The returned cursor owns the
// row set and must be closed by the caller; the statement timeout covers the
// whole iteration, not just the initial round-trip.
func (r *Runner) RunCursor(ctx context.Context, st *mapping.Statement, param any, bounds mapping.RowBounds, bound *mapping.BoundSQL) (mapping.Cursor, error) {
	ctx, cancel := statementContext(ctx, st)

	rows, cols, err := r.query(ctx, st, param, bound)
	if err != nil {
		cancel()
		return nil, err
	}
	return &rowCursor{
		runner:     r,
		rows:       rows,
		cols:       cols,
		resultType: st.ResultType,
		bounds:     bounds,
		cancel:     cancel,
		open:       true,
		index:      -1,
	}, nil
}

// Flush implements exec.StatementRunner. Nothing is buffered, so there is
// nothing to execute or discard.
func (r *Runner) Flush(ctx context.Context, isRollback bool) ([]mapping.BatchResult, error) {
	return nil, nil
}

func (r *Runner) query(ctx context.Context, st *mapping.Statement, param any, bound *mapping.BoundSQL) (*sql.Rows, []string, error) {
	args, err := exec.BindArgs(bound, param, r.registry)
	if err != nil {
		return nil, nil, err
	}
	rows, err := r.q.QueryContext(ctx, bound.SQL, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("statement %s: %w", st.ID, err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, nil, fmt.Errorf("statement %s: %w", st.ID, err)
	}
	return rows, cols, nil
}

// materializeNext scans the current row and shapes it into the statement's
// result type: a *T with columns matched to properties case-insensitively, or
// a map[string]any when no result type is configured. Columns with no
// matching property are skipped.
func (r *Runner) materializeNext(rows *sql.Rows, cols []string, resultType reflect.Type) (any, error) {
	values := make([]any, len(cols))
	scan := make([]any, len(cols))
	for i := range values {
		scan[i] = &values[i]
	}
	if err := rows.Scan(scan...); err != nil {
		return nil, err
	}
	for i, v := range values {
		// SQLite hands TEXT back as raw bytes.
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}

	if resultType == nil {
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		return row, nil
	}

	instance, err := r.factory.Create(resultType)
	if err != nil {
		return nil, err
	}
	obj, err := meta.NewObject(instance, r.registry)
	if err != nil {
		return nil, err
	}
	for i, col := range cols {
		if !obj.HasProperty(col) {
			continue
		}
		if err := obj.Set(col, values[i]); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// statementContext applies the statement's timeout when one is configured.
func statementContext(ctx context.Context, st *mapping.Statement) (context.Context, context.CancelFunc) {
	if st.Timeout > 0 {
		return context.WithTimeout(ctx, st.Timeout)
	}
	return ctx, func() {}
}
