package exec

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"github.com/roach88/remap/internal/mapping"
	"github.com/roach88/remap/internal/meta"
)

// StatementRunner is the external collaborator that performs actual database
// round-trips. The executor never touches the store directly; everything it
// caches or defers was fetched through a runner.
type StatementRunner interface {
	// RunQuery fetches the full row sequence for a statement. When a
	// result handler is supplied, rows are streamed to it and the returned
	// slice is nil. Row bounds and the statement timeout must be honored.
	RunQuery(ctx context.Context, st *mapping.Statement, param any, bounds mapping.RowBounds, handler mapping.ResultHandler, bound *mapping.BoundSQL) ([]any, error)

	// RunUpdate executes a write statement and returns the affected count.
	RunUpdate(ctx context.Context, st *mapping.Statement, param any, bound *mapping.BoundSQL) (int64, error)

	// RunCursor opens a lazy forward-only cursor over the statement's rows.
	RunCursor(ctx context.Context, st *mapping.Statement, param any, bounds mapping.RowBounds, bound *mapping.BoundSQL) (mapping.Cursor, error)

	// Flush executes any buffered batch statements. isRollback signals the
	// flush happens on a rollback path, in which case buffered work is
	// discarded rather than executed.
	Flush(ctx context.Context, isRollback bool) ([]mapping.BatchResult, error)
}

// Options configures an executor.
type Options struct {
	// Scope is the local cache lifetime policy. Empty means session.
	Scope CacheScope

	// Environment, when set, folds its ID into every fingerprint.
	Environment *mapping.Environment

	// Registry is the shared property-metadata registry. A private one is
	// created when nil, but callers should pass the process-wide registry.
	Registry *meta.Registry

	// Logger receives executor lifecycle events. Defaults to slog.Default.
	Logger *slog.Logger
}

// Executor coordinates query execution for one session: it owns the local
// result cache and the deferred load queue, enforces the cache scope policy,
// and delegates row fetching to the statement runner.
//
// Not safe for concurrent use. Nested (reentrant) calls from result mapping
// are expected and handled via the query stack counter.
type Executor struct {
	id       string
	runner   StatementRunner
	tx       mapping.Transaction
	registry *meta.Registry
	scope    CacheScope
	env      *mapping.Environment
	logger   *slog.Logger

	localCache *LocalCache
	deferred   *DeferredQueue

	queryStack int
	closed     bool
}

// NewExecutor creates an open executor around a statement runner and its
// transaction.
func NewExecutor(runner StatementRunner, tx mapping.Transaction, opts Options) *Executor {
	registry := opts.Registry
	if registry == nil {
		registry = meta.NewRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		id:         uuid.Must(uuid.NewV7()).String(),
		runner:     runner,
		tx:         tx,
		registry:   registry,
		scope:      NormalizeCacheScope(opts.Scope),
		env:        opts.Environment,
		logger:     logger,
		localCache: NewLocalCache(),
		deferred:   NewDeferredQueue(),
	}
}

// ID returns the executor's session identity, used in logs.
func (e *Executor) ID() string { return e.id }

// IsClosed reports whether Close has been called. Safe on a closed executor.
func (e *Executor) IsClosed() bool { return e.closed }

// Transaction returns the underlying transaction handle.
func (e *Executor) Transaction() (mapping.Transaction, error) {
	if e.closed {
		return nil, newClosedError("access transaction")
	}
	return e.tx, nil
}

// Query executes a select statement, building the fingerprint from the
// statement, parameter, and bounds.
func (e *Executor) Query(ctx context.Context, st *mapping.Statement, param any, bounds mapping.RowBounds, handler mapping.ResultHandler) ([]any, error) {
	if e.closed {
		return nil, newClosedError("query")
	}
	bound := st.BoundSQL()
	key, err := e.CreateCacheKey(st, param, bounds, bound)
	if err != nil {
		return nil, err
	}
	return e.QueryWithKey(ctx, st, param, bounds, handler, key, bound)
}

// QueryWithKey executes a select statement under a precomputed fingerprint.
//
// Cache flow: handler-driven queries bypass the cache entirely; otherwise a
// materialized hit is served locally (replaying captured output parameters
// for callable statements), a pending hit reports the in-flight fetch, and a
// miss inserts a placeholder, fetches through the runner, and replaces the
// placeholder with the result. When the query stack unwinds to zero the
// deferred load queue drains, and a statement-scoped cache clears.
func (e *Executor) QueryWithKey(ctx context.Context, st *mapping.Statement, param any, bounds mapping.RowBounds, handler mapping.ResultHandler, key *CacheKey, bound *mapping.BoundSQL) ([]any, error) {
	if e.closed {
		return nil, newClosedError("query")
	}
	if e.queryStack == 0 && st.FlushCache {
		e.clearLocalCache()
	}

	var rows []any
	var err error
	e.queryStack++
	if handler != nil {
		// Streaming cannot be cached safely: rows are consumed as they
		// are handed to the handler.
		rows, err = e.queryFromStore(ctx, st, param, bounds, handler, nil, bound)
	} else {
		switch entry := e.localCache.Get(key); entry.State {
		case EntryMaterialized:
			e.logger.Debug("local cache hit",
				"executor", e.id,
				"statement", st.ID,
			)
			rows = entry.Rows
			err = e.replayOutputParameters(st, key, param, bound)
		case EntryPending:
			err = newPendingError(st.ID)
		default:
			rows, err = e.queryFromStore(ctx, st, param, bounds, nil, key, bound)
		}
	}
	e.queryStack--

	if e.queryStack == 0 && err == nil {
		if drainErr := e.deferred.DrainAll(); drainErr != nil {
			err = drainErr
		}
		if e.scope == ScopeStatement {
			e.clearLocalCache()
		}
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryCursor opens a lazy cursor for a statement. Cursors never touch the
// local cache; running cache-using queries while one is open on the same
// transaction is unsafe.
func (e *Executor) QueryCursor(ctx context.Context, st *mapping.Statement, param any, bounds mapping.RowBounds) (mapping.Cursor, error) {
	if e.closed {
		return nil, newClosedError("open cursor")
	}
	bound := st.BoundSQL()
	cursor, err := e.runner.RunCursor(ctx, st, param, bounds, bound)
	if err != nil {
		return nil, newStoreError(st.ID, err)
	}
	return cursor, nil
}

// Update executes a write statement. The entire local cache clears first:
// with no dependency tracking, any write conservatively invalidates every
// cached read in the session.
func (e *Executor) Update(ctx context.Context, st *mapping.Statement, param any) (int64, error) {
	if e.closed {
		return 0, newClosedError("update")
	}
	e.clearLocalCache()
	bound := st.BoundSQL()
	count, err := e.runner.RunUpdate(ctx, st, param, bound)
	if err != nil {
		return 0, newStoreError(st.ID, err)
	}
	return count, nil
}

// FlushStatements executes any buffered batch statements.
func (e *Executor) FlushStatements(ctx context.Context) ([]mapping.BatchResult, error) {
	return e.flushStatements(ctx, false)
}

func (e *Executor) flushStatements(ctx context.Context, isRollback bool) ([]mapping.BatchResult, error) {
	if e.closed {
		return nil, newClosedError("flush statements")
	}
	results, err := e.runner.Flush(ctx, isRollback)
	if err != nil {
		return nil, newStoreError("", err)
	}
	return results, nil
}

// Commit clears the local cache, flushes buffered statements, and commits
// the underlying transaction when required.
func (e *Executor) Commit(ctx context.Context, required bool) error {
	if e.closed {
		return newClosedError("commit")
	}
	e.clearLocalCache()
	if _, err := e.flushStatements(ctx, false); err != nil {
		return err
	}
	if required {
		if err := e.tx.Commit(); err != nil {
			return newStoreError("", err)
		}
	}
	return nil
}

// Rollback clears the local cache, discards buffered statements, and rolls
// back the underlying transaction when required. On a closed executor it is
// an idempotent no-op; Close itself rolls back through this path.
func (e *Executor) Rollback(ctx context.Context, required bool) error {
	if e.closed {
		return nil
	}
	e.clearLocalCache()
	_, flushErr := e.flushStatements(ctx, true)
	if required {
		if err := e.tx.Rollback(); err != nil {
			return newStoreError("", err)
		}
	}
	return flushErr
}

// Close rolls back (forced or not), releases the transaction, and
// transitions to the terminal closed state, discarding the cache and queue.
// Rollback and release failures are logged and swallowed; nothing useful
// can be done with them at close time.
func (e *Executor) Close(ctx context.Context, forceRollback bool) {
	if e.closed {
		return
	}
	if err := e.Rollback(ctx, forceRollback); err != nil {
		e.logger.Warn("unexpected failure rolling back on close",
			"executor", e.id,
			"error", err,
		)
	}
	if e.tx != nil {
		if err := e.tx.Close(); err != nil {
			e.logger.Warn("unexpected failure closing transaction",
				"executor", e.id,
				"error", err,
			)
		}
	}
	e.tx = nil
	e.localCache = nil
	e.deferred = nil
	e.closed = true
}

// DeferLoad resolves a nested-property load immediately when its data is
// already materialized, otherwise queues it for the drain that runs when the
// outermost query completes.
func (e *Executor) DeferLoad(target *meta.Object, property string, key *CacheKey, targetType reflect.Type) error {
	if e.closed {
		return newClosedError("defer load")
	}
	load := NewDeferredLoad(target, property, key, targetType, e.localCache)
	if load.CanLoad() {
		return load.Load()
	}
	e.deferred.Enqueue(load)
	return nil
}

// IsCached reports whether the fingerprint has an entry in the local cache.
// Pending placeholders count: a true result tells nested mapping code the
// data is present or already being fetched, so it should defer rather than
// re-query. Always false once the executor is closed; the cache is gone.
func (e *Executor) IsCached(key *CacheKey) bool {
	if e.closed {
		return false
	}
	return e.localCache.Get(key).State != EntryAbsent
}

// ClearLocalCache empties the local cache and output-parameter side table.
// No-op once closed.
func (e *Executor) ClearLocalCache() {
	e.clearLocalCache()
}

func (e *Executor) clearLocalCache() {
	if !e.closed {
		e.localCache.Clear()
	}
}

// CreateCacheKey builds the fingerprint for a statement execution: statement
// ID, row bounds, resolved SQL, every non-OUT bind value in declaration
// order, and the environment ID when one is configured. Changing any of
// those must change the fingerprint; output-only parameters never do.
func (e *Executor) CreateCacheKey(st *mapping.Statement, param any, bounds mapping.RowBounds, bound *mapping.BoundSQL) (*CacheKey, error) {
	if e.closed {
		return nil, newClosedError("create cache key")
	}
	key := NewCacheKey()
	key.Append(st.ID, bounds.Offset, bounds.Limit, bound.SQL)
	for _, pm := range bound.Mappings {
		if pm.Mode == mapping.ModeOut {
			continue
		}
		value, err := ParameterValue(bound, pm.Property, param, e.registry)
		if err != nil {
			return nil, err
		}
		key.Append(value)
	}
	if e.env != nil {
		key.Append(e.env.ID)
	}
	return key, nil
}

// queryFromStore performs the placeholder-guarded fetch. The placeholder is
// inserted before delegating to the runner and removed on every path, so a
// failed fetch never leaves one dangling; only a successful fetch is then
// materialized under the key.
func (e *Executor) queryFromStore(ctx context.Context, st *mapping.Statement, param any, bounds mapping.RowBounds, handler mapping.ResultHandler, key *CacheKey, bound *mapping.BoundSQL) ([]any, error) {
	if key != nil {
		e.localCache.PutPlaceholder(key)
	}
	rows, err := e.runner.RunQuery(ctx, st, param, bounds, handler, bound)
	if key != nil {
		e.localCache.Remove(key)
	}
	if err != nil {
		return nil, newStoreError(st.ID, err)
	}
	if key != nil {
		e.localCache.Put(key, rows)
		if st.Type == mapping.TypeCallable {
			e.localCache.PutOutput(key, param)
		}
	}
	return rows, nil
}

// replayOutputParameters restores call-by-reference semantics when a
// callable statement is served from cache: output-parameter values captured
// at fetch time are copied onto the current parameter object by mapping
// name.
func (e *Executor) replayOutputParameters(st *mapping.Statement, key *CacheKey, param any, bound *mapping.BoundSQL) error {
	if st.Type != mapping.TypeCallable {
		return nil
	}
	cached, ok := e.localCache.Output(key)
	if !ok || cached == nil || param == nil {
		return nil
	}
	cachedObj, err := meta.NewObject(cached, e.registry)
	if err != nil {
		return err
	}
	paramObj, err := meta.NewObject(param, e.registry)
	if err != nil {
		return err
	}
	for _, pm := range bound.Mappings {
		if pm.Mode == mapping.ModeIn {
			continue
		}
		value, err := cachedObj.Get(pm.Property)
		if err != nil {
			return err
		}
		if err := paramObj.Set(pm.Property, value); err != nil {
			return err
		}
	}
	return nil
}
