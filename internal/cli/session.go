package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"

	"github.com/roach88/remap/internal/config"
	"github.com/roach88/remap/internal/exec"
	"github.com/roach88/remap/internal/mapping"
	"github.com/roach88/remap/internal/meta"
	"github.com/roach88/remap/internal/runner"
)

// session bundles the store, transaction, and executor a command runs
// against. Every command opens its own session and closes it on exit.
type session struct {
	set      *config.Set
	store    *runner.Store
	tx       *runner.Tx
	executor *exec.Executor
}

// openSession loads the statement set, opens the database, and wires an
// executor over a fresh transaction. dbPath overrides the environment DSN
// from the document when non-empty.
func openSession(ctx context.Context, configPath, dbPath string, verbose bool) (*session, error) {
	doc, err := config.Load(configPath)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "loading statement set", Err: err}
	}
	set, err := doc.Build(permissiveResultTypes(doc))
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "building statement set", Err: err}
	}

	path := dbPath
	if path == "" && set.Environment != nil {
		path = set.Environment.DSN
	}
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no database: pass --db or set environment.dsn")
	}

	store, err := runner.Open(path)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "opening database", Err: err}
	}
	tx, err := store.Begin(ctx)
	if err != nil {
		store.Close()
		return nil, &ExitError{Code: ExitCommandError, Message: "beginning transaction", Err: err}
	}

	logger := newLogger(verbose)
	registry := meta.NewRegistry()
	executor := exec.NewExecutor(runner.New(tx, registry, logger), tx, exec.Options{
		Scope:       set.Scope,
		Environment: set.Environment,
		Registry:    registry,
		Logger:      logger,
	})

	return &session{
		set:      set,
		store:    store,
		tx:       tx,
		executor: executor,
	}, nil
}

// close tears the session down. The executor rolls back anything
// uncommitted on its way out.
func (s *session) close(ctx context.Context) {
	s.executor.Close(ctx, false)
	s.store.Close()
}

// permissiveResultTypes maps every result_type name the document mentions to
// no type at all: the CLI has no Go structs to bind, so rows materialize as
// maps regardless of what an embedding program would use.
func permissiveResultTypes(doc *config.Document) map[string]reflect.Type {
	types := make(map[string]reflect.Type)
	for _, sc := range doc.Statements {
		if sc.ResultType != "" {
			types[sc.ResultType] = nil
		}
	}
	return types
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveStatement looks a statement up by ID, wrapping a miss as a command
// error listing what the set does contain.
func (s *session) resolveStatement(id string) (*mapping.Statement, error) {
	st, err := s.set.Statement(id)
	if err != nil {
		return nil, &ExitError{
			Code:    ExitCommandError,
			Message: fmt.Sprintf("unknown statement %q (available: %v)", id, s.set.IDs()),
			Err:     err,
		}
	}
	return st, nil
}
