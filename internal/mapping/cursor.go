package mapping

// Cursor is a lazily consumed, forward-only, single-pass view of a query's
// rows. Cursors never touch the local result cache; they exist for result
// sets too large to hold in memory.
//
// It is not safe to run cache-using queries on the same session while a
// cursor from that session's transaction is still open.
type Cursor interface {
	// Next returns the next row and true, or a zero value and false once
	// the cursor is consumed or closed. Consuming a row advances the
	// current index.
	Next() (any, bool)

	// Err returns the first error encountered while fetching rows.
	// It should be checked after Next returns false.
	Err() error

	// IsOpen reports whether the cursor has started fetching rows.
	IsOpen() bool

	// IsConsumed reports whether every row has been returned.
	IsConsumed() bool

	// CurrentIndex returns the zero-based index of the most recently
	// returned row, or -1 if no row has been returned yet.
	CurrentIndex() int

	// Close releases the underlying row stream. Closing an already-closed
	// cursor is a no-op.
	Close() error
}

// Transaction is the executor's handle on the underlying store transaction.
// Close failures are swallowed by the executor; nothing useful can be done
// with them at close time.
type Transaction interface {
	Commit() error
	Rollback() error
	Close() error
}
