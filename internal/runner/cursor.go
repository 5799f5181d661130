package runner

import (
	"context"
	"database/sql"
	"reflect"

	"github.com/roach88/remap/internal/mapping"
)

// rowCursor is a lazy forward-only cursor over a live row set. Rows
// materialize one at a time as Next is called; row bounds are enforced by
// skipping ahead of the offset and refusing rows past the limit.
type rowCursor struct {
	runner     *Runner
	rows       *sql.Rows
	cols       []string
	resultType reflect.Type
	bounds     mapping.RowBounds
	cancel     context.CancelFunc

	open     bool
	consumed bool
	index    int
	skipped  int
	fetched  int
	err      error
}

// Next returns the next materialized row. ok is false once the row set is
// exhausted, the limit is reached, or an error occurred; check Err after a
// false return.
func (c *rowCursor) Next() (any, bool) {
	if !c.open || c.consumed || c.err != nil {
		return nil, false
	}
	for c.skipped < c.bounds.Offset {
		if !c.rows.Next() {
			c.finish()
			return nil, false
		}
		c.skipped++
	}
	if c.fetched >= c.bounds.Limit || !c.rows.Next() {
		c.finish()
		return nil, false
	}
	row, err := c.runner.materializeNext(c.rows, c.cols, c.resultType)
	if err != nil {
		c.err = err
		c.finish()
		return nil, false
	}
	c.fetched++
	c.index++
	return row, true
}

// Err returns the first error encountered during iteration.
func (c *rowCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

// IsOpen reports whether the cursor still holds its row set.
func (c *rowCursor) IsOpen() bool { return c.open }

// IsConsumed reports whether iteration ran to completion.
func (c *rowCursor) IsConsumed() bool { return c.consumed }

// CurrentIndex returns the zero-based index of the last row returned, or -1
// before the first row.
func (c *rowCursor) CurrentIndex() int { return c.index }

// Close releases the row set. Closing twice is a no-op.
func (c *rowCursor) Close() error {
	if !c.open {
		return nil
	}
	c.open = false
	err := c.rows.Close()
	c.cancel()
	return err
}

// finish marks the cursor consumed and releases the row set.
func (c *rowCursor) finish() {
	c.consumed = true
	if c.open {
		c.open = false
		if err := c.rows.Close(); err != nil && c.err == nil {
			c.err = err
		}
		c.cancel()
	}
}
