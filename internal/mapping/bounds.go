package mapping

import "math"

// NoRowLimit is the limit value meaning "unbounded".
const NoRowLimit = math.MaxInt

// RowBounds selects a window of the result rows by offset and limit.
// Bounds are applied by the statement runner while reading rows; they are
// part of the cache fingerprint, so different windows cache independently.
type RowBounds struct {
	Offset int
	Limit  int
}

// DefaultRowBounds returns the unbounded window starting at row zero.
func DefaultRowBounds() RowBounds {
	return RowBounds{Offset: 0, Limit: NoRowLimit}
}
