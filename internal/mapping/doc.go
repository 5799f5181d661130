// Package mapping provides the statement model shared by all other internal
// packages.
//
// This package contains type definitions and small value helpers only. All
// other internal packages import mapping; mapping imports nothing internal.
// This keeps the statement model the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Statements are immutable after configuration load
//   - BoundSQL instances handed to callers are per-call copies (additional
//     parameters are call-local state)
//   - Row ordering is always the order yielded by the statement runner
package mapping
