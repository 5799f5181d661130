// Package exec implements the session-scoped query execution core: the
// composite cache fingerprint, the session-local result cache, the deferred
// load queue, and the executor that coordinates them around an external
// statement runner.
//
// An executor is confined to one logical session. It is reentrant: nested
// queries issued while mapping an outer result are expected and tracked by a
// query stack depth counter, but it is not safe for concurrent use from
// multiple goroutines. The depth counter guarantees that deferred loads
// drain, and statement-scoped caches clear, only when the outermost query
// unwinds; a pending placeholder in the local cache is what keeps circular
// references from recursing forever in between.
package exec
