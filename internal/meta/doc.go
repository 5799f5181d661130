// Package meta provides cached reflective property metadata for value-object
// types.
//
// For a given struct type, meta resolves the set of readable and writable
// properties from accessor methods (GetX/IsX/SetX) and exported fields,
// applying deterministic conflict resolution when covariant accessors derive
// the same property name. The resolved metadata is built once per type and
// cached process-wide in a Registry.
//
// Accessor dispatch is decided at build time: each property binds to either a
// method-backed or a field-backed accessor, invoked uniformly afterwards with
// no per-call type inspection.
package meta
