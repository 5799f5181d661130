package exec

import "fmt"

// CacheScope controls how long the session-local result cache lives.
type CacheScope string

const (
	// ScopeSession keeps cached results until a write, commit, rollback,
	// or explicit clear (the default).
	ScopeSession CacheScope = "session"

	// ScopeStatement clears the local cache every time an outermost query
	// returns. Nested queries within one statement still share entries;
	// the clear happens only when the query stack unwinds to zero.
	ScopeStatement CacheScope = "statement"
)

// ValidateCacheScope checks that scope is a known cache scope.
// Empty is valid and defaults to session.
func ValidateCacheScope(scope string) error {
	switch CacheScope(scope) {
	case ScopeSession, ScopeStatement, "":
		return nil
	default:
		return fmt.Errorf("invalid cache scope %q: must be session or statement", scope)
	}
}

// NormalizeCacheScope returns the scope with the default applied.
func NormalizeCacheScope(scope CacheScope) CacheScope {
	if scope == "" {
		return ScopeSession
	}
	return scope
}
