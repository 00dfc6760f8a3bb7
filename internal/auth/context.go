package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const scopeKey contextKey = "queryScope"

// Scope identifies the principal a query executes as and the partitions it
// may see. The resource layer applies it as the sole visibility gate; the
// engine never adds access checks of its own.
type Scope struct {
	PrincipalID uuid.UUID
	Partitions  []string
	System      bool
}

// SystemScope returns the fixed principal with full visibility that is
// substituted when a caller supplies no scope, so legacy callers keep
// working.
func SystemScope() Scope {
	return Scope{PrincipalID: uuid.Nil, System: true}
}

// Restricted reports whether the scope limits visibility to a partition set.
func (s Scope) Restricted() bool {
	return !s.System
}

// ContextWithScope returns a new context carrying the caller's query scope.
func ContextWithScope(ctx context.Context, scope Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeKey, scope)
}

// ScopeFromContext retrieves the caller's query scope from the context, if any.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	scope, ok := ctx.Value(scopeKey).(Scope)
	return scope, ok
}
