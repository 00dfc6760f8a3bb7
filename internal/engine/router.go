package engine

import "strings"

// Path identifies which execution backend satisfies a query.
type Path string

const (
	// PathStructured routes through the in-process resource adapter.
	PathStructured Path = "structured"
	// PathRaw routes through the external translator and raw SQL.
	PathRaw Path = "raw"
)

// Mode captures caller intent when selecting an execution backend.
type Mode string

const (
	// ModeAuto lets the router choose based on the flag and allow-list.
	ModeAuto Mode = "auto"
	// ModeStructuredOnly forces the structured path for eligible entities
	// even when the flag is off; ineligible entities still take the raw path.
	ModeStructuredOnly Mode = "structured_only"
	// ModeRawOnly forces the raw path irrespective of eligibility.
	ModeRawOnly Mode = "raw_only"
)

// Router decides the execution path for an entity. The structured-path flag
// and allow-list are injected at construction so both routing modes can be
// exercised deterministically; nothing is read from ambient state.
type Router struct {
	enabled bool
	allowed map[string]struct{}
}

// NewRouter creates a router from the structured-path flag and allow-list.
func NewRouter(enabled bool, allowlist []string) *Router {
	allowed := make(map[string]struct{}, len(allowlist))
	for _, entity := range allowlist {
		allowed[strings.ToLower(strings.TrimSpace(entity))] = struct{}{}
	}
	return &Router{enabled: enabled, allowed: allowed}
}

// Route picks the execution path for an entity. The decision happens once
// per request, before any execution side effects, and is independent of
// filter content.
func (r *Router) Route(entity string, mode Mode) Path {
	switch mode {
	case ModeRawOnly:
		return PathRaw
	case ModeStructuredOnly:
		if r.allowlisted(entity) {
			return PathStructured
		}
		return PathRaw
	default:
		if r.enabled && r.allowlisted(entity) {
			return PathStructured
		}
		return PathRaw
	}
}

func (r *Router) allowlisted(entity string) bool {
	if entity == "" {
		return false
	}
	_, ok := r.allowed[entity]
	return ok
}
