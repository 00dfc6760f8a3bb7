package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carverauto/srql/internal/auth"
	"github.com/carverauto/srql/internal/domain"
	"github.com/carverauto/srql/internal/rawexec"
	"github.com/carverauto/srql/internal/srql"
	"github.com/carverauto/srql/internal/telemetry"
)

// Direction constants accepted on the request envelope.
const (
	DirectionNext = "next"
	DirectionPrev = "prev"
)

// StructuredExecutor runs a parsed query against the in-process resource
// model under the caller's scope.
type StructuredExecutor interface {
	Execute(ctx context.Context, query domain.ParsedQuery, scope auth.Scope) (domain.Envelope, error)
}

// RawExecutor runs a query through the translator and the primary store.
type RawExecutor interface {
	Execute(ctx context.Context, req rawexec.Request) (domain.Envelope, error)
}

// Request is the engine's external contract: a raw query string plus
// pagination and routing options. Scope is nil for legacy callers, which
// execute as the system principal.
type Request struct {
	Query     string      `json:"query"`
	Limit     *int        `json:"limit,omitempty"`
	Cursor    string      `json:"cursor,omitempty"`
	Direction string      `json:"direction,omitempty"`
	Mode      string      `json:"mode,omitempty"`
	Scope     *auth.Scope `json:"-"`
}

// Engine parses queries, routes them to an execution path, and shapes the
// response. All per-query state is request-local; an Engine is safe for
// unbounded parallel use.
type Engine struct {
	router     *Router
	structured StructuredExecutor
	raw        RawExecutor
	recorder   telemetry.Recorder
	log        zerolog.Logger
	now        func() time.Time
}

// New creates a query engine.
func New(router *Router, structured StructuredExecutor, raw RawExecutor, recorder telemetry.Recorder, log zerolog.Logger) *Engine {
	return &Engine{
		router:     router,
		structured: structured,
		raw:        raw,
		recorder:   recorder,
		log:        log,
		now:        time.Now,
	}
}

// Execute runs one query end to end. The request shape is validated
// strictly; query-text fragments are parsed permissively. A structured-path
// execution error surfaces directly rather than degrading to the raw path.
func (e *Engine) Execute(ctx context.Context, req Request) (domain.Envelope, error) {
	start := e.now()

	if strings.TrimSpace(req.Query) == "" {
		e.recorder.Record("none", "", e.now().Sub(start), "invalid")
		return domain.Envelope{}, domain.ErrMissingQuery
	}

	if req.Direction != "" && req.Direction != DirectionNext && req.Direction != DirectionPrev {
		e.recorder.Record("none", "", e.now().Sub(start), "invalid")
		return domain.Envelope{}, fmt.Errorf("%w: direction must be %q or %q",
			domain.ErrInvalidQuery, DirectionNext, DirectionPrev)
	}

	parsed := srql.ParseAt(req.Query, e.now().UTC())
	if parsed.Limit == 0 && req.Limit != nil && *req.Limit > 0 {
		parsed.Limit = *req.Limit
	}

	path := e.router.Route(parsed.Entity, Mode(req.Mode))

	var envelope domain.Envelope
	var err error

	switch path {
	case PathStructured:
		scope := auth.SystemScope()
		if req.Scope != nil {
			scope = *req.Scope
		}
		envelope, err = e.structured.Execute(ctx, parsed, scope)
	default:
		envelope, err = e.raw.Execute(ctx, rawexec.Request{
			Query:     req.Query,
			Limit:     req.Limit,
			Cursor:    req.Cursor,
			Direction: req.Direction,
			Mode:      req.Mode,
		})
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	e.recorder.Record(string(path), parsed.Entity, e.now().Sub(start), status)

	if err != nil {
		e.log.Warn().Err(err).Str("path", string(path)).Str("entity", parsed.Entity).
			Msg("query failed")
		return domain.Envelope{}, err
	}

	return envelope, nil
}
