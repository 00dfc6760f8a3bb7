package rawexec

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/carverauto/srql/internal/domain"
	"github.com/carverauto/srql/internal/normalize"
	"github.com/carverauto/srql/internal/srql"
	"github.com/carverauto/srql/internal/translator"
)

// Request carries everything the raw path needs for one query.
type Request struct {
	Query     string
	Limit     *int
	Cursor    string
	Direction string
	Mode      string
}

// Executor runs queries through the external translator and executes the
// returned parameterized SQL against the primary data store. Each execution
// is a single statement with no surrounding transaction.
type Executor struct {
	pool       *pgxpool.Pool
	translator translator.Translator
	log        zerolog.Logger
}

// NewExecutor creates a raw-path executor.
func NewExecutor(pool *pgxpool.Pool, t translator.Translator, log zerolog.Logger) *Executor {
	return &Executor{pool: pool, translator: t, log: log}
}

// Execute translates, binds, and runs the query, then shapes the response.
func (e *Executor) Execute(ctx context.Context, req Request) (domain.Envelope, error) {
	translation, err := e.translator.Translate(ctx, translator.Request{
		Query:     req.Query,
		Limit:     req.Limit,
		Cursor:    req.Cursor,
		Direction: req.Direction,
		Mode:      req.Mode,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTranslationFailure) {
			return domain.Envelope{}, err
		}
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrTranslationFailure, err)
	}

	args, err := translator.DecodeParams(translation.Params)
	if err != nil {
		return domain.Envelope{}, err
	}

	rows, err := e.pool.Query(ctx, translation.SQL, args...)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrExecutionFailure, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name
	}

	var fetched [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrExecutionFailure, err)
		}
		fetched = append(fetched, values)
	}
	if err := rows.Err(); err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrExecutionFailure, err)
	}

	entity := srql.ExtractEntity(req.Query)
	results := buildResults(entity, columns, fetched)

	return domain.Envelope{
		Results:    results,
		Pagination: buildPagination(translation.Pagination, req.Limit, len(results)),
		Viz:        translation.VizMap(),
	}, nil
}

// buildResults shapes fetched rows: a single projected column yields a flat
// sequence of scalars, anything wider yields aliased column maps so both
// execution paths expose the same field names.
func buildResults(entity string, columns []string, rows [][]any) []any {
	results := make([]any, 0, len(rows))

	if len(columns) == 1 {
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			value, ok := normalize.Value(row[0])
			if !ok {
				continue
			}
			results = append(results, value)
		}
		return results
	}

	for _, row := range rows {
		results = append(results, srql.AliasRow(entity, normalize.Row(columns, row)))
	}

	return results
}

// buildPagination reconciles the translator's cursor metadata with the
// actual result count. A next cursor is only surfaced when a limit is known
// and the page filled it; otherwise there may be no further rows and the
// cursor would dangle. The previous cursor passes through unconditionally.
func buildPagination(meta translator.Pagination, requestLimit *int, count int) domain.Pagination {
	limit := 0
	switch {
	case meta.Limit != nil && *meta.Limit > 0:
		limit = *meta.Limit
	case requestLimit != nil && *requestLimit > 0:
		limit = *requestLimit
	}

	pagination := domain.Pagination{
		PrevCursor: meta.PrevCursor,
		Limit:      limit,
	}

	if limit > 0 && count >= limit {
		pagination.NextCursor = meta.NextCursor
	}

	return pagination
}
