package resource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/carverauto/srql/internal/auth"
	"github.com/carverauto/srql/internal/domain"
	"github.com/carverauto/srql/internal/normalize"
	"github.com/carverauto/srql/internal/srql"
)

const defaultStructuredLimit = 100

// Adapter executes parsed queries against the in-process resource model.
// Filters and sorts naming attributes a resource does not have are skipped
// and reported in diagnostics rather than failing the query; evolving
// schemas make that the safer default.
type Adapter struct {
	registry *Registry
	pool     *pgxpool.Pool
	log      zerolog.Logger
}

// NewAdapter creates a structured-path adapter over the given pool.
func NewAdapter(registry *Registry, pool *pgxpool.Pool, log zerolog.Logger) *Adapter {
	return &Adapter{registry: registry, pool: pool, log: log}
}

// Execute resolves the query's entity, folds its filters into scoped
// predicates, and returns formatted rows. Cursor pagination is not
// implemented on this path; the envelope reports the applied limit only.
func (a *Adapter) Execute(ctx context.Context, query domain.ParsedQuery, scope auth.Scope) (domain.Envelope, error) {
	descriptor, err := a.registry.Resolve(query.Entity)
	if err != nil {
		return domain.Envelope{}, err
	}

	if scope.Restricted() && len(scope.Partitions) == 0 {
		return domain.Envelope{}, fmt.Errorf("%w: scope grants no partitions", domain.ErrAuthorizationDenied)
	}

	sql, args, ignored, limit := buildSelect(descriptor, query, scope)

	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrExecutionFailure, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name
	}

	results := make([]any, 0, limit)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrExecutionFailure, err)
		}
		row := normalize.Row(columns, values)
		results = append(results, srql.AliasRow(descriptor.Name, row))
	}
	if err := rows.Err(); err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrExecutionFailure, err)
	}

	envelope := domain.Envelope{
		Results:    results,
		Pagination: domain.Pagination{Limit: limit},
	}
	if len(ignored) > 0 {
		envelope.Diagnostics = map[string]any{"ignored_fields": ignored}
		a.log.Debug().Strs("ignored_fields", ignored).Str("entity", descriptor.Name).
			Msg("skipped filters referencing unknown attributes")
	}

	return envelope, nil
}

type sqlBuilder struct {
	args []any
}

func newSQLBuilder() *sqlBuilder {
	return &sqlBuilder{args: make([]any, 0)}
}

func (b *sqlBuilder) addArg(value any) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

// buildSelect folds the parsed query into a parameterized SELECT. Each
// filter either contributes a predicate or lands in the ignored list; the
// fold never aborts.
func buildSelect(descriptor Descriptor, query domain.ParsedQuery, scope auth.Scope) (sql string, args []any, ignored []string, limit int) {
	builder := newSQLBuilder()
	where := make([]string, 0, len(query.Filters)+1)
	ignored = make([]string, 0)

	for _, filter := range query.Filters {
		backend := srql.ToBackend(descriptor.Name, filter.Field)
		columnType, ok := descriptor.Columns[backend]
		if !ok {
			ignored = append(ignored, filter.Field)
			continue
		}

		clause, ok := buildPredicate(builder, descriptor.Name, backend, columnType, filter)
		if !ok {
			ignored = append(ignored, filter.Field)
			continue
		}
		where = append(where, clause)
	}

	if scope.Restricted() {
		if _, ok := descriptor.Columns["partition"]; ok {
			where = append(where, fmt.Sprintf("%s = ANY(%s)", quoteIdent("partition"), builder.addArg(scope.Partitions)))
		}
	}

	orderField := descriptor.TimestampField
	orderDir := "DESC"
	if query.Sort != nil {
		mapped := srql.ToBackend(descriptor.Name, query.Sort.Field)
		if _, ok := descriptor.Columns[mapped]; ok {
			orderField = mapped
			if query.Sort.Direction == domain.SortAsc {
				orderDir = "ASC"
			}
		} else {
			ignored = append(ignored, query.Sort.Field)
		}
	}

	limit = query.Limit
	if limit <= 0 {
		limit = defaultStructuredLimit
	}

	projection := make([]string, 0, len(descriptor.Columns))
	for _, column := range descriptor.columnNames() {
		projection = append(projection, quoteIdent(column))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(projection, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(descriptor.Table)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(quoteIdent(orderField))
	sb.WriteString(" ")
	sb.WriteString(orderDir)
	sb.WriteString(" NULLS LAST LIMIT ")
	sb.WriteString(builder.addArg(limit))

	return sb.String(), builder.args, ignored, limit
}

func buildPredicate(builder *sqlBuilder, entity, column string, columnType ColumnType, filter domain.Filter) (string, bool) {
	ident := quoteIdent(column)

	if filter.Op == domain.OpIn {
		items, ok := filter.Value.([]string)
		if !ok || len(items) == 0 {
			return "", false
		}
		if columnType == ColumnInt {
			ints := make([]int64, 0, len(items))
			for _, item := range items {
				n, err := strconv.ParseInt(item, 10, 64)
				if err != nil {
					return "", false
				}
				ints = append(ints, n)
			}
			return fmt.Sprintf("%s = ANY(%s)", ident, builder.addArg(ints)), true
		}
		return fmt.Sprintf("%s = ANY(%s)", ident, builder.addArg(items)), true
	}

	value := srql.CoerceValue(entity, column, filter.Value)

	if filter.Op == domain.OpContains {
		text, ok := value.(string)
		if !ok {
			return "", false
		}
		if columnType == ColumnTextArray {
			return fmt.Sprintf("%s = ANY(%s)", builder.addArg(text), ident), true
		}
		return fmt.Sprintf("%s::text ILIKE %s", ident, builder.addArg("%"+text+"%")), true
	}

	bound, ok := bindValue(columnType, value)
	if !ok {
		return "", false
	}

	var op string
	switch filter.Op {
	case domain.OpEqual:
		op = "="
	case domain.OpNotEqual:
		op = "<>"
	case domain.OpGreaterThan:
		op = ">"
	case domain.OpGreaterThanOrEqual:
		op = ">="
	case domain.OpLessThan:
		op = "<"
	case domain.OpLessThanOrEqual:
		op = "<="
	default:
		return "", false
	}

	return fmt.Sprintf("%s %s %s", ident, op, builder.addArg(bound)), true
}

// bindValue converts a parsed filter value into the representation the
// column stores. Unconvertible values cause the predicate to be skipped.
func bindValue(columnType ColumnType, value any) (any, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, columnType == ColumnTimestamptz
	case bool:
		return v, columnType == ColumnBool
	case string:
		switch columnType {
		case ColumnInt:
			n, err := strconv.ParseInt(v, 10, 64)
			return n, err == nil
		case ColumnFloat:
			f, err := strconv.ParseFloat(v, 64)
			return f, err == nil
		case ColumnBool:
			b, err := strconv.ParseBool(v)
			return b, err == nil
		case ColumnTimestamptz:
			ts, err := time.Parse(time.RFC3339, v)
			return ts, err == nil
		default:
			return v, true
		}
	default:
		return nil, false
	}
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
