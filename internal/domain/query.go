package domain

import "time"

// Operator represents a filter comparison operator produced by the parser.
type Operator string

const (
	OpEqual              Operator = "eq"
	OpNotEqual           Operator = "neq"
	OpGreaterThan        Operator = "gt"
	OpGreaterThanOrEqual Operator = "gte"
	OpLessThan           Operator = "lt"
	OpLessThanOrEqual    Operator = "lte"
	OpContains           Operator = "contains"
	OpIn                 Operator = "in"
)

// Filter represents a single field predicate parsed from a query string.
// Value holds a string scalar, a time.Time for synthesized time filters,
// or an ordered []string for list predicates.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// SortDirection represents ordering direction for sortable fields.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort captures the ordering preference of a query.
type Sort struct {
	Field     string
	Direction SortDirection
}

// StatKind enumerates supported aggregate functions.
type StatKind string

const (
	StatCount StatKind = "count"
	StatSum   StatKind = "sum"
	StatAvg   StatKind = "avg"
	StatMin   StatKind = "min"
	StatMax   StatKind = "max"
)

// Stat represents one aggregate expression from a stats clause.
// Field is empty for count.
type Stat struct {
	Kind  StatKind
	Field string
	Alias string
}

// ParsedQuery is the structured intermediate form of a raw query string.
type ParsedQuery struct {
	Entity  string
	Filters []Filter
	Sort    *Sort
	Stats   []Stat
	Limit   int
}

// TimeShorthand maps recognized time tokens to their lookback durations.
var TimeShorthand = map[string]time.Duration{
	"last_1h":  time.Hour,
	"last_24h": 24 * time.Hour,
	"last_7d":  7 * 24 * time.Hour,
	"last_30d": 30 * 24 * time.Hour,
}
