package srql

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/srql/internal/domain"
)

// reservedTokens are structural keys that never become filter fields.
var reservedTokens = map[string]bool{
	"in":        true,
	"time":      true,
	"sort":      true,
	"limit":     true,
	"cursor":    true,
	"direction": true,
}

var statExprPattern = regexp.MustCompile(`^(count|sum|avg|min|max)\(\s*([a-zA-Z0-9_.]*)\s*\)\s+(?i:as)\s+([a-zA-Z0-9_]+)$`)

// Parse converts a raw query string into its structured form, resolving
// time shorthand against the current instant.
func Parse(raw string) domain.ParsedQuery {
	return ParseAt(raw, time.Now().UTC())
}

// ParseAt parses a raw query string with an explicit evaluation instant.
// Parsing is pure: identical input and instant always yield an identical
// result. Unrecognized fragments are dropped rather than rejected; only the
// surrounding request shape is validated strictly.
func ParseAt(raw string, now time.Time) domain.ParsedQuery {
	query := domain.ParsedQuery{Entity: ExtractEntity(raw)}

	var timeFilter *domain.Filter

	for _, token := range tokenize(raw) {
		key, value, ok := splitToken(token)
		if !ok {
			continue
		}

		key = strings.ToLower(strings.TrimSpace(key))

		switch key {
		case "in":
			// Entity already extracted.
		case "time":
			shorthand := strings.ToLower(unquote(strings.TrimSpace(value)))
			if lookback, ok := domain.TimeShorthand[shorthand]; ok {
				timeFilter = &domain.Filter{
					Field: DefaultTimestampField(query.Entity),
					Op:    domain.OpGreaterThanOrEqual,
					Value: now.Add(-lookback),
				}
			}
			// Unrecognized time tokens add no filter.
		case "sort":
			query.Sort = parseSort(value)
		case "limit":
			if n, err := strconv.Atoi(unquote(strings.TrimSpace(value))); err == nil && n > 0 {
				query.Limit = n
			}
		case "stats":
			query.Stats = parseStats(unquote(strings.TrimSpace(value)))
		case "cursor", "direction":
			// Pagination belongs to the request envelope, not the query text.
		default:
			if filter, ok := buildFilter(key, value); ok {
				query.Filters = append(query.Filters, filter)
			}
		}
	}

	if timeFilter != nil {
		query.Filters = append([]domain.Filter{*timeFilter}, query.Filters...)
	}

	return query
}

// ExtractEntity returns the lower-cased target entity of a query string.
// An in:<entity> token wins; otherwise the first whitespace or pipe
// delimited token of the whole string is used. Empty input yields "".
func ExtractEntity(raw string) string {
	tokens := tokenize(raw)
	for _, token := range tokens {
		lower := strings.ToLower(token)
		if strings.HasPrefix(lower, "in:") {
			return strings.ToLower(unquote(strings.TrimSpace(token[len("in:"):])))
		}
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '|' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return ""
	}

	return strings.ToLower(fields[0])
}

func buildFilter(key, rawValue string) (domain.Filter, bool) {
	field := key
	op := domain.OpEqual

	if strings.HasPrefix(field, "!") {
		field = field[1:]
		op = domain.OpNotEqual
	}

	if field == "" || reservedTokens[field] {
		return domain.Filter{}, false
	}

	scalar, list, isList, quoted := parseValue(rawValue)

	if isList {
		if len(list) == 0 {
			return domain.Filter{}, false
		}
		return domain.Filter{Field: field, Op: domain.OpIn, Value: list}, true
	}

	if scalar == "" {
		return domain.Filter{}, false
	}

	if !quoted && op == domain.OpEqual {
		switch {
		case strings.HasPrefix(scalar, ">="):
			op = domain.OpGreaterThanOrEqual
			scalar = strings.TrimSpace(scalar[2:])
		case strings.HasPrefix(scalar, "<="):
			op = domain.OpLessThanOrEqual
			scalar = strings.TrimSpace(scalar[2:])
		case strings.HasPrefix(scalar, ">"):
			op = domain.OpGreaterThan
			scalar = strings.TrimSpace(scalar[1:])
		case strings.HasPrefix(scalar, "<"):
			op = domain.OpLessThan
			scalar = strings.TrimSpace(scalar[1:])
		case strings.Contains(scalar, "%"):
			op = domain.OpContains
			scalar = strings.Trim(scalar, "%")
		}
		if scalar == "" {
			return domain.Filter{}, false
		}
	}

	return domain.Filter{Field: field, Op: op, Value: scalar}, true
}

func parseSort(raw string) *domain.Sort {
	trimmed := unquote(strings.TrimSpace(raw))
	if trimmed == "" {
		return nil
	}

	// Only the first sort segment is honored.
	if idx := strings.Index(trimmed, ","); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	parts := strings.SplitN(trimmed, ":", 2)
	field := strings.ToLower(strings.TrimSpace(parts[0]))
	if field == "" {
		return nil
	}

	direction := domain.SortDesc
	if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "asc") {
		direction = domain.SortAsc
	}

	return &domain.Sort{Field: field, Direction: direction}
}

func parseStats(raw string) []domain.Stat {
	var stats []domain.Stat

	for _, segment := range splitList(raw) {
		match := statExprPattern.FindStringSubmatch(strings.TrimSpace(segment))
		if match == nil {
			continue
		}

		kind := domain.StatKind(strings.ToLower(match[1]))
		field := strings.ToLower(match[2])
		alias := match[3]

		if kind == domain.StatCount {
			if field != "" {
				continue
			}
		} else if field == "" {
			continue
		}

		stats = append(stats, domain.Stat{Kind: kind, Field: field, Alias: alias})
	}

	return stats
}

func splitToken(token string) (key, value string, ok bool) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// parseValue interprets a token value: a parenthesized comma list becomes an
// ordered list, quoted strings keep their literal content, everything else
// is a bare scalar.
func parseValue(raw string) (scalar string, list []string, isList, quoted bool) {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")") && len(trimmed) >= 2 {
		inner := trimmed[1 : len(trimmed)-1]
		items := make([]string, 0, 4)
		for _, item := range splitList(inner) {
			item = unquote(strings.TrimSpace(item))
			if item != "" {
				items = append(items, item)
			}
		}
		return "", items, true, false
	}

	if isQuoted(trimmed) {
		return trimmed[1 : len(trimmed)-1], nil, false, true
	}

	return trimmed, nil, false, false
}

func isQuoted(value string) bool {
	if len(value) < 2 {
		return false
	}
	first := value[0]
	return (first == '"' || first == '\'') && value[len(value)-1] == first
}

func unquote(value string) string {
	if isQuoted(value) {
		return value[1 : len(value)-1]
	}
	return value
}

// tokenize splits a query string on whitespace and pipes while keeping
// quoted runs and parenthesized groups intact.
func tokenize(input string) []string {
	var tokens []string
	var current strings.Builder
	var quote rune
	depth := 0
	escaped := false

	flush := func() {
		token := strings.TrimSpace(current.String())
		if token != "" {
			tokens = append(tokens, token)
		}
		current.Reset()
	}

	for _, ch := range input {
		if escaped {
			current.WriteRune(ch)
			escaped = false
			continue
		}

		if quote != 0 {
			if ch == '\\' {
				escaped = true
				continue
			}
			if ch == quote {
				quote = 0
			}
			current.WriteRune(ch)
			continue
		}

		switch {
		case ch == '"' || ch == '\'' || ch == '`':
			quote = ch
			current.WriteRune(ch)
		case ch == '(':
			depth++
			current.WriteRune(ch)
		case ch == ')':
			if depth > 0 {
				depth--
			}
			current.WriteRune(ch)
		case (ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '|') && depth == 0:
			flush()
		default:
			current.WriteRune(ch)
		}
	}

	flush()

	return tokens
}

// splitList splits a comma-separated list while honoring quotes and nesting.
func splitList(value string) []string {
	var items []string
	var current strings.Builder
	var quote rune
	depth := 0
	escaped := false

	flush := func() {
		item := strings.TrimSpace(current.String())
		if item != "" {
			items = append(items, item)
		}
		current.Reset()
	}

	for _, ch := range value {
		if escaped {
			current.WriteRune(ch)
			escaped = false
			continue
		}

		if quote != 0 {
			if ch == '\\' {
				escaped = true
				continue
			}
			if ch == quote {
				quote = 0
			}
			current.WriteRune(ch)
			continue
		}

		switch {
		case ch == '"' || ch == '\'' || ch == '`':
			quote = ch
			current.WriteRune(ch)
		case ch == '(':
			depth++
			current.WriteRune(ch)
		case ch == ')':
			if depth > 0 {
				depth--
			}
			current.WriteRune(ch)
		case ch == ',' && depth == 0:
			flush()
		default:
			current.WriteRune(ch)
		}
	}

	flush()

	return items
}
