package normalize

import (
	"math/big"
	"net/netip"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Value coerces a fetched database value into a JSON-safe primitive.
// Temporal values render as ISO-8601 strings and arbitrary-precision
// numerics as their canonical string form. Values of unrecognized
// structured types report ok=false and are dropped by callers rather than
// serialized as opaque blobs.
func Value(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case time.Time:
		return v.UTC().Format(time.RFC3339), true
	case pgtype.Numeric:
		if !v.Valid {
			return nil, true
		}
		if v.NaN {
			return "NaN", true
		}
		return numericString(v), true
	case *big.Int:
		return v.String(), true
	case netip.Addr:
		return v.String(), true
	case netip.Prefix:
		return v.String(), true
	case []byte:
		return string(v), true
	case []string:
		return v, true
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			normalized, ok := Value(item)
			if !ok {
				continue
			}
			out = append(out, normalized)
		}
		return out, true
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			normalized, ok := Value(item)
			if !ok {
				continue
			}
			out[key] = normalized
		}
		return out, true
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, true
	}

	// Remaining structs, pointers, and channels have no stable wire shape.
	kind := reflect.ValueOf(value).Kind()
	if kind == reflect.Struct || kind == reflect.Ptr || kind == reflect.Chan || kind == reflect.Func {
		return nil, false
	}

	return value, true
}

// numericString renders an arbitrary-precision numeric in canonical decimal
// form, e.g. Int=12345 Exp=-2 -> "123.45".
func numericString(n pgtype.Numeric) string {
	digits := n.Int.String()

	negative := false
	if strings.HasPrefix(digits, "-") {
		negative = true
		digits = digits[1:]
	}

	switch {
	case n.Exp > 0:
		digits += strings.Repeat("0", int(n.Exp))
	case n.Exp < 0:
		point := len(digits) + int(n.Exp)
		if point <= 0 {
			digits = "0." + strings.Repeat("0", -point) + digits
		} else {
			digits = digits[:point] + "." + digits[point:]
		}
	}

	if negative {
		digits = "-" + digits
	}

	return digits
}

// Row normalizes every column of a fetched row, dropping values that have
// no JSON-safe representation.
func Row(columns []string, values []any) map[string]any {
	row := make(map[string]any, len(columns))
	for i, column := range columns {
		if i >= len(values) {
			break
		}
		normalized, ok := Value(values[i])
		if !ok {
			continue
		}
		row[column] = normalized
	}
	return row
}
