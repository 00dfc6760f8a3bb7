package normalize

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTemporal(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	got, ok := Value(ts)
	require.True(t, ok)
	assert.Equal(t, "2025-06-01T12:30:00Z", got)
}

func TestValueNumeric(t *testing.T) {
	numeric := pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}

	got, ok := Value(numeric)
	require.True(t, ok)
	assert.Equal(t, "123.45", got)
}

func TestValueScalarsPassThrough(t *testing.T) {
	for _, value := range []any{true, "text", int64(7), 3.14, nil} {
		got, ok := Value(value)
		require.True(t, ok)
		assert.Equal(t, value, got)
	}
}

func TestValueUnrecognizedStructDropped(t *testing.T) {
	type opaque struct{ A int }

	_, ok := Value(opaque{A: 1})
	assert.False(t, ok)
}

func TestValueNestedCollections(t *testing.T) {
	type opaque struct{ A int }

	got, ok := Value(map[string]any{
		"list":   []any{"a", opaque{}, int64(2)},
		"nested": map[string]any{"ok": true},
	})
	require.True(t, ok)

	m, isMap := got.(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, []any{"a", int64(2)}, m["list"])
	assert.Equal(t, map[string]any{"ok": true}, m["nested"])
}

func TestRowDropsUnrepresentableColumns(t *testing.T) {
	type opaque struct{ A int }

	row := Row([]string{"id", "blob"}, []any{"d-1", opaque{}})

	assert.Equal(t, map[string]any{"id": "d-1"}, row)
}
