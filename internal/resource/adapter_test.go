package resource

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/srql/internal/auth"
	"github.com/carverauto/srql/internal/domain"
)

func TestRegistryResolve(t *testing.T) {
	registry := NewRegistry()

	devices, err := registry.Resolve("devices")
	require.NoError(t, err)
	assert.Equal(t, "unified_devices", devices.Table)

	aliased, err := registry.Resolve("device_inventory")
	require.NoError(t, err)
	assert.Equal(t, "devices", aliased.Name)

	_, err = registry.Resolve("nonsense")
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)
}

func TestBuildSelectMapsStatusToAvailability(t *testing.T) {
	registry := NewRegistry()
	devices, err := registry.Resolve("devices")
	require.NoError(t, err)

	query := domain.ParsedQuery{
		Entity: "devices",
		Filters: []domain.Filter{
			{Field: "status", Op: domain.OpEqual, Value: "online"},
		},
		Limit: 10,
	}

	sql, args, ignored, limit := buildSelect(devices, query, auth.SystemScope())

	assert.Contains(t, sql, `"is_available" = $1`)
	assert.Contains(t, sql, `ORDER BY "last_seen" DESC`)
	assert.Equal(t, 10, limit)
	assert.Empty(t, ignored)
	require.Len(t, args, 2)
	assert.Equal(t, true, args[0])
	assert.Equal(t, 10, args[1])
}

func TestBuildSelectListAndTimeAndSort(t *testing.T) {
	registry := NewRegistry()
	events, err := registry.Resolve("events")
	require.NoError(t, err)

	since := time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC)
	query := domain.ParsedQuery{
		Entity: "events",
		Filters: []domain.Filter{
			{Field: "occurred_at", Op: domain.OpGreaterThanOrEqual, Value: since},
			{Field: "severity", Op: domain.OpIn, Value: []string{"Critical", "High"}},
		},
		Sort: &domain.Sort{Field: "event_timestamp", Direction: domain.SortDesc},
	}

	sql, args, ignored, limit := buildSelect(events, query, auth.SystemScope())

	assert.Contains(t, sql, `"occurred_at" >= $1`)
	assert.Contains(t, sql, `"severity" = ANY($2)`)
	assert.Contains(t, sql, `ORDER BY "occurred_at" DESC`)
	assert.Empty(t, ignored)
	assert.Equal(t, defaultStructuredLimit, limit)
	require.Len(t, args, 3)
	assert.Equal(t, since, args[0])
	assert.Equal(t, []string{"Critical", "High"}, args[1])
}

func TestBuildSelectSkipsUnknownFields(t *testing.T) {
	registry := NewRegistry()
	devices, err := registry.Resolve("devices")
	require.NoError(t, err)

	query := domain.ParsedQuery{
		Entity: "devices",
		Filters: []domain.Filter{
			{Field: "no_such_field", Op: domain.OpEqual, Value: "x"},
			{Field: "hostname", Op: domain.OpContains, Value: "cam"},
		},
		Sort: &domain.Sort{Field: "also_missing", Direction: domain.SortAsc},
	}

	sql, args, ignored, _ := buildSelect(devices, query, auth.SystemScope())

	assert.NotContains(t, sql, "no_such_field")
	assert.Contains(t, sql, `"hostname"::text ILIKE $1`)
	assert.Contains(t, sql, `ORDER BY "last_seen" DESC`)
	assert.ElementsMatch(t, []string{"no_such_field", "also_missing"}, ignored)
	assert.Equal(t, "%cam%", args[0])
}

func TestBuildSelectScopedPartitions(t *testing.T) {
	registry := NewRegistry()
	devices, err := registry.Resolve("devices")
	require.NoError(t, err)

	scope := auth.Scope{Partitions: []string{"east", "west"}}
	sql, args, _, _ := buildSelect(devices, domain.ParsedQuery{Entity: "devices"}, scope)

	assert.Contains(t, sql, `"partition" = ANY($1)`)
	assert.Equal(t, []string{"east", "west"}, args[0])
}

func TestBuildSelectSkipsUnbindableValues(t *testing.T) {
	registry := NewRegistry()
	events, err := registry.Resolve("events")
	require.NoError(t, err)

	query := domain.ParsedQuery{
		Entity: "events",
		Filters: []domain.Filter{
			{Field: "level", Op: domain.OpGreaterThan, Value: "high"},
		},
	}

	sql, _, ignored, _ := buildSelect(events, query, auth.SystemScope())

	assert.NotContains(t, sql, `"level" >`)
	assert.Equal(t, []string{"level"}, ignored)
}

func TestExecuteDeniesEmptyRestrictedScope(t *testing.T) {
	adapter := NewAdapter(NewRegistry(), nil, zerolog.Nop())

	_, err := adapter.Execute(context.Background(), domain.ParsedQuery{Entity: "devices"}, auth.Scope{})

	assert.ErrorIs(t, err, domain.ErrAuthorizationDenied)
}

func TestExecuteUnknownEntity(t *testing.T) {
	adapter := NewAdapter(NewRegistry(), nil, zerolog.Nop())

	_, err := adapter.Execute(context.Background(), domain.ParsedQuery{Entity: "widgets"}, auth.SystemScope())

	assert.ErrorIs(t, err, domain.ErrUnknownEntity)
}
