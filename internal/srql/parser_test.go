package srql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/srql/internal/domain"
)

func TestExtractEntity(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"in token", "in:devices status:online", "devices"},
		{"in token upper case", "IN:Devices", "devices"},
		{"in token not first", "status:online in:events", "events"},
		{"fallback first token", "devices status:online", "devices"},
		{"fallback pipe delimited", "events|stats:\"count() as total\"", "events"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEntity(tt.query))
		})
	}
}

func TestParseDeterminism(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	query := `in:events severity:(Critical,High) time:last_24h sort:event_timestamp:desc limit:25`

	first := ParseAt(query, now)
	second := ParseAt(query, now)

	assert.Equal(t, first, second)
}

func TestParseQuotedValueStaysLiteral(t *testing.T) {
	query := ParseAt(`in:events message:"a,b"`, time.Now().UTC())

	require.Len(t, query.Filters, 1)
	assert.Equal(t, "message", query.Filters[0].Field)
	assert.Equal(t, domain.OpEqual, query.Filters[0].Op)
	assert.Equal(t, "a,b", query.Filters[0].Value)
}

func TestParseParenthesizedListPreservesOrder(t *testing.T) {
	query := ParseAt(`in:events severity:(Critical,High)`, time.Now().UTC())

	require.Len(t, query.Filters, 1)
	assert.Equal(t, domain.OpIn, query.Filters[0].Op)
	assert.Equal(t, []string{"Critical", "High"}, query.Filters[0].Value)
}

func TestParseReservedWordsNeverBecomeFilters(t *testing.T) {
	query := ParseAt(
		`in:devices time:last_1h sort:last_seen limit:5 cursor:abc direction:next status:online`,
		time.Now().UTC(),
	)

	for _, filter := range query.Filters {
		assert.False(t, reservedTokens[filter.Field], "reserved token %q leaked into filters", filter.Field)
	}

	fields := make([]string, 0, len(query.Filters))
	for _, filter := range query.Filters {
		fields = append(fields, filter.Field)
	}
	assert.Contains(t, fields, "status")
}

func TestParseTimeShorthand(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("events target occurred_at", func(t *testing.T) {
		query := ParseAt("in:events time:last_24h", now)

		require.Len(t, query.Filters, 1)
		filter := query.Filters[0]
		assert.Equal(t, "occurred_at", filter.Field)
		assert.Equal(t, domain.OpGreaterThanOrEqual, filter.Op)
		assert.Equal(t, now.Add(-24*time.Hour), filter.Value)
	})

	t.Run("devices target last_seen", func(t *testing.T) {
		query := ParseAt("in:devices time:last_7d", now)

		require.Len(t, query.Filters, 1)
		assert.Equal(t, "last_seen", query.Filters[0].Field)
	})

	t.Run("unmapped entity targets created_at", func(t *testing.T) {
		query := ParseAt("in:flows time:last_24h", now)

		require.Len(t, query.Filters, 1)
		assert.Equal(t, "created_at", query.Filters[0].Field)
		assert.Equal(t, now.Add(-24*time.Hour), query.Filters[0].Value)
	})

	t.Run("unrecognized shorthand adds no filter", func(t *testing.T) {
		query := ParseAt("in:events time:last_90d", now)
		assert.Empty(t, query.Filters)
	})
}

func TestParseTimeFilterIsPrepended(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	query := ParseAt("in:events severity:Critical time:last_1h", now)

	require.Len(t, query.Filters, 2)
	assert.Equal(t, "occurred_at", query.Filters[0].Field)
	assert.Equal(t, "severity", query.Filters[1].Field)
}

func TestParseSort(t *testing.T) {
	t.Run("default direction is desc", func(t *testing.T) {
		query := ParseAt("in:devices sort:last_seen", time.Now().UTC())

		require.NotNil(t, query.Sort)
		assert.Equal(t, "last_seen", query.Sort.Field)
		assert.Equal(t, domain.SortDesc, query.Sort.Direction)
	})

	t.Run("explicit asc", func(t *testing.T) {
		query := ParseAt("in:devices sort:hostname:asc", time.Now().UTC())

		require.NotNil(t, query.Sort)
		assert.Equal(t, domain.SortAsc, query.Sort.Direction)
	})

	t.Run("unrecognized direction falls back to desc", func(t *testing.T) {
		query := ParseAt("in:devices sort:hostname:sideways", time.Now().UTC())

		require.NotNil(t, query.Sort)
		assert.Equal(t, domain.SortDesc, query.Sort.Direction)
	})
}

func TestParseStats(t *testing.T) {
	t.Run("count and aggregates", func(t *testing.T) {
		query := ParseAt(`in:events stats:"count() as total, avg(level) as avg_level"`, time.Now().UTC())

		require.Len(t, query.Stats, 2)
		assert.Equal(t, domain.Stat{Kind: domain.StatCount, Alias: "total"}, query.Stats[0])
		assert.Equal(t, domain.Stat{Kind: domain.StatAvg, Field: "level", Alias: "avg_level"}, query.Stats[1])
	})

	t.Run("malformed expressions dropped individually", func(t *testing.T) {
		query := ParseAt(`in:events stats:"count() as total, median(level) as m, sum() as s"`, time.Now().UTC())

		require.Len(t, query.Stats, 1)
		assert.Equal(t, "total", query.Stats[0].Alias)
	})
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 50, ParseAt("in:devices limit:50", time.Now().UTC()).Limit)
	assert.Zero(t, ParseAt("in:devices limit:-3", time.Now().UTC()).Limit)
	assert.Zero(t, ParseAt("in:devices limit:abc", time.Now().UTC()).Limit)
}

func TestParseOperatorPrefixes(t *testing.T) {
	query := ParseAt(`in:devices port:>=100 uptime:<30 !poller_id:p1 hostname:%cam%`, time.Now().UTC())

	require.Len(t, query.Filters, 4)
	assert.Equal(t, domain.Filter{Field: "port", Op: domain.OpGreaterThanOrEqual, Value: "100"}, query.Filters[0])
	assert.Equal(t, domain.Filter{Field: "uptime", Op: domain.OpLessThan, Value: "30"}, query.Filters[1])
	assert.Equal(t, domain.Filter{Field: "poller_id", Op: domain.OpNotEqual, Value: "p1"}, query.Filters[2])
	assert.Equal(t, domain.Filter{Field: "hostname", Op: domain.OpContains, Value: "cam"}, query.Filters[3])
}

func TestParseQuotedValueKeepsReservedCharacters(t *testing.T) {
	query := ParseAt(`in:devices hostname:">special:(value)"`, time.Now().UTC())

	require.Len(t, query.Filters, 1)
	assert.Equal(t, domain.OpEqual, query.Filters[0].Op)
	assert.Equal(t, ">special:(value)", query.Filters[0].Value)
}
