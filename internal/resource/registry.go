package resource

import (
	"fmt"
	"sort"

	"github.com/carverauto/srql/internal/domain"
)

// ColumnType categorizes a backend attribute for value binding.
type ColumnType string

const (
	ColumnText        ColumnType = "text"
	ColumnBool        ColumnType = "bool"
	ColumnInt         ColumnType = "int"
	ColumnFloat       ColumnType = "float"
	ColumnTimestamptz ColumnType = "timestamptz"
	ColumnTextArray   ColumnType = "text_array"
	ColumnJSONB       ColumnType = "jsonb"
)

// Descriptor describes one queryable resource: its backing table, column
// set, and the attribute time filters default to. Descriptors form a closed
// enumeration resolved once at startup; lookups are by exact match with a
// short alias list, which preserves the unknown-entity failure mode without
// reflection.
type Descriptor struct {
	Name           string
	Table          string
	TimestampField string
	Columns        map[string]ColumnType
}

// columnNames returns the descriptor's columns in a stable order for SQL
// projection.
func (d Descriptor) columnNames() []string {
	names := make([]string, 0, len(d.Columns))
	for name := range d.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry holds the supported resource descriptors.
type Registry struct {
	descriptors map[string]Descriptor
	aliases     map[string]string
}

// NewRegistry builds the descriptor set for all supported entities.
func NewRegistry() *Registry {
	descriptors := map[string]Descriptor{
		"devices": {
			Name:           "devices",
			Table:          "unified_devices",
			TimestampField: "last_seen",
			Columns: map[string]ColumnType{
				"device_id":         ColumnText,
				"ip":                ColumnText,
				"partition":         ColumnText,
				"poller_id":         ColumnText,
				"agent_id":          ColumnText,
				"hostname":          ColumnText,
				"mac":               ColumnText,
				"discovery_sources": ColumnTextArray,
				"is_available":      ColumnBool,
				"device_type":       ColumnText,
				"os_info":           ColumnText,
				"version_info":      ColumnText,
				"metadata":          ColumnJSONB,
				"first_seen":        ColumnTimestamptz,
				"last_seen":         ColumnTimestamptz,
			},
		},
		"events": {
			Name:           "events",
			Table:          "events",
			TimestampField: "occurred_at",
			Columns: map[string]ColumnType{
				"id":            ColumnText,
				"partition":     ColumnText,
				"source":        ColumnText,
				"event_type":    ColumnText,
				"subject":       ColumnText,
				"remote_addr":   ColumnText,
				"host":          ColumnText,
				"level":         ColumnInt,
				"severity":      ColumnText,
				"short_message": ColumnText,
				"raw_data":      ColumnText,
				"occurred_at":   ColumnTimestamptz,
				"created_at":    ColumnTimestamptz,
			},
		},
		"logs": {
			Name:           "logs",
			Table:          "logs",
			TimestampField: "created_at",
			Columns: map[string]ColumnType{
				"id":           ColumnText,
				"partition":    ColumnText,
				"trace_id":     ColumnText,
				"span_id":      ColumnText,
				"severity":     ColumnText,
				"level":        ColumnInt,
				"body":         ColumnText,
				"service_name": ColumnText,
				"created_at":   ColumnTimestamptz,
			},
		},
		"pollers": {
			Name:           "pollers",
			Table:          "pollers",
			TimestampField: "created_at",
			Columns: map[string]ColumnType{
				"poller_id":      ColumnText,
				"partition":      ColumnText,
				"enabled":        ColumnBool,
				"last_heartbeat": ColumnTimestamptz,
				"created_at":     ColumnTimestamptz,
			},
		},
		"agents": {
			Name:           "agents",
			Table:          "agents",
			TimestampField: "created_at",
			Columns: map[string]ColumnType{
				"agent_id":       ColumnText,
				"partition":      ColumnText,
				"poller_id":      ColumnText,
				"enabled":        ColumnBool,
				"version":        ColumnText,
				"last_heartbeat": ColumnTimestamptz,
				"created_at":     ColumnTimestamptz,
			},
		},
		"services": {
			Name:           "services",
			Table:          "services",
			TimestampField: "created_at",
			Columns: map[string]ColumnType{
				"service_name": ColumnText,
				"partition":    ColumnText,
				"poller_id":    ColumnText,
				"agent_id":     ColumnText,
				"service_type": ColumnText,
				"status":       ColumnText,
				"created_at":   ColumnTimestamptz,
			},
		},
		"interfaces": {
			Name:           "interfaces",
			Table:          "discovered_interfaces",
			TimestampField: "created_at",
			Columns: map[string]ColumnType{
				"device_id":       ColumnText,
				"partition":       ColumnText,
				"device_ip":       ColumnText,
				"if_index":        ColumnInt,
				"if_name":         ColumnText,
				"if_speed":        ColumnInt,
				"if_admin_status": ColumnInt,
				"if_oper_status":  ColumnInt,
				"created_at":      ColumnTimestamptz,
			},
		},
	}

	aliases := map[string]string{
		"device":           "devices",
		"device_inventory": "devices",
		"activity":         "events",
		"poller":           "pollers",
		"agent":            "agents",
		"service":          "services",
		"interface":        "interfaces",
		"log":              "logs",
	}

	return &Registry{descriptors: descriptors, aliases: aliases}
}

// Resolve looks up the descriptor for an entity name.
func (r *Registry) Resolve(entity string) (Descriptor, error) {
	if canonical, ok := r.aliases[entity]; ok {
		entity = canonical
	}

	descriptor, ok := r.descriptors[entity]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", domain.ErrUnknownEntity, entity)
	}

	return descriptor, nil
}
