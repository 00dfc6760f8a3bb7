package srql

import "strings"

// forwardFields maps DSL field names to backend attribute names, per entity.
// Entities or fields without an entry fall back to identity.
var forwardFields = map[string]map[string]string{
	"devices": {
		"id":      "device_id",
		"status":  "is_available",
		"address": "ip",
	},
	"events": {
		"timestamp":       "occurred_at",
		"event_timestamp": "occurred_at",
	},
	"logs": {
		"timestamp": "created_at",
	},
	"pollers": {
		"id":        "poller_id",
		"available": "enabled",
	},
	"agents": {
		"id":        "agent_id",
		"available": "enabled",
	},
}

// reverseFields re-exposes backend attribute names under the historical DSL
// field names after rows are fetched.
var reverseFields = map[string]map[string]string{
	"events": {
		"occurred_at": "event_timestamp",
	},
	"logs": {
		"created_at": "timestamp",
	},
}

// booleanBackendFields lists backend attributes that store an availability
// flag as a boolean; DSL values like "online" are coerced before binding.
var booleanBackendFields = map[string]map[string]bool{
	"devices": {"is_available": true},
	"pollers": {"enabled": true},
	"agents":  {"enabled": true},
}

// ToBackend translates a DSL field name into its backend attribute name.
func ToBackend(entity, field string) string {
	if m, ok := forwardFields[entity]; ok {
		if mapped, ok := m[field]; ok {
			return mapped
		}
	}
	return field
}

// ToDSL translates a backend attribute name into its historical DSL name.
func ToDSL(entity, field string) string {
	if m, ok := reverseFields[entity]; ok {
		if mapped, ok := m[field]; ok {
			return mapped
		}
	}
	return field
}

// DefaultTimestampField returns the attribute time shorthand filters target
// for the given entity.
func DefaultTimestampField(entity string) string {
	switch entity {
	case "events":
		return "occurred_at"
	case "devices":
		return "last_seen"
	default:
		return "created_at"
	}
}

// CoerceValue rewrites DSL-level filter values into the representation the
// backend attribute stores. Unrecognized values pass through unchanged.
func CoerceValue(entity, backendField string, value any) any {
	fields, ok := booleanBackendFields[entity]
	if !ok || !fields[backendField] {
		return value
	}

	s, ok := value.(string)
	if !ok {
		return value
	}

	switch strings.ToLower(s) {
	case "online", "up", "true", "enabled", "available":
		return true
	case "offline", "down", "false", "disabled", "unavailable":
		return false
	default:
		return value
	}
}

// AliasRow applies per-entity backward-compatibility shaping to a fetched
// row: backend attribute names are re-exposed under their DSL names and
// derived fields a DSL consumer expects are injected.
func AliasRow(entity string, row map[string]any) map[string]any {
	if row == nil {
		return nil
	}

	out := make(map[string]any, len(row)+1)
	for key, value := range row {
		out[ToDSL(entity, key)] = value
	}

	switch entity {
	case "devices":
		if available, ok := out["is_available"].(bool); ok {
			if available {
				out["status"] = "online"
			} else {
				out["status"] = "offline"
			}
		}
	case "pollers", "agents":
		if enabled, ok := out["enabled"].(bool); ok {
			out["available"] = enabled
		}
	}

	return out
}
