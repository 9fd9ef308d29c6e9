package models

import "strings"

// ResourceSnapshot holds the point-in-time field values of the entity that
// triggered an event (ticket, customer, article). Conditions and action
// parameter templates resolve fields against it by dotted path.
type ResourceSnapshot map[string]any

// Lookup resolves a dotted path ("customer.tier") against the snapshot.
// The second return is false when any segment of the path is missing or a
// non-map value is traversed into.
func (s ResourceSnapshot) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = map[string]any(s)

	for _, segment := range strings.Split(path, ".") {
		m, ok := asStringMap(current)
		if !ok {
			return nil, false
		}

		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case ResourceSnapshot:
		return m, true
	default:
		return nil, false
	}
}
