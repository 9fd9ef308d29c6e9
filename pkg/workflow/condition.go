// Package workflow contains the engine core: condition evaluation, trigger
// matching, action execution, and event dispatch.
package workflow

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/deskflow/deskflow/pkg/models"
)

// EvaluateCondition checks one predicate against a resource snapshot. It is
// total: any condition against any snapshot yields a boolean. A field missing
// from the snapshot makes is_empty true and every other operator false, and
// an unknown operator is false.
func EvaluateCondition(condition *models.WorkflowCondition, snapshot models.ResourceSnapshot) bool {
	if condition == nil {
		return false
	}

	value, found := snapshot.Lookup(condition.Field)

	if !found {
		return condition.Operator == models.OperatorIsEmpty
	}

	switch condition.Operator {
	case models.OperatorEquals:
		return valuesEqual(value, condition.Value)
	case models.OperatorNotEquals:
		return !valuesEqual(value, condition.Value)
	case models.OperatorContains:
		return contains(value, condition.Value)
	case models.OperatorGreaterThan:
		return compareNumeric(value, condition.Value, func(a, b float64) bool { return a > b })
	case models.OperatorLessThan:
		return compareNumeric(value, condition.Value, func(a, b float64) bool { return a < b })
	case models.OperatorIsEmpty:
		return isEmpty(value)
	case models.OperatorIsNotEmpty:
		return !isEmpty(value)
	default:
		return false
	}
}

// valuesEqual compares strictly by type. Numeric types compare by value so
// that a JSON-decoded float64(3) equals int(3), but the string "3" never
// equals the number 3.
func valuesEqual(a, b any) bool {
	aNum, aOK := asNumber(a)
	bNum, bOK := asNumber(b)

	if aOK && bOK {
		return aNum == bNum
	}

	if aOK != bOK {
		return false
	}

	return reflect.DeepEqual(a, b)
}

func contains(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		n, ok := needle.(string)
		if !ok {
			return false
		}

		return strings.Contains(h, n)
	case []any:
		for _, item := range h {
			if valuesEqual(item, needle) {
				return true
			}
		}

		return false
	case []string:
		n, ok := needle.(string)
		if !ok {
			return false
		}

		for _, item := range h {
			if item == n {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func compareNumeric(a, b any, cmp func(a, b float64) bool) bool {
	aNum, aOK := toFloat(a)
	bNum, bOK := toFloat(b)

	if !aOK || !bOK {
		return false
	}

	return cmp(aNum, bNum)
}

// asNumber recognizes actual numeric types only. Strings stay strings.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toFloat additionally parses numeric strings, for ordering comparisons over
// snapshots whose fields arrive stringly typed.
func toFloat(v any) (float64, bool) {
	if n, ok := asNumber(v); ok {
		return n, true
	}

	if s, ok := v.(string); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return n, true
		}
	}

	return 0, false
}

func isEmpty(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case []any:
		return len(value) == 0
	case []string:
		return len(value) == 0
	case map[string]any:
		return len(value) == 0
	case models.ResourceSnapshot:
		return len(value) == 0
	default:
		return false
	}
}
