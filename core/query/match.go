package query

import (
	"fmt"
	"reflect"

	"github.com/asaidimu/go-umbra/core/schema"
)

// MatchConditions evaluates a document against a condition set using
// equality semantics. A missing field fails the match. Operator documents
// are not supported by in-memory matching and produce an error.
func MatchConditions(doc schema.Document, conditions map[string]any) (bool, error) {
	for field, want := range conditions {
		if _, isOperator := want.(map[string]any); isOperator {
			return false, fmt.Errorf("unsupported operator condition on field %q: in-memory matching is equality only", field)
		}

		got, ok := doc[field]
		if !ok {
			return false, nil
		}
		if !equalValues(got, want) {
			return false, nil
		}
	}
	return true, nil
}

// equalValues compares two filter values, coercing numerics so that an int
// condition matches a float64 stored by a JSON round-trip.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	if af, aok := ToFloat64(a); aok {
		if bf, bok := ToFloat64(b); bok {
			return af == bf
		}
		return false
	}
	if a == b {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// ToFloat64 converts a value of various numeric types to a float64. It
// returns the converted value and whether the conversion succeeded. Strings
// are not coerced; a string condition only matches a string value.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}
