package money

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coerce converts an arbitrary decoded JSON value into a finite float64.
// It is the single conversion point for numeric data crossing the backend
// boundary: upstream payloads carry prices as numbers, numeric strings, or
// null, and all of those must resolve to either a usable number or "absent".
// The second return value reports whether the input was resolvable; NaN and
// infinities are treated as unresolvable.
func Coerce(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
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
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
