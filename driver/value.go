package driver

import (
	"math"
	"time"
)

// Normalize maps a bind parameter or decoded column onto the value
// domain drivers are expected to handle: nil, int64, float64, string,
// []byte, bool and time.Time. Narrower numeric types widen; anything
// outside the domain is rejected as a usage error.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case int64, float64, string, []byte, bool, time.Time:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, UsageErr(nil, "uint value %d overflows int64", x)
		}
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, UsageErr(nil, "uint64 value %d overflows int64", x)
		}
		return int64(x), nil
	case float32:
		return float64(x), nil
	default:
		return nil, UsageErr(nil, "unsupported value type %T", v)
	}
}
