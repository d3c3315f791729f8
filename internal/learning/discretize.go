package learning

import (
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/QTrader/internal/model"
)

// StateKey is the discrete encoding of an observation used to index the
// Q-table. Two observations with the same rounded values in the same
// feature order always produce the same key.
type StateKey string

// sentinel substituted for values that cannot be rounded
const sentinel = 0.0

const keySeparator = "|"

// Discretize encodes obs into a StateKey. Values are ordered by sorted
// feature name and rounded to two decimals. Non-numeric and non-finite
// values become 0.
func Discretize(obs model.Observation) StateKey {
	return discretize(obs, zerolog.Nop())
}

func discretize(obs model.Observation, logger zerolog.Logger) StateKey {
	names := obs.Names()
	parts := make([]string, len(names))

	for i, name := range names {
		raw, _ := obs.Get(name)
		v, ok := numeric(raw)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			logger.Debug().
				Str("feature", name).
				Interface("value", raw).
				Msg("Non-numeric observation feature, using sentinel")
			v = sentinel
		}
		parts[i] = formatKey(v)
	}

	return StateKey(strings.Join(parts, keySeparator))
}

// formatKey rounds the exact binary value to two decimals and folds
// negative zero into zero
func formatKey(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case decimal.Decimal:
		f, _ := n.Float64()
		return f, true
	default:
		return 0, false
	}
}
