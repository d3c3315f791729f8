package model

import (
	"reflect"
	"sort"
)

// Feature names carried by every observation the environment emits
const (
	FeaturePrice      = "price"
	FeatureSMA20      = "sma_20"
	FeatureRSI14      = "rsi_14"
	FeatureMACD       = "macd"
	FeatureBalance    = "balance"
	FeatureSharesHeld = "shares_held"
)

// Observation is a read-only snapshot of named features. The zero value is
// an empty observation.
type Observation struct {
	features map[string]any
}

// NewObservation copies features into a new snapshot. Later changes to the
// input map are not visible through the observation.
func NewObservation(features map[string]any) Observation {
	copied := make(map[string]any, len(features))
	for k, v := range features {
		copied[k] = v
	}
	return Observation{features: copied}
}

// Get returns the raw value stored for name
func (o Observation) Get(name string) (any, bool) {
	v, ok := o.features[name]
	return v, ok
}

// Float returns the value for name when it is stored as a float64 or int
func (o Observation) Float(name string) (float64, bool) {
	switch v := o.features[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Names returns feature names sorted lexicographically
func (o Observation) Names() []string {
	names := make([]string, 0, len(o.features))
	for k := range o.features {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of features
func (o Observation) Len() int {
	return len(o.features)
}

// Equal reports whether both observations hold the same names and values
func (o Observation) Equal(other Observation) bool {
	if len(o.features) != len(other.features) {
		return false
	}
	for k, v := range o.features {
		ov, ok := other.features[k]
		if !ok || !reflect.DeepEqual(ov, v) {
			return false
		}
	}
	return true
}
