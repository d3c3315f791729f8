package learning

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Alias1177/QTrader/internal/model"
)

func TestDiscretize(t *testing.T) {
	tests := []struct {
		name     string
		features map[string]any
		expected StateKey
	}{
		{
			name:     "sorted by feature name",
			features: map[string]any{"b": 1.234, "a": 2.0, "c": 3},
			expected: "2.00|1.23|3.00",
		},
		{
			name:     "non-numeric uses sentinel",
			features: map[string]any{"price": "n/a", "balance": nil},
			expected: "0.00|0.00",
		},
		{
			name:     "non-finite uses sentinel",
			features: map[string]any{"x": math.NaN(), "y": math.Inf(1)},
			expected: "0.00|0.00",
		},
		{
			name:     "negative zero folds into zero",
			features: map[string]any{"x": -0.001},
			expected: "0.00",
		},
		{
			name:     "other numeric kinds",
			features: map[string]any{"a": int64(7), "b": float32(0.5), "c": decimal.RequireFromString("12.345678")},
			expected: "7.00|0.50|12.35",
		},
		{
			name:     "rounds the exact binary value",
			features: map[string]any{"a": 2.675, "b": 0.125, "c": 1.005},
			expected: "2.67|0.12|1.00",
		},
		{
			name:     "bools are numeric",
			features: map[string]any{"a": true, "b": false},
			expected: "1.00|0.00",
		},
		{
			name:     "empty observation",
			features: map[string]any{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Discretize(model.NewObservation(tt.features))
			if got != tt.expected {
				t.Errorf("Discretize() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDiscretizeEqualAfterRounding(t *testing.T) {
	a := model.NewObservation(map[string]any{"price": 100.001, "rsi_14": 55.5549})
	b := model.NewObservation(map[string]any{"rsi_14": 55.551, "price": 100.004})
	assert.Equal(t, Discretize(a), Discretize(b))

	c := model.NewObservation(map[string]any{"price": 100.01, "rsi_14": 55.55})
	assert.NotEqual(t, Discretize(a), Discretize(c))
}

func TestDiscretizeDoesNotMutate(t *testing.T) {
	obs := model.NewObservation(map[string]any{"price": 1.23456})
	_ = Discretize(obs)

	v, ok := obs.Float("price")
	assert.True(t, ok)
	assert.Equal(t, 1.23456, v)
	assert.Equal(t, Discretize(obs), Discretize(obs))
}
