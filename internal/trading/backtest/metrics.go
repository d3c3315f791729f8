package backtest

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientPrices is returned when a baseline needs more data
var ErrInsufficientPrices = errors.New("at least 2 prices are required")

// BuyAndHoldReturn returns (last - first) / first over prices
func BuyAndHoldReturn(prices []float64) (float64, error) {
	if len(prices) < 2 {
		return 0, ErrInsufficientPrices
	}
	first := prices[0]
	if first == 0 {
		return 0, errors.New("first price is zero")
	}
	return (prices[len(prices)-1] - first) / first, nil
}

// sharpeRatio computes mean over standard deviation of period returns of
// the equity curve, without annualization.
func sharpeRatio(equity []float64) float64 {
	if len(equity) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, (equity[i]-equity[i-1])/equity[i-1])
	}
	if len(returns) < 2 {
		return 0
	}

	mean, stdDev := stat.MeanStdDev(returns, nil)
	if stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}
	return mean / stdDev
}

// maxDrawdown returns the largest peak-to-trough decline in percent
func maxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}

	maxDD := 0.0
	peak := equity[0]
	for _, value := range equity {
		if value > peak {
			peak = value
		}
		if peak <= 0 {
			continue
		}
		drawdown := (peak - value) / peak
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}

	return maxDD * 100
}

// windowMean averages values[from:to] clamped to the slice bounds
func windowMean(values []float64, from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to > len(values) {
		to = len(values)
	}
	if from >= to {
		return 0
	}
	return stat.Mean(values[from:to], nil)
}
