package calculate

import "math"

// calculateAverage calculates simple average
func calculateAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}

// SMASeries returns the simple moving average of values over period.
// The first period-1 entries are NaN.
func SMASeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		out[i] = calculateAverage(values[i-period+1 : i+1])
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
