package calculate

import "math"

// BollingerSeries returns upper, middle and lower Bollinger bands using the
// population standard deviation over period.
func BollingerSeries(closes []float64, period int, stdDev float64) ([]float64, []float64, []float64) {
	middle := SMASeries(closes, period)
	upper := nanSeries(len(closes))
	lower := nanSeries(len(closes))

	for i := period - 1; i >= 0 && i < len(closes); i++ {
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			variance += math.Pow(closes[j]-middle[i], 2)
		}
		sd := math.Sqrt(variance / float64(period))

		upper[i] = middle[i] + sd*stdDev
		lower[i] = middle[i] - sd*stdDev
	}

	return upper, middle, lower
}
