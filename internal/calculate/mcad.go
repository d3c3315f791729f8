package calculate

// MACDSeries returns the MACD line (fast EMA minus slow EMA) and its signal
// line (EMA of the MACD line). Entries are NaN until enough data exists.
func MACDSeries(closes []float64, fastPeriod, slowPeriod, signalPeriod int) ([]float64, []float64) {
	fastEMA := EMASeries(closes, fastPeriod)
	slowEMA := EMASeries(closes, slowPeriod)

	macdLine := nanSeries(len(closes))
	for i := range closes {
		if isFinite(fastEMA[i]) && isFinite(slowEMA[i]) {
			macdLine[i] = fastEMA[i] - slowEMA[i]
		}
	}

	signalLine := EMASeries(macdLine, signalPeriod)
	return macdLine, signalLine
}
