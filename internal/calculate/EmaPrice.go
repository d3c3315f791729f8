package calculate

// EMASeries returns the exponential moving average of values. Leading NaN
// entries are skipped; the average is seeded with the SMA of the first
// period valid values and is NaN before that.
func EMASeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}

	start := 0
	for start < len(values) && !isFinite(values[start]) {
		start++
	}
	seed := start + period - 1
	if seed >= len(values) {
		return out
	}

	// Calculate simple moving average for the initial value
	ema := calculateAverage(values[start : seed+1])
	out[seed] = ema

	// Multiplier for weighting the EMA
	multiplier := 2.0 / float64(period+1)

	for i := seed + 1; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		out[i] = ema
	}

	return out
}
