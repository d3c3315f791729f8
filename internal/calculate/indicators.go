package calculate

import (
	"github.com/Alias1177/QTrader/internal/model"
)

// Indicator windows of the processed table
const (
	SMAPeriod        = 20
	EMAPeriod        = 20
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	BBPeriod         = 20
	BBStdDev         = 2.0
)

// AddIndicators computes the indicator columns for candles and drops every
// row where any of them is not yet defined.
func AddIndicators(candles []model.Candle) []model.Bar {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	sma := SMASeries(closes, SMAPeriod)
	ema := EMASeries(closes, EMAPeriod)
	rsi := RSISeries(closes, RSIPeriod)
	macd, macdSignal := MACDSeries(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	bbHigh, _, bbLow := BollingerSeries(closes, BBPeriod, BBStdDev)

	bars := make([]model.Bar, 0, len(candles))
	for i, c := range candles {
		bar := model.Bar{
			Date:       c.Date,
			Open:       c.Open,
			High:       c.High,
			Low:        c.Low,
			Close:      c.Close,
			AdjClose:   c.AdjClose,
			Volume:     c.Volume,
			SMA20:      sma[i],
			EMA20:      ema[i],
			RSI14:      rsi[i],
			MACD:       macd[i],
			MACDSignal: macdSignal[i],
			BBHigh:     bbHigh[i],
			BBLow:      bbLow[i],
		}
		if !barComplete(bar) {
			continue
		}
		bars = append(bars, bar)
	}

	return bars
}

func barComplete(b model.Bar) bool {
	for _, v := range []float64{b.Close, b.SMA20, b.EMA20, b.RSI14, b.MACD, b.MACDSignal, b.BBHigh, b.BBLow} {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
