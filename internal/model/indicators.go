package model

import "time"

// Bar is one row of the processed price table: a candle plus the
// technical indicators computed for it.
type Bar struct {
	Date       time.Time `json:"date"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	AdjClose   float64   `json:"adj_close"`
	Volume     int64     `json:"volume"`
	SMA20      float64   `json:"sma_20"`
	EMA20      float64   `json:"ema_20"`
	RSI14      float64   `json:"rsi_14"`
	MACD       float64   `json:"macd"`
	MACDSignal float64   `json:"macd_signal"`
	BBHigh     float64   `json:"bb_high"`
	BBLow      float64   `json:"bb_low"`
}

// Closes extracts the close prices of bars in order
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
