package csvstore

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/QTrader/internal/model"
)

func sampleBars() []model.Bar {
	return []model.Bar{
		{
			Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 187.15, High: 188.44, Low: 183.89,
			Close: 185.64, AdjClose: 184.73, Volume: 82488700, SMA20: 193.1, EMA20: 192.4,
			RSI14: 33.12, MACD: -0.86, MACDSignal: 0.44, BBHigh: 199.6, BBLow: 186.6,
		},
		{
			Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Open: 184.22, High: 185.88, Low: 183.43,
			Close: 184.25, AdjClose: 183.35, Volume: 58414500, SMA20: 192.8, EMA20: 191.6,
			RSI14: 31.5, MACD: -1.42, MACDSignal: 0.07, BBHigh: 200.3, BBLow: 185.3,
		},
	}
}

func TestWriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleBars()))

	firstLine := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, strings.Join(Header, ","), firstLine)

	bars, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleBars(), bars)
}

func TestReadPriceAlias(t *testing.T) {
	input := "price,SMA_20,RSI_14,MACD\n100,99.5,55,0.3\n101.5,99.8,57,0.4\n"

	bars, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 101.5, bars[1].Close)
	assert.Equal(t, 57.0, bars[1].RSI14)
	assert.True(t, bars[0].Date.IsZero())
}

func TestReadDropsNonNumericPrice(t *testing.T) {
	input := "Date,Close,SMA_20,RSI_14,MACD\n" +
		"Ticker,AAPL,AAPL,AAPL,AAPL\n" +
		"2024-01-02,185.64,193.1,33.1,-0.8\n" +
		"2024-01-03,,192.8,31.5,-1.4\n" +
		"2024-01-04,NaN,192.5,30.2,-1.6\n" +
		"2024-01-05,+Inf,192.1,29.9,-1.7\n"

	bars, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 185.64, bars[0].Close)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no price column", "Open,SMA_20,RSI_14,MACD\n1,2,3,4\n"},
		{"missing indicator column", "Close,SMA_20,MACD\n1,2,3\n"},
		{"non-numeric indicator", "Close,SMA_20,RSI_14,MACD\n1,2,high,4\n"},
		{"bad date", "Date,Close,SMA_20,RSI_14,MACD\nsoon,1,2,3,4\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}

	_, err := Read(strings.NewReader("Close,RSI_14,MACD\n1,2,3\n"))
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "AAPL_processed.csv")
	require.NoError(t, WriteFile(path, sampleBars()))

	bars, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleBars(), bars)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
