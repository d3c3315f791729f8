// Package csvstore reads and writes the processed price table.
package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/QTrader/internal/model"
)

// Column names of the processed table
const (
	ColDate       = "Date"
	ColOpen       = "Open"
	ColHigh       = "High"
	ColLow        = "Low"
	ColClose      = "Close"
	ColPrice      = "price"
	ColAdjClose   = "Adj Close"
	ColVolume     = "Volume"
	ColSMA20      = "SMA_20"
	ColEMA20      = "EMA_20"
	ColRSI14      = "RSI_14"
	ColMACD       = "MACD"
	ColMACDSignal = "MACD_Signal"
	ColBBHigh     = "BB_High"
	ColBBLow      = "BB_Low"
)

// Header is the column order written by Write
var Header = []string{
	ColDate, ColOpen, ColHigh, ColLow, ColClose, ColAdjClose, ColVolume,
	ColSMA20, ColEMA20, ColRSI14, ColMACD, ColMACDSignal, ColBBHigh, ColBBLow,
}

// ErrMissingColumn is returned when a required column is absent
var ErrMissingColumn = errors.New("missing required column")

const dateLayout = "2006-01-02"

// Write encodes bars as CSV with Header
func Write(w io.Writer, bars []model.Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, b := range bars {
		record := []string{
			b.Date.Format(dateLayout),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.AdjClose),
			strconv.FormatInt(b.Volume, 10),
			formatFloat(b.SMA20),
			formatFloat(b.EMA20),
			formatFloat(b.RSI14),
			formatFloat(b.MACD),
			formatFloat(b.MACDSignal),
			formatFloat(b.BBHigh),
			formatFloat(b.BBLow),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes bars to path, creating parent directories
func WriteFile(path string, bars []model.Bar) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, bars); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read decodes a processed table. The price column may be named Close or
// price. Rows whose price does not parse are dropped; a required
// indicator that does not parse is an error.
func Read(r io.Reader) ([]model.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	priceCol, ok := index[ColClose]
	if !ok {
		if priceCol, ok = index[ColPrice]; !ok {
			return nil, fmt.Errorf("%w: %s or %s", ErrMissingColumn, ColClose, ColPrice)
		}
	}
	for _, col := range []string{ColSMA20, ColRSI14, ColMACD} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var bars []model.Bar
	dropped := 0
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(col string) (string, bool) {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return "", false
			}
			return strings.TrimSpace(record[i]), true
		}

		if priceCol >= len(record) {
			dropped++
			continue
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[priceCol]), 64)
		if err != nil || math.IsNaN(closePrice) || math.IsInf(closePrice, 0) {
			dropped++
			continue
		}

		bar := model.Bar{Close: closePrice}
		required := []struct {
			col string
			dst *float64
		}{
			{ColSMA20, &bar.SMA20},
			{ColRSI14, &bar.RSI14},
			{ColMACD, &bar.MACD},
		}
		for _, req := range required {
			raw, _ := field(req.col)
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %q is not numeric", line, req.col, raw)
			}
			*req.dst = v
		}

		optional := []struct {
			col string
			dst *float64
		}{
			{ColOpen, &bar.Open},
			{ColHigh, &bar.High},
			{ColLow, &bar.Low},
			{ColAdjClose, &bar.AdjClose},
			{ColEMA20, &bar.EMA20},
			{ColMACDSignal, &bar.MACDSignal},
			{ColBBHigh, &bar.BBHigh},
			{ColBBLow, &bar.BBLow},
		}
		for _, opt := range optional {
			raw, ok := field(opt.col)
			if !ok || raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %q is not numeric", line, opt.col, raw)
			}
			*opt.dst = v
		}

		if raw, ok := field(ColVolume); ok && raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %q is not numeric", line, ColVolume, raw)
			}
			bar.Volume = int64(v)
		}

		if raw, ok := field(ColDate); ok && raw != "" {
			if bar.Date, err = parseDate(raw); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}

		bars = append(bars, bar)
	}

	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("Dropped rows with non-numeric price")
	}
	return bars, nil
}

// ReadFile reads a processed table from path
func ReadFile(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	bars, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return bars, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{dateLayout, "2006-01-02 15:04:05", time.RFC3339, "2006-01-02 15:04:05-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
