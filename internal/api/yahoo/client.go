package yahoo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Alias1177/QTrader/internal/model"
)

// fetchFunc downloads every bar matching params
type fetchFunc func(params *chart.Params) ([]*finance.ChartBar, error)

// Client downloads daily price history from the Yahoo Finance chart API
type Client struct {
	fetch           fetchFunc
	limiter         *rate.Limiter
	maxRetryTimeout time.Duration
	logger          zerolog.Logger
}

// ClientOptions holds options for creating a new Yahoo client
type ClientOptions struct {
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new Yahoo Finance client
func NewClient(options ClientOptions) *Client {
	if options.RequestsPerSec == 0 {
		options.RequestsPerSec = 2
	}
	if options.MaxRetryTimeout == 0 {
		options.MaxRetryTimeout = 30 * time.Second
	}

	return &Client{
		fetch:           fetchChart,
		limiter:         rate.NewLimiter(rate.Limit(options.RequestsPerSec), 1),
		maxRetryTimeout: options.MaxRetryTimeout,
		logger:          log.With().Str("component", "yahoo_client").Logger(),
	}
}

func fetchChart(params *chart.Params) ([]*finance.ChartBar, error) {
	iter := chart.Get(params)

	var bars []*finance.ChartBar
	for iter.Next() {
		bars = append(bars, iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

// GetHistory fetches daily candles for symbol in [start, end), oldest first
func (c *Client) GetHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.Candle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if !end.After(start) {
		return nil, fmt.Errorf("end %s is not after start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	c.logger.Debug().
		Str("symbol", symbol).
		Time("start", start).
		Time("end", end).
		Msg("Fetching historical data")

	var bars []*finance.ChartBar
	operation := func() error {
		var err error
		bars, err = c.fetch(params)
		if err != nil {
			return fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = c.maxRetryTimeout

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}

	candles := toCandles(bars)
	if len(candles) == 0 {
		return nil, fmt.Errorf("no price history returned for %s", symbol)
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched historical data")
	return candles, nil
}

// toCandles converts chart bars, dropping empty bars and repeated dates
func toCandles(bars []*finance.ChartBar) []model.Candle {
	candles := make([]model.Candle, 0, len(bars))
	for _, bar := range bars {
		if bar == nil || bar.Close.IsZero() {
			continue
		}
		closePrice, _ := bar.Close.Float64()
		open, _ := bar.Open.Float64()
		high, _ := bar.High.Float64()
		low, _ := bar.Low.Float64()
		adjClose, _ := bar.AdjClose.Float64()

		candles = append(candles, model.Candle{
			Date:     dayOf(time.Unix(int64(bar.Timestamp), 0)),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			AdjClose: adjClose,
			Volume:   int64(bar.Volume),
		})
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})

	out := candles[:0]
	for i, c := range candles {
		if i > 0 && c.Date.Equal(candles[i-1].Date) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
