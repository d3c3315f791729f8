package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/QTrader/internal/model"
	httpClient "github.com/Alias1177/QTrader/internal/platform/http"
)

// DefaultBaseURL is the public Twelve Data endpoint
const DefaultBaseURL = "https://api.twelvedata.com"

// MaxOutputSize is the largest page the time_series endpoint returns
const MaxOutputSize = 5000

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// GetDailyCandles fetches up to count daily candles, oldest first
func (c *Client) GetDailyCandles(ctx context.Context, symbol string, count int) ([]model.Candle, error) {
	return c.GetCandles(ctx, symbol, "1day", count)
}

// GetCandles fetches candle data from Twelve Data API
func (c *Client) GetCandles(ctx context.Context, symbol string, interval string, count int) ([]model.Candle, error) {
	if count <= 0 || count > MaxOutputSize {
		return nil, fmt.Errorf("output size %d out of range 1..%d", count, MaxOutputSize)
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", interval)
	query.Set("outputsize", strconv.Itoa(count))
	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("count", count).Msg("Fetching candles")
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/time_series?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data model.TwelveResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if data.Status == "error" {
		c.logger.Error().Str("response", string(body)).Msg("Twelve Data API error")
		return nil, fmt.Errorf("Twelve Data API error: %s", data.Message)
	}

	if len(data.Values) == 0 {
		c.logger.Warn().Str("response", string(body)).Msg("No candles in response")
		return nil, fmt.Errorf("empty data returned")
	}

	candles := make([]model.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		ts, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, err
		}
		candles = append(candles, model.Candle{
			Date:     ts,
			Open:     v.Open,
			High:     v.High,
			Low:      v.Low,
			Close:    v.Close,
			AdjClose: v.Close,
			Volume:   v.Volume,
		})
	}

	// Sort candles by datetime (oldest first for proper calculations)
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})
	candles = dedupe(candles)

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

// dedupe drops candles repeating the previous timestamp
func dedupe(sorted []model.Candle) []model.Candle {
	out := sorted[:0]
	for i, c := range sorted {
		if i > 0 && c.Date.Equal(sorted[i-1].Date) {
			continue
		}
		out = append(out, c)
	}
	return out
}
