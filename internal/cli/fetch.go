package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/QTrader/internal/api/twelvedata"
	"github.com/Alias1177/QTrader/internal/api/yahoo"
	"github.com/Alias1177/QTrader/internal/calculate"
	"github.com/Alias1177/QTrader/internal/config"
	"github.com/Alias1177/QTrader/internal/model"
	"github.com/Alias1177/QTrader/internal/storage/csvstore"
)

// newFetchCmd creates the fetch command
func newFetchCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [SYMBOL]",
		Short: "Download price history, add indicators and write the processed CSV",
		Long: `Download daily price history for SYMBOL (SYMBOL env var if omitted),
compute the technical indicators and write the processed table.
Example: qtrader fetch AAPL --start=2015-01-01 --end=2024-12-31`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Symbol = strings.ToUpper(args[0])
			}
			if err := applyFetchFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			bars, err := fetchBars(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := csvstore.WriteFile(cfg.DataFile, bars); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows for %s to %s\n", len(bars), cfg.Symbol, cfg.DataFile)
			return nil
		},
	}

	addFetchFlags(cmd)
	return cmd
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "Price source: yahoo or twelvedata (overrides DATA_SOURCE)")
	cmd.Flags().String("start", "", "First date in YYYY-MM-DD format (overrides START_DATE)")
	cmd.Flags().String("end", "", "Last date in YYYY-MM-DD format (overrides END_DATE)")
}

func applyFetchFlags(cmd *cobra.Command, cfg *config.Config) error {
	for name, dst := range map[string]*string{
		"source": &cfg.DataSource,
		"start":  &cfg.StartDate,
		"end":    &cfg.EndDate,
	} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

// fetchBars downloads candles from the configured source and adds indicators
func fetchBars(ctx context.Context, cfg *config.Config) ([]model.Bar, error) {
	start, end, err := cfg.DateRange()
	if err != nil {
		return nil, err
	}

	var candles []model.Candle
	switch cfg.DataSource {
	case config.SourceTwelveData:
		if cfg.TwelveAPIKey == "" {
			return nil, fmt.Errorf("TWELVE_API_KEY is required for source %s", cfg.DataSource)
		}
		client := twelvedata.NewClient(twelvedata.ClientOptions{
			APIKey:          cfg.TwelveAPIKey,
			RequestTimeout:  cfg.Timeout(),
			RequestsPerSec:  cfg.RequestsPerSec,
			MaxRetryTimeout: cfg.Timeout(),
		})
		all, err := client.GetDailyCandles(ctx, cfg.Symbol, twelvedata.MaxOutputSize)
		if err != nil {
			return nil, fmt.Errorf("fetching %s from twelve data: %w", cfg.Symbol, err)
		}
		for _, c := range all {
			if !c.Date.Before(start) && !c.Date.After(end) {
				candles = append(candles, c)
			}
		}
	default:
		client := yahoo.NewClient(yahoo.ClientOptions{
			RequestsPerSec:  cfg.RequestsPerSec,
			MaxRetryTimeout: cfg.Timeout(),
		})
		// end is inclusive on the command line, the chart API is exclusive
		candles, err = client.GetHistory(ctx, cfg.Symbol, start, end.AddDate(0, 0, 1))
		if err != nil {
			return nil, fmt.Errorf("fetching %s from yahoo: %w", cfg.Symbol, err)
		}
	}

	bars := calculate.AddIndicators(candles)
	log.Info().
		Str("symbol", cfg.Symbol).
		Str("source", cfg.DataSource).
		Int("candles", len(candles)).
		Int("rows", len(bars)).
		Msg("Price history prepared")

	if len(bars) < 2 {
		return nil, fmt.Errorf("only %d complete rows for %s, need at least 2", len(bars), cfg.Symbol)
	}
	return bars, nil
}
