package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alias1177/QTrader/internal/config"
	"github.com/Alias1177/QTrader/internal/model"
	"github.com/Alias1177/QTrader/internal/storage/csvstore"
	"github.com/Alias1177/QTrader/internal/trading/backtest"
)

// newBaselineCmd creates the baseline command
func newBaselineCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "baseline",
		Short: "Print the buy and hold return of the processed CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bars, err := csvstore.ReadFile(cfg.DataFile)
			if err != nil {
				return fmt.Errorf("loading %s: %w", cfg.DataFile, err)
			}

			ret, err := backtest.BuyAndHoldReturn(model.Closes(bars))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Buy & Hold Return: %.2f%% (%d rows, %s to %s)\n",
				ret*100, len(bars),
				bars[0].Date.Format(config.DateLayout),
				bars[len(bars)-1].Date.Format(config.DateLayout))
			return nil
		},
	}
}
