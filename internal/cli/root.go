package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/QTrader/internal/config"
)

// Version is set at build time with -ldflags
var Version = "dev"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "qtrader",
		Short: "QTrader - tabular Q-learning trading simulator",
		Long: `QTrader trains an epsilon-greedy Q-learning agent on daily price history
and compares the learned policy against buy and hold.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			*cfg = *loaded

			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
			}
			if cmd.Flags().Changed("data-file") {
				cfg.DataFile, _ = cmd.Flags().GetString("data-file")
			}
			return setupLogging(cfg.LogLevel)
		},
	}

	rootCmd.AddCommand(newFetchCmd(cfg))
	rootCmd.AddCommand(newTrainCmd(cfg))
	rootCmd.AddCommand(newBaselineCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("data-file", "", "Processed CSV file (overrides DATA_FILE)")

	return rootCmd
}

// setupLogging configures the global zerolog logger
func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	return nil
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "QTrader %s\n", Version)
		},
	}
}
