package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/QTrader/internal/config"
	"github.com/Alias1177/QTrader/internal/database"
	"github.com/Alias1177/QTrader/internal/export/chart"
	"github.com/Alias1177/QTrader/internal/learning"
	"github.com/Alias1177/QTrader/internal/model"
	"github.com/Alias1177/QTrader/internal/notify"
	"github.com/Alias1177/QTrader/internal/storage/csvstore"
	"github.com/Alias1177/QTrader/internal/trading/backtest"
	"github.com/Alias1177/QTrader/internal/trading/env"
)

// newTrainCmd creates the train command
func newTrainCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the Q-learning agent and compare it with buy and hold",
		Long: `Train the agent on the processed CSV (or freshly fetched history with --fetch),
print the run summary and optionally render a chart, store metrics and notify.
Example: qtrader train --episodes=500 --chart=training.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyTrainFlags(cmd, cfg); err != nil {
				return err
			}
			if err := applyFetchFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			fetch, _ := cmd.Flags().GetBool("fetch")
			summary, err := runTraining(cmd.Context(), cfg, fetch)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(backtest.FormatSummary(summary)))
			return nil
		},
	}

	cmd.Flags().Int("episodes", 0, "Number of training episodes (overrides EPISODES)")
	cmd.Flags().Float64("epsilon", 0, "Exploration rate (overrides EPSILON)")
	cmd.Flags().Float64("learning-rate", 0, "Learning rate (overrides LEARNING_RATE)")
	cmd.Flags().Float64("discount", 0, "Discount factor (overrides DISCOUNT_FACTOR)")
	cmd.Flags().Float64("balance", 0, "Initial balance (overrides INITIAL_BALANCE)")
	cmd.Flags().Int64("seed", 0, "Random seed (overrides SEED)")
	cmd.Flags().String("chart", "", "Write an HTML training chart to this file (overrides CHART_FILE)")
	cmd.Flags().Bool("fetch", false, "Fetch fresh history instead of reading the CSV")
	addFetchFlags(cmd)

	return cmd
}

func applyTrainFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("episodes") {
		if cfg.Episodes, err = flags.GetInt("episodes"); err != nil {
			return err
		}
	}
	if flags.Changed("epsilon") {
		if cfg.Epsilon, err = flags.GetFloat64("epsilon"); err != nil {
			return err
		}
	}
	if flags.Changed("learning-rate") {
		if cfg.LearningRate, err = flags.GetFloat64("learning-rate"); err != nil {
			return err
		}
	}
	if flags.Changed("discount") {
		if cfg.DiscountFactor, err = flags.GetFloat64("discount"); err != nil {
			return err
		}
	}
	if flags.Changed("balance") {
		if cfg.InitialBalance, err = flags.GetFloat64("balance"); err != nil {
			return err
		}
	}
	if flags.Changed("seed") {
		if cfg.Seed, err = flags.GetInt64("seed"); err != nil {
			return err
		}
	}
	if flags.Changed("chart") {
		if cfg.ChartFile, err = flags.GetString("chart"); err != nil {
			return err
		}
	}
	return nil
}

// runTraining wires the data, environment, agent and outputs of one run
func runTraining(ctx context.Context, cfg *config.Config, fetch bool) (*model.TrainingSummary, error) {
	bars, err := loadBars(ctx, cfg, fetch)
	if err != nil {
		return nil, err
	}

	environment, err := env.New(bars, env.WithInitialBalance(cfg.InitialBalance))
	if err != nil {
		return nil, err
	}

	agent, err := learning.NewAgent(learning.AgentConfig{
		Epsilon:        cfg.Epsilon,
		LearningRate:   cfg.LearningRate,
		DiscountFactor: cfg.DiscountFactor,
		Seed:           cfg.Seed,
	})
	if err != nil {
		return nil, err
	}

	opts := []learning.TrainerOption{learning.WithLogEvery(cfg.LogEvery)}

	var store *database.DB
	var run *database.Run
	if cfg.DatabaseURL != "" {
		store, err = database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		defer store.Close()

		run, err = store.CreateRun(ctx, cfg.Symbol, cfg.Episodes, cfg.InitialBalance, agent.Config())
		if err != nil {
			return nil, fmt.Errorf("creating training run: %w", err)
		}
		log.Info().Str("run_id", run.ID.String()).Msg("Training run stored")

		opts = append(opts, learning.WithObserver(func(r model.EpisodeResult) error {
			return store.SaveEpisode(ctx, run.ID, r)
		}))
	}

	trainer := learning.NewTrainer(agent, environment, opts...)
	results, err := trainer.Run(ctx, cfg.Episodes)
	if err != nil {
		if store != nil {
			// ctx may already be cancelled here
			if ferr := store.FailRun(context.Background(), run.ID); ferr != nil {
				log.Error().Err(ferr).Msg("Failed to mark training run failed")
			}
		}
		return nil, err
	}

	summary, err := backtest.Summarize(backtest.SummaryInput{
		Symbol:         cfg.Symbol,
		Results:        results,
		InitialBalance: cfg.InitialBalance,
		Prices:         environment.Prices(),
		QTableSize:     agent.QTable().Len(),
	})
	if err != nil {
		return nil, err
	}

	if cfg.ChartFile != "" {
		if err := chart.RenderFile(cfg.ChartFile, results, cfg.InitialBalance); err != nil {
			return nil, err
		}
		log.Info().Str("file", cfg.ChartFile).Msg("Training chart written")
	}

	if store != nil {
		if err := store.FinishRun(ctx, run.ID, summary); err != nil {
			return nil, fmt.Errorf("finishing training run: %w", err)
		}
	}

	if cfg.TelegramBotToken != "" {
		notifySummary(ctx, cfg, summary)
	}

	return summary, nil
}

// notifySummary delivers the summary to Telegram; failures are only logged
func notifySummary(ctx context.Context, cfg *config.Config, summary *model.TrainingSummary) {
	tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize Telegram notifier")
		return
	}
	if err := tg.SendSummary(ctx, summary); err != nil {
		log.Error().Err(err).Msg("Failed to send training summary")
	}
}

func loadBars(ctx context.Context, cfg *config.Config, fetch bool) ([]model.Bar, error) {
	if !fetch {
		bars, err := csvstore.ReadFile(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", cfg.DataFile, err)
		}
		return bars, nil
	}

	bars, err := fetchBars(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := csvstore.WriteFile(cfg.DataFile, bars); err != nil {
		return nil, err
	}
	return bars, nil
}
