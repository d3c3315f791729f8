package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/Alias1177/QTrader/internal/learning"
	"github.com/Alias1177/QTrader/internal/model"
)

// Run statuses
const (
	RunStatusRunning  = "running"
	RunStatusFinished = "finished"
	RunStatusFailed   = "failed"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// Run is one stored training run
type Run struct {
	ID             uuid.UUID
	Symbol         string
	Episodes       int
	InitialBalance float64
	Agent          learning.AgentConfig
	Status         string
	StartedAt      time.Time
	FinishedAt     sql.NullTime
	FinalAsset     sql.NullFloat64
	TotalReturn    sql.NullFloat64
	BuyHoldReturn  sql.NullFloat64
}

// New opens a PostgreSQL connection from a lib/pq DSN and creates the
// tables if they don't exist
func New(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS training_runs (
			id UUID PRIMARY KEY,
			symbol TEXT NOT NULL,
			episodes INTEGER NOT NULL,
			initial_balance DOUBLE PRECISION NOT NULL,
			epsilon DOUBLE PRECISION NOT NULL,
			learning_rate DOUBLE PRECISION NOT NULL,
			discount_factor DOUBLE PRECISION NOT NULL,
			seed BIGINT NOT NULL,
			status TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			final_asset DOUBLE PRECISION,
			total_return DOUBLE PRECISION,
			buy_hold_return DOUBLE PRECISION
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS episode_results (
			run_id UUID NOT NULL REFERENCES training_runs(id) ON DELETE CASCADE,
			episode INTEGER NOT NULL,
			total_reward DOUBLE PRECISION NOT NULL,
			final_asset DOUBLE PRECISION NOT NULL,
			trades INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			PRIMARY KEY (run_id, episode)
		)
	`)
	return err
}

// CreateRun stores a new running training run and returns it
func (db *DB) CreateRun(ctx context.Context, symbol string, episodes int, initialBalance float64, agent learning.AgentConfig) (*Run, error) {
	run := &Run{
		ID:             uuid.New(),
		Symbol:         symbol,
		Episodes:       episodes,
		InitialBalance: initialBalance,
		Agent:          agent,
		Status:         RunStatusRunning,
		StartedAt:      time.Now().UTC(),
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO training_runs (
			id, symbol, episodes, initial_balance, epsilon, learning_rate,
			discount_factor, seed, status, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		run.ID, run.Symbol, run.Episodes, run.InitialBalance, agent.Epsilon, agent.LearningRate,
		agent.DiscountFactor, agent.Seed, run.Status, run.StartedAt)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// SaveEpisode stores the metrics of one episode
func (db *DB) SaveEpisode(ctx context.Context, runID uuid.UUID, result model.EpisodeResult) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO episode_results (run_id, episode, total_reward, final_asset, trades, steps)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id, episode)
		DO UPDATE SET
			total_reward = EXCLUDED.total_reward,
			final_asset = EXCLUDED.final_asset,
			trades = EXCLUDED.trades,
			steps = EXCLUDED.steps
	`, runID, result.Episode, result.TotalReward, result.FinalAsset, result.Trades, result.Steps)

	return err
}

// FinishRun marks a run finished and stores its summary figures
func (db *DB) FinishRun(ctx context.Context, runID uuid.UUID, summary *model.TrainingSummary) error {
	if summary == nil {
		return errors.New("summary is required")
	}

	res, err := db.ExecContext(ctx, `
		UPDATE training_runs
		SET status = $1, finished_at = $2, final_asset = $3, total_return = $4, buy_hold_return = $5
		WHERE id = $6
	`, RunStatusFinished, summary.FinishedAt, summary.FinalAsset, summary.TotalReturn, summary.BuyAndHoldReturn, runID)
	if err != nil {
		return err
	}

	return expectOneRow(res, runID)
}

// FailRun marks a run failed
func (db *DB) FailRun(ctx context.Context, runID uuid.UUID) error {
	res, err := db.ExecContext(ctx, `
		UPDATE training_runs
		SET status = $1, finished_at = NOW()
		WHERE id = $2
	`, RunStatusFailed, runID)
	if err != nil {
		return err
	}

	return expectOneRow(res, runID)
}

// GetRun retrieves a run by id; it returns nil when not found
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run

	err := db.QueryRowContext(ctx, `
		SELECT
			id, symbol, episodes, initial_balance, epsilon, learning_rate,
			discount_factor, seed, status, started_at, finished_at,
			final_asset, total_return, buy_hold_return
		FROM training_runs
		WHERE id = $1
	`, runID).Scan(
		&run.ID, &run.Symbol, &run.Episodes, &run.InitialBalance, &run.Agent.Epsilon, &run.Agent.LearningRate,
		&run.Agent.DiscountFactor, &run.Agent.Seed, &run.Status, &run.StartedAt, &run.FinishedAt,
		&run.FinalAsset, &run.TotalReturn, &run.BuyHoldReturn,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No run found
		}
		return nil, err
	}

	return &run, nil
}

// GetEpisodes returns the stored episodes of a run ordered by episode
func (db *DB) GetEpisodes(ctx context.Context, runID uuid.UUID) ([]model.EpisodeResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT episode, total_reward, final_asset, trades, steps
		FROM episode_results
		WHERE run_id = $1
		ORDER BY episode
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.EpisodeResult
	for rows.Next() {
		var r model.EpisodeResult
		if err := rows.Scan(&r.Episode, &r.TotalReward, &r.FinalAsset, &r.Trades, &r.Steps); err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

func expectOneRow(res sql.Result, runID uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("training run %s not found", runID)
	}
	return nil
}
