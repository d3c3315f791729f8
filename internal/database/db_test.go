package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/QTrader/internal/learning"
	"github.com/Alias1177/QTrader/internal/model"
)

// openTestDB connects to QTRADER_TEST_DATABASE_URL or skips the test
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("QTRADER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("QTRADER_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	run, err := db.CreateRun(ctx, "AAPL", 2, 10000, learning.DefaultAgentConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.ExecContext(ctx, `DELETE FROM training_runs WHERE id = $1`, run.ID)
	})

	for _, r := range []model.EpisodeResult{
		{Episode: 2, TotalReward: 4, FinalAsset: 10004, Trades: 3, Steps: 9},
		{Episode: 1, TotalReward: -1, FinalAsset: 9999, Trades: 1, Steps: 9},
	} {
		require.NoError(t, db.SaveEpisode(ctx, run.ID, r))
	}

	episodes, err := db.GetEpisodes(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, 1, episodes[0].Episode)
	assert.Equal(t, 10004.0, episodes[1].FinalAsset)

	summary := &model.TrainingSummary{FinalAsset: 10004, TotalReturn: 0.0004, BuyAndHoldReturn: 0.01, FinishedAt: time.Now().UTC()}
	require.NoError(t, db.FinishRun(ctx, run.ID, summary))

	stored, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, RunStatusFinished, stored.Status)
	assert.Equal(t, "AAPL", stored.Symbol)
	assert.True(t, stored.FinalAsset.Valid)
	assert.Equal(t, 10004.0, stored.FinalAsset.Float64)
	assert.Equal(t, learning.DefaultAgentConfig(), stored.Agent)
}

func TestGetRunNotFound(t *testing.T) {
	db := openTestDB(t)

	run, err := db.GetRun(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, run)

	assert.Error(t, db.FailRun(context.Background(), uuid.New()))
}
