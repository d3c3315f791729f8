package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/QTrader/internal/model"
	"github.com/Alias1177/QTrader/internal/storage/csvstore"
)

var envKeys = []string{
	"LOG_LEVEL", "SYMBOL", "START_DATE", "END_DATE", "DATA_SOURCE", "DATA_FILE",
	"TWELVE_API_KEY", "REQUEST_TIMEOUT", "REQUESTS_PER_SEC", "INITIAL_BALANCE",
	"EPISODES", "EPSILON", "LEARNING_RATE", "DISCOUNT_FACTOR", "SEED", "LOG_EVERY",
	"CHART_FILE", "DATABASE_URL", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		// Setenv restores the original value on cleanup
		t.Setenv(key, "unset")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeTestCSV(t *testing.T, closes ...float64) string {
	t.Helper()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
			SMA20:  c,
			EMA20:  c,
			RSI14:  50,
			MACD:   float64(i%3) - 1,
		}
	}

	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, csvstore.WriteFile(path, bars))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBaselineCommand(t *testing.T) {
	clearEnv(t)
	path := writeTestCSV(t, 100, 105, 110)

	out, err := execute(t, "--log-level", "error", "--data-file", path, "baseline")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy & Hold Return: 10.00%")
	assert.Contains(t, out, "3 rows")
}

func TestTrainCommand(t *testing.T) {
	clearEnv(t)
	path := writeTestCSV(t, 100, 105, 102, 98, 101, 107)
	chartFile := filepath.Join(t.TempDir(), "chart.html")

	out, err := execute(t, "--log-level", "error", "--data-file", path,
		"train", "--episodes", "5", "--seed", "7", "--chart", chartFile)
	require.NoError(t, err)

	assert.Contains(t, out, "TRAINING RESULTS")
	assert.Contains(t, out, "Buy & Hold Return: 7.00%")

	html, err := os.ReadFile(chartFile)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Final Asset Value")
}

func TestTrainCommandRejectsBadFlags(t *testing.T) {
	clearEnv(t)
	path := writeTestCSV(t, 100, 105, 102)

	_, err := execute(t, "--log-level", "error", "--data-file", path, "train", "--epsilon", "1.5")
	assert.Error(t, err)

	_, err = execute(t, "--log-level", "error", "--data-file", filepath.Join(t.TempDir(), "missing.csv"), "train")
	assert.Error(t, err)
}

func TestTrainCommandTooFewRows(t *testing.T) {
	clearEnv(t)
	path := writeTestCSV(t, 100)

	_, err := execute(t, "--log-level", "error", "--data-file", path, "train", "--episodes", "1")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	clearEnv(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "QTrader dev")
}

func TestInvalidLogLevel(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "--log-level", "loud", "version")
	assert.Error(t, err)
}
