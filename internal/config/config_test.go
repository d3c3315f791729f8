package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SYMBOL", "EPISODES", "EPSILON", "DATA_SOURCE", "INITIAL_BALANCE"} {
		// Setenv restores the original value on cleanup
		t.Setenv(key, "unset")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "AAPL", cfg.Symbol)
	assert.Equal(t, 1000, cfg.Episodes)
	assert.Equal(t, 0.1, cfg.Epsilon)
	assert.Equal(t, 0.95, cfg.DiscountFactor)
	assert.Equal(t, 10000.0, cfg.InitialBalance)
	assert.Equal(t, SourceYahoo, cfg.DataSource)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SYMBOL", "TSLA")
	t.Setenv("EPISODES", "25")
	t.Setenv("EPSILON", "0.3")
	t.Setenv("DATA_SOURCE", SourceTwelveData)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "TSLA", cfg.Symbol)
	assert.Equal(t, 25, cfg.Episodes)
	assert.Equal(t, 0.3, cfg.Epsilon)
	assert.Equal(t, SourceTwelveData, cfg.DataSource)
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("EPISODES", "many")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DataSource:     SourceYahoo,
			StartDate:      "2020-01-01",
			EndDate:        "2021-01-01",
			InitialBalance: 10000,
			Episodes:       10,
			Epsilon:        0.1,
			LearningRate:   0.1,
			DiscountFactor: 0.95,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero episodes", func(c *Config) { c.Episodes = 0 }},
		{"negative balance", func(c *Config) { c.InitialBalance = -5 }},
		{"epsilon out of range", func(c *Config) { c.Epsilon = 2 }},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }},
		{"discount out of range", func(c *Config) { c.DiscountFactor = 1.01 }},
		{"unknown source", func(c *Config) { c.DataSource = "csv" }},
		{"bad date", func(c *Config) { c.StartDate = "yesterday" }},
		{"inverted range", func(c *Config) { c.EndDate = "2019-01-01" }},
		{"telegram without chat", func(c *Config) { c.TelegramBotToken = "token" }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}
