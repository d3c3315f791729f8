package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// DateLayout is the format of START_DATE and END_DATE
const DateLayout = "2006-01-02"

// Data sources understood by the fetcher
const (
	SourceYahoo      = "yahoo"
	SourceTwelveData = "twelvedata"
)

// Config holds all application configuration
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Price history
	Symbol         string `envconfig:"SYMBOL" default:"AAPL"`
	StartDate      string `envconfig:"START_DATE" default:"2015-01-01"`
	EndDate        string `envconfig:"END_DATE" default:"2024-12-31"`
	DataSource     string `envconfig:"DATA_SOURCE" default:"yahoo"`
	DataFile       string `envconfig:"DATA_FILE" default:"AAPL_processed.csv"`
	TwelveAPIKey   string `envconfig:"TWELVE_API_KEY"`
	RequestTimeout int    `envconfig:"REQUEST_TIMEOUT" default:"30"` // seconds
	RequestsPerSec int    `envconfig:"REQUESTS_PER_SEC" default:"5"`

	// Training
	InitialBalance float64 `envconfig:"INITIAL_BALANCE" default:"10000"`
	Episodes       int     `envconfig:"EPISODES" default:"1000"`
	Epsilon        float64 `envconfig:"EPSILON" default:"0.1"`
	LearningRate   float64 `envconfig:"LEARNING_RATE" default:"0.1"`
	DiscountFactor float64 `envconfig:"DISCOUNT_FACTOR" default:"0.95"`
	Seed           int64   `envconfig:"SEED" default:"1"`
	LogEvery       int     `envconfig:"LOG_EVERY" default:"100"`

	// Outputs
	ChartFile        string `envconfig:"CHART_FILE"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	return &cfg, nil
}

// Validate checks value ranges that envconfig cannot express
func (c *Config) Validate() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("EPISODES must be positive, got %d", c.Episodes)
	}
	if c.InitialBalance <= 0 {
		return fmt.Errorf("INITIAL_BALANCE must be positive, got %v", c.InitialBalance)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("EPSILON must be in [0,1], got %v", c.Epsilon)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("LEARNING_RATE must be in (0,1], got %v", c.LearningRate)
	}
	if c.DiscountFactor < 0 || c.DiscountFactor > 1 {
		return fmt.Errorf("DISCOUNT_FACTOR must be in [0,1], got %v", c.DiscountFactor)
	}
	switch c.DataSource {
	case SourceYahoo, SourceTwelveData:
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.DataSource)
	}

	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("END_DATE %s must be after START_DATE %s", c.EndDate, c.StartDate)
	}

	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

// DateRange parses the configured history window
func (c *Config) DateRange() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing START_DATE: %w", err)
	}
	end, err := time.Parse(DateLayout, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing END_DATE: %w", err)
	}
	return start, end, nil
}

// Timeout returns REQUEST_TIMEOUT as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}
