package model

import "time"

// EpisodeResult stores the metrics collected for one training episode
type EpisodeResult struct {
	Episode     int     `json:"episode"`
	TotalReward float64 `json:"total_reward"`
	FinalAsset  float64 `json:"final_asset"`
	Trades      int     `json:"trades"`
	Steps       int     `json:"steps"`
}

// TrainingSummary aggregates a full training run and compares it to
// buying and holding the same series
type TrainingSummary struct {
	Symbol            string    `json:"symbol,omitempty"`
	Episodes          int       `json:"episodes"`
	InitialBalance    float64   `json:"initial_balance"`
	FinalAsset        float64   `json:"final_asset"`
	TotalReturn       float64   `json:"total_return"`        // fraction, 0.1 == 10%
	BuyAndHoldReturn  float64   `json:"buy_and_hold_return"` // fraction
	BestFinalAsset    float64   `json:"best_final_asset"`
	WorstFinalAsset   float64   `json:"worst_final_asset"`
	FirstWindowReward float64   `json:"first_window_reward"` // mean total reward of the first window
	LastWindowReward  float64   `json:"last_window_reward"`  // mean total reward of the last window
	RewardStdDev      float64   `json:"reward_std_dev"`
	Window            int       `json:"window"`
	SharpeRatio       float64   `json:"sharpe_ratio"`
	MaxDrawdown       float64   `json:"max_drawdown"` // percent
	QTableSize        int       `json:"q_table_size"`
	EquityCurve       []float64 `json:"equity_curve,omitempty"`
	FinishedAt        time.Time `json:"finished_at"`
}
