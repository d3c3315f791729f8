package backtest

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/Alias1177/QTrader/internal/model"
)

// DefaultWindow is the number of episodes averaged at each end of a run
const DefaultWindow = 100

// SummaryInput carries everything needed to summarize a training run
type SummaryInput struct {
	Symbol         string
	Results        []model.EpisodeResult
	InitialBalance float64
	Prices         []float64
	QTableSize     int
	Window         int
}

// Summarize builds the final report of a training run
func Summarize(in SummaryInput) (*model.TrainingSummary, error) {
	if len(in.Results) == 0 {
		return nil, fmt.Errorf("no episode results to summarize")
	}
	if in.InitialBalance <= 0 {
		return nil, fmt.Errorf("initial balance must be positive, got %v", in.InitialBalance)
	}

	buyHold, err := BuyAndHoldReturn(in.Prices)
	if err != nil {
		return nil, fmt.Errorf("buy and hold baseline: %w", err)
	}

	window := in.Window
	if window <= 0 {
		window = DefaultWindow
	}
	if window > len(in.Results) {
		window = len(in.Results)
	}

	rewards := make([]float64, len(in.Results))
	equity := make([]float64, len(in.Results))
	best, worst := math.Inf(-1), math.Inf(1)
	for i, r := range in.Results {
		rewards[i] = r.TotalReward
		equity[i] = r.FinalAsset
		best = math.Max(best, r.FinalAsset)
		worst = math.Min(worst, r.FinalAsset)
	}

	final := equity[len(equity)-1]

	summary := &model.TrainingSummary{
		Symbol:            in.Symbol,
		Episodes:          len(in.Results),
		InitialBalance:    in.InitialBalance,
		FinalAsset:        final,
		TotalReturn:       (final - in.InitialBalance) / in.InitialBalance,
		BuyAndHoldReturn:  buyHold,
		BestFinalAsset:    best,
		WorstFinalAsset:   worst,
		FirstWindowReward: windowMean(rewards, 0, window),
		LastWindowReward:  windowMean(rewards, len(rewards)-window, len(rewards)),
		Window:            window,
		SharpeRatio:       sharpeRatio(equity),
		MaxDrawdown:       maxDrawdown(equity),
		QTableSize:        in.QTableSize,
		EquityCurve:       equity,
		FinishedAt:        time.Now().UTC(),
	}
	if len(rewards) > 1 {
		summary.RewardStdDev = stat.StdDev(rewards, nil)
	}

	return summary, nil
}

// FormatSummary creates a human-readable summary of a training run
func FormatSummary(s *model.TrainingSummary) string {
	if s == nil {
		return "No training results available"
	}

	var b strings.Builder
	title := "TRAINING RESULTS"
	if s.Symbol != "" {
		title += " " + s.Symbol
	}
	fmt.Fprintf(&b, "===== %s =====\n", title)
	fmt.Fprintf(&b, "Final Performance after %d episodes:\n", s.Episodes)
	fmt.Fprintf(&b, "Starting Balance: $%.2f\n", s.InitialBalance)
	fmt.Fprintf(&b, "Final Asset Value: $%.2f\n", s.FinalAsset)
	fmt.Fprintf(&b, "Total Return: %.2f%%\n", s.TotalReturn*100)
	fmt.Fprintf(&b, "\nBuy & Hold Return: %.2f%%\n", s.BuyAndHoldReturn*100)

	verdict := "underperformed"
	if s.TotalReturn > s.BuyAndHoldReturn {
		verdict = "outperformed"
	} else if s.TotalReturn == s.BuyAndHoldReturn {
		verdict = "matched"
	}
	fmt.Fprintf(&b, "Policy %s buy & hold by %.2f points\n", verdict, math.Abs(s.TotalReturn-s.BuyAndHoldReturn)*100)

	fmt.Fprintf(&b, "\nBest / worst final asset: $%.2f / $%.2f\n", s.BestFinalAsset, s.WorstFinalAsset)
	fmt.Fprintf(&b, "Mean reward, first %d episodes: %.2f\n", s.Window, s.FirstWindowReward)
	fmt.Fprintf(&b, "Mean reward, last %d episodes: %.2f\n", s.Window, s.LastWindowReward)
	fmt.Fprintf(&b, "Reward std dev: %.2f\n", s.RewardStdDev)
	fmt.Fprintf(&b, "Sharpe ratio (per episode): %.3f\n", s.SharpeRatio)
	fmt.Fprintf(&b, "Maximum drawdown: %.2f%%\n", s.MaxDrawdown)
	fmt.Fprintf(&b, "Q-table states: %d\n", s.QTableSize)

	return b.String()
}
