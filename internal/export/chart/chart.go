// Package chart renders training curves as a standalone HTML page.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Alias1177/QTrader/internal/model"
)

// Render writes a page with the per-episode reward curve and the
// final asset curve against the initial balance.
func Render(w io.Writer, results []model.EpisodeResult, initialBalance float64) error {
	if len(results) == 0 {
		return fmt.Errorf("no episode results to plot")
	}

	episodes := make([]string, len(results))
	rewards := make([]opts.LineData, len(results))
	assets := make([]opts.LineData, len(results))
	for i, r := range results {
		episodes[i] = fmt.Sprintf("%d", r.Episode)
		rewards[i] = opts.LineData{Value: r.TotalReward}
		assets[i] = opts.LineData{Value: r.FinalAsset}
	}

	rewardLine := charts.NewLine()
	rewardLine.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Q-Learning Agent Rewards"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Total Reward"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	rewardLine.SetXAxis(episodes).AddSeries("Episode Reward", rewards)

	assetLine := charts.NewLine()
	assetLine.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Q-Learning Agent Asset Performance"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Asset Value ($)", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	assetLine.SetXAxis(episodes).AddSeries("Final Asset Value", assets,
		charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
			Name:  "Initial Balance",
			YAxis: initialBalance,
		}),
	)

	page := components.NewPage()
	page.AddCharts(rewardLine, assetLine)

	return page.Render(w)
}

// RenderFile writes the page to path, creating parent directories
func RenderFile(path string, results []model.EpisodeResult, initialBalance float64) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Render(f, results, initialBalance); err != nil {
		f.Close()
		return fmt.Errorf("rendering chart: %w", err)
	}
	return f.Close()
}
