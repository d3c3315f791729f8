package learning

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/QTrader/internal/model"
	"github.com/Alias1177/QTrader/internal/trading/env"
)

// countdownEnv terminates after length steps and rewards every Buy with 1
type countdownEnv struct {
	length  int
	step    int
	resets  int
	trades  int
	failAt  int
	actions []model.Action
}

func (e *countdownEnv) Reset() model.Observation {
	e.step = 0
	e.trades = 0
	e.resets++
	return stateObs(0)
}

func (e *countdownEnv) Step(action model.Action) (model.StepResult, error) {
	if e.failAt > 0 && e.step+1 == e.failAt {
		return model.StepResult{}, errors.New("boom")
	}
	e.actions = append(e.actions, action)
	e.step++
	reward := 0.0
	if action == model.Buy {
		reward = 1
		e.trades++
	}
	return model.StepResult{
		Observation: stateObs(e.step),
		Reward:      reward,
		Done:        e.step >= e.length,
	}, nil
}

func (e *countdownEnv) TotalAsset() float64 { return float64(e.trades) }
func (e *countdownEnv) TradeCount() int     { return e.trades }

func TestTrainerRunCollectsResults(t *testing.T) {
	agent := newTestAgent(t, AgentConfig{Epsilon: 0, LearningRate: 0.5, DiscountFactor: 0.9})
	fake := &countdownEnv{length: 4}

	var observed []int
	trainer := NewTrainer(agent, fake,
		WithLogEvery(0),
		WithTrainerLogger(zerolog.Nop()),
		WithObserver(func(r model.EpisodeResult) error {
			observed = append(observed, r.Episode)
			return nil
		}),
	)

	results, err := trainer.Run(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []int{1, 2, 3}, observed)
	assert.Equal(t, 3, fake.resets)

	for i, r := range results {
		assert.Equal(t, i+1, r.Episode)
		assert.Equal(t, 4, r.Steps)
		assert.Equal(t, float64(r.Trades), r.TotalReward)
	}
	// a greedy agent starting at zeros holds in the first episode
	assert.Equal(t, 0.0, results[0].TotalReward)
}

func TestTrainerStopsOnCancelledContext(t *testing.T) {
	agent := newTestAgent(t, DefaultAgentConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewTrainer(agent, &countdownEnv{length: 2}, WithTrainerLogger(zerolog.Nop())).Run(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestTrainerPropagatesErrors(t *testing.T) {
	agent := newTestAgent(t, DefaultAgentConfig())

	_, err := NewTrainer(agent, &countdownEnv{length: 5, failAt: 3}, WithTrainerLogger(zerolog.Nop())).Run(context.Background(), 2)
	assert.EqualError(t, err, "episode 1: boom")

	observerErr := errors.New("store down")
	trainer := NewTrainer(agent, &countdownEnv{length: 2},
		WithTrainerLogger(zerolog.Nop()),
		WithObserver(func(model.EpisodeResult) error { return observerErr }),
	)
	results, err := trainer.Run(context.Background(), 2)
	assert.ErrorIs(t, err, observerErr)
	assert.Len(t, results, 1)

	_, err = trainer.Run(context.Background(), 0)
	assert.Error(t, err)
}

func TestTrainerWithTradingEnvironment(t *testing.T) {
	prices := []float64{100, 101, 103, 102, 105, 107, 106, 110, 112, 111}
	bars := make([]model.Bar, len(prices))
	for i, p := range prices {
		bars[i] = model.Bar{Close: p, SMA20: p, RSI14: 50, MACD: 0}
	}
	tradingEnv, err := env.New(bars, env.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	agent := newTestAgent(t, AgentConfig{Epsilon: 0.2, LearningRate: 0.1, DiscountFactor: 0.95})
	results, err := NewTrainer(agent, tradingEnv, WithTrainerLogger(zerolog.Nop())).Run(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, results, 50)

	for _, r := range results {
		assert.Equal(t, len(prices)-1, r.Steps)
		assert.Greater(t, r.FinalAsset, 0.0)
	}
	assert.Greater(t, agent.QTable().Len(), 0)
}
