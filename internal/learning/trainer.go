package learning

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/QTrader/internal/model"
)

// Environment is the episodic task the trainer drives
type Environment interface {
	Reset() model.Observation
	Step(action model.Action) (model.StepResult, error)
	TotalAsset() float64
	TradeCount() int
}

// Policy selects actions and learns from transitions
type Policy interface {
	SelectAction(obs model.Observation) model.Action
	Update(state model.Observation, action model.Action, reward float64, next model.Observation)
}

// EpisodeObserver is called after every finished episode
type EpisodeObserver func(result model.EpisodeResult) error

// Trainer runs Q-learning episodes sequentially
type Trainer struct {
	policy    Policy
	env       Environment
	logEvery  int
	observers []EpisodeObserver
	logger    zerolog.Logger
}

// TrainerOption customizes a Trainer
type TrainerOption func(*Trainer)

// WithLogEvery logs progress every n episodes; 0 disables progress logs
func WithLogEvery(n int) TrainerOption {
	return func(t *Trainer) {
		t.logEvery = n
	}
}

// WithObserver registers a callback receiving every episode result
func WithObserver(obs EpisodeObserver) TrainerOption {
	return func(t *Trainer) {
		t.observers = append(t.observers, obs)
	}
}

// WithTrainerLogger replaces the trainer logger
func WithTrainerLogger(logger zerolog.Logger) TrainerOption {
	return func(t *Trainer) {
		t.logger = logger
	}
}

// NewTrainer wires a policy to an environment
func NewTrainer(policy Policy, env Environment, opts ...TrainerOption) *Trainer {
	t := &Trainer{
		policy:   policy,
		env:      env,
		logEvery: 100,
		logger:   log.With().Str("component", "trainer").Logger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run trains for the given number of episodes. ctx is checked between
// episodes only; the results collected so far are returned with its error.
func (t *Trainer) Run(ctx context.Context, episodes int) ([]model.EpisodeResult, error) {
	if episodes <= 0 {
		return nil, errors.New("episode count must be positive")
	}

	results := make([]model.EpisodeResult, 0, episodes)
	for ep := 0; ep < episodes; ep++ {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("training stopped after %d episodes: %w", ep, err)
		}

		result, err := t.RunEpisode()
		if err != nil {
			return results, fmt.Errorf("episode %d: %w", ep+1, err)
		}
		result.Episode = ep + 1
		results = append(results, result)

		if t.logEvery > 0 && (ep+1)%t.logEvery == 0 {
			t.logger.Info().
				Int("episode", result.Episode).
				Float64("total_reward", result.TotalReward).
				Float64("final_asset", result.FinalAsset).
				Int("trades", result.Trades).
				Msg("Training progress")
		}

		for _, obs := range t.observers {
			if err := obs(result); err != nil {
				return results, fmt.Errorf("episode %d observer: %w", result.Episode, err)
			}
		}
	}

	return results, nil
}

// RunEpisode plays one episode from reset to termination
func (t *Trainer) RunEpisode() (model.EpisodeResult, error) {
	var result model.EpisodeResult

	state := t.env.Reset()
	for {
		action := t.policy.SelectAction(state)
		step, err := t.env.Step(action)
		if err != nil {
			return result, err
		}

		t.policy.Update(state, action, step.Reward, step.Observation)
		state = step.Observation
		result.TotalReward += step.Reward
		result.Steps++

		if step.Done {
			break
		}
	}

	result.FinalAsset = t.env.TotalAsset()
	result.Trades = t.env.TradeCount()
	return result, nil
}
