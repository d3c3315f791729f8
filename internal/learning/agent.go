package learning

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/QTrader/internal/model"
)

// ErrInvalidConfig is returned when agent hyperparameters are out of range
var ErrInvalidConfig = errors.New("invalid agent configuration")

// AgentConfig holds the fixed hyperparameters of a Q-learning agent
type AgentConfig struct {
	Epsilon        float64 `json:"epsilon"`         // exploration probability, [0,1]
	LearningRate   float64 `json:"learning_rate"`   // alpha, (0,1]
	DiscountFactor float64 `json:"discount_factor"` // gamma, [0,1]
	Seed           int64   `json:"seed"`
}

// DefaultAgentConfig returns the hyperparameters used when none are given
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Epsilon:        0.1,
		LearningRate:   0.1,
		DiscountFactor: 0.95,
		Seed:           1,
	}
}

// Validate checks that every hyperparameter is inside its range
func (c AgentConfig) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("%w: epsilon %v not in [0,1]", ErrInvalidConfig, c.Epsilon)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("%w: learning rate %v not in (0,1]", ErrInvalidConfig, c.LearningRate)
	}
	if c.DiscountFactor < 0 || c.DiscountFactor > 1 {
		return fmt.Errorf("%w: discount factor %v not in [0,1]", ErrInvalidConfig, c.DiscountFactor)
	}
	return nil
}

// Agent is a tabular Q-learning agent with an epsilon-greedy policy
type Agent struct {
	cfg     AgentConfig
	actions []model.Action
	q       *QTable
	rng     *rand.Rand
	logger  zerolog.Logger
}

// AgentOption customizes an Agent
type AgentOption func(*Agent)

// WithRand replaces the random source used for exploration
func WithRand(rng *rand.Rand) AgentOption {
	return func(a *Agent) {
		a.rng = rng
	}
}

// WithAgentLogger replaces the agent logger
func WithAgentLogger(logger zerolog.Logger) AgentOption {
	return func(a *Agent) {
		a.logger = logger
	}
}

// NewAgent creates an agent with an empty Q-table
func NewAgent(cfg AgentConfig, opts ...AgentOption) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Agent{
		cfg:     cfg,
		actions: model.Actions(),
		q:       NewQTable(model.ActionCount),
		logger:  log.With().Str("component", "agent").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(cfg.Seed))
	}

	return a, nil
}

// Config returns the hyperparameters the agent was built with
func (a *Agent) Config() AgentConfig {
	return a.cfg
}

// QTable exposes the learned values
func (a *Agent) QTable() *QTable {
	return a.q
}

// SelectAction picks a random action with probability epsilon and the
// best known action otherwise. Ties go to the lowest action code.
func (a *Agent) SelectAction(obs model.Observation) model.Action {
	if a.rng.Float64() < a.cfg.Epsilon {
		return a.actions[a.rng.Intn(len(a.actions))]
	}
	return a.actions[a.q.Argmax(a.key(obs))]
}

// Update applies one temporal-difference step toward
// reward + gamma * max Q(next).
func (a *Agent) Update(state model.Observation, action model.Action, reward float64, next model.Observation) {
	s := a.key(state)
	sNext := a.key(next)

	maxNext := a.q.Max(sNext)
	tdTarget := reward + a.cfg.DiscountFactor*maxNext
	current := a.q.Value(s, int(action))
	tdError := tdTarget - current

	a.q.Set(s, int(action), current+a.cfg.LearningRate*tdError)
}

func (a *Agent) key(obs model.Observation) StateKey {
	return discretize(obs, a.logger)
}
