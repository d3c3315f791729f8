package env

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/QTrader/internal/model"
)

// DefaultInitialBalance is the starting cash of every episode
const DefaultInitialBalance = 10000.0

var (
	// ErrConfiguration is returned for price series that cannot run an episode
	ErrConfiguration = errors.New("environment configuration error")
	// ErrEpisodeDone is returned when stepping a finished episode
	ErrEpisodeDone = errors.New("episode is done, call Reset")
	// ErrInvalidAction is returned for actions outside the action set
	ErrInvalidAction = errors.New("invalid action")
)

// Environment is an episodic single-asset trading simulator over a fixed
// price series. It is not safe for concurrent use.
type Environment struct {
	bars           []model.Bar
	initialBalance float64
	logger         zerolog.Logger

	step       int
	balance    float64
	sharesHeld int
	totalAsset float64
	trades     []model.Trade
	done       bool
}

// Option customizes an Environment
type Option func(*Environment)

// WithInitialBalance sets the cash available at reset
func WithInitialBalance(balance float64) Option {
	return func(e *Environment) {
		e.initialBalance = balance
	}
}

// WithLogger replaces the environment logger
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Environment) {
		e.logger = logger
	}
}

// New validates bars and returns an environment positioned at step 0
func New(bars []model.Bar, opts ...Option) (*Environment, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rows, got %d", ErrConfiguration, len(bars))
	}

	for i, b := range bars {
		if err := validateBar(b); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrConfiguration, i, err)
		}
	}

	e := &Environment{
		bars:           append([]model.Bar(nil), bars...),
		initialBalance: DefaultInitialBalance,
		logger:         log.With().Str("component", "trading_env").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.initialBalance < 0 || !finite(e.initialBalance) {
		return nil, fmt.Errorf("%w: initial balance %v", ErrConfiguration, e.initialBalance)
	}

	e.Reset()
	return e, nil
}

func validateBar(b model.Bar) error {
	columns := []struct {
		name  string
		value float64
	}{
		{"Close", b.Close},
		{"SMA_20", b.SMA20},
		{"RSI_14", b.RSI14},
		{"MACD", b.MACD},
	}
	for _, c := range columns {
		if !finite(c.value) {
			return fmt.Errorf("column %s is not a finite number: %v", c.name, c.value)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Reset starts a new episode and returns its first observation
func (e *Environment) Reset() model.Observation {
	e.step = 0
	e.balance = e.initialBalance
	e.sharesHeld = 0
	e.totalAsset = e.initialBalance
	e.trades = nil
	e.done = false
	return e.observation()
}

// Step executes action at the current price, advances one row and returns
// the reward for the transition.
func (e *Environment) Step(action model.Action) (model.StepResult, error) {
	if e.done {
		return model.StepResult{}, ErrEpisodeDone
	}
	if !action.Valid() {
		return model.StepResult{}, fmt.Errorf("%w: %d", ErrInvalidAction, int(action))
	}

	currentPrice := e.bars[e.step].Close

	switch action {
	case model.Buy:
		if e.balance >= currentPrice {
			e.sharesHeld++
			e.balance -= currentPrice
			e.trades = append(e.trades, model.Trade{Side: model.Buy, Step: e.step, Price: currentPrice})
		} else {
			e.logger.Trace().Int("step", e.step).Float64("balance", e.balance).Msg("Buy rejected, insufficient balance")
		}
	case model.Sell:
		if e.sharesHeld > 0 {
			e.sharesHeld--
			e.balance += currentPrice
			e.trades = append(e.trades, model.Trade{Side: model.Sell, Step: e.step, Price: currentPrice})
		} else {
			e.logger.Trace().Int("step", e.step).Msg("Sell rejected, no shares held")
		}
	}

	e.step++
	e.done = e.step >= len(e.bars)-1

	var reward float64
	if !e.done {
		nextPrice := e.bars[e.step].Close
		if e.sharesHeld > 0 {
			reward = (nextPrice - currentPrice) * float64(e.sharesHeld)
		}
	} else {
		// terminal reward is the whole episode P&L
		reward = e.balance + float64(e.sharesHeld)*currentPrice - e.initialBalance
	}

	e.totalAsset = e.balance + float64(e.sharesHeld)*currentPrice

	return model.StepResult{
		Observation: e.observation(),
		Reward:      reward,
		Done:        e.done,
	}, nil
}

func (e *Environment) observation() model.Observation {
	b := e.bars[e.step]
	return model.NewObservation(map[string]any{
		model.FeaturePrice:      b.Close,
		model.FeatureSMA20:      b.SMA20,
		model.FeatureRSI14:      b.RSI14,
		model.FeatureMACD:       b.MACD,
		model.FeatureBalance:    e.balance,
		model.FeatureSharesHeld: e.sharesHeld,
	})
}

// Balance returns the cash held
func (e *Environment) Balance() float64 { return e.balance }

// SharesHeld returns the open position size
func (e *Environment) SharesHeld() int { return e.sharesHeld }

// TotalAsset returns cash plus position value as of the last step
func (e *Environment) TotalAsset() float64 { return e.totalAsset }

// InitialBalance returns the cash available at reset
func (e *Environment) InitialBalance() float64 { return e.initialBalance }

// CurrentStep returns the row index of the current observation
func (e *Environment) CurrentStep() int { return e.step }

// Done reports whether the current episode has terminated
func (e *Environment) Done() bool { return e.done }

// Len returns the number of rows in the price series
func (e *Environment) Len() int { return len(e.bars) }

// TradeCount returns the number of executed trades this episode
func (e *Environment) TradeCount() int { return len(e.trades) }

// Trades returns a copy of the trade log
func (e *Environment) Trades() []model.Trade {
	return append([]model.Trade(nil), e.trades...)
}

// Prices returns the close price series
func (e *Environment) Prices() []float64 {
	return model.Closes(e.bars)
}
