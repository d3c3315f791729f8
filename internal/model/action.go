package model

import "fmt"

// Action is a trading decision taken once per environment step
type Action int

const (
	Hold Action = iota
	Buy
	Sell
)

// ActionCount is the size of the closed action set
const ActionCount = 3

// Actions returns every action ordered by its integer code
func Actions() []Action {
	return []Action{Hold, Buy, Sell}
}

// Valid reports whether a belongs to the action set
func (a Action) Valid() bool {
	return a >= Hold && a <= Sell
}

func (a Action) String() string {
	switch a {
	case Hold:
		return "HOLD"
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}
