package model

// Trade records one executed order inside an episode
type Trade struct {
	Side  Action  `json:"side"`
	Step  int     `json:"step"`
	Price float64 `json:"price"`
}

// StepResult is what an environment returns after executing one action
type StepResult struct {
	Observation Observation
	Reward      float64
	Done        bool
}
