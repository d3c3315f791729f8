package learning

// QTable maps discrete states to one action-value estimate per action.
// Rows are created with zeros on first access. It is not safe for
// concurrent use.
type QTable struct {
	actions int
	values  map[StateKey][]float64
}

// NewQTable creates an empty table for actionCount actions
func NewQTable(actionCount int) *QTable {
	return &QTable{
		actions: actionCount,
		values:  make(map[StateKey][]float64),
	}
}

// row returns the stored vector for key, inserting zeros when absent
func (q *QTable) row(key StateKey) []float64 {
	r, ok := q.values[key]
	if !ok {
		r = make([]float64, q.actions)
		q.values[key] = r
	}
	return r
}

// Get returns a copy of the action values for key
func (q *QTable) Get(key StateKey) []float64 {
	r := q.row(key)
	out := make([]float64, len(r))
	copy(out, r)
	return out
}

// Set stores value for one action of key
func (q *QTable) Set(key StateKey, action int, value float64) {
	q.row(key)[action] = value
}

// Value returns the estimate for one action of key
func (q *QTable) Value(key StateKey, action int) float64 {
	return q.row(key)[action]
}

// Max returns the largest action value of key
func (q *QTable) Max(key StateKey) float64 {
	r := q.row(key)
	return r[argmax(r)]
}

// Argmax returns the first action holding the largest value of key
func (q *QTable) Argmax(key StateKey) int {
	return argmax(q.row(key))
}

// Len returns the number of states seen so far
func (q *QTable) Len() int {
	return len(q.values)
}

// ActionCount returns the length of every row
func (q *QTable) ActionCount() int {
	return q.actions
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
