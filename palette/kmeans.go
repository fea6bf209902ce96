package palette

import (
	"context"
	"fmt"
)

// State is the position of a clustering run in its lifecycle
type State int

const (
	StateRunning State = iota
	StateConverged
	StateIterationCapReached
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateConverged:
		return "converged"
	case StateIterationCapReached:
		return "iteration_cap_reached"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON and YAML output
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText
func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{StateRunning, StateConverged, StateIterationCapReached} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown clustering state %q", text)
}

// RoundStats describes one completed assignment+aggregation round
type RoundStats struct {
	Round     int
	Inertia   float64
	Counts    []int
	Converged bool
}

// Options tunes a clustering run. The zero value is usable.
type Options struct {
	MaxIterations int       // Rounds before giving up (default 100)
	Threshold     float64   // Per-channel convergence threshold (default 1e-5)
	Workers       int       // Parallelism per step; <=0 means GOMAXPROCS
	Strategy      Strategy  // Aggregation accumulator sharing
	Rand          IntSource // Initialization randomness for Cluster; nil draws a random seed
	Logger        *Logger
	Observer      func(RoundStats) // Called after every round, from the driver goroutine
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Logger == nil {
		o.Logger = NoopLogger()
	}
	return o
}

// Result is the outcome of a clustering run
type Result struct {
	Centroids   []Centroid `json:"centroids"`
	Assignments []int      `json:"-"`
	Counts      []int      `json:"counts"`
	Iterations  int        `json:"iterations"`
	Rounds      int        `json:"rounds"`
	State       State      `json:"state"`
	Inertia     []float64  `json:"inertia"`
}

// Converged reports whether the run stopped because the centroids settled
func (r *Result) Converged() bool {
	return r.State == StateConverged
}

// Cluster validates k, draws the initial centroids and runs the loop to a
// terminal state.
func Cluster(samples []Sample, k int, opts Options) (*Result, error) {
	if err := ValidateK(k, len(samples)); err != nil {
		return nil, err
	}

	rnd := opts.Rand
	if rnd == nil {
		rnd = NewRandSource(nil)
	}
	initial, err := InitCentroids(k, samples, rnd)
	if err != nil {
		return nil, err
	}
	return Run(samples, initial, opts), nil
}

// Run iterates assignment and aggregation from the given starting centroids
// until every centroid moves less than the threshold or the iteration cap is
// reached. The initial slice is not modified.
func Run(samples []Sample, initial []Centroid, opts Options) *Result {
	opts = opts.withDefaults()
	ctx := context.Background()
	log := opts.Logger.WithK(len(initial))

	current := make([]Centroid, len(initial))
	copy(current, initial)

	res := &Result{
		Assignments: make([]int, len(samples)),
		State:       StateRunning,
	}

	for res.State == StateRunning {
		inertia := Assign(current, samples, res.Assignments, opts.Workers)
		next, counts := Aggregate(res.Assignments, samples, len(current), opts.Workers, opts.Strategy)

		res.Rounds++
		res.Counts = counts
		res.Inertia = append(res.Inertia, inertia)

		converged := allClose(current, next, opts.Threshold)
		current = next
		if converged {
			res.State = StateConverged
		} else {
			res.Iterations++
			if res.Iterations >= opts.MaxIterations {
				res.State = StateIterationCapReached
			}
		}

		log.LogRound(ctx, res.Rounds, inertia, converged)
		if opts.Observer != nil {
			opts.Observer(RoundStats{
				Round:     res.Rounds,
				Inertia:   inertia,
				Counts:    counts,
				Converged: converged,
			})
		}
	}

	res.Centroids = current
	log.LogResult(ctx, res)
	return res
}

func allClose(prev, next []Centroid, threshold float64) bool {
	for j := range prev {
		if !isCloseWithin(prev[j], next[j], threshold) {
			return false
		}
	}
	return true
}
