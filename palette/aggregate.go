package palette

import (
	"fmt"
	"sync"
)

// Strategy selects how the aggregation step shares cluster accumulators
// between workers.
type Strategy int

const (
	// StrategyPartitioned gives every worker private accumulators that are
	// merged once the parallel phase ends.
	StrategyPartitioned Strategy = iota
	// StrategyLocked shares one accumulator per cluster, each behind its own mutex.
	StrategyLocked
)

func (s Strategy) String() string {
	switch s {
	case StrategyPartitioned:
		return "partitioned"
	case StrategyLocked:
		return "locked"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps a config name to a Strategy. The empty string selects
// the default.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "partitioned":
		return StrategyPartitioned, nil
	case "locked":
		return StrategyLocked, nil
	default:
		return 0, fmt.Errorf("unknown aggregation strategy %q", name)
	}
}

// accumulator holds the running channel sums of one cluster. Sums are
// integers so the merged result does not depend on accumulation order.
type accumulator struct {
	r, g, b uint64
	count   int
}

func (a *accumulator) add(s Sample) {
	a.r += uint64(s.R)
	a.g += uint64(s.G)
	a.b += uint64(s.B)
	a.count++
}

func (a *accumulator) merge(o accumulator) {
	a.r += o.r
	a.g += o.g
	a.b += o.b
	a.count += o.count
}

// mean returns the cluster centroid; an empty cluster yields the zero centroid.
func (a accumulator) mean() Centroid {
	if a.count == 0 {
		return Centroid{}
	}
	n := float64(a.count)
	return Centroid{R: float64(a.r) / n, G: float64(a.g) / n, B: float64(a.b) / n}
}

// lockedAccumulator is a cluster accumulator shared between workers
type lockedAccumulator struct {
	mu sync.Mutex
	accumulator
}

// Aggregate groups samples by their assignment and returns the mean color of
// each of the k clusters together with the cluster sizes. The sizes always
// sum to len(samples).
func Aggregate(assignments []int, samples []Sample, k int, workers int, strategy Strategy) ([]Centroid, []int) {
	var totals []accumulator
	switch strategy {
	case StrategyLocked:
		totals = aggregateLocked(assignments, samples, k, workers)
	default:
		totals = aggregatePartitioned(assignments, samples, k, workers)
	}

	centroids := make([]Centroid, k)
	counts := make([]int, k)
	for j, acc := range totals {
		centroids[j] = acc.mean()
		counts[j] = acc.count
	}
	return centroids, counts
}

func aggregatePartitioned(assignments []int, samples []Sample, k int, workers int) []accumulator {
	chunks := partition(len(samples), workerCount(workers, len(samples)))
	partials := make([][]accumulator, len(chunks))

	runChunks(chunks, func(w int, c chunk) {
		local := make([]accumulator, k)
		for i := c.lo; i < c.hi; i++ {
			local[assignments[i]].add(samples[i])
		}
		partials[w] = local
	})

	totals := make([]accumulator, k)
	for _, local := range partials {
		for j := range totals {
			totals[j].merge(local[j])
		}
	}
	return totals
}

func aggregateLocked(assignments []int, samples []Sample, k int, workers int) []accumulator {
	shared := make([]lockedAccumulator, k)
	chunks := partition(len(samples), workerCount(workers, len(samples)))

	runChunks(chunks, func(_ int, c chunk) {
		for i := c.lo; i < c.hi; i++ {
			acc := &shared[assignments[i]]
			acc.mu.Lock()
			acc.add(samples[i])
			acc.mu.Unlock()
		}
	})

	totals := make([]accumulator, k)
	for j := range shared {
		totals[j] = shared[j].accumulator
	}
	return totals
}
