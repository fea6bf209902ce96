package palette

import (
	"math/rand/v2"
)

// IntSource supplies uniform integers in [0, n)
type IntSource interface {
	IntN(n int) int
}

// NewRandSource returns a PCG-backed source. A nil seed draws a random one.
func NewRandSource(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
}

// InitCentroids picks k starting centroids by sampling the input uniformly
// with replacement. Duplicates are kept.
func InitCentroids(k int, samples []Sample, rnd IntSource) ([]Centroid, error) {
	if err := ValidateK(k, len(samples)); err != nil {
		return nil, err
	}

	centroids := make([]Centroid, k)
	for i := range centroids {
		centroids[i] = CentroidOf(samples[rnd.IntN(len(samples))])
	}
	return centroids, nil
}
