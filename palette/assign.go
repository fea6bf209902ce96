package palette

import "math"

// Nearest returns the index of the centroid closest to s and the squared
// distance to it. On an exact tie the lowest index wins.
func Nearest(s Sample, centroids []Centroid) (int, float64) {
	best := 0
	bestDist := math.MaxFloat64
	for j, c := range centroids {
		if d := squaredDistance(s, c); d < bestDist {
			best = j
			bestDist = d
		}
	}
	return best, bestDist
}

// Assign writes the nearest centroid index of every sample into assignments
// and returns the inertia, the total squared distance of samples to their
// assigned centroid.
//
// centroids is read-only for the duration of the call. Each worker owns a
// contiguous range of assignments, so no locking is needed. assignments must
// have the same length as samples.
func Assign(centroids []Centroid, samples []Sample, assignments []int, workers int) float64 {
	chunks := partition(len(samples), workerCount(workers, len(samples)))
	partial := make([]float64, len(chunks))

	runChunks(chunks, func(w int, c chunk) {
		var inertia float64
		for i := c.lo; i < c.hi; i++ {
			j, d := Nearest(samples[i], centroids)
			assignments[i] = j
			inertia += d
		}
		partial[w] = inertia
	})

	var total float64
	for _, v := range partial {
		total += v
	}
	return total
}
