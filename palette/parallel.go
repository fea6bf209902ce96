package palette

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// chunk is a half-open range of sample indices handled by one worker
type chunk struct {
	lo, hi int
}

// workerCount clamps the requested parallelism to [1, n].
// Non-positive requests fall back to GOMAXPROCS.
func workerCount(requested, n int) int {
	if requested <= 0 {
		requested = runtime.GOMAXPROCS(0)
	}
	if requested > n {
		requested = n
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}

// partition splits [0, n) into workers contiguous chunks whose sizes differ by at most one
func partition(n, workers int) []chunk {
	chunks := make([]chunk, 0, workers)
	size, rem := n/workers, n%workers
	lo := 0
	for w := range workers {
		hi := lo + size
		if w < rem {
			hi++
		}
		chunks = append(chunks, chunk{lo: lo, hi: hi})
		lo = hi
	}
	return chunks
}

// runChunks runs fn once per chunk concurrently and returns when all are done.
// fn receives the chunk's position so it can address per-worker scratch space.
func runChunks(chunks []chunk, fn func(worker int, c chunk)) {
	if len(chunks) == 1 {
		fn(0, chunks[0])
		return
	}

	var g errgroup.Group
	for w, c := range chunks {
		g.Go(func() error {
			fn(w, c)
			return nil
		})
	}
	// Workers never fail; Wait is the barrier between steps.
	_ = g.Wait()
}
