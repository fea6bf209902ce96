package palette

import (
	"fmt"
	"io"
	"time"
)

// Swatch is one palette entry as rendered in the output image
type Swatch struct {
	Index int     `json:"index"`
	Hex   string  `json:"hex"`
	Color Sample  `json:"color"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// Report summarizes a finished run
type Report struct {
	RunID      string   `json:"runId"`
	K          int      `json:"k"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	State      State    `json:"state"`
	Iterations int      `json:"iterations"`
	Rounds     int      `json:"rounds"`
	Palette    []Swatch `json:"palette"`
	Timestamp  int64    `json:"timestamp"`
}

// BuildReport combines the clustering result with the pixel counts from
// reconstruction. counts must have one entry per centroid.
func BuildReport(runID string, img *Image, res *Result, counts []int) *Report {
	total := len(img.Samples)
	swatches := make([]Swatch, len(res.Centroids))
	for j, c := range res.Centroids {
		q := c.Quantize()
		var share float64
		if total > 0 {
			share = float64(counts[j]) / float64(total)
		}
		swatches[j] = Swatch{
			Index: j,
			Hex:   q.Hex(),
			Color: q,
			Count: counts[j],
			Share: share,
		}
	}

	return &Report{
		RunID:      runID,
		K:          len(res.Centroids),
		Width:      img.Width,
		Height:     img.Height,
		State:      res.State,
		Iterations: res.Iterations,
		Rounds:     res.Rounds,
		Palette:    swatches,
		Timestamp:  time.Now().Unix(),
	}
}

// Print writes a human readable summary
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Clustered %dx%d into %d colors (%s after %d iterations)\n",
		r.Width, r.Height, r.K, r.State, r.Iterations)
	for _, s := range r.Palette {
		fmt.Fprintf(w, "  %2d  %s  %8d px  %5.1f%%\n", s.Index, s.Hex, s.Count, s.Share*100)
	}
}
