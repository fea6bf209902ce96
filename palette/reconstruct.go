package palette

import (
	"fmt"
	"image"
	"image/color"
)

// Reconstruct paints every sample with the color of its nearest final
// centroid and returns the image plus the number of pixels per centroid.
//
// The nearest centroid is recomputed here instead of reusing the loop's last
// assignment, so a pixel follows the final centroid set even when it moved in
// the last round.
func Reconstruct(centroids []Centroid, samples []Sample, width, height int) (*image.RGBA, []int, error) {
	if width < 0 || height < 0 || width*height != len(samples) {
		return nil, nil, fmt.Errorf("%w: %dx%d for %d samples", ErrGeometryMismatch, width, height, len(samples))
	}
	if len(centroids) == 0 {
		return nil, nil, fmt.Errorf("%w: no centroids", ErrInvalidK)
	}

	quantized := make([]color.RGBA, len(centroids))
	for j, c := range centroids {
		q := c.Quantize()
		quantized[j] = color.RGBA{R: q.R, G: q.G, B: q.B, A: 255}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	counts := make([]int, len(centroids))
	for i, s := range samples {
		j, _ := Nearest(s, centroids)
		counts[j]++
		img.SetRGBA(i%width, i/width, quantized[j])
	}
	return img, counts, nil
}
