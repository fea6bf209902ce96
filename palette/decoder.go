package palette

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	// Registered input formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeFile reads and decodes the image at path
func DecodeFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// Decode decodes any registered format (png, jpeg, gif, bmp, tiff, webp)
func Decode(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return SamplesFromImage(src), nil
}

// SamplesFromImage flattens img row by row, left to right. Alpha is dropped
// after un-premultiplying, so a translucent pixel keeps its hue.
func SamplesFromImage(img image.Image) *Image {
	b := img.Bounds()
	out := &Image{
		Width:   b.Dx(),
		Height:  b.Dy(),
		Samples: make([]Sample, 0, b.Dx()*b.Dy()),
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.Samples = append(out.Samples, Sample{R: c.R, G: c.G, B: c.B})
		}
	}
	return out
}
