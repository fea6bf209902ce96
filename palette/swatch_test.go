package palette

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPalette() []Swatch {
	return []Swatch{
		{Index: 0, Hex: "#ff0000", Color: Sample{255, 0, 0}, Count: 3, Share: 0.75},
		{Index: 1, Hex: "#0000ff", Color: Sample{0, 0, 255}, Count: 1, Share: 0.25},
		{Index: 2, Hex: "#00ff00", Color: Sample{0, 255, 0}, Count: 0, Share: 0},
	}
}

func TestSwatchFormatFromPath(t *testing.T) {
	f, err := SwatchFormatFromPath("palette.SVG")
	require.NoError(t, err)
	assert.Equal(t, SwatchSVG, f)

	f, err = SwatchFormatFromPath("dir/palette.png")
	require.NoError(t, err)
	assert.Equal(t, SwatchPNG, f)

	_, err = SwatchFormatFromPath("palette.jpg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSwatchRenderer_SVG(t *testing.T) {
	var buf bytes.Buffer
	r := NewSwatchRenderer(testPalette(), 300, 60)
	require.NoError(t, r.RenderToSVG(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<svg"), "output should start with <svg")
	assert.Contains(t, out, "</svg>")
}

func TestSwatchRenderer_PNG(t *testing.T) {
	var buf bytes.Buffer
	r := NewSwatchRenderer(testPalette(), 300, 60)
	require.NoError(t, r.RenderToPNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), img.Bounds().Dy(), "swatch is a horizontal strip")

	// The upper left corner belongs to the dominant red stripe
	rr, g, b, _ := img.At(img.Bounds().Min.X+2, img.Bounds().Min.Y+2).RGBA()
	assert.Greater(t, rr>>8, uint32(200))
	assert.Less(t, g>>8, uint32(50))
	assert.Less(t, b>>8, uint32(50))
}

func TestSwatchRenderer_EmptyPalette(t *testing.T) {
	var buf bytes.Buffer
	r := NewSwatchRenderer(nil, 100, 20)
	assert.NoError(t, r.RenderToSVG(&buf))

	buf.Reset()
	assert.NoError(t, r.RenderToPNG(&buf))
}

func TestSwatchRenderer_RenderToFile(t *testing.T) {
	dir := t.TempDir()
	r := NewSwatchRenderer(testPalette(), 300, 60)

	for _, name := range []string{"swatch.svg", "swatch.png"} {
		path := filepath.Join(dir, name)
		require.NoError(t, r.RenderToFile(path))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	assert.ErrorIs(t, r.RenderToFile(filepath.Join(dir, "swatch.gif")), ErrUnsupportedFormat)
}

func TestLabelColor(t *testing.T) {
	assert.Equal(t, uint8(0), labelColor(Sample{255, 255, 255}).R)
	assert.Equal(t, uint8(255), labelColor(Sample{0, 0, 0}).R)
	assert.Equal(t, uint8(255), labelColor(Sample{0, 0, 255}).R)
}
