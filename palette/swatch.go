package palette

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// SwatchFormat is the encoding of a rendered palette strip
type SwatchFormat string

const (
	SwatchSVG SwatchFormat = "svg"
	SwatchPNG SwatchFormat = "png"
)

// SwatchFormatFromPath picks the swatch encoding from the file extension
func SwatchFormatFromPath(path string) (SwatchFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return SwatchSVG, nil
	case ".png":
		return SwatchPNG, nil
	default:
		return "", fmt.Errorf("%w: swatch must be .svg or .png, got %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// shareBand is the fraction of the strip height used for the
// share-weighted stripes; the rest shows every color at equal width.
const shareBand = 0.7

// SwatchRenderer draws the palette as two bands: stripes sized by pixel share
// on top, equal blocks for every color below.
type SwatchRenderer struct {
	Palette    []Swatch
	Width      float64           // Canvas units (mm)
	Height     float64           // Canvas units (mm)
	Resolution canvas.Resolution // Resolution for PNG output (default: 96 DPI)
	Labels     bool              // Hex labels on PNG output
}

// NewSwatchRenderer creates a swatch renderer with default settings
func NewSwatchRenderer(pal []Swatch, width, height float64) *SwatchRenderer {
	return &SwatchRenderer{
		Palette:    pal,
		Width:      width,
		Height:     height,
		Resolution: canvas.DPI(96),
		Labels:     true,
	}
}

// canvasRenderer is an interface that both svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the swatch as an SVG to the provided writer
func (r *SwatchRenderer) RenderToSVG(w io.Writer) error {
	svgRenderer := svg.New(w, r.Width, r.Height, nil)
	r.renderToCanvas(svgRenderer)
	return svgRenderer.Close()
}

// RenderToPNG writes the swatch as a PNG to the provided writer
func (r *SwatchRenderer) RenderToPNG(w io.Writer) error {
	rast := rasterizer.New(r.Width, r.Height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast)
	if r.Labels {
		r.drawLabels(rast)
	}
	return png.Encode(w, rast)
}

// RenderToFile writes the swatch to path, choosing SVG or PNG by extension
func (r *SwatchRenderer) RenderToFile(path string) error {
	format, err := SwatchFormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating swatch file: %w", err)
	}

	if format == SwatchSVG {
		err = r.RenderToSVG(f)
	} else {
		err = r.RenderToPNG(f)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("rendering swatch: %w", err)
	}
	return f.Close()
}

func (r *SwatchRenderer) renderToCanvas(renderer canvasRenderer) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	bgStyle.Stroke = canvas.Paint{Color: canvas.Transparent}
	renderer.RenderPath(canvas.Rectangle(r.Width, r.Height), bgStyle, canvas.Identity)

	if len(r.Palette) == 0 {
		return
	}

	// Canvas y grows upward: the equal band sits at the bottom.
	blockHeight := r.Height * (1 - shareBand)
	stripeHeight := r.Height - blockHeight

	var total int
	for _, s := range r.Palette {
		total += s.Count
	}

	x := 0.0
	for _, s := range r.Palette {
		var width float64
		if total > 0 {
			width = r.Width * float64(s.Count) / float64(total)
		} else {
			width = r.Width / float64(len(r.Palette))
		}
		if width > 0 {
			renderer.RenderPath(canvas.Rectangle(width, stripeHeight).Translate(x, blockHeight), fillStyle(s.Color), canvas.Identity)
		}
		x += width
	}

	blockWidth := r.Width / float64(len(r.Palette))
	for i, s := range r.Palette {
		renderer.RenderPath(canvas.Rectangle(blockWidth, blockHeight).Translate(float64(i)*blockWidth, 0), fillStyle(s.Color), canvas.Identity)
	}
}

func fillStyle(s Sample) canvas.Style {
	style := canvas.DefaultStyle
	style.Fill = canvas.Paint{Color: color.RGBA{s.R, s.G, s.B, 255}}
	style.Stroke = canvas.Paint{Color: canvas.Transparent}
	return style
}

// drawLabels writes each color's hex code into its block in the bottom band
func (r *SwatchRenderer) drawLabels(img draw.Image) {
	if len(r.Palette) == 0 {
		return
	}
	b := img.Bounds()
	blockWidth := b.Dx() / len(r.Palette)
	// "#rrggbb" is seven 7px glyphs wide
	if blockWidth < 7*7+8 {
		return
	}

	for i, s := range r.Palette {
		drawText(img, b.Min.X+i*blockWidth+4, b.Max.Y-6, s.Hex, labelColor(s.Color))
	}
}

// labelColor picks black or white, whichever reads better on the background
func labelColor(bg Sample) color.RGBA {
	luma := 299*int(bg.R) + 587*int(bg.G) + 114*int(bg.B)
	if luma > 128*1000 {
		return color.RGBA{0, 0, 0, 255}
	}
	return color.RGBA{255, 255, 255, 255}
}

// drawText renders text onto an image at the specified position
func drawText(img draw.Image, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
