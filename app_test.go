package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kwv/kpalette/palette"
)

// fixtureColors are the 2x2 fixture pixels in row-major order. Their mean
// is (27.5, 5, 8.25).
var fixtureColors = []color.RGBA{
	{0, 0, 0, 255},
	{10, 20, 30, 255},
	{100, 0, 0, 255},
	{0, 0, 3, 255},
}

func writeFixturePNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i, c := range fixtureColors {
		img.SetRGBA(i%2, i/2, c)
	}
	return writePNG(t, filepath.Join(dir, "in.png"), img)
}

func writeNoisePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	r := rand.New(rand.NewPCG(3, 4))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(r.IntN(256)), uint8(r.IntN(256)), uint8(r.IntN(256)), 255})
		}
	}
	return writePNG(t, filepath.Join(dir, "noise.png"), img)
}

func writePNG(t *testing.T, path string, img image.Image) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return path
}

func newTestApp(t *testing.T, cfg *palette.Config) *App {
	t.Helper()
	if cfg == nil {
		cfg = palette.DefaultConfig()
	}
	app, err := NewApp(cfg, io.Discard)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, nil)
	if app.RunID == "" {
		t.Error("RunID should be set")
	}
	if app.Logger == nil || app.Metrics == nil {
		t.Error("Logger and Metrics should be initialized")
	}
	if app.Publisher != nil {
		t.Error("Publisher should stay nil until a broker is configured")
	}

	cfg := palette.DefaultConfig()
	cfg.Logging.Format = "xml"
	if _, err := NewApp(cfg, io.Discard); err == nil {
		t.Error("expected error for an unknown log format")
	}
}

func TestApp_RunSingleColor(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")
	app := newTestApp(t, nil)

	var summary bytes.Buffer
	report, err := app.Run(AppOptions{InputPath: writeFixturePNG(t, dir), OutputPath: out, K: 1}, &summary)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Iterations != 1 || report.Rounds != 2 {
		t.Errorf("iterations = %d rounds = %d, want 1 and 2", report.Iterations, report.Rounds)
	}
	if report.State != palette.StateConverged {
		t.Errorf("state = %s, want converged", report.State)
	}
	if report.Palette[0].Hex != "#1b0508" {
		t.Errorf("palette = %s, want #1b0508", report.Palette[0].Hex)
	}

	img, err := palette.DecodeFile(out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	for i, s := range img.Samples {
		if s != (palette.Sample{R: 27, G: 5, B: 8}) {
			t.Errorf("pixel %d = %+v, want truncated mean {27 5 8}", i, s)
		}
	}
	if !strings.Contains(summary.String(), "#1b0508") {
		t.Errorf("summary missing palette entry: %q", summary.String())
	}
}

func TestApp_RunOutputUsesPalette(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.bmp")
	app := newTestApp(t, nil)

	report, err := app.Run(AppOptions{InputPath: writeNoisePNG(t, dir, 16, 12), OutputPath: out, K: 4}, io.Discard)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	inPalette := make(map[palette.Sample]bool)
	total := 0
	for _, s := range report.Palette {
		inPalette[s.Color] = true
		total += s.Count
	}
	if total != 16*12 {
		t.Errorf("palette counts sum to %d, want %d", total, 16*12)
	}

	img, err := palette.DecodeFile(out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if img.Width != 16 || img.Height != 12 {
		t.Errorf("output is %dx%d, want 16x12", img.Width, img.Height)
	}
	for i, s := range img.Samples {
		if !inPalette[s] {
			t.Fatalf("pixel %d = %+v is not a palette color", i, s)
		}
	}
}

func TestApp_SeededRunsAgree(t *testing.T) {
	dir := t.TempDir()
	in := writeNoisePNG(t, dir, 10, 10)

	seed := uint64(42)
	cfg := palette.DefaultConfig()
	cfg.Clustering.Seed = &seed

	var hexes [2][]string
	for i, strategy := range []string{"partitioned", "locked"} {
		cfg.Clustering.Strategy = strategy
		cfg.Clustering.Workers = 3
		report, err := newTestApp(t, cfg).Run(AppOptions{InputPath: in, OutputPath: filepath.Join(dir, strategy+".png"), K: 3}, io.Discard)
		if err != nil {
			t.Fatalf("%s: Run() error = %v", strategy, err)
		}
		for _, s := range report.Palette {
			hexes[i] = append(hexes[i], s.Hex)
		}
	}
	if strings.Join(hexes[0], ",") != strings.Join(hexes[1], ",") {
		t.Errorf("seeded runs differ: %v vs %v", hexes[0], hexes[1])
	}
}

func TestApp_SideOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := palette.DefaultConfig()
	cfg.Swatch.Path = filepath.Join(dir, "swatch.svg")
	cfg.Metrics.Textfile = filepath.Join(dir, "kpalette.prom")

	_, err := newTestApp(t, cfg).Run(AppOptions{InputPath: writeFixturePNG(t, dir), OutputPath: filepath.Join(dir, "out.gif"), K: 2}, io.Discard)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	svg, err := os.ReadFile(cfg.Swatch.Path)
	if err != nil {
		t.Fatalf("swatch not written: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("swatch should be an SVG document")
	}

	prom, err := os.ReadFile(cfg.Metrics.Textfile)
	if err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}
	for _, want := range []string{"kpalette_samples 4", "kpalette_clusters 2", `stage="cluster"`} {
		if !strings.Contains(string(prom), want) {
			t.Errorf("metrics textfile missing %q", want)
		}
	}
}

func TestApp_UnsupportedOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.webp")

	_, err := newTestApp(t, nil).Run(AppOptions{InputPath: writeFixturePNG(t, dir), OutputPath: out, K: 1}, io.Discard)
	if !errors.Is(err, palette.ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output file should be created")
	}
}

func TestApp_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := newTestApp(t, nil).Run(AppOptions{InputPath: filepath.Join(dir, "nope.png"), OutputPath: filepath.Join(dir, "out.png"), K: 1}, io.Discard)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestApp_PublishesReport(t *testing.T) {
	dir := t.TempDir()
	mock := palette.NewMockClient()
	mock.SetConnected(true)

	app := newTestApp(t, nil)
	app.Publisher = palette.NewPublisher(mock, "studio")

	report, err := app.Run(AppOptions{InputPath: writeFixturePNG(t, dir), OutputPath: filepath.Join(dir, "out.png"), K: 1}, io.Discard)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	messages := mock.GetPublishedMessages()
	if len(messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(messages))
	}
	if messages[0].Topic != "studio/palette" {
		t.Errorf("topic = %s, want studio/palette", messages[0].Topic)
	}

	var published palette.Report
	if err := json.Unmarshal(messages[0].Payload, &published); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if published.RunID != report.RunID || published.Palette[0].Hex != report.Palette[0].Hex {
		t.Errorf("published report %+v does not match %+v", published, report)
	}

	app.Close()
	if mock.IsConnected() {
		t.Error("Close() should disconnect the publisher")
	}
}

func TestApp_PublishFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	mock := palette.NewMockClient()
	mock.SetConnected(true)
	mock.SetPublishError(errors.New("broker gone"))

	var logs bytes.Buffer
	app, err := NewApp(palette.DefaultConfig(), &logs)
	if err != nil {
		t.Fatal(err)
	}
	app.Publisher = palette.NewPublisher(mock, "")

	if _, err := app.Run(AppOptions{InputPath: writeFixturePNG(t, dir), OutputPath: filepath.Join(dir, "out.png"), K: 1}, io.Discard); err != nil {
		t.Fatalf("Run() should succeed when publishing fails, got %v", err)
	}
	if !strings.Contains(logs.String(), "publish failed") {
		t.Errorf("publish failure should be logged: %q", logs.String())
	}

	app.Publisher = palette.NewPublisher(palette.NewMockClient(), "")
	if _, err := app.Run(AppOptions{InputPath: writeFixturePNG(t, dir), OutputPath: filepath.Join(dir, "out.png"), K: 1}, io.Discard); err != nil {
		t.Fatalf("Run() should succeed while disconnected, got %v", err)
	}
}
