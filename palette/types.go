package palette

import (
	"fmt"
	"math"
)

// DefaultThreshold is the per-channel distance below which two centroids
// from consecutive rounds are considered unchanged.
const DefaultThreshold = 1e-5

// DefaultMaxIterations bounds the number of clustering rounds.
const DefaultMaxIterations = 100

// DefaultK is the palette size used when none is given on the command line.
const DefaultK = 4

// Sample is a single input pixel color
type Sample struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as #rrggbb
func (s Sample) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", s.R, s.G, s.B)
}

// Centroid is the running mean color of one cluster
type Centroid struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// CentroidOf promotes a sample to a centroid at the same position
func CentroidOf(s Sample) Centroid {
	return Centroid{R: float64(s.R), G: float64(s.G), B: float64(s.B)}
}

// Quantize truncates each channel to 8 bits. Values outside [0,255] are
// clamped first.
func (c Centroid) Quantize() Sample {
	return Sample{R: truncate8(c.R), G: truncate8(c.G), B: truncate8(c.B)}
}

func truncate8(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// Distance returns the Euclidean distance between a sample and a centroid
func Distance(s Sample, c Centroid) float64 {
	return math.Sqrt(squaredDistance(s, c))
}

func squaredDistance(s Sample, c Centroid) float64 {
	dr := float64(s.R) - c.R
	dg := float64(s.G) - c.G
	db := float64(s.B) - c.B
	return dr*dr + dg*dg + db*db
}

// IsClose reports whether every channel of a and b differs by strictly less
// than DefaultThreshold.
func IsClose(a, b Centroid) bool {
	return isCloseWithin(a, b, DefaultThreshold)
}

func isCloseWithin(a, b Centroid, threshold float64) bool {
	return math.Abs(a.R-b.R) < threshold &&
		math.Abs(a.G-b.G) < threshold &&
		math.Abs(a.B-b.B) < threshold
}

// Image is a decoded raster flattened into samples, row-major
type Image struct {
	Width   int
	Height  int
	Samples []Sample
}

// Config represents the full configuration file
type Config struct {
	Clustering ClusteringConfig `yaml:"clustering" json:"clustering"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	Swatch     SwatchConfig     `yaml:"swatch,omitempty" json:"swatch,omitempty"`
	Metrics    MetricsConfig    `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	MQTT       MQTTConfig       `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
}

// ClusteringConfig tunes the k-means engine
type ClusteringConfig struct {
	MaxIterations int     `yaml:"maxIterations" json:"maxIterations"`
	Threshold     float64 `yaml:"threshold" json:"threshold"`
	Workers       int     `yaml:"workers" json:"workers"`               // 0 = GOMAXPROCS
	Strategy      string  `yaml:"strategy" json:"strategy"`             // "partitioned" or "locked"
	Seed          *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"` // Optional fixed seed for reproducible palettes
}

// LoggingConfig selects log level and encoding
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // "text" or "json"
}

// SwatchConfig enables an extra palette strip output
type SwatchConfig struct {
	Path   string  `yaml:"path,omitempty" json:"path,omitempty"` // .svg or .png; empty disables
	Width  float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Height float64 `yaml:"height,omitempty" json:"height,omitempty"`
}

// MetricsConfig enables a Prometheus textfile export of run metrics
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" json:"textfile,omitempty"`
}

// MQTTConfig holds MQTT connection settings
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// Enabled reports whether a broker is configured
func (c MQTTConfig) Enabled() bool {
	return c.Broker != ""
}
