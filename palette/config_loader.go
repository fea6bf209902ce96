package palette

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable holding the optional config path
const ConfigEnv = "KPALETTE_CONFIG"

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Clustering: ClusteringConfig{
			MaxIterations: DefaultMaxIterations,
			Threshold:     DefaultThreshold,
			Strategy:      StrategyPartitioned.String(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Swatch: SwatchConfig{
			Width:  600,
			Height: 120,
		},
		MQTT: MQTTConfig{
			PublishPrefix: "kpalette",
			ClientID:      "kpalette",
		},
	}
}

// LoadConfig loads a YAML file over the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ResolveConfig loads the file named by KPALETTE_CONFIG, or the defaults
// when it is unset, then applies environment overrides.
func ResolveConfig() (*Config, error) {
	config := DefaultConfig()
	if path := os.Getenv(ConfigEnv); path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides MQTT and logging settings from the environment.
// Env wins over the file, matching how the broker is usually injected.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		c.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		c.MQTT.ClientID = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		c.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
	if v := os.Getenv("MQTT_PUBLISH_PREFIX"); v != "" {
		c.MQTT.PublishPrefix = v
	}
	if v := os.Getenv("KPALETTE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate rejects values the engine cannot run with
func (c *Config) Validate() error {
	cl := c.Clustering
	if cl.MaxIterations < 1 {
		return &ConfigError{Field: "clustering.maxIterations", Reason: "must be at least 1"}
	}
	if cl.Threshold <= 0 {
		return &ConfigError{Field: "clustering.threshold", Reason: "must be positive"}
	}
	if cl.Workers < 0 {
		return &ConfigError{Field: "clustering.workers", Reason: "must not be negative"}
	}
	if _, err := ParseStrategy(cl.Strategy); err != nil {
		return &ConfigError{Field: "clustering.strategy", Reason: err.Error()}
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return &ConfigError{Field: "logging.level", Reason: err.Error()}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Reason: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}

	if c.Swatch.Path != "" {
		if _, err := SwatchFormatFromPath(c.Swatch.Path); err != nil {
			return &ConfigError{Field: "swatch.path", Reason: err.Error()}
		}
		if c.Swatch.Width <= 0 || c.Swatch.Height <= 0 {
			return &ConfigError{Field: "swatch", Reason: "width and height must be positive"}
		}
	}

	if c.MQTT.Enabled() && c.MQTT.PublishPrefix == "" {
		return &ConfigError{Field: "mqtt.publishPrefix", Reason: "is required when a broker is set"}
	}
	return nil
}

// Options converts the clustering section into engine options
func (c *Config) Options(logger *Logger) (Options, error) {
	strategy, err := ParseStrategy(c.Clustering.Strategy)
	if err != nil {
		return Options{}, err
	}
	return Options{
		MaxIterations: c.Clustering.MaxIterations,
		Threshold:     c.Clustering.Threshold,
		Workers:       c.Clustering.Workers,
		Strategy:      strategy,
		Rand:          NewRandSource(c.Clustering.Seed),
		Logger:        logger,
	}, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
