package palette

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSamples is returned when the input contains no pixels.
	ErrNoSamples = errors.New("no samples to cluster")

	// ErrInvalidK is returned when k is not in [1, number of samples].
	ErrInvalidK = errors.New("invalid k")

	// ErrGeometryMismatch is returned when width*height does not match the sample count.
	ErrGeometryMismatch = errors.New("image geometry does not match sample count")

	// ErrUnsupportedFormat is returned for output paths with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrNotConnected is returned when publishing without a live MQTT connection.
	ErrNotConnected = errors.New("MQTT client not connected")
)

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// ValidateK checks that k clusters can be drawn from n samples.
func ValidateK(k, n int) error {
	if n == 0 {
		return ErrNoSamples
	}
	if k < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidK, k)
	}
	if k > n {
		return fmt.Errorf("%w: k=%d exceeds the %d available samples", ErrInvalidK, k, n)
	}
	return nil
}
