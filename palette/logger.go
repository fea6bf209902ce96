package palette

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with palette-specific helpers so field names stay
// consistent across the run.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler on stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewLoggerFromConfig builds a Logger writing to w according to cfg
func NewLoggerFromConfig(w io.Writer, cfg LoggingConfig) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// ParseLevel maps a level name to a slog.Level. The empty string is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// WithRun tags every record with the run identifier.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run", runID),
	}
}

// WithK adds the palette size.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// LogRound logs one completed clustering round.
func (l *Logger) LogRound(ctx context.Context, round int, inertia float64, converged bool) {
	l.DebugContext(ctx, "round completed",
		"round", round,
		"inertia", inertia,
		"converged", converged,
	)
}

// LogResult logs the terminal state of a clustering run.
func (l *Logger) LogResult(ctx context.Context, res *Result) {
	if res.State == StateIterationCapReached {
		l.WarnContext(ctx, "clustering stopped at iteration cap",
			"iterations", res.Iterations,
			"rounds", res.Rounds,
		)
		return
	}
	l.InfoContext(ctx, "clustering converged",
		"iterations", res.Iterations,
		"rounds", res.Rounds,
	)
}

// LogDecode logs the outcome of reading the input image.
func (l *Logger) LogDecode(ctx context.Context, path string, img *Image, err error) {
	if err != nil {
		l.ErrorContext(ctx, "decode failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "image decoded",
		"path", path,
		"width", img.Width,
		"height", img.Height,
		"samples", len(img.Samples),
	)
}

// LogWrite logs an output file write.
func (l *Logger) LogWrite(ctx context.Context, kind, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write failed",
			"kind", kind,
			"path", path,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "file written",
		"kind", kind,
		"path", path,
	)
}
