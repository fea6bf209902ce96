package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/kwv/kpalette/palette"
)

const mqttConnectTimeout = 5 * time.Second

// AppOptions holds the command line parameters
type AppOptions struct {
	InputPath  string
	OutputPath string
	K          int
}

// App encapsulates the application state and dependencies
type App struct {
	Config    *palette.Config
	Logger    *palette.Logger
	Metrics   *palette.Metrics
	Publisher *palette.Publisher
	RunID     string
}

// NewApp creates an App from a resolved configuration. Logs go to logOut.
func NewApp(cfg *palette.Config, logOut io.Writer) (*App, error) {
	runID := uuid.NewString()

	logger, err := palette.NewLoggerFromConfig(logOut, cfg.Logging)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		Logger:  logger.WithRun(runID),
		Metrics: palette.NewMetrics(),
		RunID:   runID,
	}, nil
}

// Run decodes the input, clusters its colors, writes the quantized image and
// the configured side outputs, and prints a palette summary to out.
func (a *App) Run(opts AppOptions, out io.Writer) (*palette.Report, error) {
	ctx := context.Background()

	// Reject an unknown output format before any work is done
	if _, err := palette.FormatFromPath(opts.OutputPath); err != nil {
		return nil, fmt.Errorf("output %s: %w", opts.OutputPath, err)
	}

	start := time.Now()
	img, err := palette.DecodeFile(opts.InputPath)
	a.Logger.LogDecode(ctx, opts.InputPath, img, err)
	if err != nil {
		return nil, err
	}
	a.Metrics.Time("decode", start)

	if err := palette.ValidateK(opts.K, len(img.Samples)); err != nil {
		return nil, err
	}

	engineOpts, err := a.Config.Options(a.Logger)
	if err != nil {
		return nil, err
	}
	engineOpts.Observer = a.Metrics.ObserveRound

	start = time.Now()
	res, err := palette.Cluster(img.Samples, opts.K, engineOpts)
	if err != nil {
		return nil, err
	}
	a.Metrics.Time("cluster", start)
	a.Metrics.ObserveResult(len(img.Samples), res)

	start = time.Now()
	quantized, counts, err := palette.Reconstruct(res.Centroids, img.Samples, img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	a.Metrics.Time("reconstruct", start)

	start = time.Now()
	err = palette.EncodeFile(opts.OutputPath, quantized)
	a.Logger.LogWrite(ctx, "image", opts.OutputPath, err)
	if err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	a.Metrics.Time("encode", start)

	report := palette.BuildReport(a.RunID, img, res, counts)
	report.Print(out)

	if err := a.writeSideOutputs(ctx, report); err != nil {
		return nil, err
	}
	a.publish(ctx, report)

	return report, nil
}

// writeSideOutputs renders the swatch and metrics textfile when configured
func (a *App) writeSideOutputs(ctx context.Context, report *palette.Report) error {
	if path := a.Config.Swatch.Path; path != "" {
		r := palette.NewSwatchRenderer(report.Palette, a.Config.Swatch.Width, a.Config.Swatch.Height)
		err := r.RenderToFile(path)
		a.Logger.LogWrite(ctx, "swatch", path, err)
		if err != nil {
			return err
		}
	}

	if path := a.Config.Metrics.Textfile; path != "" {
		err := a.Metrics.WriteTextfile(path)
		a.Logger.LogWrite(ctx, "metrics", path, err)
		if err != nil {
			return err
		}
	}
	return nil
}

// publish sends the report to MQTT. Failures are logged, never fatal.
func (a *App) publish(ctx context.Context, report *palette.Report) {
	if a.Publisher == nil {
		if !a.Config.MQTT.Enabled() {
			return
		}
		client, err := palette.ConnectMQTT(a.Config.MQTT, mqttConnectTimeout)
		if err != nil {
			a.Logger.WarnContext(ctx, "MQTT disabled for this run", "error", err)
			return
		}
		a.Publisher = palette.NewPublisher(client, a.Config.MQTT.PublishPrefix)
	}

	if err := a.Publisher.PublishReport(report); err != nil {
		if errors.Is(err, palette.ErrNotConnected) {
			a.Logger.WarnContext(ctx, "palette not published", "error", err)
			return
		}
		a.Logger.WarnContext(ctx, "palette publish failed", "topic", a.Publisher.Topic(), "error", err)
		return
	}
	a.Logger.InfoContext(ctx, "palette published", "topic", a.Publisher.Topic())
}

// Close releases the MQTT connection if one was opened
func (a *App) Close() {
	if a.Publisher != nil {
		a.Publisher.Close()
	}
}
