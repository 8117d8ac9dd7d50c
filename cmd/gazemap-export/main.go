// Command gazemap-export runs one gaze session without a window and writes
// the heatmap overlay to disk. Interrupt stops capture early; the heatmap is
// still written.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soocke/gazemap-go/config"
	"github.com/soocke/gazemap-go/debug"
	"github.com/soocke/gazemap-go/domain/camera"
	"github.com/soocke/gazemap-go/domain/session"
	"github.com/soocke/gazemap-go/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gazemap-export:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "config.json", "path to JSON config")
	envFile := flag.String("env", ".env", "dotenv file loaded before the config")
	reference := flag.String("reference", "", "reference image (overrides config)")
	output := flag.String("o", "", "overlay output path (overrides config)")
	heatOut := flag.String("heatmap", "", "bare heatmap output path")
	framesDir := flag.String("frames", "", "replay still frames from this directory instead of the camera")
	replay := flag.String("landmarks", "", "replay landmarks from this JSON-lines file")
	duration := flag.Float64("duration", 0, "capture seconds (overrides config)")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		return err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *reference != "" {
		cfg.ReferenceImage = *reference
	}
	if *output != "" {
		cfg.OutputPath = *output
	}
	if *heatOut != "" {
		cfg.HeatmapOutputPath = *heatOut
	}
	if *framesDir != "" {
		cfg.FramesDir = *framesDir
	}
	if *replay != "" {
		cfg.LandmarksReplay = *replay
	}
	if *duration > 0 {
		cfg.DurationSeconds = *duration
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	} else if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := newLogger(level, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Debug {
		debug.StartGoroutineLogger(ctx, 5*time.Second, logger)
		debug.StartMemLogger(ctx, 5*time.Second, logger)
	}

	res, err := pipeline.Open(ctx, cfg, camera.Opener, logger)
	if err != nil {
		return err
	}
	defer res.Close()

	s, err := session.New(cfg, res.Source, res.Detector, res.Reference, logger)
	if err != nil {
		return err
	}
	out, err := s.Run(ctx)
	if err != nil {
		return err
	}
	if err := pipeline.SaveResult(out, cfg); err != nil {
		return err
	}
	fmt.Printf("%s: %d frames, %d points, stopped by %s, wrote %s\n",
		out.ID, out.Stats.Frames, out.Stats.PointsRecorded, out.Stats.StopReason, cfg.OutputPath)
	return nil
}
