// Package pipeline opens the collaborators of a gaze session from config and
// writes its outputs. It is shared by the desktop app and the export CLI.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/soocke/gazemap-go/config"
	"github.com/soocke/gazemap-go/domain/capture"
	"github.com/soocke/gazemap-go/domain/facemesh"
	"github.com/soocke/gazemap-go/domain/session"
)

var (
	// ErrNoDetector is returned when neither a replay file nor a detector URL is set.
	ErrNoDetector = errors.New("pipeline: no landmark detector configured")
	// ErrNoCamera is returned when live capture is needed but no opener was given.
	ErrNoCamera = errors.New("pipeline: camera capture not available")
)

// CameraOpener opens a live video device. Callers pass camera.Opener; keeping
// it a parameter leaves this package free of cgo.
type CameraOpener func(device, width, height int, logger *slog.Logger) (capture.Source, error)

// Resources is everything one session borrows. Close releases all of it.
type Resources struct {
	Source    *capture.Instrumented
	Detector  facemesh.Detector
	Reference image.Image
}

// Close releases the source and detector. Safe on partially opened resources.
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Source != nil {
		errs = append(errs, r.Source.Close())
	}
	if r.Detector != nil {
		errs = append(errs, r.Detector.Close())
	}
	return errors.Join(errs...)
}

// Open loads the reference image first so a missing file fails before the
// camera turns on.
func Open(ctx context.Context, cfg *config.Config, openCamera CameraOpener, logger *slog.Logger) (*Resources, error) {
	ref, err := LoadReference(cfg.ReferenceImage)
	if err != nil {
		return nil, err
	}
	res := &Resources{Reference: ref}
	src, err := OpenSource(cfg, openCamera, logger)
	if err != nil {
		return nil, err
	}
	res.Source = capture.Instrument(src, logger)
	det, err := OpenDetector(ctx, cfg, logger)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	res.Detector = det
	return res, nil
}

// LoadReference decodes the reference image, honouring EXIF orientation.
func LoadReference(path string) (image.Image, error) {
	if path == "" {
		return nil, session.ErrNoReference
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("pipeline: load reference %s: %w", path, err)
	}
	return img, nil
}

// OpenSource replays FramesDir when set, otherwise opens the camera.
func OpenSource(cfg *config.Config, openCamera CameraOpener, logger *slog.Logger) (capture.Source, error) {
	if cfg.FramesDir != "" {
		src, err := capture.OpenDir(cfg.FramesDir)
		if err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Info("replaying frames", "dir", cfg.FramesDir, "frames", src.Len())
		}
		return src, nil
	}
	if openCamera == nil {
		return nil, ErrNoCamera
	}
	return openCamera(cfg.CameraDevice, cfg.FrameWidth, cfg.FrameHeight, logger)
}

// DetectorOptions maps config onto the detector option contract.
func DetectorOptions(cfg *config.Config) facemesh.Options {
	return facemesh.Options{
		RefineLandmarks:        cfg.RefineLandmarks,
		MinDetectionConfidence: cfg.MinDetectionConfidence,
		MinTrackingConfidence:  cfg.MinTrackingConfidence,
		MaxFaces:               cfg.MaxFaces,
	}
}

// OpenDetector prefers a landmark replay file over the remote detector.
func OpenDetector(ctx context.Context, cfg *config.Config, logger *slog.Logger) (facemesh.Detector, error) {
	opts := DetectorOptions(cfg)
	switch {
	case cfg.LandmarksReplay != "":
		r, err := facemesh.OpenReplay(cfg.LandmarksReplay, opts)
		if err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Info("replaying landmarks", "file", cfg.LandmarksReplay, "frames", r.Len())
		}
		return r, nil
	case cfg.DetectorURL != "":
		return facemesh.Dial(ctx, facemesh.RemoteConfig{URL: cfg.DetectorURL, Options: opts}, logger)
	default:
		return nil, ErrNoDetector
	}
}

// SaveResult writes the overlay, and the bare heatmap when a path is set.
// The format follows the file extension.
func SaveResult(res *session.Result, cfg *config.Config) error {
	if res == nil {
		return errors.New("pipeline: no result to save")
	}
	if err := save(res.Overlay, cfg.OutputPath); err != nil {
		return err
	}
	if cfg.HeatmapOutputPath != "" {
		return save(res.Heatmap, cfg.HeatmapOutputPath)
	}
	return nil
}

func save(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pipeline: create %s: %w", dir, err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("pipeline: save %s: %w", path, err)
	}
	return nil
}
