// Package facemesh provides facial landmark detectors. The mesh model itself
// runs elsewhere; detectors here only move frames out and landmark sets back.
package facemesh

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/soocke/gazemap-go/domain/gaze"
)

// Detector returns zero or more landmark sets for one image. Each set holds
// points normalized to the image size. No faces is not an error.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]gaze.LandmarkSet, error)
	Close() error
}

var (
	// ErrRefineDisabled is returned when RefineLandmarks is false. Without
	// refinement the mesh has no iris points and no gaze can be estimated.
	ErrRefineDisabled = errors.New("facemesh: refined landmarks must be enabled")
	// ErrInvalidOptions wraps any other option violation.
	ErrInvalidOptions = errors.New("facemesh: invalid options")
)

// Options is the contract every detector backend must honour.
type Options struct {
	RefineLandmarks        bool    `json:"refine_landmarks"`
	MinDetectionConfidence float64 `json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence"`
	MaxFaces               int     `json:"max_num_faces"`
}

// DefaultOptions mirrors the mesh settings gaze estimation was tuned with.
func DefaultOptions() Options {
	return Options{
		RefineLandmarks:        true,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
		MaxFaces:               1,
	}
}

// Validate rejects option sets that would yield unusable landmarks.
func (o Options) Validate() error {
	if !o.RefineLandmarks {
		return ErrRefineDisabled
	}
	if o.MinDetectionConfidence < 0.5 || o.MinDetectionConfidence > 1 {
		return fmt.Errorf("%w: min_detection_confidence %.2f outside [0.5,1]", ErrInvalidOptions, o.MinDetectionConfidence)
	}
	if o.MinTrackingConfidence < 0.5 || o.MinTrackingConfidence > 1 {
		return fmt.Errorf("%w: min_tracking_confidence %.2f outside [0.5,1]", ErrInvalidOptions, o.MinTrackingConfidence)
	}
	if o.MaxFaces < 1 {
		return fmt.Errorf("%w: max_num_faces must be at least 1", ErrInvalidOptions)
	}
	return nil
}

// limitFaces trims a detector reply to MaxFaces.
func limitFaces(faces []gaze.LandmarkSet, n int) []gaze.LandmarkSet {
	if n > 0 && len(faces) > n {
		return faces[:n]
	}
	return faces
}
