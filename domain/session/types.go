package session

import (
	"errors"
	"image"
	"time"

	"github.com/google/uuid"
)

// State enumerates the session lifecycle.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StateListener is called on each state transition, from the session goroutine.
type StateListener func(prev, next State)

// StopReason records why the capture loop ended.
type StopReason int

const (
	StopNone StopReason = iota
	StopDuration
	StopRequested
	StopSource
	StopDetector
)

func (r StopReason) String() string {
	switch r {
	case StopDuration:
		return "duration"
	case StopRequested:
		return "requested"
	case StopSource:
		return "source"
	case StopDetector:
		return "detector"
	default:
		return "none"
	}
}

var (
	// ErrNoFirstFrame means the source failed before a single frame arrived,
	// so the heatmap size could never be established.
	ErrNoFirstFrame = errors.New("session: no first frame from source")
	// ErrNoReference is returned by New when the reference image is missing.
	ErrNoReference = errors.New("session: reference image is required")
	// ErrAlreadyRun is returned when Run is called twice.
	ErrAlreadyRun = errors.New("session: already run")
)

// GazeMark is one face's estimate drawn on a preview frame.
type GazeMark struct {
	Origin image.Point
	Point  image.Point
}

// PreviewFrame is a private copy of a processed frame plus its gaze marks.
// Consumers may keep it; the session never touches it again.
type PreviewFrame struct {
	Image    *image.RGBA
	Marks    []GazeMark
	Sequence uint64
	Elapsed  time.Duration
}

// PreviewFunc receives preview frames from the session goroutine. It must
// not block.
type PreviewFunc func(PreviewFrame)

// Stats summarises one run.
type Stats struct {
	Frames          int
	FramesWithFaces int
	Faces           int
	PointsRecorded  uint64
	PointsDiscarded uint64
	DetectorErrors  int
	Elapsed         time.Duration
	StopReason      StopReason
}

// Result is the output of a completed run.
type Result struct {
	ID uuid.UUID
	// Overlay is the reference blended with the heatmap, at reference size.
	Overlay image.Image
	// Heatmap is the colorized heatmap at reference size.
	Heatmap image.Image
	// Advertisement is the reference resized to the camera frame size.
	Advertisement image.Image
	FrameSize     image.Point
	Stats         Stats
}
