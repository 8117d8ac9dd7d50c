// Package session runs one gaze capture: frames in, heatmap overlay out.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/soocke/gazemap-go/config"
	"github.com/soocke/gazemap-go/domain/capture"
	"github.com/soocke/gazemap-go/domain/facemesh"
	"github.com/soocke/gazemap-go/domain/gaze"
	"github.com/soocke/gazemap-go/domain/heatmap"
)

// Session owns the heatmap grid for one run. The source and detector are
// borrowed; the caller closes them.
type Session struct {
	id      uuid.UUID
	cfg     *config.Config
	src     capture.Source
	det     facemesh.Detector
	ref     image.Image
	logger  *slog.Logger
	preview PreviewFunc
	now     func() time.Time

	mu        sync.Mutex
	listeners []StateListener
	state     atomic.Int32
	ran       atomic.Bool
}

// Option customises a Session.
type Option func(*Session)

// WithPreview publishes every processed frame to fn.
func WithPreview(fn PreviewFunc) Option { return func(s *Session) { s.preview = fn } }

// WithStateListener registers l before the run starts.
func WithStateListener(l StateListener) Option {
	return func(s *Session) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// WithClock replaces time.Now for the duration bound.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New prepares a session. If cfg is nil the default configuration is used.
func New(cfg *config.Config, src capture.Source, det facemesh.Detector, reference image.Image, logger *slog.Logger, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if src == nil || det == nil {
		return nil, errors.New("session: source and detector are required")
	}
	if reference == nil || reference.Bounds().Empty() {
		return nil, ErrNoReference
	}
	s := &Session{
		id:     uuid.New(),
		cfg:    cfg,
		src:    src,
		det:    det,
		ref:    reference,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger != nil {
		s.logger = s.logger.With("session", s.id.String())
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the current lifecycle state. Safe from any goroutine.
func (s *Session) State() State { return State(s.state.Load()) }

// AddListener registers l for subsequent transitions.
func (s *Session) AddListener(l StateListener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Session) transition(next State) {
	prev := State(s.state.Swap(int32(next)))
	if prev == next {
		return
	}
	if s.logger != nil {
		s.logger.Debug("session state transition", "from", prev.String(), "to", next.String())
	}
	s.mu.Lock()
	ls := append([]StateListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range ls {
		l(prev, next)
	}
}

type heatmapSettings struct {
	opts  []heatmap.Option
	scale float64
}

func (s *Session) heatmapSettings() (heatmapSettings, error) {
	kernel, err := heatmap.KernelByName(s.cfg.Kernel)
	if err != nil {
		return heatmapSettings{}, err
	}
	palette, err := heatmap.PaletteByName(s.cfg.Palette)
	if err != nil {
		return heatmapSettings{}, err
	}
	scale := s.cfg.GazeScale
	if scale <= 0 {
		scale = gaze.DefaultScale
	}
	return heatmapSettings{
		opts:  []heatmap.Option{heatmap.WithRadius(s.cfg.StampRadius), heatmap.WithKernel(kernel), heatmap.WithPalette(palette)},
		scale: scale,
	}, nil
}

// run holds the mutable per-run state of the capture loop.
type run struct {
	acc         *heatmap.Accumulator
	width       int
	height      int
	scale       float64
	stats       Stats
	consecutive int
	seq         uint64
	start       time.Time
}

// Run captures until the duration elapses, ctx is cancelled, the source
// fails or the detector keeps failing, then finalizes the heatmap. A session
// runs once.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}
	hs, err := s.heatmapSettings()
	if err != nil {
		s.transition(StateFailed)
		return nil, err
	}
	s.transition(StateCapturing)

	first, err := s.src.Read(ctx)
	if err != nil {
		s.transition(StateFailed)
		return nil, fmt.Errorf("%w: %v", ErrNoFirstFrame, err)
	}
	fb := first.Bounds()
	acc, err := heatmap.New(fb.Dx(), fb.Dy(), hs.opts...)
	if err != nil {
		s.recycle(first)
		s.transition(StateFailed)
		return nil, err
	}
	r := &run{acc: acc, width: fb.Dx(), height: fb.Dy(), scale: hs.scale, start: s.now()}
	if s.logger != nil {
		s.logger.Info("session started", "width", r.width, "height", r.height, "duration_seconds", s.cfg.DurationSeconds)
	}
	limit := time.Duration(s.cfg.DurationSeconds * float64(time.Second))
	maxErrors := s.cfg.MaxDetectorErrors
	if maxErrors <= 0 {
		maxErrors = 10
	}

	frame := first
	for {
		err := s.processFrame(ctx, r, frame)
		s.recycle(frame)
		if err != nil {
			s.transition(StateFailed)
			return nil, err
		}
		if r.consecutive > maxErrors {
			r.stats.StopReason = StopDetector
			break
		}
		if ctx.Err() != nil {
			r.stats.StopReason = StopRequested
			break
		}
		if s.now().Sub(r.start) >= limit {
			r.stats.StopReason = StopDuration
			break
		}
		frame, err = s.src.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.stats.StopReason = StopRequested
			} else {
				r.stats.StopReason = StopSource
				if s.logger != nil {
					s.logger.Info("frame source ended", "error", err)
				}
			}
			break
		}
	}
	return s.finalize(r)
}

// processFrame detects faces in frame and records one gaze point per face.
// Only a configuration error (no iris landmarks) is returned.
func (s *Session) processFrame(ctx context.Context, r *run, frame *image.RGBA) error {
	r.seq++
	r.stats.Frames++
	faces, err := s.det.Detect(ctx, frame)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		r.stats.DetectorErrors++
		r.consecutive++
		if s.logger != nil {
			s.logger.Warn("landmark detection failed", "frame", r.seq, "consecutive", r.consecutive, "error", err)
		}
		return nil
	}
	r.consecutive = 0

	var marks []GazeMark
	for _, set := range faces {
		g, err := gaze.Estimate(set, r.width, r.height)
		if err != nil {
			return fmt.Errorf("session: frame %d: %w", r.seq, err)
		}
		p := g.Pixel(r.scale)
		r.acc.Record(p.X, p.Y)
		marks = append(marks, GazeMark{Origin: image.Pt(int(g.Origin.X), int(g.Origin.Y)), Point: p})
	}
	if len(faces) > 0 {
		r.stats.FramesWithFaces++
		r.stats.Faces += len(faces)
	}
	if s.preview != nil {
		s.preview(PreviewFrame{
			Image:    copyFrame(frame),
			Marks:    marks,
			Sequence: r.seq,
			Elapsed:  s.now().Sub(r.start),
		})
	}
	return nil
}

func (s *Session) finalize(r *run) (*Result, error) {
	s.transition(StateFinalizing)
	rb := s.ref.Bounds()
	heat := r.acc.Finalize(rb.Dx(), rb.Dy())
	overlay, err := heatmap.Composite(s.ref, heat, s.cfg.HeatmapWeight)
	if err != nil {
		s.transition(StateFailed)
		return nil, err
	}
	r.stats.PointsRecorded, r.stats.PointsDiscarded = r.acc.Counts()
	r.stats.Elapsed = s.now().Sub(r.start)
	res := &Result{
		ID:            s.id,
		Overlay:       overlay,
		Heatmap:       heat,
		Advertisement: imaging.Resize(s.ref, r.width, r.height, imaging.Linear),
		FrameSize:     image.Pt(r.width, r.height),
		Stats:         r.stats,
	}
	if s.logger != nil {
		s.logger.Info("session finished",
			"reason", r.stats.StopReason.String(),
			"frames", r.stats.Frames,
			"faces", r.stats.Faces,
			"points_recorded", r.stats.PointsRecorded,
			"points_discarded", r.stats.PointsDiscarded,
			"detector_errors", r.stats.DetectorErrors,
			"elapsed", r.stats.Elapsed,
		)
	}
	s.transition(StateDone)
	return res, nil
}

func (s *Session) recycle(img *image.RGBA) {
	if rc, ok := s.src.(capture.Recycler); ok {
		rc.Recycle(img)
	}
}

func copyFrame(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy()))
	w := src.Rect.Dx() * 4
	for y := 0; y < src.Rect.Dy(); y++ {
		so := y * src.Stride
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[so:so+w])
	}
	return dst
}
