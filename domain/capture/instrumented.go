package capture

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"
	"time"
)

const captureStatsLogInterval = 5 * time.Second

// Instrumented wraps a Source, timing every read and exposing the latest
// snapshot alongside counters. Use Instrument to construct one.
type Instrumented struct {
	src          Source
	logger       *slog.Logger
	latest       atomic.Pointer[FrameSnapshot]
	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
	lastLog      time.Time
}

// Instrument wraps src. A nil logger disables periodic stats logging.
func Instrument(src Source, logger *slog.Logger) *Instrumented {
	return &Instrumented{src: src, logger: logger, lastLog: time.Now()}
}

// Read forwards to the wrapped source and records timing.
func (s *Instrumented) Read(ctx context.Context) (*image.RGBA, error) {
	start := time.Now()
	img, err := s.src.Read(ctx)
	if err != nil {
		s.failures.Add(1)
		return nil, err
	}
	elapsed := time.Since(start)
	s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
	s.captures.Add(1)
	seq := s.sequence.Add(1)
	// Frames may be recycled by the consumer, so only metadata is retained.
	s.latest.Store(&FrameSnapshot{CapturedAt: time.Now(), Sequence: seq})

	if time.Since(s.lastLog) >= captureStatsLogInterval {
		s.lastLog = time.Now()
		s.logStats()
	}
	return img, nil
}

// Recycle returns img to the wrapped source when it pools frames.
func (s *Instrumented) Recycle(img *image.RGBA) {
	if r, ok := s.src.(Recycler); ok {
		r.Recycle(img)
	}
}

// Close closes the wrapped source.
func (s *Instrumented) Close() error { return s.src.Close() }

// LatestFrame returns metadata of the most recent successful read. Image is
// always nil.
func (s *Instrumented) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

// Stats returns a point-in-time view of the counters.
func (s *Instrumented) Stats() CaptureStats {
	captures := s.captures.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	snapshot := s.LatestFrame()
	return CaptureStats{
		Captures:         captures,
		Failures:         s.failures.Load(),
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      snapshot.CapturedAt,
		Sequence:         snapshot.Sequence,
	}
}

func (s *Instrumented) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"failures", stats.Failures,
		"avg_capture", stats.AvgCapture,
	)
}

var (
	_ Source   = (*Instrumented)(nil)
	_ Recycler = (*Instrumented)(nil)
)
