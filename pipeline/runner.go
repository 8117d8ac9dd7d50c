package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/soocke/gazemap-go/config"
	"github.com/soocke/gazemap-go/domain/session"
)

// Hooks receive session output. Every hook is optional and runs on the
// session goroutine.
type Hooks struct {
	Preview session.PreviewFunc
	State   session.StateListener
	Result  func(res *session.Result, err error)
}

// Runner starts sessions in the background. At most one session runs at a
// time; Start while running is a no-op.
type Runner struct {
	cfg        *config.Config
	openCamera CameraOpener
	logger     *slog.Logger
	hooks      Hooks

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRunner returns a runner reading cfg at every Start.
func NewRunner(cfg *config.Config, openCamera CameraOpener, hooks Hooks, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, openCamera: openCamera, hooks: hooks, logger: logger}
}

// Running reports whether a session goroutine is active.
func (r *Runner) Running() bool { return r.running.Load() }

// Start snapshots the config and runs one session.
func (r *Runner) Start() {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	cfg := *r.cfg
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.mu.Lock()
	r.cancel, r.done = cancel, done
	r.mu.Unlock()
	go r.run(ctx, &cfg, done)
}

// Stop asks the running session to finish early. The heatmap is still
// produced from what was captured.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current session goroutine returns or ctx ends.
func (r *Runner) Wait(ctx context.Context) error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) run(ctx context.Context, cfg *config.Config, done chan struct{}) {
	var (
		out *session.Result
		err error
	)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pipeline: session panic: %v", rec)
			if r.logger != nil {
				r.logger.Error("session panic", "panic", rec)
			}
			r.notifyState(session.StateFailed)
		}
		r.mu.Lock()
		r.cancel()
		r.cancel = nil
		r.mu.Unlock()
		r.running.Store(false)
		if r.hooks.Result != nil {
			r.hooks.Result(out, err)
		}
		close(done)
	}()
	out, err = r.runOnce(ctx, cfg)
}

func (r *Runner) runOnce(ctx context.Context, cfg *config.Config) (*session.Result, error) {
	res, err := Open(ctx, cfg, r.openCamera, r.logger)
	if err != nil {
		if r.logger != nil {
			r.logger.Error("open session resources", "error", err)
		}
		r.notifyState(session.StateFailed)
		return nil, err
	}
	defer func() {
		if cerr := res.Close(); cerr != nil && r.logger != nil {
			r.logger.Warn("release session resources", "error", cerr)
		}
	}()

	var opts []session.Option
	if r.hooks.Preview != nil {
		opts = append(opts, session.WithPreview(r.hooks.Preview))
	}
	if r.hooks.State != nil {
		opts = append(opts, session.WithStateListener(r.hooks.State))
	}
	s, err := session.New(cfg, res.Source, res.Detector, res.Reference, r.logger, opts...)
	if err != nil {
		r.notifyState(session.StateFailed)
		return nil, err
	}
	out, err := s.Run(ctx)
	if err != nil {
		if r.logger != nil {
			r.logger.Error("session failed", "session_id", s.ID(), "error", err)
		}
		return nil, err
	}
	if err := SaveResult(out, cfg); err != nil {
		if r.logger != nil {
			r.logger.Error("save heatmap", "error", err)
		}
		return out, err
	}
	if r.logger != nil {
		r.logger.Info("heatmap saved", "session_id", out.ID, "path", cfg.OutputPath)
	}
	return out, nil
}

// notifyState reports failures that happen before a session exists.
func (r *Runner) notifyState(next session.State) {
	if r.hooks.State != nil {
		r.hooks.State(session.StateIdle, next)
	}
}
