package app

import (
	"log/slog"
	"time"

	"github.com/soocke/gazemap-go/config"
	"github.com/soocke/gazemap-go/domain/camera"
	"github.com/soocke/gazemap-go/domain/session"
	"github.com/soocke/gazemap-go/pipeline"
	"github.com/soocke/gazemap-go/ui/model"
	"github.com/soocke/gazemap-go/ui/presenter"
	"github.com/soocke/gazemap-go/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config   *config.Config
	Logger   *slog.Logger
	Capture  *model.CaptureModel
	Session  *model.SessionModel
	Results  *model.ResultModel
	Runner   *pipeline.Runner
	RootView *view.RootView
	UI       view.UI

	// Presenters
	SessionPresenter *presenter.SessionPresenter
	StatePresenter   *presenter.StatePresenter
	PreviewPresenter *presenter.PreviewPresenter
	CapturePresenter *presenter.CapturePresenter
	Loop             *presenter.Loop
}

// BuildContainer constructs all components. No widgets are created here;
// presenters are wired once the view is built.
func BuildContainer(cfg *config.Config, logger *slog.Logger, cfgPath string) *AppContainer {
	c := &AppContainer{Config: cfg, Logger: logger}
	c.Capture = &model.CaptureModel{}
	c.Session = model.NewSessionModel(durationOf(cfg))
	c.Results = model.NewResultModel()
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.UI = c.RootView
	c.StatePresenter = presenter.NewStatePresenter(c.UI, c.onSessionEnd)
	c.Runner = pipeline.NewRunner(cfg, camera.Opener, pipeline.Hooks{
		Preview: c.Capture.Publish,
		State:   c.StatePresenter.OnState,
		Result:  c.Results.Set,
	}, logger)
	return c
}

// WirePresenters connects presenters to the built view. schedule queues the
// next loop tick.
func (c *AppContainer) WirePresenters(schedule func()) {
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.Capture, c.UI)
	c.PreviewPresenter = presenter.NewPreviewPresenter(c.Capture, c.Results, c.UI, c.Logger)
	c.CapturePresenter = presenter.NewCapturePresenter(c.Capture, c.Runner, c.UI)
	c.Loop = presenter.NewLoop(c.SessionPresenter, c.StatePresenter, c.PreviewPresenter, schedule)
}

// StartCapture applies the current duration and starts a session.
func (c *AppContainer) StartCapture() {
	c.Session.SetLimit(durationOf(c.Config))
	c.CapturePresenter.Enable()
}

func (c *AppContainer) onSessionEnd(state session.State) {
	if c.Logger != nil {
		c.Logger.Info("session ended", "state", state.String())
	}
	if c.CapturePresenter != nil {
		c.CapturePresenter.Finished()
	}
}

func durationOf(cfg *config.Config) time.Duration {
	return time.Duration(cfg.DurationSeconds * float64(time.Second))
}
