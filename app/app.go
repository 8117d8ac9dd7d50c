package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/gazemap-go/config"
	"github.com/soocke/gazemap-go/pipeline"
)

const (
	tick = 100 * time.Millisecond
	// shutdownGrace bounds how long exit waits for a session to finalize.
	shutdownGrace = 3 * time.Second
)

type app struct {
	c       *AppContainer
	logger  *slog.Logger
	afterID string
}

func NewApp(title string, width, height int, cfg *config.Config, cfgPath string, logger *slog.Logger) *app {
	a := &app{c: BuildContainer(cfg, logger, cfgPath), logger: logger}

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a
}

// Start builds the window, shows the reference image and blocks in the Tk
// event loop until the window closes.
func (a *app) Start() {
	c := a.c
	c.RootView.Build(c.StartCapture, func() { c.CapturePresenter.Disable() }, a.exitHandler)
	c.WirePresenters(a.scheduleUpdate)

	if ref, err := pipeline.LoadReference(c.Config.ReferenceImage); err != nil {
		if a.logger != nil {
			a.logger.Warn("reference preview unavailable", "error", err)
		}
	} else {
		c.RootView.ShowReference(ref)
	}

	a.scheduleUpdate()
	App.Wait()
}

func (a *app) update() { a.c.Loop.Tick() }

func (a *app) exitHandler() {
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	if a.c.Runner.Running() {
		a.c.Runner.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		if err := a.c.Runner.Wait(ctx); err != nil && a.logger != nil {
			a.logger.Warn("session did not finish before exit", "error", err)
		}
		cancel()
	}
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.update() })
}
