package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/gazemap-go/config"
	"github.com/soocke/gazemap-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel
	CapturePrev CapturePreview

	// Widgets
	StateLabel *TLabelWidget
	captureRow int
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	SetStateLabel(text string)
	SetConfigEditable(enabled bool)
	UpdateCapture(img image.Image)
	UpdateOverlay(img image.Image)
	SetSession(elapsed, remaining time.Duration)
	PreviewReset()
	ConfigEditable(bool)
}

var _ UI = (*RootView)(nil)

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. Handlers are invoked on user actions; q stops
// a running capture from the keyboard.
func (rv *RootView) Build(onStart, onStop, onExit func()) {
	if rv == nil {
		return
	}
	theme.InitStyles()

	// Row 0: timer, state label, buttons frame
	rv.Session = NewSessionStats(nil, 0, 0)
	rv.StateLabel = TLabel(Txt("State: idle"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	startBtn := TButton(Txt("Start Capture"), Style(theme.StyleStartButton), Command(onStart))
	Grid(startBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	stopBtn := TButton(Txt("Stop"), Style(theme.StyleStopButton), Command(onStop))
	Grid(stopBtn, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := Button(Txt("Exit"), Command(onExit))
	Grid(exitBtn, In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(App, "<KeyPress-q>", Command(onStop))

	// Config panel rows
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	rv.captureRow = rv.ConfigPanel.Build(1)

	rv.CapturePrev = NewCapturePreview(rv.captureRow)
}

// ShowReference puts the advertisement in the overlay slot until a session
// produces a heatmap.
func (rv *RootView) ShowReference(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.SetReference(img)
	}
}

// SetStateLabel updates the state label text and color.
func (rv *RootView) SetStateLabel(text string) {
	if rv == nil || rv.StateLabel == nil {
		return
	}
	rv.StateLabel.Configure(Txt(text))
	theme.SetStateStyle(stateName(text))
}

// stateName strips the "State: " prefix presenters put on the label.
func stateName(text string) string {
	const prefix = "State: "
	if len(text) > len(prefix) && text[:len(prefix)] == prefix {
		return text[len(prefix):]
	}
	return text
}

// SetConfigEditable toggles config panel editability.
func (rv *RootView) SetConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

// UpdateCapture proxies to underlying capture preview view.
func (rv *RootView) UpdateCapture(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdateCapture(img)
	}
}

// UpdateOverlay proxies to underlying capture preview view.
func (rv *RootView) UpdateOverlay(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdateOverlay(img)
	}
}

// SetSession updates the elapsed and remaining capture time.
func (rv *RootView) SetSession(elapsed, remaining time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetElapsed(elapsed)
	rv.Session.SetRemaining(remaining)
}

// PreviewReset clears the capture preview.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.Reset()
	}
}

// ConfigEditable redirects to SetConfigEditable to satisfy CaptureView interface.
func (rv *RootView) ConfigEditable(b bool) { rv.SetConfigEditable(b) }
