package presenter

import (
	"image"
	"image/draw"
	"log/slog"

	"github.com/soocke/gazemap-go/domain/session"
	"github.com/soocke/gazemap-go/ui/images"
)

// PreviewSource supplies the latest preview frame published by the session.
type PreviewSource interface {
	Latest() *session.PreviewFrame
}

// ResultSource supplies the outcome of the last session.
type ResultSource interface {
	Get() (*session.Result, uint64, error)
}

// PreviewView describes the UI surface updated by the presenter.
type PreviewView interface {
	UpdateCapture(img image.Image)
	UpdateOverlay(img image.Image)
}

// PreviewPresenter draws gaze marks on the newest camera frame and swaps in
// the heatmap overlay once a session has finished.
type PreviewPresenter struct {
	Source  PreviewSource
	Results ResultSource
	View    PreviewView
	logger  *slog.Logger

	lastSeq     uint64
	lastFrame   *session.PreviewFrame
	lastVersion uint64
}

// NewPreviewPresenter constructs a preview presenter.
func NewPreviewPresenter(source PreviewSource, results ResultSource, view PreviewView, logger *slog.Logger) *PreviewPresenter {
	return &PreviewPresenter{Source: source, Results: results, View: view, logger: logger}
}

// ProcessFrame pushes at most one new preview and one new result per call.
func (p *PreviewPresenter) ProcessFrame() {
	if p == nil || p.View == nil {
		return
	}
	if p.Source != nil {
		if f := p.Source.Latest(); f != nil && f != p.lastFrame && f.Image != nil {
			p.lastFrame = f
			p.lastSeq = f.Sequence
			p.View.UpdateCapture(Annotate(f))
		}
	}
	if p.Results != nil {
		res, version, err := p.Results.Get()
		if version != p.lastVersion {
			p.lastVersion = version
			switch {
			case err != nil:
				if p.logger != nil {
					p.logger.Error("session failed", "error", err)
				}
			case res != nil && res.Overlay != nil:
				p.View.UpdateOverlay(res.Overlay)
			}
		}
	}
}

// LastSequence reports the sequence of the last frame shown.
func (p *PreviewPresenter) LastSequence() uint64 {
	if p == nil {
		return 0
	}
	return p.lastSeq
}

// Annotate returns a copy of the frame with every gaze mark drawn on it.
func Annotate(f *session.PreviewFrame) *image.RGBA {
	if f == nil || f.Image == nil {
		return nil
	}
	b := f.Image.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, f.Image, b.Min, draw.Src)
	for _, m := range f.Marks {
		images.DrawGaze(out, m.Origin, m.Point)
	}
	return out
}
