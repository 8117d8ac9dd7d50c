package presenter

import (
	"time"

	"github.com/soocke/gazemap-go/ui/model"
)

// CaptureEnabledModel reports whether capture is enabled.
type CaptureEnabledModel interface{ Enabled() bool }

// SessionView displays the elapsed and remaining capture time.
type SessionView interface {
	SetSession(elapsed, remaining time.Duration)
}

// SessionPresenter formats the capture timer from the model to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	cap  CaptureEnabledModel
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, cap CaptureEnabledModel, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, cap: cap, view: view}
}

// Tick updates the presenter: advance the session model and push values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.cap == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.cap.Enabled(), now)
	elapsed, _ := p.sess.Values()
	p.view.SetSession(elapsed, p.sess.Remaining())
}
