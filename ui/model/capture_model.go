package model

import (
	"sync/atomic"

	"github.com/soocke/gazemap-go/domain/session"
)

// CaptureModel tracks whether a session is capturing and holds the latest
// preview frame. The zero value is disabled and usable.
// Concurrency-safe: the session goroutine publishes frames while presenter
// ticks read them on the UI thread.
type CaptureModel struct {
	enabled atomic.Bool
	latest  atomic.Pointer[session.PreviewFrame]
}

// Enabled reports whether capture is currently enabled.
func (m *CaptureModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the enabled flag. Enabling drops the previous preview.
func (m *CaptureModel) SetEnabled(b bool) {
	if m == nil {
		return
	}
	if m.enabled.Swap(b) == b { // no change
		return
	}
	if b {
		m.latest.Store(nil)
	}
}

// Publish replaces the latest preview frame. Matches session.PreviewFunc.
func (m *CaptureModel) Publish(f session.PreviewFrame) {
	if m == nil {
		return
	}
	m.latest.Store(&f)
}

// Latest returns the most recent preview frame or nil.
func (m *CaptureModel) Latest() *session.PreviewFrame {
	if m == nil {
		return nil
	}
	return m.latest.Load()
}
