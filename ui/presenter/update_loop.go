package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessFrame on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Session  *SessionPresenter
	State    *StatePresenter
	Preview  *PreviewPresenter
	Schedule func()
}

func NewLoop(sess *SessionPresenter, state *StatePresenter, preview *PreviewPresenter, schedule func()) *Loop {
	return &Loop{Session: sess, State: state, Preview: preview, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// State first so a finished session stops the timer on the same tick.
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Preview != nil {
		l.Preview.ProcessFrame()
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
