package model

import (
	"time"
)

// SessionModel tracks the running capture's elapsed time against its
// duration bound, plus the time accumulated over earlier runs.
// It is decoupled from the UI; presenters should poll Values() and update views.
// The zero value is ready to use and has no bound.
type SessionModel struct {
	limit        time.Duration
	active       bool
	captureStart time.Time
	lastElapsed  time.Duration
	accumulated  time.Duration
}

// NewSessionModel returns a model counting down from limit.
func NewSessionModel(limit time.Duration) *SessionModel { return &SessionModel{limit: limit} }

// SetLimit changes the bound used for Remaining. It applies to the running
// capture too.
func (m *SessionModel) SetLimit(limit time.Duration) {
	if m == nil {
		return
	}
	m.limit = limit
}

// OnTick updates the model using the current capture state and timestamp.
// Call periodically (for example, from a presenter tick).
func (m *SessionModel) OnTick(capturing bool, now time.Time) {
	if m == nil {
		return
	}
	if capturing {
		if !m.active { // transition off -> on
			m.active = true
			m.captureStart = now
			m.lastElapsed = 0
		}
		m.lastElapsed = now.Sub(m.captureStart)
	} else if m.active { // transition on -> off
		m.lastElapsed = now.Sub(m.captureStart)
		m.accumulated += m.lastElapsed
		m.active = false
	}
}

// Values returns the elapsed time of the current (or last) capture and the
// total over all captures, including the ongoing one.
func (m *SessionModel) Values() (elapsed, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	elapsed = m.lastElapsed
	total = m.accumulated
	if m.active {
		total += elapsed
	}
	return
}

// Remaining returns the time left before the duration bound stops the
// capture. It is zero when idle, unbounded or overrun.
func (m *SessionModel) Remaining() time.Duration {
	if m == nil || !m.active || m.limit <= 0 {
		return 0
	}
	if left := m.limit - m.lastElapsed; left > 0 {
		return left
	}
	return 0
}
