package presenter

import (
	"sync"
	"time"

	"github.com/soocke/gazemap-go/domain/session"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatePresenter receives session state transitions from the session
// goroutine and reflects the latest one on the next UI tick.
type StatePresenter struct {
	view StateView

	mu      sync.Mutex
	latest  session.State // last reflected state
	shown   bool
	pending []session.State
	onEnd   func(session.State)
}

// NewStatePresenter returns a presenter. onEnd, if set, runs on the UI
// thread when a done or failed state is reflected.
func NewStatePresenter(view StateView, onEnd func(session.State)) *StatePresenter {
	return &StatePresenter{view: view, onEnd: onEnd}
}

// OnState queues a transitioned state. It matches session.StateListener and
// is safe to call from any goroutine.
func (p *StatePresenter) OnState(_, next session.State) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick processes queued states and updates the view with the most recent state.
// It clears the pending queue after processing.
func (p *StatePresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	if len(p.pending) == 0 {
		p.mu.Unlock()
		return
	}
	queued := append([]session.State(nil), p.pending...)
	p.pending = p.pending[:0]
	p.mu.Unlock()

	last := queued[len(queued)-1]
	if !p.shown || last != p.latest {
		p.latest, p.shown = last, true
		p.view.SetStateLabel("State: " + last.String())
	}
	// A fast session can pass through done between two ticks; still notify.
	for _, s := range queued {
		if (s == session.StateDone || s == session.StateFailed) && p.onEnd != nil {
			p.onEnd(s)
		}
	}
}
