package model

import (
	"testing"
	"time"
)

func TestSessionModel_BasicLifecycle(t *testing.T) {
	m := NewSessionModel(6 * time.Second)
	base := time.Unix(0, 0)

	// Start at t0 and run for 5s.
	m.OnTick(true, base)
	m.OnTick(true, base.Add(5*time.Second))
	elapsed, total := m.Values()
	if elapsed != 5*time.Second || total != 5*time.Second {
		t.Fatalf("expected 5s elapsed & total; got elapsed=%v total=%v", elapsed, total)
	}
	if rem := m.Remaining(); rem != time.Second {
		t.Fatalf("expected 1s remaining, got %v", rem)
	}

	// Stop at 5s.
	m.OnTick(false, base.Add(5*time.Second))
	elapsed, total = m.Values()
	if elapsed != 5*time.Second || total != 5*time.Second {
		t.Fatalf("after stop expected persisted 5s; got elapsed=%v total=%v", elapsed, total)
	}
	if m.Remaining() != 0 {
		t.Fatalf("idle model should report no remaining time")
	}

	// Idle 2s (no change expected).
	m.OnTick(false, base.Add(7*time.Second))
	e2, t2 := m.Values()
	if e2 != elapsed || t2 != total {
		t.Fatalf("idle tick should not change durations: before %v/%v after %v/%v", elapsed, total, e2, t2)
	}

	// Second capture at 10s overrunning the bound.
	m.OnTick(true, base.Add(10*time.Second))
	m.OnTick(true, base.Add(17*time.Second))
	e3, t3 := m.Values()
	if e3 != 7*time.Second || t3 != 12*time.Second {
		t.Fatalf("expected 7s elapsed and 12s total, got %v/%v", e3, t3)
	}
	if m.Remaining() != 0 {
		t.Fatalf("overrun should clamp remaining to zero")
	}
}

func TestSessionModel_NilAndUnbounded(t *testing.T) {
	var nilModel *SessionModel
	nilModel.OnTick(true, time.Now())
	if e, tot := nilModel.Values(); e != 0 || tot != 0 || nilModel.Remaining() != 0 {
		t.Fatalf("nil model should be inert")
	}
	m := &SessionModel{}
	m.OnTick(true, time.Unix(0, 0))
	m.OnTick(true, time.Unix(3, 0))
	if m.Remaining() != 0 {
		t.Fatalf("unbounded model has no remaining time")
	}
}
