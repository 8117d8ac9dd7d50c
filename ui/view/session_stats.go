package view

import (
	"fmt"
	"time"

	"github.com/soocke/gazemap-go/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows the capture timer.
type SessionStats interface {
	SetElapsed(d time.Duration)
	SetRemaining(d time.Duration)
}

type sessionStats struct {
	elapsedLbl   *TLabelWidget
	remainingLbl *TLabelWidget
}

// NewSessionStats creates elapsed and remaining labels in a grid layout.
// The elapsed label is placed at (row, startCol) and remaining at (row, startCol+1).
// If parent is nil, labels are positioned relative to the App root.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{
		elapsedLbl:   TLabel(Width(16), Style(theme.StyleTimerLabel)),
		remainingLbl: TLabel(Width(16), Style(theme.StyleTimerLabel)),
	}
	if parent != nil {
		Grid(s.elapsedLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
		Grid(s.remainingLbl, In(parent), Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	} else {
		Grid(s.elapsedLbl, Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
		Grid(s.remainingLbl, Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	}
	s.elapsedLbl.Configure(Txt("Elapsed: 0.0s"))
	s.remainingLbl.Configure(Txt("Remaining: -"))
	return s
}

// SetElapsed updates the elapsed capture time.
func (s *sessionStats) SetElapsed(d time.Duration) {
	if s == nil || s.elapsedLbl == nil {
		return
	}
	s.elapsedLbl.Configure(Txt(fmt.Sprintf("Elapsed: %.1fs", d.Seconds())))
}

// SetRemaining updates the countdown. Zero shows a dash.
func (s *sessionStats) SetRemaining(d time.Duration) {
	if s == nil || s.remainingLbl == nil {
		return
	}
	if d <= 0 {
		s.remainingLbl.Configure(Txt("Remaining: -"))
		return
	}
	s.remainingLbl.Configure(Txt(fmt.Sprintf("Remaining: %.1fs", d.Seconds())))
}
