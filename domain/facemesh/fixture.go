package facemesh

import (
	"context"
	"image"
	"sync"

	"github.com/soocke/gazemap-go/domain/gaze"
)

// FixtureStep is one scripted Detect outcome.
type FixtureStep struct {
	Faces []gaze.LandmarkSet
	Err   error
}

// Fixture is an in-memory detector driven by a script. When Loop is set the
// script repeats, otherwise calls past the end return no faces.
type Fixture struct {
	mu     sync.Mutex
	steps  []FixtureStep
	next   int
	calls  int
	closed bool
	Loop   bool
}

// NewFixture builds a fixture from scripted steps.
func NewFixture(steps ...FixtureStep) *Fixture {
	return &Fixture{steps: steps}
}

// Constant returns a fixture that reports the same faces on every call.
func Constant(faces ...gaze.LandmarkSet) *Fixture {
	return &Fixture{steps: []FixtureStep{{Faces: faces}}, Loop: true}
}

func (f *Fixture) Detect(ctx context.Context, _ image.Image) ([]gaze.LandmarkSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.steps) == 0 {
		return nil, nil
	}
	if f.next >= len(f.steps) {
		if !f.Loop {
			return nil, nil
		}
		f.next = 0
	}
	step := f.steps[f.next]
	f.next++
	return step.Faces, step.Err
}

// Calls reports how many times Detect ran.
func (f *Fixture) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Closed reports whether Close was called.
func (f *Fixture) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Fixture) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

var _ Detector = (*Fixture)(nil)
