package gaze

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
)

// synthFace builds a refined landmark set with both eyes placed around the
// given normalized socket centers and pupils offset by (dx, dy).
func synthFace(lc, rc r2.Point, dx, dy float64) LandmarkSet {
	set := make(LandmarkSet, 478)
	for i := range set {
		set[i] = Landmark{X: 0.5, Y: 0.5}
	}
	place := func(c r2.Point, outer, inner, upper, lower int) {
		set[outer] = Landmark{X: c.X - 0.03, Y: c.Y}
		set[inner] = Landmark{X: c.X + 0.03, Y: c.Y}
		set[upper] = Landmark{X: c.X, Y: c.Y - 0.01}
		set[lower] = Landmark{X: c.X, Y: c.Y + 0.01}
	}
	place(lc, LeftEyeOuter, LeftEyeInner, LeftEyeUpper, LeftEyeLower)
	place(rc, RightEyeOuter, RightEyeInner, RightEyeUpper, RightEyeLower)
	set[LeftPupil] = Landmark{X: lc.X + dx, Y: lc.Y + dy}
	set[RightPupil] = Landmark{X: rc.X + dx, Y: rc.Y + dy}
	return set
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEstimate_KnownFace(t *testing.T) {
	set := synthFace(r2.Point{X: 0.4, Y: 0.5}, r2.Point{X: 0.6, Y: 0.5}, 0.01, 0.02)
	g, err := Estimate(set, 100, 200)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	// pupil offset (0.01*100, 0.02*200) = (1, 4); Y flipped.
	if !near(g.Vector.X, 1) || !near(g.Vector.Y, -4) {
		t.Fatalf("unexpected vector %v", g.Vector)
	}
	if !near(g.Origin.X, 50) || !near(g.Origin.Y, 100) {
		t.Fatalf("unexpected origin %v", g.Origin)
	}
	p := g.Point(DefaultScale)
	if math.Abs(p.X-150) > 1e-6 || math.Abs(p.Y+300) > 1e-6 {
		t.Fatalf("unexpected projection %v", p)
	}
}

func TestGaze_PixelTruncatesTowardZero(t *testing.T) {
	g := Gaze{Origin: r2.Point{X: 10.9, Y: 0.2}, Vector: r2.Point{X: 0.0015, Y: -0.005}}
	p := g.Pixel(DefaultScale)
	if p.X != 11 || p.Y != 0 {
		t.Fatalf("expected (11,0), got %v", p)
	}
}

func TestEstimate_OriginInsideEyeRegion(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		lc := r2.Point{X: 0.1 + rng.Float64()*0.35, Y: 0.1 + rng.Float64()*0.8}
		rc := r2.Point{X: 0.55 + rng.Float64()*0.35, Y: 0.1 + rng.Float64()*0.8}
		set := synthFace(lc, rc, rng.Float64()*0.02-0.01, rng.Float64()*0.02-0.01)
		w, h := 320+rng.Intn(1600), 240+rng.Intn(900)
		g, err := Estimate(set, w, h)
		if err != nil {
			t.Fatalf("estimate: %v", err)
		}
		sockets := EyeRegion(set, w, h)[:8]
		bounds := r2.RectFromPoints(sockets...)
		if !bounds.ContainsPoint(g.Origin) {
			t.Fatalf("origin %v outside eye bounds %v", g.Origin, bounds)
		}
	}
}

func TestEstimate_VerticalComponentFlipped(t *testing.T) {
	for _, dy := range []float64{-0.02, -0.005, 0.004, 0.03} {
		set := synthFace(r2.Point{X: 0.35, Y: 0.45}, r2.Point{X: 0.65, Y: 0.47}, 0, dy)
		g, err := Estimate(set, 640, 480)
		if err != nil {
			t.Fatalf("estimate: %v", err)
		}
		raw := dy * 480
		if g.Vector.Y*raw >= 0 {
			t.Fatalf("dy=%v: vector Y %v has same sign as raw %v", dy, g.Vector.Y, raw)
		}
	}
}

func TestEstimate_ScalesLinearlyWithFrameSize(t *testing.T) {
	set := synthFace(r2.Point{X: 0.38, Y: 0.42}, r2.Point{X: 0.61, Y: 0.44}, 0.012, -0.007)
	base, err := Estimate(set, 320, 240)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	for _, k := range []int{2, 3, 5} {
		g, err := Estimate(set, 320*k, 240*k)
		if err != nil {
			t.Fatalf("estimate: %v", err)
		}
		if math.Abs(g.Vector.Norm()-float64(k)*base.Vector.Norm()) > 1e-9 {
			t.Fatalf("k=%d: |v|=%v want %v", k, g.Vector.Norm(), float64(k)*base.Vector.Norm())
		}
	}
}

func TestEstimate_FailsFastWithoutIris(t *testing.T) {
	set := make(LandmarkSet, 468)
	if _, err := Estimate(set, 640, 480); !errors.Is(err, ErrIrisLandmarksMissing) {
		t.Fatalf("expected ErrIrisLandmarksMissing, got %v", err)
	}
	if EyeRegion(set, 640, 480) != nil {
		t.Fatalf("expected nil eye region for short set")
	}
}

func TestEstimate_RejectsBadFrameSize(t *testing.T) {
	set := synthFace(r2.Point{X: 0.4, Y: 0.5}, r2.Point{X: 0.6, Y: 0.5}, 0, 0)
	if _, err := Estimate(set, 0, 480); !errors.Is(err, ErrInvalidFrameSize) {
		t.Fatalf("expected ErrInvalidFrameSize, got %v", err)
	}
	if _, err := Estimate(set, 640, -1); !errors.Is(err, ErrInvalidFrameSize) {
		t.Fatalf("expected ErrInvalidFrameSize, got %v", err)
	}
}
