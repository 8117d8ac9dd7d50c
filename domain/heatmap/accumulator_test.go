package heatmap

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func newGrid(t *testing.T, w, h int, opts ...Option) *Accumulator {
	t.Helper()
	a, err := New(w, h, opts...)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return a
}

func colorAt(img *image.NRGBA, x, y int) color.NRGBA { return img.NRGBAAt(x, y) }

func diskArea(r int) int {
	n := 0
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				n++
			}
		}
	}
	return n
}

func TestAccumulator_SinglePointMaxAndMinColors(t *testing.T) {
	a := newGrid(t, 100, 100)
	if !a.Record(50, 50) {
		t.Fatalf("expected in-bounds point to be recorded")
	}
	out := a.Finalize(100, 100)
	if got := colorAt(out, 50, 50); got != Jet.High() {
		t.Fatalf("center color %v, want %v", got, Jet.High())
	}
	if got := colorAt(out, 0, 0); got != Jet.Low() {
		t.Fatalf("corner color %v, want %v", got, Jet.Low())
	}
	if got := colorAt(out, 99, 99); got != Jet.Low() {
		t.Fatalf("far corner color %v, want %v", got, Jet.Low())
	}
}

func TestAccumulator_EmptyGridFinalizesFlat(t *testing.T) {
	a := newGrid(t, 64, 48)
	out := a.Finalize(64, 48)
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			if got := colorAt(out, x, y); got != Jet.Low() {
				t.Fatalf("pixel (%d,%d)=%v, want palette low %v", x, y, got, Jet.Low())
			}
		}
	}
}

func TestAccumulator_FinalizeIsIdempotent(t *testing.T) {
	a := newGrid(t, 80, 60)
	a.Record(20, 30)
	a.Record(70, 5)
	before := a.Values()
	first := a.Finalize(160, 120)
	second := a.Finalize(160, 120)
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatalf("finalize output differs between calls")
	}
	after := a.Values()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("finalize mutated grid at %d", i)
		}
	}
}

func TestAccumulator_ThreeClusters(t *testing.T) {
	a := newGrid(t, 100, 100)
	centers := []image.Point{{10, 10}, {90, 90}, {50, 50}}
	for _, c := range centers {
		a.Record(c.X, c.Y)
	}
	out := a.Finalize(100, 100)
	for _, c := range centers {
		if got := colorAt(out, c.X, c.Y); got != Jet.High() {
			t.Fatalf("cluster %v center = %v", c, got)
		}
		if got := colorAt(out, c.X, c.Y+DefaultRadius-1); c.Y+DefaultRadius-1 < 100 && got != Jet.High() {
			t.Fatalf("cluster %v inside radius = %v", c, got)
		}
	}
	for _, p := range []image.Point{{30, 70}, {70, 30}, {50, 68}, {95, 5}} {
		if got := colorAt(out, p.X, p.Y); got != Jet.Low() {
			t.Fatalf("background %v = %v, want low", p, got)
		}
	}
	high := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if colorAt(out, x, y) == Jet.High() {
				high++
			}
		}
	}
	// (10,10) and (90,90) are clipped by the grid edges, (50,50) is whole.
	if high <= diskArea(DefaultRadius) || high >= 3*diskArea(DefaultRadius) {
		t.Fatalf("unexpected number of hot pixels %d", high)
	}
}

func TestAccumulator_OutOfBoundsIsNoop(t *testing.T) {
	a := newGrid(t, 100, 100)
	a.Record(40, 40)
	before := a.Values()
	if a.Record(-1, 50) {
		t.Fatalf("(-1,50) should be discarded")
	}
	if a.Record(50, 1000) {
		t.Fatalf("(50,1000) should be discarded")
	}
	if a.Record(100, 0) {
		t.Fatalf("(100,0) should be discarded")
	}
	after := a.Values()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("grid changed at %d", i)
		}
	}
	rec, disc := a.Counts()
	if rec != 1 || disc != 3 {
		t.Fatalf("counts recorded=%d discarded=%d", rec, disc)
	}
}

func TestAccumulator_StampsDoNotAccumulate(t *testing.T) {
	a := newGrid(t, 40, 40)
	for i := 0; i < 25; i++ {
		a.Record(20, 20)
		a.Record(22, 21)
	}
	for i, v := range a.Values() {
		if v != 0 && v != Peak {
			t.Fatalf("cell %d = %v, want 0 or %v", i, v, Peak)
		}
	}
}

func TestAccumulator_EdgeStampIsClipped(t *testing.T) {
	a := newGrid(t, 20, 20)
	a.Record(0, 0)
	a.Record(19, 19)
	vals := a.Values()
	if vals[0] != Peak || vals[len(vals)-1] != Peak {
		t.Fatalf("corner stamps missing")
	}
}

func TestAccumulator_GaussianKernelBounded(t *testing.T) {
	a := newGrid(t, 60, 60, WithKernel(KernelGaussian), WithRadius(10))
	for i := 0; i < 5; i++ {
		a.Record(30, 30)
		a.Record(33, 30)
	}
	vals := a.Values()
	if vals[30*60+30] != Peak {
		t.Fatalf("center = %v, want %v", vals[30*60+30], Peak)
	}
	edge := vals[30*60+20]
	if edge <= 0 || edge >= Peak {
		t.Fatalf("edge value %v should be strictly between 0 and peak", edge)
	}
	for i, v := range vals {
		if v > Peak {
			t.Fatalf("cell %d exceeds peak: %v", i, v)
		}
	}
}

func TestAccumulator_FinalizeResizes(t *testing.T) {
	a := newGrid(t, 100, 50)
	a.Record(50, 25)
	out := a.Finalize(300, 200)
	if out.Bounds().Dx() != 300 || out.Bounds().Dy() != 200 {
		t.Fatalf("unexpected size %v", out.Bounds())
	}
	if got := colorAt(out, 150, 100); got != Jet.High() {
		t.Fatalf("resized center = %v", got)
	}
	if same := a.Finalize(0, 0); same.Bounds().Dx() != 100 || same.Bounds().Dy() != 50 {
		t.Fatalf("non-positive target should keep grid size, got %v", same.Bounds())
	}
}

func TestNew_RejectsEmptyGrid(t *testing.T) {
	if _, err := New(0, 10); !errors.Is(err, ErrInvalidGrid) {
		t.Fatalf("expected ErrInvalidGrid, got %v", err)
	}
}

func TestPaletteAndKernelNames(t *testing.T) {
	if p, err := PaletteByName("hot"); err != nil || p.Low() != (color.NRGBA{0, 0, 0, 255}) || p.High() != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("hot palette: %v %v", p, err)
	}
	if _, err := PaletteByName("viridis"); err == nil {
		t.Fatalf("expected unknown palette error")
	}
	if Jet.Low() != (color.NRGBA{0, 0, 128, 255}) || Jet.High() != (color.NRGBA{128, 0, 0, 255}) {
		t.Fatalf("jet ends: %v %v", Jet.Low(), Jet.High())
	}
	if k, err := KernelByName("gaussian"); err != nil || k != KernelGaussian {
		t.Fatalf("kernel: %v %v", k, err)
	}
	if _, err := KernelByName("box"); err == nil {
		t.Fatalf("expected unknown kernel error")
	}
}
