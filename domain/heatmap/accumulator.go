package heatmap

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

const (
	// DefaultRadius is the stamp radius in grid pixels.
	DefaultRadius = 15
	// Peak is the value written by a stamp. Stamps assign, never add, so no
	// cell can exceed it.
	Peak float32 = 255
)

// ErrInvalidGrid is returned for non-positive grid dimensions.
var ErrInvalidGrid = errors.New("heatmap: grid size must be positive")

// Kernel selects the stamp shape.
type Kernel int

const (
	// KernelDisk writes Peak into every cell within the radius.
	KernelDisk Kernel = iota
	// KernelGaussian writes max(cell, Peak*exp(-d²/2σ²)) with σ = radius/2.
	KernelGaussian
)

func (k Kernel) String() string {
	switch k {
	case KernelDisk:
		return "disk"
	case KernelGaussian:
		return "gaussian"
	default:
		return "unknown"
	}
}

// KernelByName resolves a config kernel name.
func KernelByName(name string) (Kernel, error) {
	switch name {
	case "", "disk":
		return KernelDisk, nil
	case "gaussian":
		return KernelGaussian, nil
	default:
		return 0, fmt.Errorf("heatmap: unknown kernel %q", name)
	}
}

// Option customises an Accumulator.
type Option func(*Accumulator)

// WithRadius sets the stamp radius. Values below 1 are ignored.
func WithRadius(r int) Option {
	return func(a *Accumulator) {
		if r >= 1 {
			a.radius = r
		}
	}
}

// WithKernel sets the stamp shape.
func WithKernel(k Kernel) Option { return func(a *Accumulator) { a.kernel = k } }

// WithPalette sets the palette used by Finalize. Nil is ignored.
func WithPalette(p *Palette) Option {
	return func(a *Accumulator) {
		if p != nil {
			a.palette = p
		}
	}
}

// Accumulator is the per-session gaze grid, one cell per frame pixel.
// Not safe for concurrent use; Record and Finalize must be called from a
// single goroutine.
type Accumulator struct {
	w, h      int
	cells     []float32
	radius    int
	kernel    Kernel
	palette   *Palette
	stamp     []stampCell
	recorded  uint64
	discarded uint64
}

type stampCell struct {
	dx, dy int
	v      float32
}

// New allocates a zeroed width x height grid.
func New(width, height int, opts ...Option) (*Accumulator, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, width, height)
	}
	a := &Accumulator{
		w:       width,
		h:       height,
		cells:   make([]float32, width*height),
		radius:  DefaultRadius,
		kernel:  KernelDisk,
		palette: &Jet,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.stamp = buildStamp(a.radius, a.kernel)
	return a, nil
}

func buildStamp(r int, k Kernel) []stampCell {
	sigma := float64(r) / 2
	out := make([]stampCell, 0, (2*r+1)*(2*r+1))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d2 := dx*dx + dy*dy
			if d2 > r*r {
				continue
			}
			v := Peak
			if k == KernelGaussian {
				v = Peak * float32(math.Exp(-float64(d2)/(2*sigma*sigma)))
			}
			out = append(out, stampCell{dx: dx, dy: dy, v: v})
		}
	}
	return out
}

// Size returns the grid dimensions.
func (a *Accumulator) Size() (width, height int) { return a.w, a.h }

// Record stamps the point (x, y). Points outside the grid are dropped and
// Record reports false; the disk itself is clipped at the grid edges.
func (a *Accumulator) Record(x, y int) bool {
	if x < 0 || y < 0 || x >= a.w || y >= a.h {
		a.discarded++
		return false
	}
	for _, s := range a.stamp {
		px, py := x+s.dx, y+s.dy
		if px < 0 || py < 0 || px >= a.w || py >= a.h {
			continue
		}
		i := py*a.w + px
		if s.v > a.cells[i] {
			a.cells[i] = s.v
		}
	}
	a.recorded++
	return true
}

// Counts returns how many points were stamped and how many were discarded.
func (a *Accumulator) Counts() (recorded, discarded uint64) { return a.recorded, a.discarded }

// Values returns a copy of the raw grid in row-major order.
func (a *Accumulator) Values() []float32 {
	out := make([]float32, len(a.cells))
	copy(out, a.cells)
	return out
}

// Intensity rescales the grid to [0,255] using its own min and max. A flat
// grid (including one never recorded into) maps to all zeros.
func (a *Accumulator) Intensity() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, a.w, a.h))
	lo, hi := a.cells[0], a.cells[0]
	for _, v := range a.cells[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := float64(hi - lo)
	if span <= 0 {
		return g
	}
	for i, v := range a.cells {
		g.Pix[i] = uint8(math.Round(float64(v-lo) * 255 / span))
	}
	return g
}

// Finalize normalizes, colorizes and resizes the grid to targetW x targetH
// with linear interpolation. Non-positive targets keep the grid size. The
// grid is not modified, so repeated calls return identical images.
func (a *Accumulator) Finalize(targetW, targetH int) *image.NRGBA {
	if targetW <= 0 || targetH <= 0 {
		targetW, targetH = a.w, a.h
	}
	colored := Colorize(a.Intensity(), a.palette)
	if targetW == a.w && targetH == a.h {
		return colored
	}
	return imaging.Resize(colored, targetW, targetH, imaging.Linear)
}

// Colorize maps every gray level of src through p.
func Colorize(src *image.Gray, p *Palette) *image.NRGBA {
	if p == nil {
		p = &Jet
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+b.Dx()]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()*4]
		for x, v := range row {
			c := p[v]
			i := x * 4
			out[i], out[i+1], out[i+2], out[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return dst
}
