package images

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

var (
	// OriginColor marks the gaze origin between the eyes.
	OriginColor = color.RGBA{0, 255, 0, 255}
	// RayColor draws the projected gaze direction.
	RayColor = color.RGBA{255, 0, 0, 255}
)

const (
	originRadius = 5
	rayWidth     = 2
	circleSteps  = 24
)

// DrawGaze draws a filled dot at origin and a line from origin to point onto
// dst, anti-aliased. Parts outside dst are clipped.
func DrawGaze(dst draw.Image, origin, point image.Point) {
	if dst == nil {
		return
	}
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	// The rasterizer works in dst-local coordinates.
	o := origin.Sub(b.Min)
	p := point.Sub(b.Min)

	if o != p {
		r := vector.NewRasterizer(b.Dx(), b.Dy())
		addSegment(r, o, p, rayWidth)
		r.Draw(dst, b, image.NewUniform(RayColor), image.Point{})
	}
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	addDisk(r, o, originRadius)
	r.Draw(dst, b, image.NewUniform(OriginColor), image.Point{})
}

func addDisk(r *vector.Rasterizer, c image.Point, radius float64) {
	cx, cy := float32(c.X)+0.5, float32(c.Y)+0.5
	for i := 0; i < circleSteps; i++ {
		a := 2 * math.Pi * float64(i) / circleSteps
		x := cx + float32(radius*math.Cos(a))
		y := cy + float32(radius*math.Sin(a))
		if i == 0 {
			r.MoveTo(x, y)
		} else {
			r.LineTo(x, y)
		}
	}
	r.ClosePath()
}

// addSegment adds a quad of the given width along a->b.
func addSegment(r *vector.Rasterizer, a, b image.Point, width float64) {
	ax, ay := float64(a.X)+0.5, float64(a.Y)+0.5
	bx, by := float64(b.X)+0.5, float64(b.Y)+0.5
	dx, dy := bx-ax, by-ay
	n := math.Hypot(dx, dy)
	nx, ny := -dy/n*width/2, dx/n*width/2
	r.MoveTo(float32(ax+nx), float32(ay+ny))
	r.LineTo(float32(bx+nx), float32(by+ny))
	r.LineTo(float32(bx-nx), float32(by-ny))
	r.LineTo(float32(ax-nx), float32(ay-ny))
	r.ClosePath()
}
