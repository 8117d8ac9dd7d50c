package gaze

import (
	"errors"
	"image"

	"github.com/golang/geo/r2"
)

// Face mesh indices used by the estimator. They follow the 478-point refined
// face mesh layout (468 mesh points followed by 10 iris points).
const (
	LeftEyeOuter  = 33
	LeftEyeInner  = 133
	LeftEyeUpper  = 159
	LeftEyeLower  = 145
	RightEyeInner = 362
	RightEyeOuter = 263
	RightEyeUpper = 386
	RightEyeLower = 374
	LeftPupil     = 468
	RightPupil    = 473

	// MinLandmarks is the smallest landmark set that carries both pupils.
	MinLandmarks = RightPupil + 1
)

// DefaultScale projects a gaze vector onto the frame plane. It has no
// calibration basis and may be overridden through config.
const DefaultScale = 100.0

var (
	// ErrIrisLandmarksMissing means the detector emitted a mesh without iris
	// points, which happens when landmark refinement is disabled.
	ErrIrisLandmarksMissing = errors.New("gaze: landmark set has no iris points (refined landmarks disabled?)")
	// ErrInvalidFrameSize is returned for non-positive frame dimensions.
	ErrInvalidFrameSize = errors.New("gaze: frame size must be positive")
)

// Landmark is a detector point normalized to [0,1] by image width/height.
// Z is carried through from the detector but not used.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// LandmarkSet is the ordered landmark list of one detected face.
type LandmarkSet []Landmark

// Pixel denormalizes the landmark at index i to frame pixel space.
func (s LandmarkSet) Pixel(i int, width, height float64) r2.Point {
	p := s[i]
	return r2.Point{X: p.X * width, Y: p.Y * height}
}

// Gaze is the estimate for one face in one frame.
type Gaze struct {
	Vector r2.Point // pixel displacement, Y already inverted
	Origin r2.Point // midpoint between the socket centers
}

// Point projects the gaze onto the frame plane: Origin + Vector*scale.
func (g Gaze) Point(scale float64) r2.Point {
	return g.Origin.Add(g.Vector.Mul(scale))
}

// Pixel is Point truncated toward zero to integer frame coordinates.
func (g Gaze) Pixel(scale float64) image.Point {
	p := g.Point(scale)
	return image.Pt(int(p.X), int(p.Y))
}
