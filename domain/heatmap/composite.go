package heatmap

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultHeatWeight is the heatmap share of a composite; the reference gets
// the remaining 0.6.
const DefaultHeatWeight = 0.4

// ErrSizeMismatch is returned when composite inputs differ in size.
var ErrSizeMismatch = errors.New("heatmap: reference and heatmap sizes differ")

// Composite blends heat over reference: reference*(1-w) + heat*w per channel,
// rounded. Alpha is ignored; both inputs are read as their stored colors and
// the result is opaque. Inputs must be of equal size; w is clamped to [0,1].
func Composite(reference, heat image.Image, heatWeight float64) (*image.NRGBA, error) {
	if reference == nil || heat == nil {
		return nil, errors.New("heatmap: composite of nil image")
	}
	rs, hs := reference.Bounds().Size(), heat.Bounds().Size()
	if rs != hs {
		return nil, fmt.Errorf("%w: reference %v heatmap %v", ErrSizeMismatch, rs, hs)
	}
	w := math.Min(math.Max(heatWeight, 0), 1)
	out := imaging.Clone(reference)
	hp := imaging.Clone(heat).Pix
	for i := 0; i < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(out.Pix[i+c])*(1-w) + float64(hp[i+c])*w
			out.Pix[i+c] = uint8(math.Round(math.Min(v, 255)))
		}
		out.Pix[i+3] = 0xff
	}
	return out, nil
}
