package heatmap

import (
	"fmt"
	"image/color"
	"math"
)

// Palette maps an 8-bit intensity to a color. Index 0 is the low end.
type Palette [256]color.NRGBA

// Low returns the color for zero intensity.
func (p *Palette) Low() color.NRGBA { return p[0] }

// High returns the color for full intensity.
func (p *Palette) High() color.NRGBA { return p[255] }

var (
	// Jet runs dark blue -> cyan -> yellow -> dark red, matching the classic
	// jet colormap.
	Jet = buildPalette(func(t float64) (float64, float64, float64) {
		return ramp(1.5 - math.Abs(4*t-3)), ramp(1.5 - math.Abs(4*t-2)), ramp(1.5 - math.Abs(4*t-1))
	})
	// Hot runs black -> red -> yellow -> white.
	Hot = buildPalette(func(t float64) (float64, float64, float64) {
		return ramp(3 * t), ramp(3*t - 1), ramp(3*t - 2)
	})
)

// PaletteByName resolves a config palette name.
func PaletteByName(name string) (*Palette, error) {
	switch name {
	case "", "jet":
		return &Jet, nil
	case "hot":
		return &Hot, nil
	default:
		return nil, fmt.Errorf("heatmap: unknown palette %q", name)
	}
}

func buildPalette(f func(t float64) (r, g, b float64)) Palette {
	var p Palette
	for i := range p {
		r, g, b := f(float64(i) / 255)
		p[i] = color.NRGBA{R: to8(r), G: to8(g), B: to8(b), A: 0xFF}
	}
	return p
}

func ramp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float64) uint8 { return uint8(math.Round(v * 255)) }
