// Package colormap maps per-trip quantities to trail colors.
package colormap

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Default scale: yellow to orange over [0, 25], saturating at 15.
// These stand out on both basemaps.
const (
	DefaultFrom      = "#ffce00"
	DefaultTo        = "#ff7400"
	DefaultDomainMin = 0
	DefaultDomainMax = 25
	DefaultClampMax  = 15
)

// RGBA is an 8-bit color as consumed by the trail layer.
type RGBA struct {
	R, G, B, A uint8
}

// Hex returns the color as #RRGGBB (alpha dropped).
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Array returns [r, g, b, a] as used by the JSON frame export.
func (c RGBA) Array() [4]uint8 {
	return [4]uint8{c.R, c.G, c.B, c.A}
}

// Scale is a two-color linear scale over a fixed domain. It holds no
// mutable state, so Map is referentially transparent.
type Scale struct {
	from, to  colorful.Color
	domainMin float64
	domainMax float64
	clampMax  float64
}

// New builds a scale from two hex colors. Inputs above clampMax are
// treated as clampMax before scaling.
func New(from, to string, domainMin, domainMax, clampMax float64) (Scale, error) {
	cFrom, err := colorful.Hex(from)
	if err != nil {
		return Scale{}, fmt.Errorf("parse from color %q: %w", from, err)
	}
	cTo, err := colorful.Hex(to)
	if err != nil {
		return Scale{}, fmt.Errorf("parse to color %q: %w", to, err)
	}
	if !(domainMax > domainMin) {
		return Scale{}, fmt.Errorf("empty color domain [%v, %v]", domainMin, domainMax)
	}
	return Scale{
		from:      cFrom,
		to:        cTo,
		domainMin: domainMin,
		domainMax: domainMax,
		clampMax:  clampMax,
	}, nil
}

// Default returns the built-in trail scale.
func Default() Scale {
	s, err := New(DefaultFrom, DefaultTo, DefaultDomainMin, DefaultDomainMax, DefaultClampMax)
	if err != nil {
		panic(err)
	}
	return s
}

// Map converts a quantity to a fully opaque color. Values below the
// domain extrapolate like a linear scale and are clamped per channel.
func (s Scale) Map(quantity float64) RGBA {
	if math.IsNaN(quantity) {
		quantity = s.domainMin
	}
	quantity = math.Min(quantity, s.clampMax)

	t := (quantity - s.domainMin) / (s.domainMax - s.domainMin)
	r, g, b := s.from.BlendRgb(s.to, t).Clamped().RGB255()
	return RGBA{R: r, G: g, B: b, A: 255}
}

// Func returns Map as a plain function, the form the trail layer takes.
func (s Scale) Func() func(float64) RGBA {
	return s.Map
}
