package view

import "math"

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 {
	return clamp(t, 0, 1)
}

// EaseInOutCubic accelerates then decelerates.
func EaseInOutCubic(t float64) float64 {
	t = clamp(t, 0, 1)
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

// flyToArc is how many zoom levels a fly-to pulls out at its midpoint,
// per degree of center travel, capped at flyToMaxArc.
const (
	flyToArc    = 0.5
	flyToMaxArc = 4.0
)

// FlyTo is the easing used by programmatic go-to requests.
var FlyTo Easing = EaseInOutCubic

// FlyToName labels FlyTo in exported frames.
const FlyToName = "fly_to"

// Interpolate returns the camera part-way from one state to another.
// Longitude and bearing take the short way round, and the zoom is pulled
// out towards the midpoint so long hops stay readable.
func Interpolate(from, to State, frac float64, easing Easing) State {
	if easing == nil {
		easing = Linear
	}
	e := easing(frac)

	out := State{
		Longitude: from.Longitude + shortest(from.Longitude, to.Longitude)*e,
		Latitude:  lerp(from.Latitude, to.Latitude, e),
		Zoom:      lerp(from.Zoom, to.Zoom, e),
		Pitch:     lerp(from.Pitch, to.Pitch, e),
		Bearing:   from.Bearing + shortest(from.Bearing, to.Bearing)*e,
	}

	dist := math.Hypot(shortest(from.Longitude, to.Longitude), to.Latitude-from.Latitude)
	arc := math.Min(dist*flyToArc, flyToMaxArc)
	if arc > 0 {
		// 0 at both ends, full arc at e = 0.5.
		out.Zoom -= arc * 4 * e * (1 - e)
	}

	return out.Normalized()
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// shortest returns the signed angular delta from a to b in (-180, 180].
func shortest(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
