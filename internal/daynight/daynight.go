// Package daynight derives the day/night basemap blend from simulated time.
package daynight

import (
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/litescript/ls-trails/internal/clock"
)

// Default daytime window, local hours [6, 18).
const (
	DefaultDayStartHour = 6
	DefaultDayEndHour   = 18
)

// Resolver decides whether a simulated instant is daytime using a fixed
// hour-of-day rule in a given location. It is pure: the same input always
// yields the same answer.
type Resolver struct {
	Location     *time.Location // nil means time.Local
	DayStartHour int
	DayEndHour   int

	// RampHours is the width of the linear ramp used by Factor on each side
	// of a boundary. Zero makes Factor a step function.
	RampHours float64
}

// NewResolver returns a resolver using the default [6, 18) window in loc.
func NewResolver(loc *time.Location) Resolver {
	return Resolver{
		Location:     loc,
		DayStartHour: DefaultDayStartHour,
		DayEndHour:   DefaultDayEndHour,
		RampHours:    1,
	}
}

// IsDaytime reports whether the local hour of t (epoch seconds) is in
// [DayStartHour, DayEndHour).
func (r Resolver) IsDaytime(t float64) bool {
	hour := clock.ToTime(t, r.Location).Hour()
	return hour >= r.DayStartHour && hour < r.DayEndHour
}

// Factor returns a continuous daylight factor in [0, 1]: 1 in full day,
// 0 in full night, ramping linearly across RampHours centered on each
// boundary.
func (r Resolver) Factor(t float64) float64 {
	if r.RampHours <= 0 {
		if r.IsDaytime(t) {
			return 1
		}
		return 0
	}

	lt := clock.ToTime(t, r.Location)
	h := float64(lt.Hour()) + float64(lt.Minute())/60 + float64(lt.Second())/3600
	half := r.RampHours / 2
	start := float64(r.DayStartHour)
	end := float64(r.DayEndHour)

	switch {
	case h < start-half || h >= end+half:
		return 0
	case h < start+half:
		return (h - (start - half)) / r.RampHours
	case h < end-half:
		return 1
	default:
		return 1 - (h-(end-half))/r.RampHours
	}
}

// Civil twilight bounds for SolarFactor, in degrees of sun elevation.
const (
	SolarNightElevation = -6.0
	SolarDayElevation   = 6.0
)

// SolarFactor returns a daylight factor from the sun's elevation at the
// given position, ramping linearly between SolarNightElevation and
// SolarDayElevation.
func SolarFactor(t, lat, lon float64) float64 {
	elevation := sunrise.Elevation(lat, lon, clock.ToTime(t, time.UTC))
	switch {
	case math.IsNaN(elevation) || elevation < SolarNightElevation:
		return 0
	case elevation >= SolarDayElevation:
		return 1
	default:
		return (elevation - SolarNightElevation) / (SolarDayElevation - SolarNightElevation)
	}
}
