// Package view owns the map camera and mediates between user interaction
// and programmatic fly-to transitions.
package view

import (
	"fmt"
	"math"
	"time"
)

// DefaultTransitionDuration is the fly-to duration for programmatic moves.
const DefaultTransitionDuration = 2000 * time.Millisecond

// Camera limits applied to every accepted state.
const (
	MinZoom     = 0.0
	MaxZoom     = 22.0
	MaxPitch    = 85.0
	MaxLatitude = 85.05113 // Web Mercator limit
)

// Transition describes how the renderer should animate to a new state.
// It is consumed once by the renderer.
type Transition struct {
	Duration   time.Duration
	Easing     Easing
	EasingName string // Stable label for Easing in exported frames
}

// State is the camera: center, zoom, pitch and bearing, plus an optional
// transition descriptor.
type State struct {
	Longitude  float64     `json:"longitude" yaml:"longitude"`
	Latitude   float64     `json:"latitude" yaml:"latitude"`
	Zoom       float64     `json:"zoom" yaml:"zoom"`
	Pitch      float64     `json:"pitch" yaml:"pitch"`
	Bearing    float64     `json:"bearing" yaml:"bearing"`
	Transition *Transition `json:"-" yaml:"-"`
}

// Initial is the default camera over France.
var Initial = State{
	Longitude: 2.2882695,
	Latitude:  46.9491073,
	Zoom:      5,
	Pitch:     5,
	Bearing:   0,
}

// Paris is the preset "go to Paris" camera.
var Paris = State{
	Longitude: 2.3522,
	Latitude:  48.8566,
	Zoom:      11,
	Pitch:     30,
	Bearing:   0,
}

// Camera returns a copy of s without the transition descriptor.
func (s State) Camera() State {
	s.Transition = nil
	return s
}

// Normalized clamps zoom, pitch and latitude into the renderer's limits
// and wraps longitude and bearing.
func (s State) Normalized() State {
	s.Zoom = clamp(s.Zoom, MinZoom, MaxZoom)
	s.Pitch = clamp(s.Pitch, 0, MaxPitch)
	s.Latitude = clamp(s.Latitude, -MaxLatitude, MaxLatitude)
	s.Longitude = wrap(s.Longitude, -180, 360)
	s.Bearing = wrap(s.Bearing, -180, 360)
	return s
}

// Valid reports whether all camera fields are finite.
func (s State) Valid() bool {
	for _, v := range []float64{s.Longitude, s.Latitude, s.Zoom, s.Pitch, s.Bearing} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) String() string {
	return fmt.Sprintf("lon=%.4f lat=%.4f zoom=%.2f pitch=%.0f bearing=%.0f",
		s.Longitude, s.Latitude, s.Zoom, s.Pitch, s.Bearing)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// wrap maps v into [lo, lo+span).
func wrap(v, lo, span float64) float64 {
	if v >= lo && v < lo+span {
		return v
	}
	v = math.Mod(v-lo, span)
	if v < 0 {
		v += span
	}
	return v + lo
}
