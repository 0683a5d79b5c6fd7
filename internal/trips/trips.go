// Package trips holds the trajectory data consumed by the trail layer.
package trips

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultTrailLength is how many seconds of history each trail shows.
const DefaultTrailLength = 3000

// ErrNoTrips is returned when a source decodes to zero usable trips.
var ErrNoTrips = errors.New("no usable trips")

// Trip is one trajectory: a path with one timestamp per vertex and a scalar
// quantity used for coloring.
type Trip struct {
	ID         string       `json:"id,omitempty"`
	Path       [][2]float64 `json:"coordinates"` // [lon, lat]
	Timestamps []float64    `json:"timestamps"`
	Quantity   float64      `json:"quantity"`
}

// Validate checks the path/timestamp invariants.
func (t Trip) Validate() error {
	if len(t.Path) == 0 {
		return errors.New("empty path")
	}
	if len(t.Path) != len(t.Timestamps) {
		return fmt.Errorf("%d coordinates but %d timestamps", len(t.Path), len(t.Timestamps))
	}
	for i, ts := range t.Timestamps {
		if math.IsNaN(ts) || math.IsInf(ts, 0) {
			return fmt.Errorf("timestamp %d is not finite", i)
		}
		if i > 0 && ts < t.Timestamps[i-1] {
			return fmt.Errorf("timestamp %d decreases (%v < %v)", i, ts, t.Timestamps[i-1])
		}
	}
	for i, p := range t.Path {
		if p[0] < -180 || p[0] > 180 || p[1] < -90 || p[1] > 90 {
			return fmt.Errorf("coordinate %d out of range: %v", i, p)
		}
	}
	return nil
}

// Start returns the first timestamp.
func (t Trip) Start() float64 {
	return t.Timestamps[0]
}

// End returns the last timestamp.
func (t Trip) End() float64 {
	return t.Timestamps[len(t.Timestamps)-1]
}

// Active reports whether any part of the trail is visible at current.
func (t Trip) Active(current, trailLength float64) bool {
	return current >= t.Start() && current-trailLength <= t.End()
}

// TrailPoint is a vertex of the visible trail. Age is 0 at the head and
// 1 at the tail end of the trail window.
type TrailPoint struct {
	Lon, Lat float64
	Age      float64
}

// TrailAt returns the visible portion of the trip at current: vertices
// timestamped within (current-trailLength, current], plus an interpolated
// head at current when it falls between two vertices.
func (t Trip) TrailAt(current, trailLength float64) []TrailPoint {
	if len(t.Path) == 0 || !t.Active(current, trailLength) {
		return nil
	}
	if trailLength <= 0 {
		trailLength = 1
	}
	tail := current - trailLength

	age := func(ts float64) float64 {
		return (current - ts) / trailLength
	}

	// First vertex after the tail.
	lo := sort.SearchFloat64s(t.Timestamps, tail)
	var points []TrailPoint
	if lo > 0 && lo < len(t.Path) && t.Timestamps[lo] > tail {
		// Interpolated tail so trails do not pop in vertex by vertex.
		p := lerpPoint(t.Path[lo-1], t.Path[lo], t.Timestamps[lo-1], t.Timestamps[lo], tail)
		points = append(points, TrailPoint{Lon: p[0], Lat: p[1], Age: 1})
	}

	i := lo
	for ; i < len(t.Path) && t.Timestamps[i] <= current; i++ {
		p := t.Path[i]
		points = append(points, TrailPoint{Lon: p[0], Lat: p[1], Age: age(t.Timestamps[i])})
	}

	if i > 0 && i < len(t.Path) && t.Timestamps[i-1] < current {
		p := lerpPoint(t.Path[i-1], t.Path[i], t.Timestamps[i-1], t.Timestamps[i], current)
		points = append(points, TrailPoint{Lon: p[0], Lat: p[1], Age: 0})
	}

	return points
}

func lerpPoint(a, b [2]float64, ta, tb, at float64) [2]float64 {
	if tb <= ta {
		return b
	}
	f := (at - ta) / (tb - ta)
	return [2]float64{a[0] + (b[0]-a[0])*f, a[1] + (b[1]-a[1])*f}
}

// Set is an immutable collection of validated trips.
type Set struct {
	Trips []Trip
}

// NewSet validates trips, keeping the good ones. It returns the number of
// trips dropped.
func NewSet(all []Trip) (*Set, int) {
	s := &Set{Trips: make([]Trip, 0, len(all))}
	dropped := 0
	for _, t := range all {
		if t.Validate() != nil {
			dropped++
			continue
		}
		s.Trips = append(s.Trips, t)
	}
	return s, dropped
}

// Len returns the number of trips; safe on a nil set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Trips)
}

// Bounds returns the earliest and latest timestamps across all trips.
func (s *Set) Bounds() (tMin, tMax float64, ok bool) {
	if s.Len() == 0 {
		return 0, 0, false
	}
	tMin, tMax = math.Inf(1), math.Inf(-1)
	for _, t := range s.Trips {
		tMin = math.Min(tMin, t.Start())
		tMax = math.Max(tMax, t.End())
	}
	return tMin, tMax, true
}

// ActiveCount returns how many trips have a visible trail at current.
func (s *Set) ActiveCount(current, trailLength float64) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, t := range s.Trips {
		if t.Active(current, trailLength) {
			n++
		}
	}
	return n
}

// Activity counts trips in motion per bucket across [tMin, tMax], for the
// scrubber sparkline.
func (s *Set) Activity(tMin, tMax float64, buckets int) []float64 {
	if buckets <= 0 || tMax <= tMin {
		return nil
	}
	out := make([]float64, buckets)
	if s.Len() == 0 {
		return out
	}
	width := (tMax - tMin) / float64(buckets)
	for _, t := range s.Trips {
		first := int(math.Floor((t.Start() - tMin) / width))
		last := int(math.Floor((t.End() - tMin) / width))
		if first < 0 {
			first = 0
		}
		if last >= buckets {
			last = buckets - 1
		}
		for b := first; b <= last; b++ {
			out[b]++
		}
	}
	return out
}
