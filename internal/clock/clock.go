// Package clock provides the simulated playback clock that drives the trail cursor.
package clock

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Default playback window and speed (Nov 27 - Dec 1 2023, 50 s per frame).
const (
	DefaultTMin = 1701043200
	DefaultTMax = 1701388800
	DefaultStep = 50
)

var (
	// ErrInvalidStep is returned when the step is not a positive finite number.
	ErrInvalidStep = errors.New("clock step must be positive")

	// ErrInvalidBounds is returned when the window is empty or not finite.
	ErrInvalidBounds = errors.New("clock bounds must be finite with tmin <= tmax")
)

// Config holds construction parameters for an Engine.
type Config struct {
	TMin  float64 // Window start, seconds since epoch
	TMax  float64 // Window end, seconds since epoch
	Step  float64 // Seconds advanced per tick while playing
	Start float64 // Initial time; zero means TMin
}

// DefaultConfig returns the window used by the bundled sample data.
func DefaultConfig() Config {
	return Config{
		TMin: DefaultTMin,
		TMax: DefaultTMax,
		Step: DefaultStep,
	}
}

// Engine owns the simulated time, its bounds and the play/pause state.
// It is not safe for concurrent use; all calls are expected to come from
// a single update loop.
type Engine struct {
	tMin    float64
	tMax    float64
	step    float64
	now     float64
	playing bool
}

// New creates a paused engine. The start time is clamped into the window.
func New(cfg Config) (*Engine, error) {
	if math.IsNaN(cfg.Step) || math.IsInf(cfg.Step, 0) || cfg.Step <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidStep, cfg.Step)
	}
	if !finite(cfg.TMin) || !finite(cfg.TMax) || cfg.TMax < cfg.TMin {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrInvalidBounds, cfg.TMin, cfg.TMax)
	}

	e := &Engine{
		tMin: cfg.TMin,
		tMax: cfg.TMax,
		step: cfg.Step,
		now:  cfg.TMin,
	}
	if cfg.Start != 0 {
		e.Seek(cfg.Start)
	}
	return e, nil
}

// Tick advances the clock by one step if playing. When the advanced value
// would pass TMax the clock jumps back to TMin (hard wrap, no loop-back
// animation). Returns true if the time changed.
func (e *Engine) Tick() bool {
	if !e.playing {
		return false
	}

	prev := e.now
	next := e.now + e.step
	if next > e.tMax {
		next = e.tMin
	}
	e.now = next
	return e.now != prev
}

// Seek jumps to t clamped into [TMin, TMax]. It is allowed in any playback
// state. NaN is ignored.
func (e *Engine) Seek(t float64) {
	if math.IsNaN(t) {
		return
	}
	e.now = clamp(t, e.tMin, e.tMax)
}

// Snap rounds t to the nearest point TMin + k*Step inside the window. The
// last grid point may fall short of TMax when the window is not a whole
// number of steps.
func (e *Engine) Snap(t float64) float64 {
	return e.tMin + float64(e.gridIndex(t))*e.step
}

// SeekSteps snaps the clock to the step grid and moves it n steps, clamped
// to the first and last grid points.
func (e *Engine) SeekSteps(n int) {
	k := e.gridIndex(e.now) + n
	last := e.lastIndex()
	if k < 0 {
		k = 0
	} else if k > last {
		k = last
	}
	e.now = e.tMin + float64(k)*e.step
}

func (e *Engine) gridIndex(t float64) int {
	if math.IsNaN(t) {
		t = e.now
	}
	k := int(math.Round((clamp(t, e.tMin, e.tMax) - e.tMin) / e.step))
	if last := e.lastIndex(); k > last {
		k = last
	}
	return k
}

func (e *Engine) lastIndex() int {
	return int(math.Floor((e.tMax - e.tMin) / e.step))
}

// SetPlaying sets the playback state.
func (e *Engine) SetPlaying(playing bool) {
	e.playing = playing
}

// Toggle flips between playing and paused and returns the new state.
func (e *Engine) Toggle() bool {
	e.playing = !e.playing
	return e.playing
}

// Playing reports whether ticks advance the clock.
func (e *Engine) Playing() bool {
	return e.playing
}

// Now returns the current simulated time in seconds since epoch.
func (e *Engine) Now() float64 {
	return e.now
}

// Time returns the current simulated time as a time.Time in loc.
func (e *Engine) Time(loc *time.Location) time.Time {
	return ToTime(e.now, loc)
}

// Bounds returns the playback window.
func (e *Engine) Bounds() (tMin, tMax float64) {
	return e.tMin, e.tMax
}

// Step returns the per-tick advance.
func (e *Engine) Step() float64 {
	return e.step
}

// Progress returns how far through the window the clock is, in [0, 1].
func (e *Engine) Progress() float64 {
	span := e.tMax - e.tMin
	if span <= 0 {
		return 0
	}
	return (e.now - e.tMin) / span
}

// ToTime converts epoch seconds (with fraction) to a time.Time in loc.
// A nil location means time.Local.
func ToTime(sec float64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).In(loc)
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

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
