// Package scene composes the clock, day/night controller, camera controller,
// color scale and trip data into a per-frame description for a renderer.
package scene

import (
	"fmt"
	"time"

	"github.com/litescript/ls-trails/internal/clock"
	"github.com/litescript/ls-trails/internal/colormap"
	"github.com/litescript/ls-trails/internal/config"
	"github.com/litescript/ls-trails/internal/daynight"
	"github.com/litescript/ls-trails/internal/trips"
	"github.com/litescript/ls-trails/internal/view"
)

// Config holds everything needed to build a Scene.
type Config struct {
	Clock              clock.Config
	FitToData          bool
	Resolver           daynight.Resolver
	Rule               daynight.Rule
	Initial            view.State
	Presets            map[string]view.State
	TransitionDuration time.Duration
	Scale              colormap.Scale
	TrailLength        float64
	MaxEvents          int
}

// DefaultConfig returns the built-in scene in the local timezone.
func DefaultConfig() Config {
	return Config{
		Clock:              clock.DefaultConfig(),
		Resolver:           daynight.NewResolver(time.Local),
		Rule:               daynight.RuleHours,
		Initial:            view.Initial,
		TransitionDuration: view.DefaultTransitionDuration,
		Scale:              colormap.Default(),
		TrailLength:        trips.DefaultTrailLength,
		MaxEvents:          DefaultMaxEvents,
	}
}

// ConfigFrom converts the application configuration.
func ConfigFrom(c *config.Config) (Config, error) {
	resolver, err := c.Resolver()
	if err != nil {
		return Config{}, err
	}
	scale, err := c.Scale()
	if err != nil {
		return Config{}, err
	}

	presets := make(map[string]view.State, len(c.View.Presets))
	for _, p := range c.View.Presets {
		presets[p.Name] = p.State()
	}

	return Config{
		Clock:              c.ClockEngineConfig(),
		FitToData:          c.Clock.FitToData,
		Resolver:           resolver,
		Rule:               daynight.ParseRule(c.DayNight.Rule),
		Initial:            c.View.Initial.State(),
		Presets:            presets,
		TransitionDuration: c.View.TransitionDuration,
		Scale:              scale,
		TrailLength:        c.Data.TrailLength,
		MaxEvents:          DefaultMaxEvents,
	}, nil
}

// Layer is the trail layer descriptor handed to the renderer.
type Layer struct {
	CurrentTime float64
	TrailLength float64
	Trips       *trips.Set
	Color       func(quantity float64) colormap.RGBA
}

// Frame is everything a renderer needs to draw one frame.
type Frame struct {
	Seq   uint64
	Time  time.Time // Simulated time in the resolver's location
	Layer Layer

	View       view.State
	Transition *view.Transition // Non-nil only on the frame a fly-to starts
	Phase      view.Phase

	Crossfade daynight.Crossfade
	Daylight  float64 // Continuous factor for renderers that ease the crossfade
	Mode      daynight.Mode
	Flipped   bool // Crossfade targets changed this frame

	Playing  bool
	Progress float64
	LoadErr  error
}

// Scene owns all animation state. It is driven from a single goroutine:
// the TUI update loop or the headless frame loop.
type Scene struct {
	cfg      Config
	clock    *clock.Engine
	daynight *daynight.Controller
	view     *view.Controller
	scale    colormap.Scale

	trips   *trips.Set
	loadErr error

	events *eventLog
	seq    uint64
	now    func() time.Time
}

// New builds a scene with no trips loaded.
func New(cfg Config) (*Scene, error) {
	eng, err := clock.New(cfg.Clock)
	if err != nil {
		return nil, fmt.Errorf("create clock: %w", err)
	}
	if cfg.TrailLength <= 0 {
		cfg.TrailLength = trips.DefaultTrailLength
	}

	vc := view.NewController(cfg.Initial, cfg.TransitionDuration)
	for name, s := range cfg.Presets {
		vc.AddPreset(name, s)
	}

	return &Scene{
		cfg:      cfg,
		clock:    eng,
		daynight: daynight.NewController(cfg.Resolver, cfg.Rule),
		view:     vc,
		scale:    cfg.Scale,
		trips:    &trips.Set{},
		events:   newEventLog(cfg.MaxEvents),
		now:      time.Now,
	}, nil
}

// SetTrips installs the outcome of a trip load. A failed load leaves an
// empty trail layer and records the error for display. With FitToData the
// clock window is refitted to the trips' time range.
func (s *Scene) SetTrips(result trips.LoadResult) {
	s.loadErr = result.Error
	if result.Set == nil {
		result.Set = &trips.Set{}
	}
	s.trips = result.Set
	if result.Error != nil {
		return
	}

	s.record(EventTripsLoaded, fmt.Sprintf("%d trips from %s (%d dropped)", result.Set.Len(), result.Source, result.Dropped))

	if !s.cfg.FitToData {
		return
	}
	lo, hi, ok := result.Set.Bounds()
	if !ok {
		return
	}
	eng, err := clock.New(clock.Config{TMin: lo, TMax: hi, Step: s.clock.Step(), Start: lo})
	if err != nil {
		return
	}
	eng.SetPlaying(s.clock.Playing())
	s.clock = eng
}

// Frame advances one tick and returns what to draw. The order is fixed:
// advance the clock, resolve day/night, flip the crossfade if needed, emit.
func (s *Scene) Frame() Frame {
	before := s.clock.Now()
	s.clock.Tick()
	now := s.clock.Now()
	if now < before {
		s.record(EventLoop, "")
	}

	cam := s.view.Camera()
	flipped := s.daynight.Frame(now, cam.Latitude, cam.Longitude) == daynight.Changed
	if flipped {
		if s.daynight.IsDaytime() {
			s.record(EventDaybreak, "")
		} else {
			s.record(EventNightfall, "")
		}
	}

	s.seq++
	f := s.snapshot()
	f.Flipped = flipped
	f.Transition = s.view.TakeTransition()
	return f
}

// Current returns the present state without ticking or consuming a
// pending transition.
func (s *Scene) Current() Frame {
	return s.snapshot()
}

func (s *Scene) snapshot() Frame {
	now := s.clock.Now()
	cam := s.view.Camera()
	return Frame{
		Seq:  s.seq,
		Time: s.clock.Time(s.cfg.Resolver.Location),
		Layer: Layer{
			CurrentTime: now,
			TrailLength: s.cfg.TrailLength,
			Trips:       s.trips,
			Color:       s.scale.Func(),
		},
		View:      cam,
		Phase:     s.view.Phase(),
		Crossfade: s.daynight.Crossfade(),
		Daylight:  s.daynight.Factor(now, cam.Latitude, cam.Longitude),
		Mode:      s.daynight.Mode(),
		Playing:   s.clock.Playing(),
		Progress:  s.clock.Progress(),
		LoadErr:   s.loadErr,
	}
}

// TogglePlay flips play/pause and returns the new playing state.
func (s *Scene) TogglePlay() bool {
	return s.clock.Toggle()
}

// SetPlaying sets play/pause explicitly.
func (s *Scene) SetPlaying(playing bool) {
	s.clock.SetPlaying(playing)
}

// Seek jumps the clock to t, clamped into the window.
func (s *Scene) Seek(t float64) {
	s.clock.Seek(t)
}

// StepBy moves the clock n animation steps along the scrubber grid
// (TMin + k*Step).
func (s *Scene) StepBy(n int) {
	s.clock.SeekSteps(n)
}

// SeekFraction jumps to the grid point nearest a fraction of the way
// through the window.
func (s *Scene) SeekFraction(f float64) {
	lo, hi := s.clock.Bounds()
	s.clock.Seek(s.clock.Snap(lo + (hi-lo)*f))
}

// SetAutoDayNight switches between automatic and manual day/night.
func (s *Scene) SetAutoDayNight(auto bool) {
	if s.daynight.Mode().Auto == auto {
		return
	}
	s.daynight.SetAuto(auto)
	s.record(EventModeChanged, s.daynight.String())
}

// ToggleAutoDayNight flips the day/night mode and returns the new Auto value.
func (s *Scene) ToggleAutoDayNight() bool {
	s.SetAutoDayNight(!s.daynight.Mode().Auto)
	return s.daynight.Mode().Auto
}

// ToggleManualDaytime flips the manual choice. It is ignored in auto mode.
func (s *Scene) ToggleManualDaytime() bool {
	if !s.daynight.ToggleManual() {
		return false
	}
	s.record(EventModeChanged, s.daynight.String())
	return true
}

// GoToPreset flies the camera to a named preset.
func (s *Scene) GoToPreset(name string) error {
	if err := s.view.GoToPreset(name); err != nil {
		return err
	}
	s.record(EventFlyTo, name)
	return nil
}

// GoToCustom validates the text fields and flies there. Invalid input
// leaves the camera unchanged and returns a *view.ValidationError.
func (s *Scene) GoToCustom(in view.CustomInput) error {
	if err := s.view.GoToCustom(in); err != nil {
		return err
	}
	s.record(EventFlyTo, s.view.Camera().String())
	return nil
}

// ResetView flies back to the initial camera.
func (s *Scene) ResetView() {
	s.view.Reset()
	s.record(EventFlyTo, "initial")
}

// ProposeView accepts a camera reported by the renderer after user
// interaction, cancelling any fly-to in progress.
func (s *Scene) ProposeView(v view.State) {
	if s.view.Phase() == view.PhaseTransitioning && v.Valid() {
		s.record(EventFlyCanceled, "")
	}
	s.view.Propose(v)
}

// CompleteTransition is called by the renderer when a fly-to finishes.
func (s *Scene) CompleteTransition() {
	s.view.Complete()
}

// Presets lists the preset names.
func (s *Scene) Presets() []string {
	return s.view.Presets()
}

// Bounds returns the clock window.
func (s *Scene) Bounds() (tMin, tMax float64) {
	return s.clock.Bounds()
}

// Step returns the clock step.
func (s *Scene) Step() float64 {
	return s.clock.Step()
}

// Trips returns the loaded trip set (never nil).
func (s *Scene) Trips() *trips.Set {
	return s.trips
}

// Activity returns the active-trip histogram over the clock window.
func (s *Scene) Activity(buckets int) []float64 {
	lo, hi := s.clock.Bounds()
	return s.trips.Activity(lo, hi, buckets)
}

// Location returns the timezone used for day/night and display.
func (s *Scene) Location() *time.Location {
	if s.cfg.Resolver.Location == nil {
		return time.Local
	}
	return s.cfg.Resolver.Location
}

// Events returns the event log, oldest first.
func (s *Scene) Events() []Event {
	return s.events.ordered()
}

// RecentEvents returns the last n events, or nil when n is not positive.
func (s *Scene) RecentEvents(n int) []Event {
	return s.events.recent(n)
}

func (s *Scene) record(t EventType, detail string) {
	s.events.add(Event{
		Type:    t,
		At:      s.now(),
		SimTime: s.clock.Now(),
		Detail:  detail,
	})
}
