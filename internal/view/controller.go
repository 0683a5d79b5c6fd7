package view

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidCoordinate marks a custom location field that is not a
	// finite number.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrUnknownPreset is returned for a preset name that is not registered.
	ErrUnknownPreset = errors.New("unknown preset")
)

// ValidationError reports which custom location field failed to parse.
type ValidationError struct {
	Field string
	Input string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %q is not a finite number", e.Field, e.Input)
}

// Unwrap lets errors.Is match ErrInvalidCoordinate.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidCoordinate
}

// Phase is the controller's state machine position.
type Phase int

const (
	PhaseIdle          Phase = iota // Interactive, proposals accepted as-is
	PhaseTransitioning              // A go-to target was handed to the renderer
)

func (p Phase) String() string {
	if p == PhaseTransitioning {
		return "transitioning"
	}
	return "idle"
}

// CustomInput holds the raw text of the custom location fields.
type CustomInput struct {
	Longitude string
	Latitude  string
	Zoom      string
	Pitch     string
}

// InputFor returns the text form of a camera, as shown in input fields.
func InputFor(s State) CustomInput {
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return CustomInput{
		Longitude: format(s.Longitude),
		Latitude:  format(s.Latitude),
		Zoom:      format(s.Zoom),
		Pitch:     format(s.Pitch),
	}
}

// Parse converts the text fields into a camera with bearing 0.
func (in CustomInput) Parse() (State, error) {
	var s State
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"longitude", in.Longitude, &s.Longitude},
		{"latitude", in.Latitude, &s.Latitude},
		{"zoom", in.Zoom, &s.Zoom},
		{"pitch", in.Pitch, &s.Pitch},
	}

	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return State{}, &ValidationError{Field: f.name, Input: f.raw}
		}
		*f.dst = v
	}
	return s, nil
}

// Controller owns the camera. User proposals replace the state verbatim;
// programmatic go-to requests attach a transition descriptor that the
// renderer consumes once.
type Controller struct {
	state    State
	initial  State
	phase    Phase
	pending  *Transition
	duration time.Duration
	presets  map[string]State
}

// NewController creates a controller at the initial camera. A non-positive
// duration falls back to DefaultTransitionDuration.
func NewController(initial State, duration time.Duration) *Controller {
	if duration <= 0 {
		duration = DefaultTransitionDuration
	}
	initial = initial.Camera().Normalized()
	return &Controller{
		state:    initial,
		initial:  initial,
		duration: duration,
		presets: map[string]State{
			"initial": initial,
			"paris":   Paris,
		},
	}
}

// State returns a read-only copy of the camera including any transition
// descriptor not yet taken by the renderer.
func (c *Controller) State() State {
	s := c.state
	s.Transition = c.pending
	return s
}

// Camera returns the camera without transition.
func (c *Controller) Camera() State {
	return c.state
}

// Phase returns the current state machine phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Propose accepts a renderer-reported camera (drag, zoom, rotate) after
// normalizing it: longitude and bearing wrap and the other fields are
// clamped. Non-finite cameras are ignored. Any in-flight transition is
// cancelled.
func (c *Controller) Propose(s State) {
	if !s.Valid() {
		return
	}
	c.state = s.Camera().Normalized()
	c.pending = nil
	c.phase = PhaseIdle
}

// FlyTo starts a programmatic transition to target. Only the camera fields
// of target are used.
func (c *Controller) FlyTo(target State) {
	if !target.Valid() {
		return
	}
	c.state = target.Camera().Normalized()
	c.pending = &Transition{Duration: c.duration, Easing: FlyTo, EasingName: FlyToName}
	c.phase = PhaseTransitioning
}

// Reset flies back to the initial camera.
func (c *Controller) Reset() {
	c.FlyTo(c.initial)
}

// GoToCustom parses the text fields and flies there. On a validation
// failure the camera is left untouched and a *ValidationError is returned.
func (c *Controller) GoToCustom(in CustomInput) error {
	target, err := in.Parse()
	if err != nil {
		return err
	}
	c.FlyTo(target)
	return nil
}

// GoToPreset flies to a named preset.
func (c *Controller) GoToPreset(name string) error {
	target, ok := c.presets[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	c.FlyTo(target)
	return nil
}

// AddPreset registers or replaces a named preset.
func (c *Controller) AddPreset(name string, s State) {
	c.presets[strings.ToLower(name)] = s.Camera()
}

// Presets returns the registered preset names in sorted order.
func (c *Controller) Presets() []string {
	names := make([]string, 0, len(c.presets))
	for name := range c.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TakeTransition hands the pending descriptor to the renderer and clears
// it. The phase stays Transitioning until Complete or a proposal.
func (c *Controller) TakeTransition() *Transition {
	t := c.pending
	c.pending = nil
	return t
}

// Complete is called by the renderer when the animated move finishes.
func (c *Controller) Complete() {
	c.pending = nil
	c.phase = PhaseIdle
}
