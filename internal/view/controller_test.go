package view

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewController(t *testing.T) {
	c := NewController(Initial, 0)

	if c.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", c.Phase())
	}
	if c.State().Transition != nil {
		t.Error("initial state should carry no transition")
	}
	if c.Camera() != Initial {
		t.Errorf("Camera() = %v, want %v", c.Camera(), Initial)
	}
	if c.duration != DefaultTransitionDuration {
		t.Errorf("duration = %v, want %v", c.duration, DefaultTransitionDuration)
	}
}

func TestPropose_AcceptsInRange(t *testing.T) {
	c := NewController(Initial, 0)
	drag := State{Longitude: 3.1, Latitude: 47.2, Zoom: 6.5, Pitch: 10, Bearing: 15}

	c.Propose(drag)

	got := c.State()
	if got.Transition != nil {
		t.Error("proposed state must not carry a transition")
	}
	if got.Camera() != drag {
		t.Errorf("State() = %v, want %v", got, drag)
	}
}

func TestPropose_Normalizes(t *testing.T) {
	tests := []struct {
		name string
		in   State
		want State
	}{
		{
			"wraps longitude and bearing",
			State{Longitude: 190, Latitude: 10, Zoom: 4, Bearing: 370},
			State{Longitude: -170, Latitude: 10, Zoom: 4, Bearing: 10},
		},
		{
			"clamps zoom pitch and latitude",
			State{Longitude: 0, Latitude: 89, Zoom: 40, Pitch: 120},
			State{Longitude: 0, Latitude: MaxLatitude, Zoom: MaxZoom, Pitch: MaxPitch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(Initial, 0)
			c.Propose(tt.in)
			if got := c.Camera(); got != tt.want {
				t.Errorf("Camera() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPropose_IgnoresNonFinite(t *testing.T) {
	c := NewController(Initial, 0)
	c.Propose(State{Longitude: math.NaN(), Latitude: 1, Zoom: 1})
	if c.Camera() != Initial {
		t.Errorf("Camera() = %v, want unchanged", c.Camera())
	}
}

func TestGoToPreset_AttachesTransition(t *testing.T) {
	c := NewController(Initial, 0)

	if err := c.GoToPreset("Paris"); err != nil {
		t.Fatalf("GoToPreset() error = %v", err)
	}

	got := c.State()
	if got.Camera() != Paris {
		t.Errorf("State() = %v, want %v", got.Camera(), Paris)
	}
	if got.Transition == nil {
		t.Fatal("go-to should attach a transition")
	}
	if got.Transition.Duration != 2000*time.Millisecond {
		t.Errorf("Duration = %v, want 2s", got.Transition.Duration)
	}
	if got.Transition.Easing == nil {
		t.Error("Easing should be set")
	}
	if got.Transition.EasingName != FlyToName {
		t.Errorf("EasingName = %q, want %q", got.Transition.EasingName, FlyToName)
	}
	if c.Phase() != PhaseTransitioning {
		t.Errorf("Phase() = %v, want transitioning", c.Phase())
	}
}

func TestGoToPreset_Unknown(t *testing.T) {
	c := NewController(Initial, 0)
	err := c.GoToPreset("atlantis")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("error = %v, want ErrUnknownPreset", err)
	}
	if c.Phase() != PhaseIdle {
		t.Error("unknown preset must not start a transition")
	}
}

// Scenario: a drag during a fly-to cancels it.
func TestPropose_CancelsTransition(t *testing.T) {
	c := NewController(Initial, 0)
	c.GoToPreset("paris")

	drag := State{Longitude: 2.0, Latitude: 46.0, Zoom: 5.5, Pitch: 5}
	c.Propose(drag)

	got := c.State()
	if got.Transition != nil {
		t.Error("drag should clear the transition descriptor")
	}
	if got.Camera() != drag {
		t.Errorf("State() = %v, want drag %v", got.Camera(), drag)
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", c.Phase())
	}
}

func TestTakeTransition_ConsumedOnce(t *testing.T) {
	c := NewController(Initial, 1500*time.Millisecond)
	c.Reset()

	tr := c.TakeTransition()
	if tr == nil || tr.Duration != 1500*time.Millisecond {
		t.Fatalf("TakeTransition() = %+v, want 1.5s descriptor", tr)
	}
	if c.TakeTransition() != nil {
		t.Error("second TakeTransition() should return nil")
	}
	if c.Phase() != PhaseTransitioning {
		t.Error("phase should remain transitioning until Complete")
	}

	c.Complete()
	if c.Phase() != PhaseIdle {
		t.Error("Complete() should return to idle")
	}
}

func TestGoToCustom(t *testing.T) {
	c := NewController(Initial, 0)
	in := CustomInput{Longitude: " 4.8357", Latitude: "45.7640", Zoom: "12", Pitch: "45"}

	if err := c.GoToCustom(in); err != nil {
		t.Fatalf("GoToCustom() error = %v", err)
	}
	want := State{Longitude: 4.8357, Latitude: 45.7640, Zoom: 12, Pitch: 45, Bearing: 0}
	if c.Camera() != want {
		t.Errorf("Camera() = %v, want %v", c.Camera(), want)
	}
	if c.State().Transition == nil {
		t.Error("custom go-to should attach a transition")
	}
}

// Scenario: malformed longitude leaves the camera unchanged.
func TestGoToCustom_ValidationFailure(t *testing.T) {
	tests := []struct {
		name      string
		in        CustomInput
		wantField string
	}{
		{"bad longitude", CustomInput{"abc", "48.8", "11", "30"}, "longitude"},
		{"empty latitude", CustomInput{"2.3", "", "11", "30"}, "latitude"},
		{"infinite zoom", CustomInput{"2.3", "48.8", "Inf", "30"}, "zoom"},
		{"NaN pitch", CustomInput{"2.3", "48.8", "11", "NaN"}, "pitch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(Initial, 0)
			err := c.GoToCustom(tt.in)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
			if !errors.Is(err, ErrInvalidCoordinate) {
				t.Error("error should match ErrInvalidCoordinate")
			}
			if c.Camera() != Initial || c.State().Transition != nil || c.Phase() != PhaseIdle {
				t.Error("validation failure must not mutate the view state")
			}
		})
	}
}

func TestInputFor_RoundTrip(t *testing.T) {
	in := InputFor(Paris)
	if in.Longitude != "2.3522" || in.Zoom != "11" {
		t.Errorf("InputFor(Paris) = %+v", in)
	}
	s, err := in.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s != Paris {
		t.Errorf("Parse() = %v, want %v", s, Paris)
	}
}

func TestPresets(t *testing.T) {
	c := NewController(Initial, 0)
	c.AddPreset("Lyon", State{Longitude: 4.8357, Latitude: 45.764, Zoom: 12})

	names := c.Presets()
	want := []string{"initial", "lyon", "paris"}
	if len(names) != len(want) {
		t.Fatalf("Presets() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Presets()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
