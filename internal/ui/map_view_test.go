package ui

import (
	"math"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-trails/internal/daynight"
	"github.com/litescript/ls-trails/internal/scene"
	"github.com/litescript/ls-trails/internal/trips"
	"github.com/litescript/ls-trails/internal/view"
)

func TestProjector_RoundTrip(t *testing.T) {
	cam := view.State{Longitude: 2.35, Latitude: 48.85, Zoom: 9, Pitch: 40, Bearing: 30}
	p := newProjector(cam, 80, 24)

	points := [][2]float64{{10, 5}, {40, 12}, {0, 0}, {79, 23}}
	for _, pt := range points {
		lon, lat := p.toGeo(pt[0], pt[1])
		col, row := p.toCell(lon, lat)
		if math.Abs(col-pt[0]) > 1e-6 || math.Abs(row-pt[1]) > 1e-6 {
			t.Errorf("round trip (%v, %v) -> (%v, %v)", pt[0], pt[1], col, row)
		}
	}
}

func TestProjector_CameraAtCenter(t *testing.T) {
	cam := view.Paris
	p := newProjector(cam, 60, 20)

	col, row := p.toCell(cam.Longitude, cam.Latitude)
	if math.Abs(col-30) > 1e-9 || math.Abs(row-10) > 1e-9 {
		t.Errorf("camera center projects to (%v, %v), want (30, 10)", col, row)
	}

	// East is to the right with no bearing.
	east, _ := p.toCell(cam.Longitude+0.01, cam.Latitude)
	if east <= col {
		t.Errorf("east point at col %v, want > %v", east, col)
	}
}

func TestMapModel_KeysProposeView(t *testing.T) {
	tests := []struct {
		key   tea.KeyMsg
		check func(before, after view.State) bool
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")}, func(b, a view.State) bool { return a.Zoom == b.Zoom+1 }},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")}, func(b, a view.State) bool { return a.Zoom == b.Zoom-1 }},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")}, func(b, a view.State) bool { return a.Bearing == b.Bearing+bearingStep }},
		{tea.KeyMsg{Type: tea.KeyLeft}, func(b, a view.State) bool { return a.Longitude < b.Longitude }},
		{tea.KeyMsg{Type: tea.KeyUp}, func(b, a view.State) bool { return a.Latitude > b.Latitude }},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			m := NewMapModel(view.Paris).SetSize(80, 24)
			before := m.Display()

			m, cmd := m.Update(tt.key)
			if cmd == nil {
				t.Fatal("expected a command")
			}
			msg, ok := cmd().(ProposeViewMsg)
			if !ok {
				t.Fatalf("expected ProposeViewMsg, got %T", cmd())
			}
			if !tt.check(before, msg.State) {
				t.Errorf("proposed %v from %v", msg.State, before)
			}
			if m.Display() != msg.State {
				t.Errorf("display %v should follow proposal %v", m.Display(), msg.State)
			}
		})
	}
}

func TestMapModel_UnknownKeyIgnored(t *testing.T) {
	m := NewMapModel(view.Initial)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil {
		t.Error("unmapped key should not propose a view")
	}
}

func TestMapModel_Flight(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMapModel(view.Initial).SetSize(80, 24)

	f := scene.Frame{
		View:       view.Paris,
		Transition: &view.Transition{Duration: 2 * time.Second, Easing: view.Linear},
		Phase:      view.PhaseTransitioning,
	}
	m, landed := m.SetFrame(f, t0)
	if landed || !m.Flying() {
		t.Fatal("transition frame should start a flight")
	}
	if m.Display() != view.Initial {
		t.Errorf("flight should start from the old camera, got %v", m.Display())
	}

	f.Transition = nil
	m, landed = m.SetFrame(f, t0.Add(time.Second))
	if landed {
		t.Fatal("flight landed too early")
	}
	mid := m.Display()
	if mid.Latitude <= view.Initial.Latitude || mid.Latitude >= view.Paris.Latitude {
		t.Errorf("mid-flight latitude %v not between endpoints", mid.Latitude)
	}

	m, landed = m.SetFrame(f, t0.Add(2*time.Second))
	if !landed {
		t.Fatal("flight should land at its duration")
	}
	if m.Flying() {
		t.Error("no flight should remain")
	}
	if m.Display() != view.Paris {
		t.Errorf("Display() = %v, want %v", m.Display(), view.Paris)
	}
}

func TestMapModel_InteractionCancelsFlight(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMapModel(view.Initial).SetSize(80, 24)
	m, _ = m.SetFrame(scene.Frame{
		View:       view.Paris,
		Transition: &view.Transition{Duration: 2 * time.Second},
	}, t0)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	if m.Flying() {
		t.Error("interaction should cancel the flight")
	}
}

func TestMapModel_CrossfadeEases(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMapModel(view.Initial)

	m, _ = m.SetFrame(scene.Frame{View: view.Initial, Crossfade: daynight.CrossfadeFor(true)}, t0)
	if m.DayLevel() != 1 {
		t.Fatalf("first frame should start at its target, got %v", m.DayLevel())
	}

	night := scene.Frame{View: view.Initial, Crossfade: daynight.CrossfadeFor(false)}
	m, _ = m.SetFrame(night, t0.Add(CrossfadeDuration/2))
	if math.Abs(m.DayLevel()-0.5) > 1e-9 {
		t.Errorf("DayLevel() = %v halfway through, want 0.5", m.DayLevel())
	}

	m, _ = m.SetFrame(night, t0.Add(CrossfadeDuration*2))
	if m.DayLevel() != 0 {
		t.Errorf("DayLevel() = %v, want 0", m.DayLevel())
	}
}

func TestMapModel_DrawsTrailHead(t *testing.T) {
	set, _ := trips.NewSet([]trips.Trip{{
		ID:         "a",
		Path:       [][2]float64{{2.35, 48.85}, {2.45, 48.85}},
		Timestamps: []float64{0, 100},
		Quantity:   10,
	}})

	m := NewMapModel(view.Paris).SetSize(80, 24)
	m, _ = m.SetFrame(scene.Frame{
		View: view.Paris,
		Layer: scene.Layer{
			CurrentTime: 50,
			TrailLength: 100,
			Trips:       set,
		},
	}, time.Now())

	grid := m.buildGrid(80, 22)
	heads, body := 0, 0
	for _, row := range grid {
		for _, c := range row {
			switch c.ch {
			case '●':
				heads++
			case '•', '∙':
				body++
			}
		}
	}
	if heads != 1 {
		t.Errorf("found %d trail heads, want 1", heads)
	}
	if body == 0 {
		t.Error("trail body should be drawn behind the head")
	}
}

func TestMapModel_ViewTooSmall(t *testing.T) {
	m := NewMapModel(view.Initial).SetSize(10, 3)
	if got := m.View(); got != "Terminal too small for map view" {
		t.Errorf("View() = %q", got)
	}
}

func TestTrailGlyph(t *testing.T) {
	tests := []struct {
		age  float64
		want rune
	}{
		{0, '●'},
		{0.2, '•'},
		{0.9, '∙'},
	}
	for _, tt := range tests {
		if got := trailGlyph(tt.age); got != tt.want {
			t.Errorf("trailGlyph(%v) = %q, want %q", tt.age, got, tt.want)
		}
	}
}
