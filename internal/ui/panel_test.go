package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-trails/internal/daynight"
	"github.com/litescript/ls-trails/internal/scene"
	"github.com/litescript/ls-trails/internal/view"
)

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func newTestPanel(auto bool) PanelModel {
	p := NewPanelModel(view.Initial)
	p = p.SetFrame(scene.Frame{Mode: daynight.Mode{Auto: auto, ManualDaytime: true}})
	p, _ = p.Focus()
	return p
}

func press(p PanelModel, keys ...tea.KeyMsg) PanelModel {
	for _, k := range keys {
		p, _ = p.Update(k)
	}
	return p
}

func TestPanel_NavigationSkipsHiddenManual(t *testing.T) {
	tests := []struct {
		name string
		auto bool
		want panelItem
	}{
		{"auto mode", true, itemLon},
		{"manual mode", false, itemManual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := press(newTestPanel(tt.auto), keyDown, keyDown, keyDown)
			if p.Selected() != tt.want {
				t.Errorf("Selected() = %d, want %d", p.Selected(), tt.want)
			}
		})
	}
}

func TestPanel_NavigationWraps(t *testing.T) {
	p := press(newTestPanel(true), keyUp)
	if p.Selected() != itemReset {
		t.Errorf("Selected() = %d, want %d", p.Selected(), itemReset)
	}
}

func TestPanel_EnterEmitsAction(t *testing.T) {
	tests := []struct {
		name  string
		downs int
		want  tea.Msg
	}{
		{"play", 0, TogglePlayMsg{}},
		{"mode", 2, ToggleAutoMsg{}},
		{"paris", 8, GoToPresetMsg{Name: "paris"}},
		{"reset", 9, ResetViewMsg{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPanel(true)
			for i := 0; i < tt.downs; i++ {
				p = press(p, keyDown)
			}
			_, cmd := p.Update(keyEnter)
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if got := cmd(); got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPanel_FlySendsFormContents(t *testing.T) {
	p := newTestPanel(true)
	for i := 0; i < 7; i++ {
		p = press(p, keyDown)
	}
	if p.Selected() != itemFly {
		t.Fatalf("Selected() = %d, want Fly", p.Selected())
	}

	_, cmd := p.Update(keyEnter)
	msg, ok := cmd().(GoToCustomMsg)
	if !ok {
		t.Fatalf("expected GoToCustomMsg, got %T", cmd())
	}
	if msg.Input != view.InputFor(view.Initial) {
		t.Errorf("Input = %+v, want %+v", msg.Input, view.InputFor(view.Initial))
	}
}

func TestPanel_EditingField(t *testing.T) {
	p := press(newTestPanel(true), keyDown, keyDown, keyDown)
	if !p.Editing() {
		t.Fatal("longitude field should be editing")
	}

	p = press(p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9")})
	if !strings.Contains(p.Input().Longitude, "9") {
		t.Errorf("Longitude = %q, typed rune missing", p.Input().Longitude)
	}

	p = press(p, keyEsc)
	if p.Editing() || p.Selected() != itemFly {
		t.Errorf("esc should leave the field for Fly, selected %d", p.Selected())
	}
}

func TestPanel_BlurStopsEditing(t *testing.T) {
	p := press(newTestPanel(true), keyDown, keyDown, keyDown)
	p = p.Blur()
	if p.Editing() {
		t.Error("blurred panel should not be editing")
	}
}

func TestPanel_ScrubEmitsSeek(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want int
	}{
		{keyLeft, -1},
		{tea.KeyMsg{Type: tea.KeyRight}, 1},
		{tea.KeyMsg{Type: tea.KeyShiftLeft}, -coarseSteps},
		{tea.KeyMsg{Type: tea.KeyShiftRight}, coarseSteps},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			p := press(newTestPanel(true).SetActivity([]float64{1, 2}), keyDown)

			_, cmd := p.Update(tt.key)
			if cmd == nil {
				t.Fatal("expected a command")
			}
			msg, ok := cmd().(SeekMsg)
			if !ok {
				t.Fatalf("expected SeekMsg, got %T", cmd())
			}
			if msg.Steps != tt.want {
				t.Errorf("Steps = %d, want %d", msg.Steps, tt.want)
			}
		})
	}
}

func TestPanel_ManualHiddenWhenAutoReturns(t *testing.T) {
	p := press(newTestPanel(false), keyDown, keyDown, keyDown)
	if p.Selected() != itemManual {
		t.Fatalf("Selected() = %d, want manual", p.Selected())
	}
	p = p.SetFrame(scene.Frame{Mode: daynight.Mode{Auto: true}})
	if p.Selected() != itemMode {
		t.Errorf("Selected() = %d, want mode once manual hides", p.Selected())
	}
}

func TestPanel_SetError(t *testing.T) {
	p := NewPanelModel(view.Initial)
	p = p.SetError(errors.New("invalid latitude"))
	if p.Error() != "invalid latitude" {
		t.Errorf("Error() = %q", p.Error())
	}
	if !strings.Contains(p.View(), "invalid latitude") {
		t.Error("error should render in the panel")
	}
	if p.SetError(nil).Error() != "" {
		t.Error("nil should clear the error")
	}
}

func TestResample(t *testing.T) {
	got := resample([]float64{1, 2, 3, 4}, 8)
	if len(got) != 8 || got[0] != 1 || got[7] != 4 {
		t.Errorf("resample = %v", got)
	}
	if resample(nil, 8) != nil {
		t.Error("empty input should give nil")
	}
}

func TestRenderActivityGraph(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want string
	}{
		{"empty", nil, "no trips loaded"},
		{"flat", []float64{3, 3, 3}, "flat at 3"},
		{"varied", []float64{0, 2, 5, 1}, "active trips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderActivityGraph(tt.data, 30); !strings.Contains(got, tt.want) {
				t.Errorf("renderActivityGraph() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate = %q", got)
	}
}
