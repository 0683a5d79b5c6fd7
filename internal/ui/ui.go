// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-trails/internal/clock"
	"github.com/litescript/ls-trails/internal/logging"
	"github.com/litescript/ls-trails/internal/scene"
	"github.com/litescript/ls-trails/internal/trips"
	"github.com/litescript/ls-trails/internal/version"
	"github.com/litescript/ls-trails/internal/view"
)

// Focus is the pane receiving keyboard input.
type Focus int

const (
	FocusMap Focus = iota
	FocusPanel
)

// activityBuckets is the resolution of the activity histogram.
const activityBuckets = 96

// Msg types for Bubble Tea
type (
	// FrameMsg drives one animation frame.
	FrameMsg time.Time

	// AnimTickMsg triggers the spinner and shimmer effects.
	AnimTickMsg time.Time

	// TripsLoadedMsg carries the outcome of the background trip load.
	TripsLoadedMsg struct {
		Result trips.LoadResult
	}

	// TogglePlayMsg flips play/pause.
	TogglePlayMsg struct{}

	// SeekMsg moves the clock by whole animation steps.
	SeekMsg struct {
		Steps int
	}

	// SeekToMsg jumps the clock to a fraction of its window.
	SeekToMsg struct {
		Fraction float64
	}

	// ToggleAutoMsg switches between automatic and manual day/night.
	ToggleAutoMsg struct{}

	// ToggleManualMsg flips the manual daytime choice.
	ToggleManualMsg struct{}

	// GoToPresetMsg requests a fly-to to a named preset.
	GoToPresetMsg struct {
		Name string
	}

	// GoToCustomMsg requests a fly-to to the location form's contents.
	GoToCustomMsg struct {
		Input view.CustomInput
	}

	// ResetViewMsg requests a fly-to back to the initial camera.
	ResetViewMsg struct{}

	// ProposeViewMsg reports a camera set by direct interaction.
	ProposeViewMsg struct {
		State view.State
	}
)

// Options configures the root model.
type Options struct {
	Source        string // Trip data path or URL; empty leaves the layer empty
	Loader        *trips.Loader
	Logger        *logging.Logger
	FrameInterval time.Duration
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	scene  *scene.Scene
	loader *trips.Loader
	logger *logging.Logger
	source string

	// UI state
	width         int
	height        int
	ready         bool
	focus         Focus
	statusMsg     string
	animTick      int
	loading       bool
	frameInterval time.Duration

	// Sub-models
	mapView MapModel
	panel   PanelModel

	// Latest frame from the scene
	frame scene.Frame
}

// New creates a new root UI model around sc.
func New(sc *scene.Scene, opts Options) Model {
	if opts.Loader == nil {
		opts.Loader = trips.NewLoader()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = clock.DefaultFrameInterval
	}

	initial := sc.Current()
	m := Model{
		scene:         sc,
		loader:        opts.Loader,
		logger:        opts.Logger,
		source:        opts.Source,
		loading:       opts.Source != "",
		frameInterval: opts.FrameInterval,
		mapView:       NewMapModel(initial.View),
		panel:         NewPanelModel(initial.View),
		frame:         initial,
	}
	m.panel = m.panel.SetFrame(initial)
	m.refreshActivity()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(m.frameInterval),
		animTickCmd(),
		m.loadCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header 2 lines, footer 2 lines; the panel border takes 2 columns.
		contentHeight := msg.Height - 4
		m.mapView = m.mapView.SetSize(msg.Width-PanelWidth-2, contentHeight)
		m.panel = m.panel.SetSize(PanelWidth, contentHeight)

	case FrameMsg:
		cmds = append(cmds, frameCmd(m.frameInterval))
		f := m.scene.Frame()
		if f.Flipped {
			m.logger.Debug("crossfade -> day=%.0f night=%.0f at %s", f.Crossfade.Day, f.Crossfade.Night, f.Time.Format(time.RFC3339))
		}
		var landed bool
		m.mapView, landed = m.mapView.SetFrame(f, time.Time(msg))
		if landed {
			m.scene.CompleteTransition()
			f.Phase = view.PhaseIdle
		}
		m.frame = f
		m.panel = m.panel.SetFrame(f)

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case TripsLoadedMsg:
		m.loading = false
		m.scene.SetTrips(msg.Result)
		if msg.Result.Error != nil {
			m.logger.Error("load trips from %s: %v", msg.Result.Source, msg.Result.Error)
		} else {
			m.logger.Info("loaded %d trips from %s in %s (%d dropped)",
				msg.Result.Set.Len(), msg.Result.Source, msg.Result.Duration.Round(time.Millisecond), msg.Result.Dropped)
		}
		m.refreshActivity()
		m.syncFrame()

	case TogglePlayMsg:
		m.scene.TogglePlay()
		m.syncFrame()

	case SeekMsg:
		m.scene.StepBy(msg.Steps)
		m.syncFrame()

	case SeekToMsg:
		m.scene.SeekFraction(msg.Fraction)
		m.syncFrame()

	case ToggleAutoMsg:
		m.scene.ToggleAutoDayNight()
		m.syncFrame()

	case ToggleManualMsg:
		m.scene.ToggleManualDaytime()
		m.syncFrame()

	case GoToPresetMsg:
		if err := m.scene.GoToPreset(msg.Name); err != nil {
			m.statusMsg = err.Error()
			m.logger.Warn("go to preset: %v", err)
		} else {
			m.statusMsg = ""
		}

	case GoToCustomMsg:
		err := m.scene.GoToCustom(msg.Input)
		m.panel = m.panel.SetError(err)
		if err != nil {
			m.logger.Debug("rejected custom location: %v", err)
		}

	case ResetViewMsg:
		m.scene.ResetView()

	case ProposeViewMsg:
		m.scene.ProposeView(msg.State)
		m.syncFrame()

	default:
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	switch key {
	case "ctrl+c":
		return tea.Quit
	case "tab":
		return m.toggleFocus()
	}

	// Printable keys belong to a focused text field.
	if m.focus == FocusPanel && m.panel.Editing() {
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return cmd
	}

	switch key {
	case "q":
		return tea.Quit
	case " ":
		return send(TogglePlayMsg{})
	case "a":
		return send(ToggleAutoMsg{})
	case "n":
		return send(ToggleManualMsg{})
	case "p":
		return send(GoToPresetMsg{Name: "paris"})
	case "r":
		return send(ResetViewMsg{})
	case ",":
		return send(SeekMsg{Steps: -1})
	case ".":
		return send(SeekMsg{Steps: 1})
	case "<":
		return send(SeekMsg{Steps: -coarseSteps})
	case ">":
		return send(SeekMsg{Steps: coarseSteps})
	case "home":
		return send(SeekToMsg{Fraction: 0})
	case "end":
		return send(SeekToMsg{Fraction: 1})
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return send(SeekToMsg{Fraction: float64(key[0]-'0') / 10})
	}

	var cmd tea.Cmd
	if m.focus == FocusPanel {
		m.panel, cmd = m.panel.Update(msg)
	} else {
		m.mapView, cmd = m.mapView.Update(msg)
	}
	return cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == FocusMap {
		m.focus = FocusPanel
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Focus()
		return cmd
	}
	m.focus = FocusMap
	m.panel = m.panel.Blur()
	return nil
}

// syncFrame pulls the scene state after an action so the panel reflects it
// before the next tick.
func (m *Model) syncFrame() {
	cur := m.scene.Current()
	m.frame.Playing = cur.Playing
	m.frame.Progress = cur.Progress
	m.frame.Time = cur.Time
	m.frame.Mode = cur.Mode
	m.frame.Layer = cur.Layer
	m.frame.LoadErr = cur.LoadErr
	m.panel = m.panel.SetFrame(m.frame)
}

func (m *Model) refreshActivity() {
	m.panel = m.panel.SetActivity(m.scene.Activity(activityBuckets))
}

func (m Model) loadCmd() tea.Cmd {
	if m.source == "" {
		return nil
	}
	loader, source := m.loader, m.source
	return func() tea.Msg {
		return TripsLoadedMsg{Result: loader.Load(context.Background(), source)}
	}
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Focused returns the pane receiving keys.
func (m Model) Focused() Focus {
	return m.focus
}

// Frame returns the most recent frame.
func (m Model) Frame() scene.Frame {
	return m.frame
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, m.mapView.View(), m.panel.View())
	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	var b strings.Builder

	title := " ◆ LS-TRAILS "
	runes := []rune(title)
	for col, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, len(runes)))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	b.WriteString(muted.Render(fmt.Sprintf("v%s  ", version.Version)))
	b.WriteString(valueStyle.Render(m.frame.Time.Format("2006-01-02 15:04:05 MST")))
	b.WriteString("  ")
	b.WriteString(m.renderPhase())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	return b.String()
}

// renderPhase shows the day/night state with a sun or moon.
func (m Model) renderPhase() string {
	dayStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F6C343")).Bold(true)
	nightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#8FA3FF")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	mode := "auto"
	if !m.frame.Mode.Auto {
		mode = "manual"
	}
	if m.frame.Crossfade.Day >= 0.5 {
		return dayStyle.Render("☀ day") + dimStyle.Render(" ("+mode+")")
	}
	return nightStyle.Render("☾ night") + dimStyle.Render(" ("+mode+")")
}

func (m Model) renderTabs() string {
	tabs := []string{"Map", "Controls"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if Focus(i) == m.focus {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

// gradientStops run blue -> purple -> magenta -> pink.
var gradientStops = []colorful.Color{
	mustHex("#3B82F6"),
	mustHex("#8B5CF6"),
	mustHex("#D946EF"),
	mustHex("#EC4899"),
}

// gradientColor returns a hex color for a column in the title gradient.
func gradientColor(col, width int) string {
	if width <= 1 {
		return gradientStops[0].Hex()
	}
	pos := float64(col) / float64(width-1) * float64(len(gradientStops)-1)
	i := int(pos)
	if i >= len(gradientStops)-1 {
		return gradientStops[len(gradientStops)-1].Hex()
	}
	return gradientStops[i].BlendLab(gradientStops[i+1], pos-float64(i)).Clamped().Hex()
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	// Animated spinner frames
	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.loading:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Loading trips...")
	case m.frame.LoadErr != nil:
		msg := m.frame.LoadErr.Error()
		if errors.Is(m.frame.LoadErr, trips.ErrNoTrips) {
			msg = "no usable trips in " + m.source
		}
		status = errorStyle.Render("ERROR: " + msg)
	default:
		set := m.frame.Layer.Trips
		active := set.ActiveCount(m.frame.Layer.CurrentTime, m.frame.Layer.TrailLength)
		status = accentStyle.Render("●") + dimStyle.Render(fmt.Sprintf(" %d/%d trips active", active, set.Len()))
		if !m.frame.Playing {
			status += dimStyle.Render(" (paused)")
		}
	}

	var help string
	if m.focus == FocusPanel {
		help = dimStyle.Render("↑↓: select | enter: activate | ←/→: step | shift+←/→: jump | esc: leave field | tab: map")
	} else {
		help = dimStyle.Render("space: play | ,/.: step | </>: jump | 0-9: seek | a: auto | n: day/night | p: Paris | r: reset | tab: controls | q: quit")
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	textLen := len(runes)
	if textLen == 0 {
		return ""
	}

	pos := m.animTick % (textLen + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var hexColor string
		switch {
		case dist <= 1:
			hexColor = "#B4A0DC"
		case dist <= 3:
			hexColor = "#8C78B4"
		case dist <= 5:
			hexColor = "#6E5A96"
		default:
			hexColor = "#504678"
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
		result.WriteString(style.Render(string(r)))
	}
	return result.String()
}

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}
